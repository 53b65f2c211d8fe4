package main

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"taskdesk/internal/config"
	"taskdesk/internal/db"
	"taskdesk/internal/model"
	"taskdesk/internal/repository"
)

type seedUser struct {
	Username string
	Email    string
	Password string
	Tasks    []seedTask
}

type seedTask struct {
	Name        string
	Description string
	DueIn       time.Duration
	Completed   bool
}

var demoUsers = []seedUser{
	{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret1",
		Tasks: []seedTask{
			{Name: "Write report", Description: "Quarterly summary", DueIn: 72 * time.Hour},
			{Name: "Book flights", DueIn: 24 * time.Hour, Completed: true},
			{Name: "Renew passport", DueIn: -48 * time.Hour},
		},
	},
	{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "secret2",
		Tasks: []seedTask{
			{Name: "Review pull requests", DueIn: 8 * time.Hour},
		},
	},
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}, &model.Task{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	userRepo := repository.NewUserRepository(gormDB)
	taskRepo := repository.NewTaskRepository(gormDB)
	ctx := context.Background()

	users, tasks, err := seed(ctx, userRepo, taskRepo)
	if err != nil {
		log.Fatalf("Failed to seed: %v", err)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - Users created: %d", users)
	log.Printf("  - Tasks created: %d", tasks)
}

// seed inserts the demo users and their tasks, skipping users that already
// exist so the script stays safe to re-run.
func seed(ctx context.Context, users repository.UserRepository, tasks repository.TaskRepository) (seededUsers, seededTasks int, err error) {
	now := time.Now()

	for _, item := range demoUsers {
		existing, err := users.FindByEmail(ctx, item.Email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return seededUsers, seededTasks, err
		}
		if existing != nil {
			log.Printf("Skipping existing user: %s", item.Email)
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(item.Password), bcrypt.DefaultCost)
		if err != nil {
			return seededUsers, seededTasks, err
		}

		user := &model.User{
			Username:     item.Username,
			Email:        item.Email,
			PasswordHash: string(hash),
		}
		if err := users.Create(ctx, user); err != nil {
			return seededUsers, seededTasks, err
		}
		seededUsers++

		for _, t := range item.Tasks {
			status := model.TaskStatusPending
			if t.Completed {
				status = model.TaskStatusCompleted
			}
			task := &model.Task{
				Name:        t.Name,
				Description: t.Description,
				Status:      status,
				DueDate:     now.Add(t.DueIn),
				OwnerID:     user.ID,
			}
			if err := tasks.Create(ctx, task); err != nil {
				return seededUsers, seededTasks, err
			}
			seededTasks++
		}
	}

	return seededUsers, seededTasks, nil
}
