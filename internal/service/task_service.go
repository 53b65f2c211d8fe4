package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "taskdesk/internal/errors"
	"taskdesk/internal/model"
	"taskdesk/internal/repository"
)

// TaskUpdate carries the mutable task fields for a partial update.
// Nil fields keep their prior value.
type TaskUpdate struct {
	Name        *string
	Description *string
	DueDate     *time.Time
	Status      *model.TaskStatus
}

// TaskService owns the task lifecycle. Every operation is scoped to the
// authenticated owner; the owner id always comes from the token, never
// from the request body.
type TaskService interface {
	ListTasks(ctx context.Context, ownerID uuid.UUID) ([]model.Task, error)
	CreateTask(ctx context.Context, ownerID uuid.UUID, name string, dueDate time.Time, description string) (*model.Task, error)
	UpdateTask(ctx context.Context, ownerID, taskID uuid.UUID, update TaskUpdate) (*model.Task, error)
	DeleteTask(ctx context.Context, ownerID, taskID uuid.UUID) error
	CompleteTask(ctx context.Context, ownerID, taskID uuid.UUID) error
}

type taskService struct {
	tasks repository.TaskRepository
}

// NewTaskService creates a new task service.
func NewTaskService(tasks repository.TaskRepository) TaskService {
	return &taskService{tasks: tasks}
}

// ListTasks returns all tasks owned by ownerID with their derived status.
// Tasks derived expired get their stored status reconciled in one
// best-effort batch write; the derivation result does not depend on that
// write succeeding.
func (s *taskService) ListTasks(ctx context.Context, ownerID uuid.UUID) ([]model.Task, error) {
	tasks, err := s.tasks.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	now := time.Now()
	var newlyExpired []uuid.UUID
	for i := range tasks {
		tasks[i].CurrentStatus = tasks[i].DeriveStatus(now)
		if tasks[i].CurrentStatus == model.TaskStatusExpired && tasks[i].Status != model.TaskStatusExpired {
			newlyExpired = append(newlyExpired, tasks[i].ID)
		}
	}
	if err := s.tasks.MarkExpired(ctx, newlyExpired); err != nil {
		log.Printf("mark expired tasks: %v", err)
	}

	return tasks, nil
}

// CreateTask persists a new pending task owned by ownerID.
func (s *taskService) CreateTask(ctx context.Context, ownerID uuid.UUID, name string, dueDate time.Time, description string) (*model.Task, error) {
	if err := validateTaskName(name); err != nil {
		return nil, err
	}
	if err := validateDueDate(dueDate); err != nil {
		return nil, err
	}

	task := &model.Task{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Status:      model.TaskStatusPending,
		DueDate:     dueDate,
		OwnerID:     ownerID,
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	task.CurrentStatus = task.DeriveStatus(time.Now())
	return task, nil
}

// UpdateTask applies a partial update to a task owned by ownerID.
func (s *taskService) UpdateTask(ctx context.Context, ownerID, taskID uuid.UUID, update TaskUpdate) (*model.Task, error) {
	task, err := s.ownedTask(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		if err := validateTaskName(*update.Name); err != nil {
			return nil, err
		}
		task.Name = *update.Name
	}
	if update.Description != nil {
		task.Description = *update.Description
	}
	if update.DueDate != nil {
		if err := validateDueDate(*update.DueDate); err != nil {
			return nil, err
		}
		task.DueDate = *update.DueDate
		// A stored EXPIRED is stale once the due date moves into the
		// future; reset it so the store matches what derivation reports.
		if task.Status == model.TaskStatusExpired && update.DueDate.After(time.Now()) {
			task.Status = model.TaskStatusPending
		}
	}
	if update.Status != nil {
		if err := validateWritableStatus(*update.Status); err != nil {
			return nil, err
		}
		task.Status = *update.Status
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	task.CurrentStatus = task.DeriveStatus(time.Now())
	return task, nil
}

// DeleteTask irreversibly removes a task owned by ownerID.
func (s *taskService) DeleteTask(ctx context.Context, ownerID, taskID uuid.UUID) error {
	task, err := s.ownedTask(ctx, ownerID, taskID)
	if err != nil {
		return err
	}

	if err := s.tasks.Delete(ctx, task.ID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// CompleteTask marks a task owned by ownerID as completed. Completing an
// already-completed task is a no-op success.
func (s *taskService) CompleteTask(ctx context.Context, ownerID, taskID uuid.UUID) error {
	task, err := s.ownedTask(ctx, ownerID, taskID)
	if err != nil {
		return err
	}

	if task.Status == model.TaskStatusCompleted {
		return nil
	}

	if err := s.tasks.UpdateStatus(ctx, task.ID, model.TaskStatusCompleted); err != nil {
		return fmt.Errorf("complete task: %w", err)
	}
	return nil
}

// ownedTask fetches a task and enforces the ownership check shared by all
// single-task operations.
func (s *taskService) ownedTask(ctx context.Context, ownerID, taskID uuid.UUID) (*model.Task, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	if task.OwnerID != ownerID {
		return nil, apperrors.ErrNotTaskOwner
	}
	return task, nil
}
