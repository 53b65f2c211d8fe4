package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	apperrors "taskdesk/internal/errors"
	"taskdesk/internal/model"
)

const (
	maxUsernameLen = 50
	maxTaskNameLen = 80
	minPasswordLen = 1
	maxPasswordLen = 15
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func validationError(field, reason string) error {
	return fmt.Errorf("%w: %s %s", apperrors.ErrValidation, field, reason)
}

// validateRegistration checks the registration fields against the account
// constraints: well-formed email, non-empty bounded username, bounded
// password.
func validateRegistration(email, username, password string) error {
	if !emailPattern.MatchString(email) {
		return validationError("email", "is not a valid email address")
	}
	if strings.TrimSpace(username) == "" {
		return validationError("username", "must not be empty")
	}
	if len(username) > maxUsernameLen {
		return validationError("username", fmt.Sprintf("must be at most %d characters", maxUsernameLen))
	}
	if len(password) < minPasswordLen || len(password) > maxPasswordLen {
		return validationError("password", fmt.Sprintf("must be between %d and %d characters", minPasswordLen, maxPasswordLen))
	}
	return nil
}

func validateTaskName(name string) error {
	if strings.TrimSpace(name) == "" {
		return validationError("name", "must not be empty")
	}
	if len(name) > maxTaskNameLen {
		return validationError("name", fmt.Sprintf("must be at most %d characters", maxTaskNameLen))
	}
	return nil
}

func validateDueDate(due time.Time) error {
	if due.IsZero() {
		return validationError("due_date", "is required")
	}
	return nil
}

// validateWritableStatus rejects statuses a caller may not persist.
// EXPIRED is derived from the due date, never written directly.
func validateWritableStatus(status model.TaskStatus) error {
	switch status {
	case model.TaskStatusPending, model.TaskStatusCompleted:
		return nil
	default:
		return validationError("status", "must be PENDING or COMPLETED")
	}
}
