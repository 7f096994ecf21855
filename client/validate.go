package client

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 1000
	maxMessageLen     = 2000
)

// emailRegex is deliberately loose; the server is the authority and this
// only catches obvious typos before a round trip.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateTitle validates a task title:
// - non-empty after trimming whitespace
// - at most 200 characters
func ValidateTitle(title string) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return fmt.Errorf("title cannot be empty")
	}
	if len(trimmed) > maxTitleLen {
		return fmt.Errorf("title exceeds %d characters", maxTitleLen)
	}
	return nil
}

// ValidateDescription validates the optional task description (max 1000 chars).
func ValidateDescription(description string) error {
	if len(strings.TrimSpace(description)) > maxDescriptionLen {
		return fmt.Errorf("description exceeds %d characters", maxDescriptionLen)
	}
	return nil
}

// ValidateTaskID validates a server-assigned task identifier.
func ValidateTaskID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("task id must be a positive number")
	}
	return nil
}

// ValidateEmail validates the account email for login/registration.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("email is not a valid address")
	}
	return nil
}

// ValidatePassword validates the account password for login/registration.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// ValidateMessage validates a chat utterance before it is sent.
func ValidateMessage(message string) error {
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("message cannot be empty")
	}
	if len(message) > maxMessageLen {
		return fmt.Errorf("message exceeds %d characters", maxMessageLen)
	}
	return nil
}

// NullableDescription trims the description and maps an empty result to nil,
// which the backend stores as null.
func NullableDescription(description string) *string {
	trimmed := strings.TrimSpace(description)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
