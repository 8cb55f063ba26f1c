package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id             uuid.UUID
	Email          string
	FullName       string
	TrialStartedAt *time.Time
	TrialEndsAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// InTrial reports whether the user still holds a valid trial window.
func (u *User) InTrial(now time.Time) bool {
	return u.TrialEndsAt != nil && u.TrialEndsAt.After(now)
}
