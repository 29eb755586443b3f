package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for users and their credentials.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	Create(ctx context.Context, user User) (User, error)
	List(ctx context.Context) ([]User, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, id uuid.UUID, update UserUpdate) (WriteResult, error)
}

// User represents a stored user with its PIN credential.
type User struct {
	ID          uuid.UUID
	Username    string
	DisplayName string
	PINHash     string
	PINSalt     string
	IsAdmin     bool
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserUpdate lists the user columns to change. Nil fields are left untouched.
type UserUpdate struct {
	DisplayName *string
	IsAdmin     *bool
	IsActive    *bool
	PINHash     *string
	PINSalt     *string
}

// IsEmpty reports whether the update changes nothing.
func (u UserUpdate) IsEmpty() bool {
	return u.DisplayName == nil && u.IsAdmin == nil && u.IsActive == nil && u.PINHash == nil && u.PINSalt == nil
}
