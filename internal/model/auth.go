package model

import "github.com/google/uuid"

// LoginParams carries a PIN login attempt. Username may be empty on a
// single-user install.
type LoginParams struct {
	Username string
	PIN      string
}

// AuthResult is returned after a successful login or PIN change.
type AuthResult struct {
	Token   string
	User    User
	Message string
}

// SetPINParams carries a PIN change, or the first-run bootstrap when no user
// exists yet.
type SetPINParams struct {
	PIN          string
	SessionToken string
	Username     string
	DisplayName  string
}

// CreateUserParams describes a new account.
type CreateUserParams struct {
	Username    string
	PIN         string
	DisplayName string
	IsAdmin     bool
}

// UpdateUserParams describes an administrative change to an account. Nil
// fields are left untouched; an empty PIN keeps the current one.
type UpdateUserParams struct {
	UserID      uuid.UUID
	PIN         string
	DisplayName *string
	IsAdmin     *bool
	IsActive    *bool
}
