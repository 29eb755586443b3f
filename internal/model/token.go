package model

// TokenGenerator produces opaque session tokens.
type TokenGenerator interface {
	Generate() (string, error)
}
