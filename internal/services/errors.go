package services

import "errors"

// Failures services report to callers as outcomes rather than faults.
// Handlers translate these into user-facing messages.
var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateBudget    = errors.New("a budget already exists for this category and month")
	ErrUserExists         = errors.New("username or email already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
)
