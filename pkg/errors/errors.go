package errors

import "errors"

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrUsernameExists = errors.New("user already exists with the same username")
	ErrNoUsers        = errors.New("no users found")
	ErrNilUser        = errors.New("user is nil")
	ErrNilExercise    = errors.New("exercise is nil")
	ErrEmptyUsername  = errors.New("username cannot be empty")
	ErrInvalidDate    = errors.New("invalid date")
)
