package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotPresent         = errors.New("not present")
	ErrSelfFollow         = errors.New("you cannot subscribe to yourself")
	ErrForbidden          = errors.New("you do not have permission to perform this action")
	ErrInvalidCredentials = errors.New("unable to log in with provided credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = fmt.Errorf("%w: token has expired", ErrInvalidToken)
)

// DetailError attaches a user-facing message to one of the sentinels above.
type DetailError struct {
	Kind   error
	Detail string
}

func (e *DetailError) Error() string { return e.Detail }
func (e *DetailError) Unwrap() error { return e.Kind }

func detail(kind error, msg string) error {
	return &DetailError{Kind: kind, Detail: msg}
}

func notFound(what string) error {
	return detail(ErrNotFound, what+" not found.")
}
