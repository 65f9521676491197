package application

import (
	"context"
	"errors"
	"fmt"
)

type UseCase[C any, R any] interface {
	Execute(ctx context.Context, cmd C) (R, error)
}

var (
	ErrValidation   = errors.New("validation")
	ErrRepository   = errors.New("repository failure")
	ErrUnauthorized = errors.New("identity required")
)

// Validation wraps msg so callers can match it with errors.Is(err, ErrValidation).
func Validation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// Repository wraps an unexpected storage error.
func Repository(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrRepository, err)
}

type IDGenerator interface {
	NewID() string
}
