package service

import (
	"errors"

	"rhymcaffer/internal/identity/store"
	dErrors "rhymcaffer/pkg/domain-errors"
	"rhymcaffer/pkg/platform/sentinel"
)

const (
	msgUserNotFound  = "User not found"
	msgUsernameTaken = "Username is already taken"
	msgEmailTaken    = "Email is already registered"
)

// translate maps store errors onto the domain taxonomy. Domain errors pass through.
func translate(err error, msg string) error {
	var de *dErrors.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &de):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, msgUserNotFound)
	case errors.Is(err, store.ErrEmailTaken):
		return dErrors.Wrap(err, dErrors.CodeConflict, msgEmailTaken)
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.Wrap(err, dErrors.CodeConflict, msgUsernameTaken)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}
