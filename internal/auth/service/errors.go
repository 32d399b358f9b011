package service

import (
	"errors"

	"rhymcaffer/internal/identity/store"
	dErrors "rhymcaffer/pkg/domain-errors"
	"rhymcaffer/pkg/platform/sentinel"
)

// User-facing messages for credential and token failures.
const (
	msgUsernameTaken      = "Username is already taken"
	msgEmailTaken         = "Email is already in use"
	msgBadCredentials     = "Invalid username or password"
	msgInvalidRefresh     = "Invalid or expired refresh token"
	msgRefreshSpent       = "Refresh token has already been used or revoked"
	msgRefreshMissing     = "Refresh token not found"
	msgTokenRevoked       = "Token has been revoked"
	msgUserNoLongerExists = "User no longer exists"
)

// internal passes domain errors through and wraps everything else as CodeInternal.
func internal(err error, msg string) error {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

// userConflict converts a user-store collision into a conflict naming the
// clashing field, and returns nil for any other error.
func userConflict(err error) error {
	switch {
	case errors.Is(err, store.ErrEmailTaken):
		return dErrors.Wrap(err, dErrors.CodeConflict, msgEmailTaken)
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.Wrap(err, dErrors.CodeConflict, msgUsernameTaken)
	}
	return nil
}
