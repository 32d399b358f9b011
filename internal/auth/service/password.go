package service

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	dErrors "rhymcaffer/pkg/domain-errors"
)

// MsgPasswordTooLong matches the request validation message for the same limit.
const MsgPasswordTooLong = "password must be at most 72 bytes"

// BcryptHasher hashes passwords with bcrypt, which embeds a per-password salt
// and the cost in every hash.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash reports passwords over bcrypt's 72-byte input limit as a validation
// error rather than an internal one.
func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", dErrors.Wrap(err, dErrors.CodeValidation, MsgPasswordTooLong)
	}
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ErrPasswordMismatch is returned by Compare when the password does not match.
var ErrPasswordMismatch = errors.New("password mismatch")

func (h *BcryptHasher) Compare(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}
