package models

import (
	s "rhymcaffer/pkg/string"
	"rhymcaffer/pkg/validation"
)

// RegisterRequest creates an account. The email check only requires an @ so
// short local addresses are accepted.
type RegisterRequest struct {
	Username    string `json:"username" validate:"required,notblank,min=3,max=50"`
	Email       string `json:"email" validate:"required,contains=@,max=255"`
	Password    string `json:"password" validate:"required,min=6,maxbytes=72"`
	DisplayName string `json:"displayName" validate:"max=255"`
	Country     string `json:"country" validate:"max=64"`
}

func (r *RegisterRequest) Sanitize() {
	s.TrimStrings(&r.Username, &r.Email, &r.DisplayName, &r.Country)
}

// Normalize defaults the display name to the username.
func (r *RegisterRequest) Normalize() {
	if r.DisplayName == "" {
		r.DisplayName = r.Username
	}
}

func (r *RegisterRequest) Validate() error {
	return validation.Validate(r)
}

type LoginRequest struct {
	Username string `json:"username" validate:"required,notblank"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Sanitize() {
	s.TrimStrings(&r.Username)
}

func (r *LoginRequest) Validate() error {
	return validation.Validate(r)
}
