package models

import (
	s "rhymcaffer/pkg/string"
	"rhymcaffer/pkg/validation"
)

// CreateUserRequest is the admin create payload. Roles default to ROLE_USER.
type CreateUserRequest struct {
	Username    string   `json:"username" validate:"required,notblank,min=3,max=50"`
	Email       string   `json:"email" validate:"required,contains=@,max=255"`
	Password    string   `json:"password" validate:"required,min=6,maxbytes=72"`
	DisplayName string   `json:"displayName" validate:"max=255"`
	Country     string   `json:"country" validate:"max=64"`
	ImageURL    string   `json:"imageUrl" validate:"max=1024"`
	Bio         string   `json:"bio" validate:"max=2000"`
	Roles       []string `json:"roles" validate:"dive,oneof=ROLE_USER ROLE_ADMIN"`
}

func (r *CreateUserRequest) Sanitize() {
	s.TrimStrings(&r.Username, &r.Email, &r.DisplayName, &r.Country, &r.ImageURL)
}

func (r *CreateUserRequest) Normalize() {
	if r.DisplayName == "" {
		r.DisplayName = r.Username
	}
	if len(r.Roles) == 0 {
		r.Roles = []string{RoleUser}
	}
	r.Roles = s.Dedupe(r.Roles)
}

func (r *CreateUserRequest) Validate() error {
	return validation.Validate(r)
}

// UpdateUserRequest applies only the fields that are present.
// Roles may only be changed by an administrator.
type UpdateUserRequest struct {
	Username    *string   `json:"username" validate:"omitempty,notblank,min=3,max=50"`
	Email       *string   `json:"email" validate:"omitempty,contains=@,max=255"`
	Password    *string   `json:"password" validate:"omitempty,min=6,maxbytes=72"`
	DisplayName *string   `json:"displayName" validate:"omitempty,max=255"`
	Country     *string   `json:"country" validate:"omitempty,max=64"`
	ImageURL    *string   `json:"imageUrl" validate:"omitempty,max=1024"`
	Bio         *string   `json:"bio" validate:"omitempty,max=2000"`
	Roles       *[]string `json:"roles" validate:"omitempty,dive,oneof=ROLE_USER ROLE_ADMIN"`
}

func (r *UpdateUserRequest) Sanitize() {
	r.Username = s.TrimSpacePtr(r.Username)
	r.Email = s.TrimSpacePtr(r.Email)
	r.DisplayName = s.TrimSpacePtr(r.DisplayName)
	r.Country = s.TrimSpacePtr(r.Country)
	r.ImageURL = s.TrimSpacePtr(r.ImageURL)
}

func (r *UpdateUserRequest) Validate() error {
	return validation.Validate(r)
}

// Apply copies the present fields onto u. The password is handled by the caller.
func (r *UpdateUserRequest) Apply(u *User) {
	if r.Username != nil {
		u.Username = *r.Username
	}
	if r.Email != nil {
		u.Email = *r.Email
	}
	if r.DisplayName != nil {
		u.DisplayName = *r.DisplayName
	}
	if r.Country != nil {
		u.Country = *r.Country
	}
	if r.ImageURL != nil {
		u.ImageURL = *r.ImageURL
	}
	if r.Bio != nil {
		u.Bio = *r.Bio
	}
	if r.Roles != nil {
		u.Roles = s.Dedupe(*r.Roles)
	}
}
