package models

import (
	identity "rhymcaffer/internal/identity/models"
	jwttoken "rhymcaffer/internal/jwt_token"
)

// Session is the outcome of a successful register, login or refresh.
type Session struct {
	AccessToken  jwttoken.IssuedToken
	RefreshToken jwttoken.IssuedToken
	User         *identity.User
}

// AuthResponse is the envelope payload of register, login and refresh.
// The refresh token travels only in the cookie.
type AuthResponse struct {
	AccessToken string `json:"accessToken"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

func NewAuthResponse(s *Session) *AuthResponse {
	return &AuthResponse{
		AccessToken: s.AccessToken.Token,
		Username:    s.User.Username,
		DisplayName: s.User.DisplayName,
		Email:       s.User.Email,
	}
}
