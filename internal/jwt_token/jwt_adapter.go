package jwttoken

import (
	"rhymcaffer/pkg/platform/middleware/auth"
)

func ToMiddlewareClaims(claims *Claims) *auth.JWTClaims {
	return &auth.JWTClaims{
		Subject:  claims.Subject,
		Username: claims.Username,
		Roles:    claims.Roles,
		JTI:      claims.ID,
	}
}

// JWTServiceAdapter lets the bearer middleware validate access tokens.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*auth.JWTClaims, error) {
	claims, err := a.service.ValidateAccessToken(tokenString)
	if err != nil {
		return nil, err
	}
	return ToMiddlewareClaims(claims), nil
}
