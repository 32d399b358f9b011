package jwttoken

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "rhymcaffer/pkg/domain-errors"
	"rhymcaffer/pkg/platform/middleware/requesttime"
)

// Token types carried in the typ claim. A refresh token never authorizes a request.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims is the signed payload of both token types.
type Claims struct {
	Username string   `json:"username,omitempty"`
	Roles    []string `json:"roles,omitempty"`
	Type     string   `json:"typ"`
	jwt.RegisteredClaims
}

// UserID parses the subject into the numeric user id.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, dErrors.New(dErrors.CodeUnauthorized, "invalid token subject")
	}
	return id, nil
}

// IssuedToken is a signed token with the identifiers needed to track it server side.
type IssuedToken struct {
	Token     string
	JTI       string
	ExpiresAt time.Time
}

// JWTService handles JWT creation and validation
type JWTService struct {
	signingKey []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	leeway     time.Duration
}

func NewJWTService(signingKey string, issuer string, accessTTL, refreshTTL, leeway time.Duration) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		leeway:     leeway,
	}
}

// GenerateAccessToken signs a short-lived token carrying the caller's identity and roles.
func (s *JWTService) GenerateAccessToken(ctx context.Context, userID int64, username string, roles []string) (IssuedToken, error) {
	return s.sign(ctx, Claims{
		Username: username,
		Roles:    roles,
		Type:     TypeAccess,
	}, userID, s.accessTTL)
}

// GenerateRefreshToken signs a long-lived token that can only mint new token pairs.
func (s *JWTService) GenerateRefreshToken(ctx context.Context, userID int64) (IssuedToken, error) {
	return s.sign(ctx, Claims{Type: TypeRefresh}, userID, s.refreshTTL)
}

func (s *JWTService) sign(ctx context.Context, claims Claims, userID int64, ttl time.Duration) (IssuedToken, error) {
	now := requesttime.Now(ctx)
	expiresAt := now.Add(ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return IssuedToken{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign token")
	}
	return IssuedToken{Token: signed, JTI: claims.ID, ExpiresAt: expiresAt}, nil
}

// ValidateAccessToken verifies signature, issuer, expiry (with leeway) and token type.
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.validate(tokenString, TypeAccess)
}

// ValidateRefreshToken is ValidateAccessToken for refresh tokens.
func (s *JWTService) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return s.validate(tokenString, TypeRefresh)
}

func (s *JWTService) validate(tokenString, wantType string) (*Claims, error) {
	if tokenString == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "empty token")
	}

	claims := new(Claims)
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithLeeway(s.leeway),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if claims.Type != wantType {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "unexpected token type")
	}
	if claims.ID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token missing jti")
	}
	if _, err := claims.UserID(); err != nil {
		return nil, err
	}
	return claims, nil
}
