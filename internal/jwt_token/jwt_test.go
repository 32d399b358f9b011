package jwttoken

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "rhymcaffer/pkg/domain-errors"
	"rhymcaffer/pkg/platform/middleware/requesttime"
)

const (
	accessTTL  = 15 * time.Minute
	refreshTTL = 7 * 24 * time.Hour
	leeway     = 30 * time.Second
)

var jwtService = NewJWTService("test-signing-key", "rhymcaffer-test", accessTTL, refreshTTL, leeway)

func Test_GenerateAccessToken(t *testing.T) {
	issued, err := jwtService.GenerateAccessToken(context.Background(), 42, "alice", []string{"ROLE_USER"})
	require.NoError(t, err)
	require.NotEmpty(t, issued.Token)
	require.NotEmpty(t, issued.JTI)

	claims, err := jwtService.ValidateAccessToken(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, []string{"ROLE_USER"}, claims.Roles)
	assert.Equal(t, issued.JTI, claims.ID)
	assert.Equal(t, TypeAccess, claims.Type)
	assert.WithinDuration(t, time.Now().Add(accessTTL), claims.ExpiresAt.Time, time.Minute)

	userID, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func Test_TokensHaveDistinctJTIs(t *testing.T) {
	a, err := jwtService.GenerateAccessToken(context.Background(), 1, "a", nil)
	require.NoError(t, err)
	b, err := jwtService.GenerateAccessToken(context.Background(), 1, "a", nil)
	require.NoError(t, err)
	assert.NotEqual(t, a.JTI, b.JTI)
}

func Test_RefreshTokenRoundTrip(t *testing.T) {
	issued, err := jwtService.GenerateRefreshToken(context.Background(), 7)
	require.NoError(t, err)

	claims, err := jwtService.ValidateRefreshToken(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "7", claims.Subject)
	assert.WithinDuration(t, time.Now().Add(refreshTTL), issued.ExpiresAt, time.Minute)
}

func Test_TokenTypesAreNotInterchangeable(t *testing.T) {
	ctx := context.Background()
	access, err := jwtService.GenerateAccessToken(ctx, 1, "a", nil)
	require.NoError(t, err)
	refresh, err := jwtService.GenerateRefreshToken(ctx, 1)
	require.NoError(t, err)

	_, err = jwtService.ValidateAccessToken(refresh.Token)
	assert.ErrorContains(t, err, "unexpected token type")

	_, err = jwtService.ValidateRefreshToken(access.Token)
	assert.ErrorContains(t, err, "unexpected token type")
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	for _, tok := range []string{"", "invalid-token-string"} {
		_, err := jwtService.ValidateAccessToken(tok)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	}
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	past := requesttime.WithTime(context.Background(), time.Now().Add(-accessTTL-time.Hour))
	issued, err := jwtService.GenerateAccessToken(past, 1, "a", nil)
	require.NoError(t, err)

	_, err = jwtService.ValidateAccessToken(issued.Token)
	require.ErrorContains(t, err, "token expired")
}

func Test_ValidateToken_ClockSkewWithinLeeway(t *testing.T) {
	// Expired ten seconds ago, still inside the thirty second leeway.
	past := requesttime.WithTime(context.Background(), time.Now().Add(-accessTTL-10*time.Second))
	issued, err := jwtService.GenerateAccessToken(past, 1, "a", nil)
	require.NoError(t, err)

	_, err = jwtService.ValidateAccessToken(issued.Token)
	assert.NoError(t, err)
}

func Test_ValidateToken_WrongKeyOrIssuer(t *testing.T) {
	issued, err := jwtService.GenerateAccessToken(context.Background(), 1, "a", nil)
	require.NoError(t, err)

	other := NewJWTService("other-key", "rhymcaffer-test", accessTTL, refreshTTL, leeway)
	_, err = other.ValidateAccessToken(issued.Token)
	assert.ErrorContains(t, err, "invalid token")

	otherIssuer := NewJWTService("test-signing-key", "someone-else", accessTTL, refreshTTL, leeway)
	_, err = otherIssuer.ValidateAccessToken(issued.Token)
	assert.ErrorContains(t, err, "invalid token")
}

func Test_ValidateToken_RejectsAlgorithmConfusion(t *testing.T) {
	claims := Claims{
		Username: "mallory",
		Type:     TypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "rhymcaffer-test",
			ID:        uuid.NewString(),
		},
	}

	cases := []struct {
		name       string
		signMethod jwt.SigningMethod
		signKey    any
	}{
		{"hs512 header rejected", jwt.SigningMethodHS512, []byte("test-signing-key")},
		{"alg none rejected", jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			tokenString, err := jwt.NewWithClaims(tt.signMethod, claims).SignedString(tt.signKey)
			require.NoError(t, err)

			_, err = jwtService.ValidateAccessToken(tokenString)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
		})
	}
}

func Test_ValidateToken_RejectsBadSubject(t *testing.T) {
	claims := Claims{
		Type: TypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "not-a-number",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "rhymcaffer-test",
			ID:        uuid.NewString(),
		},
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	_, err = jwtService.ValidateAccessToken(tokenString)
	assert.ErrorContains(t, err, "invalid token subject")
}

func Test_Adapter(t *testing.T) {
	issued, err := jwtService.GenerateAccessToken(context.Background(), 9, "bob", []string{"ROLE_USER", "ROLE_ADMIN"})
	require.NoError(t, err)

	claims, err := NewJWTServiceAdapter(jwtService).ValidateToken(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "9", claims.Subject)
	assert.Equal(t, "bob", claims.Username)
	assert.Equal(t, issued.JTI, claims.JTI)
	assert.ElementsMatch(t, []string{"ROLE_USER", "ROLE_ADMIN"}, claims.Roles)
}
