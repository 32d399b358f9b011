package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// MockJWTValidator is a testify mock for JWTValidator
type MockJWTValidator struct {
	mock.Mock
}

func (m *MockJWTValidator) ValidateToken(tokenString string) (*JWTClaims, error) {
	args := m.Called(tokenString)
	if claims := args.Get(0); claims != nil {
		return claims.(*JWTClaims), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockTokenRevocationChecker struct {
	mock.Mock
}

func (m *MockTokenRevocationChecker) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	args := m.Called(ctx, jti)
	return args.Bool(0), args.Error(1)
}

// mockHandler is a test handler that captures if it was called and the context
type mockHandler struct {
	called  bool
	context context.Context
}

func (m *mockHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.called = true
	m.context = r.Context()
	w.WriteHeader(http.StatusOK)
}

type AuthMiddlewareTestSuite struct {
	suite.Suite
	validator   *MockJWTValidator
	revoker     *MockTokenRevocationChecker
	logger      *slog.Logger
	nextHandler *mockHandler
}

func (s *AuthMiddlewareTestSuite) SetupTest() {
	s.validator = new(MockJWTValidator)
	s.revoker = new(MockTokenRevocationChecker)
	s.logger = slog.Default()
	s.nextHandler = &mockHandler{}
}

func (s *AuthMiddlewareTestSuite) TearDownTest() {
	s.validator.AssertExpectations(s.T())
	s.revoker.AssertExpectations(s.T())
}

func (s *AuthMiddlewareTestSuite) makeRequest(authHeader string, checker TokenRevocationChecker) *httptest.ResponseRecorder {
	handler := RequireAuth(s.validator, checker, s.logger)(s.nextHandler)
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func envelope(status int, msg string) string {
	return fmt.Sprintf(`{"statusCode":%d,"isSuccess":false,"message":%q,"data":null}`, status, msg)
}

func (s *AuthMiddlewareTestSuite) TestValidToken() {
	claims := &JWTClaims{Subject: "42", Username: "alice", Roles: []string{"ROLE_USER"}, JTI: "jti-123"}
	s.validator.On("ValidateToken", "valid-token").Return(claims, nil)
	s.revoker.On("IsTokenRevoked", mock.Anything, "jti-123").Return(false, nil)

	w := s.makeRequest("Bearer valid-token", s.revoker)

	require.True(s.T(), s.nextHandler.called, "next handler should be called")
	assert.Equal(s.T(), http.StatusOK, w.Code)

	caller := GetCaller(s.nextHandler.context)
	require.NotNil(s.T(), caller)
	assert.Equal(s.T(), int64(42), caller.UserID)
	assert.Equal(s.T(), "alice", caller.Username)
	assert.Equal(s.T(), "jti-123", caller.TokenID)
	assert.True(s.T(), caller.HasRole("ROLE_USER"))
	assert.False(s.T(), caller.HasRole("ROLE_ADMIN"))
}

func (s *AuthMiddlewareTestSuite) TestRevokedToken() {
	claims := &JWTClaims{Subject: "42", JTI: "jti-123"}
	s.validator.On("ValidateToken", "valid-token").Return(claims, nil)
	s.revoker.On("IsTokenRevoked", mock.Anything, "jti-123").Return(true, nil)

	w := s.makeRequest("Bearer valid-token", s.revoker)

	assert.False(s.T(), s.nextHandler.called, "next handler should not be called")
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
	assert.JSONEq(s.T(), envelope(401, "Token has been revoked"), w.Body.String())
}

func (s *AuthMiddlewareTestSuite) TestRevocationCheckMissingJTI() {
	claims := &JWTClaims{Subject: "42"}
	s.validator.On("ValidateToken", "valid-token").Return(claims, nil)

	w := s.makeRequest("Bearer valid-token", s.revoker)

	assert.False(s.T(), s.nextHandler.called)
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
	assert.JSONEq(s.T(), envelope(401, "Token has been revoked"), w.Body.String())
}

func (s *AuthMiddlewareTestSuite) TestRevocationCheckError() {
	claims := &JWTClaims{Subject: "42", JTI: "jti-123"}
	s.validator.On("ValidateToken", "valid-token").Return(claims, nil)
	s.revoker.On("IsTokenRevoked", mock.Anything, "jti-123").Return(false, errors.New("redis down"))

	w := s.makeRequest("Bearer valid-token", s.revoker)

	assert.False(s.T(), s.nextHandler.called)
	assert.Equal(s.T(), http.StatusInternalServerError, w.Code)
	assert.JSONEq(s.T(), envelope(500, "Failed to validate token"), w.Body.String())
}

func (s *AuthMiddlewareTestSuite) TestMalformedSubject() {
	for _, subject := range []string{"not-a-number", "0", "-3", ""} {
		s.Run(subject, func() {
			s.nextHandler = &mockHandler{}
			s.validator.On("ValidateToken", "tok-"+subject).Return(&JWTClaims{Subject: subject, JTI: "j"}, nil)

			w := s.makeRequest("Bearer tok-"+subject, nil)

			assert.False(s.T(), s.nextHandler.called)
			assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
		})
	}
}

func (s *AuthMiddlewareTestSuite) TestInvalidToken() {
	s.validator.On("ValidateToken", "invalid-token").Return(nil, errors.New("token expired"))

	w := s.makeRequest("Bearer invalid-token", nil)

	assert.False(s.T(), s.nextHandler.called)
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
	assert.Equal(s.T(), "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(s.T(), envelope(401, "Invalid or expired token"), w.Body.String())
}

func (s *AuthMiddlewareTestSuite) TestInvalidAuthorizationFormats() {
	testCases := []struct {
		name       string
		authHeader string
	}{
		{"missing header", ""},
		{"no bearer prefix", "token-without-bearer"},
		{"wrong prefix", "Basic dXNlcjpwYXNz"},
		{"lowercase bearer", "bearer token"},
		{"bearer without space", "Bearertoken"},
		{"bearer with empty token", "Bearer "},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.nextHandler = &mockHandler{}

			w := s.makeRequest(tc.authHeader, nil)

			assert.False(s.T(), s.nextHandler.called)
			assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
			assert.JSONEq(s.T(), envelope(401, "Missing or invalid Authorization header"), w.Body.String())
		})
	}
}

func TestAuthMiddlewareTestSuite(t *testing.T) {
	suite.Run(t, new(AuthMiddlewareTestSuite))
}

func TestRequireRole(t *testing.T) {
	logger := slog.Default()

	run := func(caller *Caller) (*httptest.ResponseRecorder, bool) {
		next := &mockHandler{}
		req := httptest.NewRequest(http.MethodPost, "/api/admin/artists", nil)
		if caller != nil {
			req = req.WithContext(WithCaller(req.Context(), caller))
		}
		w := httptest.NewRecorder()
		RequireRole("ROLE_ADMIN", logger)(next).ServeHTTP(w, req)
		return w, next.called
	}

	t.Run("admin passes", func(t *testing.T) {
		w, called := run(&Caller{UserID: 1, Roles: []string{"ROLE_USER", "ROLE_ADMIN"}})
		assert.True(t, called)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("plain user is forbidden", func(t *testing.T) {
		w, called := run(&Caller{UserID: 2, Roles: []string{"ROLE_USER"}})
		assert.False(t, called)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.JSONEq(t, envelope(403, "Access denied"), w.Body.String())
	})

	t.Run("anonymous is unauthenticated", func(t *testing.T) {
		w, called := run(nil)
		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestGetCallerMissing(t *testing.T) {
	assert.Nil(t, GetCaller(context.Background()))
	var c *Caller
	assert.False(t, c.HasRole("ROLE_USER"))
}
