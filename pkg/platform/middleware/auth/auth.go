package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"

	request "rhymcaffer/pkg/platform/middleware/request"
)

// JWTValidator defines the interface for validating JWT tokens
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// TokenRevocationChecker defines the interface for checking if tokens are revoked
type TokenRevocationChecker interface {
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// JWTClaims represents the claims we expect from the JWT validator
type JWTClaims struct {
	Subject  string
	Username string
	Roles    []string
	JTI      string // JWT ID for revocation tracking
}

// Caller is the authenticated identity attached to a request.
type Caller struct {
	UserID   int64
	Username string
	Roles    []string
	TokenID  string
}

// HasRole reports whether the caller holds the named role.
func (c *Caller) HasRole(role string) bool {
	if c == nil {
		return false
	}
	return slices.Contains(c.Roles, role)
}

type callerKey struct{}

// WithCaller stores the caller on the context.
func WithCaller(ctx context.Context, caller *Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// GetCaller returns the authenticated caller, or nil for anonymous requests.
func GetCaller(ctx context.Context) *Caller {
	if c, ok := ctx.Value(callerKey{}).(*Caller); ok {
		return c
	}
	return nil
}

// writeJSONError writes a failed response envelope.
func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"statusCode":%d,"isSuccess":false,"message":%q,"data":null}`, status, message))
}

// revocationResult represents the outcome of a token revocation check.
type revocationResult int

const (
	revocationOK         revocationResult = iota // Token is valid, not revoked
	revocationMissingJTI                         // Token missing required JTI claim
	revocationRevoked                            // Token has been revoked
	revocationError                              // Error checking revocation status
)

// checkRevocation verifies that a token has not been logged out.
func checkRevocation(ctx context.Context, checker TokenRevocationChecker, jti string, logger *slog.Logger) revocationResult {
	if checker == nil {
		return revocationOK
	}

	if jti == "" {
		logger.WarnContext(ctx, "unauthorized access - missing token jti",
			"request_id", request.GetRequestID(ctx),
		)
		return revocationMissingJTI
	}

	revoked, err := checker.IsTokenRevoked(ctx, jti)
	if err != nil {
		logger.ErrorContext(ctx, "failed to check token revocation",
			"error", err,
			"request_id", request.GetRequestID(ctx),
		)
		return revocationError
	}

	if revoked {
		logger.WarnContext(ctx, "unauthorized access - token revoked",
			"jti", jti,
			"request_id", request.GetRequestID(ctx),
		)
		return revocationRevoked
	}

	return revocationOK
}

// parseCaller converts string claims into a typed caller.
func parseCaller(claims *JWTClaims) (*Caller, error) {
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return nil, fmt.Errorf("invalid subject %q", claims.Subject)
	}
	return &Caller{
		UserID:   userID,
		Username: claims.Username,
		Roles:    claims.Roles,
		TokenID:  claims.JTI,
	}, nil
}

// RequireAuth returns middleware that validates bearer tokens and stores the caller in context.
// It validates the token, checks the invalidation set, and parses the subject.
func RequireAuth(validator JWTValidator, revocationChecker TokenRevocationChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")

			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", request.GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", request.GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			switch checkRevocation(ctx, revocationChecker, claims.JTI, logger) {
			case revocationMissingJTI, revocationRevoked:
				writeJSONError(w, http.StatusUnauthorized, "Token has been revoked")
				return
			case revocationError:
				writeJSONError(w, http.StatusInternalServerError, "Failed to validate token")
				return
			}

			caller, err := parseCaller(claims)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - malformed token claims",
					"error", err,
					"request_id", request.GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithCaller(ctx, caller)))
		})
	}
}

// RequireRole rejects authenticated callers lacking role with 403.
// Requests without a caller are rejected with 401.
func RequireRole(role string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			caller := GetCaller(ctx)
			if caller == nil {
				writeJSONError(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			if !caller.HasRole(role) {
				logger.WarnContext(ctx, "forbidden - missing role",
					"role", role,
					"user_id", caller.UserID,
					"request_id", request.GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusForbidden, "Access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
