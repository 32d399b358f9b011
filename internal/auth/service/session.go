package service

import (
	"context"
	"errors"
	"time"

	"rhymcaffer/internal/auth/models"
	identity "rhymcaffer/internal/identity/models"
	jwttoken "rhymcaffer/internal/jwt_token"
	"rhymcaffer/internal/storage"
	dErrors "rhymcaffer/pkg/domain-errors"
	"rhymcaffer/pkg/platform/middleware/auth"
	"rhymcaffer/pkg/platform/middleware/requesttime"
	"rhymcaffer/pkg/platform/sentinel"
)

// Register creates a ROLE_USER account and opens a session for it.
func (s *Service) Register(ctx context.Context, req *models.RegisterRequest) (*models.Session, error) {
	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	req.Sanitize()
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Hash before the transaction so no connection is held while bcrypt runs.
	start := time.Now()
	hash, err := s.hasher.Hash(req.Password)
	s.observeHashing(start)
	if err != nil {
		return nil, internal(err, "failed to hash password")
	}

	user := &identity.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		DisplayName:  req.DisplayName,
		Country:      req.Country,
		Roles:        []string{identity.RoleUser},
	}
	err = s.uow.RunInTx(ctx, func(ctx context.Context, st storage.Stores) error {
		exists, err := st.Users.ExistsByUsername(ctx, user.Username)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check username")
		}
		if exists {
			return dErrors.New(dErrors.CodeConflict, msgUsernameTaken)
		}
		exists, err = st.Users.ExistsByEmail(ctx, user.Email)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check email")
		}
		if exists {
			return dErrors.New(dErrors.CodeConflict, msgEmailTaken)
		}
		if err := st.Users.Create(ctx, user); err != nil {
			if conflict := userConflict(err); conflict != nil {
				return conflict
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	session, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}
	s.incrementRegistrations()
	s.logAudit(ctx, eventUserRegistered, "user_id", user.ID, "username", user.Username)
	return session, nil
}

// Login verifies credentials and opens a session.
func (s *Service) Login(ctx context.Context, req *models.LoginRequest) (*models.Session, error) {
	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	req.Sanitize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var user *identity.User
	err := s.uow.View(ctx, func(ctx context.Context, st storage.Stores) error {
		var err error
		user, err = st.Users.FindByUsername(ctx, req.Username)
		return err
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.authFailure(ctx, "unknown_user", false, "username", req.Username)
			return nil, dErrors.New(dErrors.CodeUnauthorized, msgBadCredentials)
		}
		return nil, internal(err, "failed to load user")
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		if errors.Is(err, ErrPasswordMismatch) {
			s.authFailure(ctx, "bad_password", false, "user_id", user.ID)
			return nil, dErrors.New(dErrors.CodeUnauthorized, msgBadCredentials)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify password")
	}

	session, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}
	s.incrementLogins()
	s.logAudit(ctx, eventUserLoggedIn, "user_id", user.ID)
	return session, nil
}

// Refresh exchanges a refresh token for a new access and refresh token pair.
// The presented refresh token is spent whether or not the exchange succeeds.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*models.Session, error) {
	if refreshToken == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, msgRefreshMissing)
	}

	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		s.authFailure(ctx, "invalid_refresh_token", false, "error", err)
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, msgInvalidRefresh)
	}
	subject, err := claims.UserID()
	if err != nil {
		s.authFailure(ctx, "invalid_refresh_subject", false)
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, msgInvalidRefresh)
	}

	owner, err := s.refresh.Consume(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.incrementRefreshReuse()
			s.authFailure(ctx, "refresh_token_reuse", false, "user_id", subject, "jti", claims.ID)
			return nil, dErrors.New(dErrors.CodeUnauthorized, msgRefreshSpent)
		}
		s.authFailure(ctx, "refresh_registry_error", true, "error", err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to consume refresh token")
	}
	if owner != subject {
		s.authFailure(ctx, "refresh_subject_mismatch", false, "user_id", subject, "owner_id", owner)
		return nil, dErrors.New(dErrors.CodeUnauthorized, msgInvalidRefresh)
	}

	var user *identity.User
	err = s.uow.View(ctx, func(ctx context.Context, st storage.Stores) error {
		var err error
		user, err = st.Users.FindByID(ctx, subject)
		return err
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.authFailure(ctx, "refresh_user_missing", false, "user_id", subject)
			return nil, dErrors.New(dErrors.CodeUnauthorized, msgUserNoLongerExists)
		}
		return nil, internal(err, "failed to load user")
	}

	session, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}
	s.incrementRefreshes()
	s.logAudit(ctx, eventTokenRefreshed, "user_id", user.ID)
	return session, nil
}

// Logout invalidates the access token for its remaining lifetime and revokes
// refreshToken when it is a valid refresh token of the same user.
func (s *Service) Logout(ctx context.Context, accessToken, refreshToken string) error {
	caller, claims, err := s.authorize(ctx, accessToken)
	if err != nil {
		return err
	}

	if err := s.revocations.Revoke(ctx, claims.ID, s.remaining(ctx, claims.ExpiresAt.Time)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke access token")
	}

	if refreshToken != "" {
		if rc, err := s.tokens.ValidateRefreshToken(refreshToken); err == nil && rc.Subject == claims.Subject {
			if err := s.refresh.Revoke(ctx, rc.ID); err != nil {
				s.logger.WarnContext(ctx, "failed to revoke refresh token",
					"error", err,
					"user_id", caller.UserID,
				)
			}
		}
	}

	s.incrementLogouts()
	s.logAudit(ctx, eventUserLoggedOut, "user_id", caller.UserID, "jti", claims.ID)
	return nil
}

// authorize resolves the caller of a valid, unrevoked access token.
func (s *Service) authorize(ctx context.Context, accessToken string) (*auth.Caller, *jwttoken.Claims, error) {
	if accessToken == "" {
		return nil, nil, dErrors.New(dErrors.CodeUnauthorized, "Missing access token")
	}
	claims, err := s.tokens.ValidateAccessToken(accessToken)
	if err != nil {
		s.authFailure(ctx, "invalid_access_token", false, "error", err)
		return nil, nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "Invalid or expired token")
	}
	if claims.ID == "" {
		s.authFailure(ctx, "missing_jti", false)
		return nil, nil, dErrors.New(dErrors.CodeUnauthorized, msgTokenRevoked)
	}
	revoked, err := s.revocations.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		s.authFailure(ctx, "revocation_check_error", true, "error", err)
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to validate token")
	}
	if revoked {
		s.authFailure(ctx, "token_revoked", false, "jti", claims.ID)
		return nil, nil, dErrors.New(dErrors.CodeUnauthorized, msgTokenRevoked)
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, nil, err
	}
	return &auth.Caller{
		UserID:   userID,
		Username: claims.Username,
		Roles:    claims.Roles,
		TokenID:  claims.ID,
	}, claims, nil
}

// issueSession signs a token pair and registers the refresh token so it can be
// exchanged exactly once.
func (s *Service) issueSession(ctx context.Context, user *identity.User) (*models.Session, error) {
	access, err := s.tokens.GenerateAccessToken(ctx, user.ID, user.Username, user.Roles)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate access token")
	}
	refresh, err := s.tokens.GenerateRefreshToken(ctx, user.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate refresh token")
	}
	if err := s.refresh.Register(ctx, refresh.JTI, user.ID, s.remaining(ctx, refresh.ExpiresAt)); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register refresh token")
	}
	return &models.Session{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

func (s *Service) remaining(ctx context.Context, expiresAt time.Time) time.Duration {
	return expiresAt.Sub(requesttime.Now(ctx))
}
