package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"rhymcaffer/internal/auth/metrics"
	"rhymcaffer/internal/auth/models"
	"rhymcaffer/internal/auth/store/refreshtoken"
	"rhymcaffer/internal/auth/store/revocation"
	identity "rhymcaffer/internal/identity/models"
	jwttoken "rhymcaffer/internal/jwt_token"
	"rhymcaffer/internal/storage"
	identitystore "rhymcaffer/internal/identity/store"
	dErrors "rhymcaffer/pkg/domain-errors"
)

// SessionServiceSuite drives the service against real token, registry and
// store implementations.
type SessionServiceSuite struct {
	suite.Suite
	ctx         context.Context
	uow         *storage.Memory
	revocations *revocation.InMemory
	refresh     *refreshtoken.InMemory
	metrics     *metrics.Metrics
	service     *Service
}

func TestSessionServiceSuite(t *testing.T) {
	suite.Run(t, new(SessionServiceSuite))
}

func (s *SessionServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.uow = storage.NewMemory()
	s.revocations = revocation.NewInMemory()
	s.refresh = refreshtoken.NewInMemory()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.service = New(
		s.uow,
		jwttoken.NewJWTService("test-secret", "rhymcaffer", 15*time.Minute, 24*time.Hour, time.Second),
		s.refresh,
		s.revocations,
		NewBcryptHasher(bcrypt.MinCost),
		WithMetrics(s.metrics),
	)
}

func (s *SessionServiceSuite) TearDownTest() {
	s.revocations.Close()
	s.refresh.Close()
}

func (s *SessionServiceSuite) register(username, email, password string) *models.Session {
	session, err := s.service.Register(s.ctx, &models.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	})
	s.Require().NoError(err)
	return session
}

func (s *SessionServiceSuite) TestRegister() {
	s.Run("creates a user with a hashed password and opens a session", func() {
		session, err := s.service.Register(s.ctx, &models.RegisterRequest{
			Username:    "  alice ",
			Email:       "alice@x",
			Password:    "pw12345!",
			DisplayName: "Alice",
			Country:     "US",
		})
		s.Require().NoError(err)

		s.Equal("alice", session.User.Username)
		s.Equal("Alice", session.User.DisplayName)
		s.Equal([]string{identity.RoleUser}, session.User.Roles)
		s.NotEqual("pw12345!", session.User.PasswordHash)
		s.NotEmpty(session.AccessToken.Token)
		s.NotEmpty(session.RefreshToken.Token)
		s.Equal(float64(1), testutil.ToFloat64(s.metrics.Registrations))
	})

	s.Run("display name defaults to the username", func() {
		session := s.register("bob", "bob@x", "secret1")
		s.Equal("bob", session.User.DisplayName)
	})

	s.Run("duplicate username is a conflict", func() {
		_, err := s.service.Register(s.ctx, &models.RegisterRequest{
			Username: "alice", Email: "other@x", Password: "pw12345!",
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Equal("Username is already taken", err.Error())
	})

	s.Run("duplicate email is a conflict", func() {
		_, err := s.service.Register(s.ctx, &models.RegisterRequest{
			Username: "alice2", Email: "alice@x", Password: "pw12345!",
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Equal("Email is already in use", err.Error())
	})

	s.Run("password over 72 bytes is a validation error", func() {
		_, err := s.service.Register(s.ctx, &models.RegisterRequest{
			Username: "dave", Email: "dave@x", Password: strings.Repeat("é", 40),
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("invalid request is rejected before hashing", func() {
		_, err := s.service.Register(s.ctx, &models.RegisterRequest{
			Username: "carol", Email: "carol@x", Password: "123",
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *SessionServiceSuite) TestLogin() {
	s.register("alice", "alice@x", "pw12345!")

	s.Run("valid credentials", func() {
		session, err := s.service.Login(s.ctx, &models.LoginRequest{Username: "alice", Password: "pw12345!"})
		s.Require().NoError(err)
		s.Equal("alice", session.User.Username)
		s.NotEmpty(session.AccessToken.Token)
	})

	s.Run("wrong password", func() {
		_, err := s.service.Login(s.ctx, &models.LoginRequest{Username: "alice", Password: "wrong"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.Equal("Invalid username or password", err.Error())
	})

	s.Run("unknown user", func() {
		_, err := s.service.Login(s.ctx, &models.LoginRequest{Username: "nobody", Password: "pw12345!"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Equal(float64(1), testutil.ToFloat64(s.metrics.AuthFailures.WithLabelValues("bad_password")))
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.AuthFailures.WithLabelValues("unknown_user")))
}

func (s *SessionServiceSuite) TestRefreshRotatesTokens() {
	first := s.register("alice", "alice@x", "pw12345!")

	second, err := s.service.Refresh(s.ctx, first.RefreshToken.Token)
	s.Require().NoError(err)
	s.NotEqual(first.RefreshToken.JTI, second.RefreshToken.JTI)
	s.NotEqual(first.AccessToken.JTI, second.AccessToken.JTI)

	_, err = s.service.Refresh(s.ctx, first.RefreshToken.Token)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.RefreshReuse))

	// the first access token is still valid until it expires
	caller, _, err := s.service.authorize(s.ctx, first.AccessToken.Token)
	s.Require().NoError(err)
	s.Equal(first.User.ID, caller.UserID)

	_, err = s.service.Refresh(s.ctx, second.RefreshToken.Token)
	s.NoError(err)
}

func (s *SessionServiceSuite) TestRefreshRejections() {
	session := s.register("alice", "alice@x", "pw12345!")

	s.Run("missing token", func() {
		_, err := s.service.Refresh(s.ctx, "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
		s.Equal("Refresh token not found", err.Error())
	})

	s.Run("access token presented as refresh token", func() {
		_, err := s.service.Refresh(s.ctx, session.AccessToken.Token)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("garbage", func() {
		_, err := s.service.Refresh(s.ctx, "not-a-token")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("user deleted after issue", func() {
		require.NoError(s.T(), s.uow.RunInTx(s.ctx, func(ctx context.Context, st storage.Stores) error {
			return st.Users.Delete(ctx, session.User.ID)
		}))
		_, err := s.service.Refresh(s.ctx, session.RefreshToken.Token)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *SessionServiceSuite) TestLogout() {
	session := s.register("alice", "alice@x", "pw12345!")

	caller, _, err := s.service.authorize(s.ctx, session.AccessToken.Token)
	s.Require().NoError(err)
	s.Equal("alice", caller.Username)
	s.Equal([]string{identity.RoleUser}, caller.Roles)

	s.Require().NoError(s.service.Logout(s.ctx, session.AccessToken.Token, session.RefreshToken.Token))
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.Logouts))

	_, _, err = s.service.authorize(s.ctx, session.AccessToken.Token)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	s.Equal("Token has been revoked", err.Error())

	_, err = s.service.Refresh(s.ctx, session.RefreshToken.Token)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	err = s.service.Logout(s.ctx, session.AccessToken.Token, "")
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *SessionServiceSuite) TestLogoutIgnoresForeignRefreshToken() {
	alice := s.register("alice", "alice@x", "pw12345!")
	bob := s.register("bob", "bob@x", "pw12345!")

	s.Require().NoError(s.service.Logout(s.ctx, alice.AccessToken.Token, bob.RefreshToken.Token))

	_, err := s.service.Refresh(s.ctx, bob.RefreshToken.Token)
	s.NoError(err)
}

func (s *SessionServiceSuite) TestEnsureAdmin() {
	account := AdminAccount{Username: "admin", Email: "admin@x", Password: "adminpw"}

	admin, err := s.service.EnsureAdmin(s.ctx, account)
	s.Require().NoError(err)
	s.True(admin.HasRole(identity.RoleAdmin))
	s.True(admin.HasRole(identity.RoleUser))

	again, err := s.service.EnsureAdmin(s.ctx, account)
	s.Require().NoError(err)
	s.Equal(admin.ID, again.ID)

	session, err := s.service.Login(s.ctx, &models.LoginRequest{Username: "admin", Password: "adminpw"})
	s.Require().NoError(err)
	caller, _, err := s.service.authorize(s.ctx, session.AccessToken.Token)
	s.Require().NoError(err)
	s.True(caller.HasRole(identity.RoleAdmin))
}

func (s *SessionServiceSuite) TestEnsureAdminPromotesExistingUser() {
	user := s.register("root", "root@x", "pw12345!").User

	admin, err := s.service.EnsureAdmin(s.ctx, AdminAccount{Username: "root", Email: "root@x", Password: "ignored"})
	s.Require().NoError(err)
	s.Equal(user.ID, admin.ID)
	s.ElementsMatch([]string{identity.RoleUser, identity.RoleAdmin}, admin.Roles)

	_, err = s.service.Login(s.ctx, &models.LoginRequest{Username: "root", Password: "pw12345!"})
	s.NoError(err)
}

func TestEnsureAdminRequiresCredentials(t *testing.T) {
	svc := New(storage.NewMemory(), nil, nil, nil, NewBcryptHasher(bcrypt.MinCost))
	_, err := svc.EnsureAdmin(context.Background(), AdminAccount{Username: "admin"})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidArgument))
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	first, err := h.Hash("pw12345!")
	require.NoError(t, err)
	second, err := h.Hash("pw12345!")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "each hash carries its own salt")
	assert.NoError(t, h.Compare(first, "pw12345!"))
	assert.ErrorIs(t, h.Compare(first, "wrong"), ErrPasswordMismatch)

	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(100).cost)

	_, err = h.Hash(strings.Repeat("é", 40))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	assert.Equal(t, MsgPasswordTooLong, err.Error())
}

func TestEnsureAdminRejectsOverlongPassword(t *testing.T) {
	svc := New(storage.NewMemory(), nil, nil, nil, NewBcryptHasher(bcrypt.MinCost))
	_, err := svc.EnsureAdmin(context.Background(), AdminAccount{
		Username: "root", Email: "root@x", Password: strings.Repeat("é", 40),
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestUserConflictNamesCollidingField(t *testing.T) {
	err := userConflict(fmt.Errorf("insert: %w", identitystore.ErrEmailTaken))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	assert.Equal(t, msgEmailTaken, err.Error())

	err = userConflict(identitystore.ErrUsernameTaken)
	require.Error(t, err)
	assert.Equal(t, msgUsernameTaken, err.Error())

	assert.NoError(t, userConflict(errors.New("connection reset")))
}

func TestEnsureAdminReportsEmailCollision(t *testing.T) {
	uow := storage.NewMemory()
	require.NoError(t, uow.RunInTx(context.Background(), func(ctx context.Context, st storage.Stores) error {
		return st.Users.Create(ctx, &identity.User{Username: "alice", Email: "root@x", Roles: []string{identity.RoleUser}})
	}))

	svc := New(uow, nil, nil, nil, NewBcryptHasher(bcrypt.MinCost))
	_, err := svc.EnsureAdmin(context.Background(), AdminAccount{Username: "root", Email: "root@x", Password: "rootpass"})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	assert.Equal(t, msgEmailTaken, err.Error())
}
