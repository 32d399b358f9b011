package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"rhymcaffer/internal/identity/models"
	"rhymcaffer/internal/identity/service"
	"rhymcaffer/internal/storage"
	"rhymcaffer/pkg/platform/middleware/auth"
)

type stubHasher struct{}

func (stubHasher) Hash(p string) (string, error) { return "h:" + p, nil }

type envelope struct {
	StatusCode int             `json:"statusCode"`
	IsSuccess  bool            `json:"isSuccess"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

type UserHandlerSuite struct {
	suite.Suite
	router http.Handler
}

func TestUserHandlerSuite(t *testing.T) {
	suite.Run(t, new(UserHandlerSuite))
}

func (s *UserHandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(service.New(storage.NewMemory(), stubHasher{}), logger)

	r := chi.NewRouter()
	r.Use(callerFromHeaders)
	r.Route("/api/users", func(r chi.Router) {
		h.Register(r, auth.RequireRole(models.RoleAdmin, logger))
	})
	s.router = r
}

// callerFromHeaders stands in for bearer authentication.
func callerFromHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("X-Test-Caller") {
		case "admin":
			r = r.WithContext(auth.WithCaller(r.Context(), &auth.Caller{UserID: 100, Roles: []string{models.RoleUser, models.RoleAdmin}}))
		case "1":
			r = r.WithContext(auth.WithCaller(r.Context(), &auth.Caller{UserID: 1, Roles: []string{models.RoleUser}}))
		case "2":
			r = r.WithContext(auth.WithCaller(r.Context(), &auth.Caller{UserID: 2, Roles: []string{models.RoleUser}}))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *UserHandlerSuite) do(method, path, caller, body string) envelope {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if caller != "" {
		req.Header.Set("X-Test-Caller", caller)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	s.Equal(rec.Code, env.StatusCode)
	return env
}

func (s *UserHandlerSuite) seed() {
	for _, name := range []string{"alice", "bob"} {
		env := s.do(http.MethodPost, "/api/users", "admin",
			`{"username":"`+name+`","email":"`+name+`@x","password":"secret1"}`)
		s.Require().True(env.IsSuccess, env.Message)
	}
}

func (s *UserHandlerSuite) TestCreateRequiresAdmin() {
	env := s.do(http.MethodPost, "/api/users", "1", `{"username":"alice","email":"alice@x","password":"secret1"}`)
	s.Equal(http.StatusForbidden, env.StatusCode)

	env = s.do(http.MethodPost, "/api/users", "admin", `{"username":"alice","email":"alice@x","password":"secret1"}`)
	s.Equal(http.StatusOK, env.StatusCode)
	s.Equal("User created successfully", env.Message)

	var user models.UserResponse
	s.Require().NoError(json.Unmarshal(env.Data, &user))
	s.Equal("alice", user.DisplayName)
	s.NotContains(string(env.Data), "secret1")
	s.NotContains(string(env.Data), "h:secret1")

	env = s.do(http.MethodPost, "/api/users", "admin", `{"username":"alice","email":"other@x","password":"secret1"}`)
	s.Equal(http.StatusBadRequest, env.StatusCode)
	s.False(env.IsSuccess)
}

func (s *UserHandlerSuite) TestReads() {
	s.seed()

	env := s.do(http.MethodGet, "/api/users", "1", "")
	var list []models.UserSummary
	s.Require().NoError(json.Unmarshal(env.Data, &list))
	s.Len(list, 2)

	env = s.do(http.MethodGet, "/api/users/username/bob", "1", "")
	s.True(env.IsSuccess)

	env = s.do(http.MethodGet, "/api/users/search?query=BO", "1", "")
	s.Require().NoError(json.Unmarshal(env.Data, &list))
	s.Len(list, 1)

	env = s.do(http.MethodGet, "/api/users/42", "1", "")
	s.Equal(http.StatusNotFound, env.StatusCode)

	env = s.do(http.MethodGet, "/api/users/abc", "1", "")
	s.Equal(http.StatusBadRequest, env.StatusCode)
}

func (s *UserHandlerSuite) TestUpdate() {
	s.seed()

	env := s.do(http.MethodPut, "/api/users/1", "1", `{"displayName":"Alice"}`)
	s.Equal(http.StatusOK, env.StatusCode)
	s.Equal("User updated successfully", env.Message)

	env = s.do(http.MethodPut, "/api/users/1", "2", `{"displayName":"Mallory"}`)
	s.Equal(http.StatusForbidden, env.StatusCode)

	env = s.do(http.MethodPut, "/api/users/1", "1", `{"email":"nope"}`)
	s.Equal(http.StatusBadRequest, env.StatusCode)
}

func (s *UserHandlerSuite) TestFollow() {
	s.seed()

	env := s.do(http.MethodPost, "/api/users/2/follow", "1", "")
	s.Equal(http.StatusOK, env.StatusCode)

	env = s.do(http.MethodPost, "/api/users/2/follow", "1", "")
	s.Equal(http.StatusBadRequest, env.StatusCode)

	env = s.do(http.MethodPost, "/api/users/1/follow", "1", "")
	s.Equal(http.StatusBadRequest, env.StatusCode)

	env = s.do(http.MethodGet, "/api/users/2/followers", "1", "")
	var followers []models.UserSummary
	s.Require().NoError(json.Unmarshal(env.Data, &followers))
	s.Require().Len(followers, 1)
	s.Equal(int64(1), followers[0].ID)

	env = s.do(http.MethodPost, "/api/users/2/unfollow", "1", "")
	s.Equal(http.StatusOK, env.StatusCode)
	env = s.do(http.MethodPost, "/api/users/2/unfollow", "1", "")
	s.Equal(http.StatusNotFound, env.StatusCode)
}

func (s *UserHandlerSuite) TestDeleteRequiresAdmin() {
	s.seed()

	env := s.do(http.MethodDelete, "/api/users/2", "1", "")
	s.Equal(http.StatusForbidden, env.StatusCode)

	env = s.do(http.MethodDelete, "/api/users/2", "admin", "")
	s.Equal(http.StatusOK, env.StatusCode)

	env = s.do(http.MethodGet, "/api/users/2", "1", "")
	s.Equal(http.StatusNotFound, env.StatusCode)
}
