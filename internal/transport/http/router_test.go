package httptransport

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	authhandler "rhymcaffer/internal/auth/handler"
	authservice "rhymcaffer/internal/auth/service"
	"rhymcaffer/internal/auth/store/refreshtoken"
	"rhymcaffer/internal/auth/store/revocation"
	cataloghandler "rhymcaffer/internal/catalog/handler"
	catalogservice "rhymcaffer/internal/catalog/service"
	identityhandler "rhymcaffer/internal/identity/handler"
	identityservice "rhymcaffer/internal/identity/service"
	jwttoken "rhymcaffer/internal/jwt_token"
	"rhymcaffer/internal/platform/health"
	playlisthandler "rhymcaffer/internal/playlist/handler"
	playlistservice "rhymcaffer/internal/playlist/service"
	"rhymcaffer/internal/storage"
	request "rhymcaffer/pkg/platform/middleware/request"
)

type envelope struct {
	StatusCode int             `json:"statusCode"`
	IsSuccess  bool            `json:"isSuccess"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

type response struct {
	envelope
	cookies []*http.Cookie
}

// RouterSuite drives the assembled API end to end against in-memory stores.
type RouterSuite struct {
	suite.Suite
	revocations *revocation.InMemory
	refresh     *refreshtoken.InMemory
	metrics     *request.Metrics
	router      http.Handler
	adminToken  string
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	uow := storage.NewMemory()
	jwt := jwttoken.NewJWTService("router-secret", "rhymcaffer", 15*time.Minute, 24*time.Hour, time.Second)
	hasher := authservice.NewBcryptHasher(bcrypt.MinCost)
	s.revocations = revocation.NewInMemory()
	s.metrics = request.NewMetrics(prometheus.NewRegistry())

	s.refresh = refreshtoken.NewInMemory()

	sessions := authservice.New(uow, jwt, s.refresh, s.revocations, hasher, authservice.WithLogger(logger))
	_, err := sessions.EnsureAdmin(context.Background(), authservice.AdminAccount{Username: "root", Email: "root@x", Password: "rootpass"})
	s.Require().NoError(err)

	s.router = NewRouter(Handlers{
		Auth:      authhandler.New(sessions, logger, 24*time.Hour, false),
		Users:     identityhandler.New(identityservice.New(uow, hasher), logger),
		Catalog:   cataloghandler.New(catalogservice.New(uow), logger),
		Playlists: playlisthandler.New(playlistservice.New(uow), logger),
		Health:    health.New("test"),
	}, jwttoken.NewJWTServiceAdapter(jwt), s.revocations, Options{Metrics: s.metrics}, logger)

	s.adminToken = s.token(s.do(http.MethodPost, "/api/auth/login", "", `{"username":"root","password":"rootpass"}`))
}

func (s *RouterSuite) TearDownTest() {
	s.revocations.Close()
	s.refresh.Close()
}

func (s *RouterSuite) do(method, path, token, body string, cookies ...*http.Cookie) response {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	s.Equal(rec.Code, env.StatusCode)
	return response{envelope: env, cookies: rec.Result().Cookies()}
}

func (s *RouterSuite) token(resp response) string {
	s.Require().True(resp.IsSuccess, resp.Message)
	var data struct {
		AccessToken string `json:"accessToken"`
	}
	s.Require().NoError(json.Unmarshal(resp.Data, &data))
	s.Require().NotEmpty(data.AccessToken)
	return data.AccessToken
}

func refreshCookie(resp response) *http.Cookie {
	for _, c := range resp.cookies {
		if c.Name == authhandler.RefreshCookieName {
			return c
		}
	}
	return nil
}

func (s *RouterSuite) register(username string) (string, *http.Cookie) {
	resp := s.do(http.MethodPost, "/api/auth/register", "",
		`{"username":"`+username+`","email":"`+username+`@x","password":"pw12345!"}`)
	return s.token(resp), refreshCookie(resp)
}

func (s *RouterSuite) TestRegisterLoginRoundTrip() {
	resp := s.do(http.MethodPost, "/api/auth/register", "",
		`{"username":"alice","email":"alice@x","password":"pw12345!","displayName":"Alice","country":"US"}`)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.True(resp.IsSuccess)
	s.token(resp)
	s.Require().NotNil(refreshCookie(resp))
	s.True(refreshCookie(resp).HttpOnly)

	resp = s.do(http.MethodPost, "/api/auth/login", "", `{"username":"alice","password":"pw12345!"}`)
	s.Equal(http.StatusOK, resp.StatusCode)

	resp = s.do(http.MethodPost, "/api/auth/login", "", `{"username":"alice","password":"wrong"}`)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.False(resp.IsSuccess)
}

func (s *RouterSuite) TestRegisterRejectsPasswordOverByteLimit() {
	resp := s.do(http.MethodPost, "/api/auth/register", "",
		`{"username":"alice","email":"alice@x","password":"`+strings.Repeat("é", 40)+`"}`)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal("password must be at most 72 bytes", resp.Message)
}

func (s *RouterSuite) TestDuplicateRegister() {
	body := `{"username":"alice","email":"alice@x","password":"pw12345!"}`
	s.Equal(http.StatusOK, s.do(http.MethodPost, "/api/auth/register", "", body).StatusCode)

	resp := s.do(http.MethodPost, "/api/auth/register", "", body)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.False(resp.IsSuccess)
	s.Contains(resp.Message, "Username")
}

func (s *RouterSuite) TestArtistCreateAndPopular() {
	resp := s.do(http.MethodPost, "/api/admin/artists", s.adminToken, `{"name":"Radiohead","popularity":85}`)
	s.Equal(http.StatusOK, resp.StatusCode)

	user, _ := s.register("alice")
	resp = s.do(http.MethodGet, "/api/artists/popular?minPopularity=80", user, "")
	var artists []struct {
		Name string `json:"name"`
	}
	s.Require().NoError(json.Unmarshal(resp.Data, &artists))
	s.Require().Len(artists, 1)
	s.Equal("Radiohead", artists[0].Name)

	resp = s.do(http.MethodPost, "/api/admin/artists", user, `{"name":"Muse"}`)
	s.Equal(http.StatusForbidden, resp.StatusCode)
	resp = s.do(http.MethodPost, "/api/artists", user, `{"name":"Muse"}`)
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *RouterSuite) TestAlbumTracksBulkIsAtomic() {
	user, _ := s.register("alice")
	s.do(http.MethodPost, "/api/albums", user, `{"name":"A"}`)
	s.do(http.MethodPost, "/api/tracks", user, `{"name":"ten"}`)
	s.do(http.MethodPost, "/api/tracks", user, `{"name":"eleven"}`)

	resp := s.do(http.MethodPost, "/api/albums/1/tracks", user, `[1, 99]`)
	s.Equal(http.StatusNotFound, resp.StatusCode)
	resp = s.do(http.MethodGet, "/api/albums/1/tracks", user, "")
	s.JSONEq(`[]`, string(resp.Data))

	resp = s.do(http.MethodPost, "/api/albums/1/tracks", user, `[1, 2]`)
	s.Equal(http.StatusOK, resp.StatusCode)
	resp = s.do(http.MethodGet, "/api/albums/1/tracks", user, "")
	var tracks []json.RawMessage
	s.Require().NoError(json.Unmarshal(resp.Data, &tracks))
	s.Len(tracks, 2)
}

func (s *RouterSuite) TestPlaylistAuthorization() {
	u1, _ := s.register("u1")
	u2, _ := s.register("u2")

	resp := s.do(http.MethodPost, "/api/playlists", u1, `{"name":"P","collaborative":false}`)
	s.Require().True(resp.IsSuccess, resp.Message)
	var p struct {
		ID int64 `json:"id"`
	}
	s.Require().NoError(json.Unmarshal(resp.Data, &p))
	path := "/api/playlists/" + jsonID(p.ID)

	s.Equal(http.StatusForbidden, s.do(http.MethodPut, path, u2, `{"name":"mine"}`).StatusCode)
	s.Equal(http.StatusOK, s.do(http.MethodPut, path, u1, `{"collaborative":true}`).StatusCode)
	s.Equal(http.StatusOK, s.do(http.MethodPut, path, u2, `{"name":"ours"}`).StatusCode)
}

func (s *RouterSuite) TestTokenRotation() {
	a1, r1 := s.register("alice")
	s.Require().NotNil(r1)

	resp := s.do(http.MethodPost, "/api/auth/refresh", "", "", r1)
	a2 := s.token(resp)
	r2 := refreshCookie(resp)
	s.Require().NotNil(r2)
	s.NotEqual(r1.Value, r2.Value)

	resp = s.do(http.MethodPost, "/api/auth/refresh", "", "", r1)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	s.Equal(http.StatusOK, s.do(http.MethodGet, "/api/users", a1, "").StatusCode)
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/api/users", a2, "").StatusCode)

	s.Equal(http.StatusOK, s.do(http.MethodPost, "/api/auth/logout", a1, "").StatusCode)
	s.Equal(http.StatusUnauthorized, s.do(http.MethodGet, "/api/users", a1, "").StatusCode)
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/api/users", a2, "").StatusCode)
}

func (s *RouterSuite) TestEnvelopeOnEdges() {
	resp := s.do(http.MethodGet, "/api/users", "", "")
	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	resp = s.do(http.MethodGet, "/api/users", "not-a-token", "")
	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	resp = s.do(http.MethodGet, "/nowhere", "", "")
	s.Equal(http.StatusNotFound, resp.StatusCode)

	resp = s.do(http.MethodGet, "/health/live", "", "")
	s.Equal(http.StatusOK, resp.StatusCode)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`username=root`))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusUnsupportedMediaType, rec.Code)

	s.Positive(testutil.CollectAndCount(s.metrics.EndpointLatency))
}

func jsonID(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
