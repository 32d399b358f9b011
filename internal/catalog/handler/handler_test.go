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

	"rhymcaffer/internal/catalog/models"
	"rhymcaffer/internal/catalog/service"
	identity "rhymcaffer/internal/identity/models"
	"rhymcaffer/internal/storage"
	"rhymcaffer/pkg/platform/middleware/auth"
)

type envelope struct {
	StatusCode int             `json:"statusCode"`
	IsSuccess  bool            `json:"isSuccess"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

type CatalogHandlerSuite struct {
	suite.Suite
	router http.Handler
}

func TestCatalogHandlerSuite(t *testing.T) {
	suite.Run(t, new(CatalogHandlerSuite))
}

func (s *CatalogHandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(service.New(storage.NewMemory()), logger)
	requireAdmin := auth.RequireRole(identity.RoleAdmin, logger)

	r := chi.NewRouter()
	r.Use(callerFromHeaders)
	r.Route("/api/artists", h.RegisterArtists)
	r.Route("/api/albums", h.RegisterAlbums)
	r.Route("/api/tracks", h.RegisterTracks)
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(requireAdmin)
		h.RegisterAdmin(r)
	})
	s.router = r
}

// callerFromHeaders stands in for bearer authentication.
func callerFromHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("X-Test-Caller") {
		case "admin":
			r = r.WithContext(auth.WithCaller(r.Context(), &auth.Caller{UserID: 100, Roles: []string{identity.RoleUser, identity.RoleAdmin}}))
		case "user":
			r = r.WithContext(auth.WithCaller(r.Context(), &auth.Caller{UserID: 1, Roles: []string{identity.RoleUser}}))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *CatalogHandlerSuite) do(method, path, caller, body string) envelope {
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

func (s *CatalogHandlerSuite) ok(method, path, body string) envelope {
	env := s.do(method, path, "admin", body)
	s.Require().True(env.IsSuccess, env.Message)
	return env
}

func (s *CatalogHandlerSuite) TestUsersMutateCatalogButNotAdminTree() {
	env := s.do(http.MethodPost, "/api/artists", "user", `{"name":"Nina","popularity":80}`)
	s.Require().True(env.IsSuccess, env.Message)
	s.Equal("Artist created successfully", env.Message)

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodPut, "/api/artists/1", `{"name":"x"}`},
		{http.MethodPost, "/api/albums", `{"name":"A"}`},
		{http.MethodPost, "/api/tracks", `{"name":"T"}`},
		{http.MethodPost, "/api/artists/1/tracks", `[1]`},
		{http.MethodPost, "/api/artists/1/follow", ""},
		{http.MethodDelete, "/api/artists/1", ""},
	} {
		env = s.do(tc.method, tc.path, "user", tc.body)
		s.True(env.IsSuccess, tc.method+" "+tc.path+": "+env.Message)
	}

	env = s.do(http.MethodGet, "/api/admin/artists", "user", "")
	s.Equal(http.StatusForbidden, env.StatusCode)
	env = s.do(http.MethodGet, "/api/admin/artists", "admin", "")
	s.True(env.IsSuccess, env.Message)
}

func (s *CatalogHandlerSuite) TestArtistExpansion() {
	s.ok(http.MethodPost, "/api/artists", `{"name":"Nina"}`)
	s.ok(http.MethodPost, "/api/albums", `{"name":"Pastel Blues","artistIds":[1]}`)

	env := s.do(http.MethodGet, "/api/artists/1", "user", "")
	s.NotContains(string(env.Data), `"albums"`)
	s.NotContains(string(env.Data), `"tracks"`)

	env = s.do(http.MethodGet, "/api/artists/1?expandAlbums=true&expandTracks=true", "user", "")
	var detail models.ArtistDetailResponse
	s.Require().NoError(json.Unmarshal(env.Data, &detail))
	s.Require().NotNil(detail.Albums)
	s.Len(*detail.Albums, 1)
	s.Contains(string(env.Data), `"tracks":[]`)

	env = s.do(http.MethodGet, "/api/artists/1?expandAlbums=maybe", "user", "")
	s.Equal(http.StatusBadRequest, env.StatusCode)
}

func (s *CatalogHandlerSuite) TestValidation() {
	env := s.do(http.MethodPost, "/api/albums", "admin", `{"name":"A","releaseDate":"2024-02-30"}`)
	s.Equal(http.StatusBadRequest, env.StatusCode)
	s.Equal("release_date must be a date in YYYY-MM-DD format", env.Message)

	env = s.do(http.MethodPost, "/api/artists", "admin", `{"name":"   "}`)
	s.Equal(http.StatusBadRequest, env.StatusCode)

	env = s.do(http.MethodPost, "/api/albums", "admin", `{"name":"A","artistIds":[9]}`)
	s.Equal(http.StatusNotFound, env.StatusCode)
	s.Equal("Artist not found: [9]", env.Message)

	env = s.do(http.MethodGet, "/api/albums/new-releases?date=yesterday", "user", "")
	s.Equal(http.StatusBadRequest, env.StatusCode)

	env = s.do(http.MethodGet, "/api/tracks/popular?minPopularity=high", "user", "")
	s.Equal(http.StatusBadRequest, env.StatusCode)
}

func (s *CatalogHandlerSuite) TestAlbumTracksAreAllOrNothing() {
	s.ok(http.MethodPost, "/api/albums", `{"name":"A"}`)
	s.ok(http.MethodPost, "/api/tracks", `{"name":"one"}`)

	env := s.do(http.MethodPost, "/api/albums/1/tracks", "admin", `[1, 99]`)
	s.Equal(http.StatusNotFound, env.StatusCode)

	env = s.do(http.MethodGet, "/api/albums/1/tracks", "user", "")
	s.JSONEq(`[]`, string(env.Data))

	env = s.ok(http.MethodPost, "/api/albums/1/tracks", `[1]`)
	s.Equal("Tracks added to album successfully", env.Message)
	var tracks []models.TrackResponse
	s.Require().NoError(json.Unmarshal(env.Data, &tracks))
	s.Require().Len(tracks, 1)
	s.Equal(int64(1), *tracks[0].AlbumID)

	env = s.do(http.MethodPost, "/api/albums/1/tracks", "admin", `[]`)
	s.Equal(http.StatusBadRequest, env.StatusCode)
}

func (s *CatalogHandlerSuite) TestSavedTracksAreCallerScoped() {
	s.ok(http.MethodPost, "/api/tracks", `{"name":"one"}`)

	env := s.do(http.MethodPost, "/api/tracks/1/save", "user", "")
	s.Equal("Track saved successfully", env.Message)

	env = s.do(http.MethodGet, "/api/tracks/saved", "user", "")
	var tracks []models.TrackResponse
	s.Require().NoError(json.Unmarshal(env.Data, &tracks))
	s.Len(tracks, 1)

	env = s.do(http.MethodGet, "/api/tracks/saved", "admin", "")
	s.JSONEq(`[]`, string(env.Data))

	env = s.do(http.MethodPost, "/api/tracks/7/save", "user", "")
	s.Equal(http.StatusNotFound, env.StatusCode)
}

func (s *CatalogHandlerSuite) TestBulkCreate() {
	env := s.ok(http.MethodPost, "/api/admin/bulk/artists", `[{"name":"a"},{"name":"b"}]`)
	s.Equal("Artists created successfully", env.Message)

	env = s.do(http.MethodPost, "/api/admin/bulk/tracks", "admin", `[{"name":"ok"},{"name":""}]`)
	s.Equal(http.StatusBadRequest, env.StatusCode)
	s.Contains(env.Message, "item 1:")

	env = s.do(http.MethodPost, "/api/admin/bulk/albums", "admin", `[{"name":"ok","artistIds":[1]},{"name":"bad","artistIds":[5]}]`)
	s.Equal(http.StatusNotFound, env.StatusCode)

	env = s.do(http.MethodGet, "/api/albums", "user", "")
	s.JSONEq(`[]`, string(env.Data))
}

func (s *CatalogHandlerSuite) TestReadsByRelation() {
	s.ok(http.MethodPost, "/api/artists", `{"name":"Nina"}`)
	s.ok(http.MethodPost, "/api/albums", `{"name":"Pastel Blues","artistIds":[1],"releaseDate":"1965-01-01"}`)
	s.ok(http.MethodPost, "/api/tracks", `{"name":"Sinnerman","albumId":1,"artistIds":[1],"popularity":90}`)

	for _, path := range []string{
		"/api/albums/artist/1",
		"/api/tracks/artist/1",
		"/api/tracks/album/1",
		"/api/tracks/popular",
		"/api/albums/new-releases?date=1964-12-31",
		"/api/tracks/search?name=sinner",
	} {
		env := s.do(http.MethodGet, path, "user", "")
		var items []json.RawMessage
		s.Require().NoError(json.Unmarshal(env.Data, &items), path)
		s.Len(items, 1, path)
	}

	env := s.do(http.MethodGet, "/api/albums/1", "user", "")
	var detail models.AlbumDetailResponse
	s.Require().NoError(json.Unmarshal(env.Data, &detail))
	s.Len(detail.Artists, 1)
	s.Len(detail.Tracks, 1)

	env = s.do(http.MethodGet, "/api/tracks/album/9", "user", "")
	s.Equal(http.StatusNotFound, env.StatusCode)
}
