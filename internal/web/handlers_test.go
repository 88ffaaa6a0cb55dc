package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/justestif/moodmatch/internal/catalog"
	"github.com/justestif/moodmatch/internal/content"
	"github.com/justestif/moodmatch/internal/logging"
)

// newTestServer builds a server over the embedded catalog. When failReload is
// set, every reload after the first fails.
func newTestServer(t *testing.T, failReload *atomic.Bool) (*Server, *catalog.Repository) {
	t.Helper()

	opts := []catalog.Option{catalog.WithLogger(logging.Discard())}
	load := catalog.DefaultLoader(opts...)
	repo := catalog.NewRepository(func(ctx context.Context) (*catalog.Catalog, error) {
		if failReload != nil && failReload.Load() {
			return nil, errors.New("source unavailable")
		}
		return load(ctx)
	}, opts...)
	_, err := repo.Reload(context.Background())
	require.NoError(t, err)

	srv, err := NewServer(ServerConfig{
		Catalogs: repo,
		Selector: content.FixedSelector(0),
		Logger:   logging.Discard(),
	})
	require.NoError(t, err)
	return srv, repo
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestNewServer_RequiresCatalogs(t *testing.T) {
	_, err := NewServer(ServerConfig{})
	require.Error(t, err)
}

func TestMatch(t *testing.T) {
	srv, repo := newTestServer(t, nil)

	tests := []struct {
		name         string
		body         string
		wantLabel    string
		wantFallback bool
	}{
		{
			name:      "strong happiness",
			body:      `{"emotions": {"happy": 90}}`,
			wantLabel: "Radiant Joy",
		},
		{
			name:      "keys are normalized",
			body:      `{"emotions": {" SAD ": 80}}`,
			wantLabel: "Deep Melancholy",
		},
		{
			name:         "empty vector falls back",
			body:         `{"emotions": {}}`,
			wantLabel:    "Neutral Balance",
			wantFallback: true,
		},
		{
			name:         "missing emotions falls back",
			body:         `{}`,
			wantLabel:    "Neutral Balance",
			wantFallback: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, "/v1/match", tt.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			resp := decode[matchResponse](t, rec)
			require.Equal(t, tt.wantLabel, resp.Profile.Label)
			require.Equal(t, tt.wantFallback, resp.Fallback)
			require.Equal(t, resp.Profile.Quotes[0], resp.Quote)
			require.Equal(t, repo.Current().Version(), resp.CatalogVersion)
			require.Empty(t, resp.Candidates)
		})
	}
}

func TestMatch_Explain(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodPost, "/v1/match", `{"emotions": {"happy": 80, "surprise": 50}, "explain": true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[matchResponse](t, rec)
	require.Equal(t, "Euphoric Surprise", resp.Profile.Label)
	require.NotEmpty(t, resp.Candidates)
	require.Equal(t, resp.Profile.Label, resp.Candidates[0].Label)
	for i := 1; i < len(resp.Candidates); i++ {
		require.GreaterOrEqual(t, resp.Candidates[i-1].Score, resp.Candidates[i].Score)
	}
}

func TestMatch_BadRequest(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `happy=90`},
		{name: "wrong type", body: `{"emotions": {"happy": "lots"}}`},
		{name: "unknown field", body: `{"feelings": {}}`},
		{name: "empty body", body: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, "/v1/match", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			resp := decode[errorResponse](t, rec)
			require.NotEmpty(t, resp.Error)
		})
	}
}

func TestMatchBatch(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodPost, "/v1/match/batch",
		`{"vectors": [{"happy": 90}, {}, {"angry": 85}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[batchResponse](t, rec)
	require.Len(t, resp.Results, 3)
	require.Equal(t, "Radiant Joy", resp.Results[0].Profile.Label)
	require.Equal(t, "Neutral Balance", resp.Results[1].Profile.Label)
	require.True(t, resp.Results[1].Fallback)
	require.Equal(t, "Burning Anger", resp.Results[2].Profile.Label)
}

func TestMatchBatch_TooLarge(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	body := `{"vectors": [` + strings.TrimSuffix(strings.Repeat(`{},`, maxBatchSize+1), ",") + `]}`
	rec := do(t, srv, http.MethodPost, "/v1/match/batch", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListProfiles(t *testing.T) {
	srv, repo := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/v1/profiles", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[catalogResponse](t, rec)
	require.Equal(t, repo.Current().Version(), resp.Version)
	require.Len(t, resp.Profiles, repo.Current().Len())
	require.Equal(t, "Neutral Balance", resp.Fallback.Label)
}

func TestGetProfile(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantLabel  string
	}{
		{name: "exact label", path: "/v1/profiles/Radiant%20Joy", wantStatus: http.StatusOK, wantLabel: "Radiant Joy"},
		{name: "case insensitive", path: "/v1/profiles/calm%20focus", wantStatus: http.StatusOK, wantLabel: "Calm Focus"},
		{name: "unknown", path: "/v1/profiles/Nope", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodGet, tt.path, "")
			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantLabel != "" {
				p := decode[struct {
					Label string `json:"label"`
				}](t, rec)
				require.Equal(t, tt.wantLabel, p.Label)
			}
		})
	}
}

func TestReload(t *testing.T) {
	var fail atomic.Bool
	srv, repo := newTestServer(t, &fail)
	before := repo.Current().Version()

	rec := do(t, srv, http.MethodPost, "/v1/catalog/reload", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[reloadResponse](t, rec)
	require.NotEqual(t, before, resp.Version)
	require.Equal(t, repo.Current().Version(), resp.Version)
	require.Equal(t, repo.Current().Len(), resp.Profiles)
}

func TestReload_FailureKeepsCatalog(t *testing.T) {
	var fail atomic.Bool
	srv, repo := newTestServer(t, &fail)
	before := repo.Current().Version()

	fail.Store(true)
	rec := do(t, srv, http.MethodPost, "/v1/catalog/reload", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	resp := decode[errorResponse](t, rec)
	require.Contains(t, resp.Error, "source unavailable")
	require.Equal(t, before, repo.Current().Version())

	// Matching keeps working against the previous catalog
	rec = do(t, srv, http.MethodPost, "/v1/match", `{"emotions": {"happy": 90}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, before, decode[matchResponse](t, rec).CatalogVersion)
}

func TestMatch_BeforeFirstSuccessfulLoad(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)

	opts := []catalog.Option{catalog.WithLogger(logging.Discard())}
	load := catalog.DefaultLoader(opts...)
	repo := catalog.NewRepository(func(ctx context.Context) (*catalog.Catalog, error) {
		if fail.Load() {
			return nil, errors.New("source unavailable")
		}
		return load(ctx)
	}, opts...)
	_, err := repo.Reload(context.Background())
	require.Error(t, err)

	srv, err := NewServer(ServerConfig{
		Catalogs: repo,
		Selector: content.FixedSelector(0),
		Logger:   logging.Discard(),
	})
	require.NoError(t, err)

	rec := do(t, srv, http.MethodPost, "/v1/match", `{"emotions": {"happy": 90}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[matchResponse](t, rec)
	require.Equal(t, "Neutral Balance", resp.Profile.Label)
	require.True(t, resp.Fallback)

	// A reload once the source recovers replaces the fallback-only catalog
	fail.Store(false)
	rec = do(t, srv, http.MethodPost, "/v1/catalog/reload", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, srv, http.MethodPost, "/v1/match", `{"emotions": {"happy": 90}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[matchResponse](t, rec)
	require.Equal(t, "Radiant Joy", resp.Profile.Label)
	require.False(t, resp.Fallback)
	require.Equal(t, repo.Current().Version(), resp.CatalogVersion)
}

func TestHealth(t *testing.T) {
	srv, repo := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	resp := decode[healthResponse](t, rec)
	require.Equal(t, "ok", resp.Status)
	require.Equal(t, repo.Current().Len(), resp.Profiles)
}
