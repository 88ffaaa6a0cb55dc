package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/justestif/moodmatch/internal/batch"
	"github.com/justestif/moodmatch/internal/catalog"
	"github.com/justestif/moodmatch/internal/content"
	"github.com/justestif/moodmatch/internal/matching"
	"github.com/justestif/moodmatch/internal/profile"
)

const (
	maxBodyBytes = 1 << 20
	maxBatchSize = 1000
)

// CatalogStore is the catalog source the API reads and reloads.
// *catalog.Repository implements it.
type CatalogStore interface {
	Current() *catalog.Catalog
	Reload(ctx context.Context) (*catalog.Catalog, error)
}

// Handlers contains HTTP handlers for the matching API.
type Handlers struct {
	engine   *matching.Engine
	batch    *batch.Matcher
	catalogs CatalogStore
	selector content.Selector
	logger   *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(engine *matching.Engine, b *batch.Matcher, catalogs CatalogStore, selector content.Selector, logger *slog.Logger) *Handlers {
	return &Handlers{
		engine:   engine,
		batch:    b,
		catalogs: catalogs,
		selector: selector,
		logger:   logger,
	}
}

type matchRequest struct {
	Emotions map[string]float64 `json:"emotions"`
	Explain  bool               `json:"explain"`
}

type candidateResponse struct {
	Label    string  `json:"label"`
	Score    float64 `json:"score"`
	Position int     `json:"position"`
}

type matchResponse struct {
	Profile        profile.Profile     `json:"profile"`
	Quote          string              `json:"quote"`
	Fallback       bool                `json:"fallback"`
	CatalogVersion uuid.UUID           `json:"catalogVersion"`
	Candidates     []candidateResponse `json:"candidates,omitempty"`
}

type batchRequest struct {
	Vectors []map[string]float64 `json:"vectors"`
}

type batchResponse struct {
	Results []matchResponse `json:"results"`
}

type catalogResponse struct {
	Version  uuid.UUID         `json:"version"`
	LoadedAt time.Time         `json:"loadedAt"`
	Fallback profile.Profile   `json:"fallback"`
	Profiles []profile.Profile `json:"profiles"`
}

type reloadResponse struct {
	Version  uuid.UUID `json:"version"`
	Profiles int       `json:"profiles"`
}

type healthResponse struct {
	Status         string    `json:"status"`
	CatalogVersion uuid.UUID `json:"catalogVersion"`
	Profiles       int       `json:"profiles"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Match handles a single vector (POST /v1/match).
func (h *Handlers) Match(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res := h.engine.Explain(req.Emotions)
	resp := matchResponse{
		Profile:        res.Profile,
		Quote:          h.selector.Select(res.Profile, req.Emotions),
		Fallback:       res.Fallback,
		CatalogVersion: res.CatalogVersion,
	}
	if req.Explain {
		resp.Candidates = make([]candidateResponse, len(res.Candidates))
		for i, c := range res.Candidates {
			resp.Candidates[i] = candidateResponse{
				Label:    c.Profile.Label,
				Score:    c.Score,
				Position: c.Position,
			}
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// MatchBatch handles many vectors at once (POST /v1/match/batch).
func (h *Handlers) MatchBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Vectors) > maxBatchSize {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("batch holds %d vectors, limit is %d", len(req.Vectors), maxBatchSize))
		return
	}

	outcomes, err := h.batch.MatchAll(r.Context(), req.Vectors)
	if err != nil {
		h.logger.Warn("batch match aborted", slog.String("error", err.Error()))
		writeError(w, http.StatusServiceUnavailable, "batch match aborted")
		return
	}

	resp := batchResponse{Results: make([]matchResponse, len(outcomes))}
	for i, o := range outcomes {
		resp.Results[i] = matchResponse{
			Profile:        o.Profile,
			Quote:          o.Quote,
			Fallback:       o.Fallback,
			CatalogVersion: o.CatalogVersion,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListProfiles returns the current catalog (GET /v1/profiles).
func (h *Handlers) ListProfiles(w http.ResponseWriter, r *http.Request) {
	c := h.catalogs.Current()
	writeJSON(w, http.StatusOK, catalogResponse{
		Version:  c.Version(),
		LoadedAt: c.LoadedAt(),
		Fallback: c.Fallback(),
		Profiles: c.Profiles(),
	})
}

// GetProfile returns one profile by label (GET /v1/profiles/{label}).
func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	label := chi.URLParam(r, "label")
	p, ok := h.catalogs.Current().Lookup(label)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("profile %q not found", label))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Reload re-reads the catalog source (POST /v1/catalog/reload).
// On failure the previous catalog keeps serving.
func (h *Handlers) Reload(w http.ResponseWriter, r *http.Request) {
	c, err := h.catalogs.Reload(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("reloading catalog: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, reloadResponse{
		Version:  c.Version(),
		Profiles: c.Len(),
	})
}

// Health reports liveness and the catalog in use (GET /healthz).
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	c := h.catalogs.Current()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:         "ok",
		CatalogVersion: c.Version(),
		Profiles:       c.Len(),
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("request body exceeds %d bytes", maxBodyBytes)
		}
		return fmt.Errorf("decoding request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Warn("writing response", slog.String("error", err.Error()))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
