// internal/adapters/http_server/handlers.go
package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"truview/internal/domain"
)

const maxBodyBytes = 64 << 10

type ReviewCreator interface {
	CreateReview(ctx context.Context, in domain.NewReview) (domain.Review, error)
}

type ReviewReader interface {
	GetReview(ctx context.Context, id string) (domain.ReviewView, error)
}

type ReviewTranslator interface {
	Translate(ctx context.Context, id, lang string) *domain.TranslationResult
}

type Handlers struct {
	Reviews   ReviewCreator
	Q         ReviewReader
	T         ReviewTranslator
	Languages []string
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Post("/v1/reviews", h.createReview)
	s.mux.Get("/v1/reviews/{id}", h.getReview)
	s.mux.Get("/v1/reviews/{id}/translation", h.getTranslation)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeJSON answers 304 when the client already holds this exact body.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "could not encode response")
		return
	}
	if inm := r.Header.Get("If-None-Match"); etag != "" && inm == etag && status == http.StatusOK {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	if etag != "" {
		w.Header().Set("ETag", etag)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func (h *Handlers) createReview(w http.ResponseWriter, r *http.Request) {
	var in domain.NewReview
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "body must be a JSON object with title and description")
		return
	}
	rv, err := h.Reviews.CreateReview(r.Context(), in)
	if errors.Is(err, domain.ErrInvalid) {
		writeProblem(w, http.StatusBadRequest, "Invalid review", err.Error())
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("create review failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "could not create review")
		return
	}
	w.Header().Set("Location", "/v1/reviews/"+rv.ID)
	writeJSON(w, r, http.StatusCreated, domain.ReviewView{
		ID:          rv.ID,
		Title:       rv.Title,
		Description: rv.Description,
		Languages:   []string{},
		CreatedAt:   rv.CreatedAt,
	})
}

func (h *Handlers) getReview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rv, err := h.Q.GetReview(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Not Found", "review not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("review_id", id).Msg("get review failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "could not load review")
		return
	}
	if rv.OriginalLanguage != "" {
		w.Header().Set("Content-Language", rv.OriginalLanguage)
	}
	writeJSON(w, r, http.StatusOK, rv)
}

func (h *Handlers) getTranslation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	lang := domain.MatchLanguage(r.Header.Get("Accept-Language"), h.Languages)
	if q := r.URL.Query().Get("lang"); q != "" {
		lang = domain.NormalizeLang(q)
		if !domain.IsSupported(lang, h.Languages) {
			writeProblem(w, http.StatusBadRequest, "Unsupported language", "lang must be one of the supported app languages")
			return
		}
	}

	res := h.T.Translate(r.Context(), id, lang)
	if res == nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "review not found")
		return
	}
	if res.Unavailable {
		// original text is served; do not let clients keep it as the translation
		w.Header().Set("Cache-Control", "no-store")
		if res.OriginalLanguage != "" {
			w.Header().Set("Content-Language", res.OriginalLanguage)
		}
	} else {
		w.Header().Set("Content-Language", lang)
	}
	writeJSON(w, r, http.StatusOK, res)
}
