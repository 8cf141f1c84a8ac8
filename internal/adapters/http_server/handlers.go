package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"review_analyzer/internal/app"
	"review_analyzer/internal/domain"
)

type Handlers struct {
	Q            *app.QueryService
	C            *app.CommandService
	MaxBodyBytes int64
}

type errorBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (s *Server) MountHandlers(h *Handlers) {
	if h.MaxBodyBytes <= 0 {
		h.MaxBodyBytes = 1 << 20
	}
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(200)
		_, _ = w.Write([]byte("ok"))
	})
	s.mux.Get("/", h.listReviews)
	s.mux.Post("/", h.createReview)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// writeError is the failure boundary: client-input errors become 400 with their message,
// anything else is logged and reported as 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if domain.IsRequestError(err) {
		writeJSON(w, http.StatusBadRequest, errorBody{Status: "error", Message: err.Error()})
		return
	}
	log.Error().Err(err).Str("method", r.Method).Msg("request failed")
	writeJSON(w, http.StatusInternalServerError, errorBody{Status: "error", Message: "internal error"})
}

func indentJSON(v any) ([]byte, error) { return json.MarshalIndent(v, "", "  ") }

func etagOf(body []byte) string {
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	fp, err := parseFilterParams(r.URL.RawQuery)
	if err != nil {
		writeError(w, r, err)
		return
	}
	// location is checked before the dates are converted
	if err := h.Q.ValidateLocation(fp.Location); err != nil {
		writeError(w, r, err)
		return
	}
	fq, err := fp.query()
	if err != nil {
		writeError(w, r, err)
		return
	}

	out, err := h.Q.FilterReviews(r.Context(), fq)
	if err != nil {
		writeError(w, r, err)
		return
	}

	body, err := indentJSON(out)
	if err != nil {
		writeError(w, r, err)
		return
	}

	etag := etagOf(body)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write listReviews body")
	}
}

func (h *Handlers) createReview(w http.ResponseWriter, r *http.Request) {
	cp, err := parseCreateParams(w, r, h.MaxBodyBytes)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rv, err := h.C.CreateReview(r.Context(), domain.NewReview{ReviewBody: cp.ReviewBody, Location: cp.Location})
	if err != nil {
		if domain.IsRequestError(err) {
			log.Warn().Err(err).Str("location", cp.Location).Msg("review rejected")
		}
		writeError(w, r, err)
		return
	}

	body, err := indentJSON(rv)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write createReview body")
	}
}
