package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/streamrail/ua-classifier/internal/cache"
	"github.com/streamrail/ua-classifier/internal/metrics"
	"github.com/streamrail/ua-classifier/uaparser"
)

const maxBodyBytes = 1 << 20

type parseRequest struct {
	UA  string   `json:"ua"`
	UAs []string `json:"uas"`
}

type batchResponse struct {
	Results []*uaparser.Result `json:"results"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Error   string `json:"error,omitempty"`
}

// handleParseQuery classifies ?ua=, or the caller's own User-Agent header
// when the parameter is absent.
func (s *Server) handleParseQuery(w http.ResponseWriter, r *http.Request) {
	ua := r.URL.Query().Get("ua")
	if ua == "" {
		ua = r.UserAgent()
	}
	s.writeJSON(w, http.StatusOK, s.classify(r.Context(), ua))
}

func (s *Server) handleParseBody(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	switch {
	case req.UAs != nil && req.UA != "":
		s.writeError(w, r, http.StatusBadRequest, errors.New("set either ua or uas, not both"))
	case req.UAs != nil:
		if len(req.UAs) > s.maxBatch {
			s.writeError(w, r, http.StatusRequestEntityTooLarge,
				fmt.Errorf("batch of %d exceeds the limit of %d", len(req.UAs), s.maxBatch))
			return
		}
		out := batchResponse{Results: make([]*uaparser.Result, len(req.UAs))}
		for i, ua := range req.UAs {
			out.Results[i] = s.classify(r.Context(), ua)
		}
		s.writeJSON(w, http.StatusOK, out)
	default:
		ua := req.UA
		if ua == "" {
			ua = r.UserAgent()
		}
		s.writeJSON(w, http.StatusOK, s.classify(r.Context(), ua))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.cache.Ping(r.Context()); err != nil {
		s.writeJSON(w, http.StatusServiceUnavailable, healthResponse{
			Status:  "unavailable",
			Version: uaparser.Version,
			Error:   err.Error(),
		})
		return
	}
	s.writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: uaparser.Version})
}

// classify serves ua from the cache when possible. Cache failures are
// logged and never fail the request.
func (s *Server) classify(ctx context.Context, ua string) *uaparser.Result {
	if ua == "" {
		return s.parser.Parse(ua)
	}

	res, err := s.cache.Get(ctx, ua)
	switch {
	case err == nil:
		metrics.CacheHit()
		return res
	case errors.Is(err, cache.ErrMiss):
		metrics.CacheMiss()
	default:
		metrics.CacheError()
		s.logger.Warn("cache lookup failed", zap.Error(err))
	}

	res = s.parser.Parse(ua)
	if err := s.cache.Set(ctx, ua, res); err != nil {
		metrics.CacheError()
		s.logger.Warn("cache store failed", zap.Error(err))
	}
	return res
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.writeJSON(w, status, errorResponse{
		Error:     err.Error(),
		RequestID: RequestIDFromContext(r.Context()),
	})
}
