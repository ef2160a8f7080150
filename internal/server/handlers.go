package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spigell/assessment-recommender/internal/recommend"
	"go.uber.org/zap"
)

// RecommendRequest is the body of POST /recommend.
type RecommendRequest struct {
	Query              string   `json:"query" validate:"required,min=1,max=5000"`
	TopK               int      `json:"top_k,omitempty" validate:"omitempty,gte=1,lte=50"`
	MaxDurationMinutes *int     `json:"max_duration_minutes,omitempty" validate:"omitempty,gte=0"`
	CategoryRatio      *float64 `json:"category_ratio,omitempty" validate:"omitempty,gte=0,lte=1"`
}

func (r *RecommendRequest) constraints() recommend.Constraints {
	return recommend.Constraints{
		TopK:               r.TopK,
		MaxDurationMinutes: r.MaxDurationMinutes,
		CategoryRatio:      r.CategoryRatio,
	}
}

// RecommendedItem is one entry of a recommendation response.
type RecommendedItem struct {
	Name  string  `json:"name"`
	URL   string  `json:"url"`
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}

// RecommendResponse is the body of a successful recommendation.
type RecommendResponse struct {
	Items            []RecommendedItem `json:"recommended_assessments"`
	Count            int               `json:"count"`
	Degraded         bool              `json:"degraded"`
	LowConfidence    bool              `json:"low_confidence"`
	ProcessingTimeMS int64             `json:"processing_time_ms"`
}

// BatchRecommendRequest is the body of POST /recommend/batch.
type BatchRecommendRequest struct {
	Queries []RecommendRequest `json:"queries" validate:"required,min=1,max=20,dive"`
}

// BatchRecommendResponse carries one entry per input query, in order.
// A failed query gets an error string instead of failing the whole batch.
type BatchRecommendResponse struct {
	Results []BatchEntry `json:"results"`
}

// BatchEntry is the outcome of one query of a batch.
type BatchEntry struct {
	Query    string             `json:"query"`
	Response *RecommendResponse `json:"response,omitempty"`
	Error    string             `json:"error,omitempty"`
}

type healthResponse struct {
	Status         string `json:"status"`
	CatalogVersion string `json:"catalog_version,omitempty"`
	CatalogItems   int    `json:"catalog_items"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}

	if data := s.data.Get(); data != nil {
		resp.CatalogVersion = data.Snapshot.Version()
		resp.CatalogItems = data.Snapshot.Len()
	}

	code := http.StatusOK
	if !s.engine.Ready() {
		resp.Status = "not_ready"
		code = http.StatusServiceUnavailable
	}

	s.writeJSON(w, code, resp)
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if !s.decodeAndValidate(w, r, &req) {
		s.metrics.Requests.WithLabelValues("invalid").Inc()
		return
	}

	resp, err := s.recommendOne(r, &req)
	if err != nil {
		s.writeRecommendError(w, r, err)
		return
	}

	s.metrics.Requests.WithLabelValues("ok").Inc()
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRecommendBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRecommendRequest
	if !s.decodeAndValidate(w, r, &req) {
		s.metrics.Requests.WithLabelValues("invalid").Inc()
		return
	}

	resp := BatchRecommendResponse{Results: make([]BatchEntry, len(req.Queries))}

	for i := range req.Queries {
		entry := BatchEntry{Query: req.Queries[i].Query}

		one, err := s.recommendOne(r, &req.Queries[i])
		if err != nil {
			entry.Error = err.Error()
			s.metrics.Requests.WithLabelValues("error").Inc()
			s.logger.Warn("batch query failed",
				zap.String("query", entry.Query), zap.Error(err))
		} else {
			entry.Response = one
			s.metrics.Requests.WithLabelValues("ok").Inc()
		}

		resp.Results[i] = entry
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) recommendOne(r *http.Request, req *RecommendRequest) (*RecommendResponse, error) {
	started := time.Now()

	outcome, err := s.engine.Recommend(r.Context(), req.Query, req.constraints())
	if err != nil {
		return nil, err
	}

	s.metrics.Duration.Observe(time.Since(started).Seconds())
	if outcome.Degraded {
		s.metrics.Degraded.Inc()
	}
	if outcome.LowConfidence {
		s.metrics.LowConfidence.Inc()
	}

	items := make([]RecommendedItem, len(outcome.Results))
	for i, result := range outcome.Results {
		items[i] = RecommendedItem{
			Name:  result.Name,
			URL:   result.URL,
			Score: result.Score,
			Rank:  result.Rank,
		}
	}

	return &RecommendResponse{
		Items:            items,
		Count:            len(items),
		Degraded:         outcome.Degraded,
		LowConfidence:    outcome.LowConfidence,
		ProcessingTimeMS: time.Since(started).Milliseconds(),
	}, nil
}

// SearchItem is one catalog entry of a search response. Adaptive and
// remote support keep their catalog representation of Yes/No.
type SearchItem struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	URL             string `json:"url"`
	Category        string `json:"category"`
	DurationMinutes int    `json:"duration_minutes"`
	AdaptiveSupport string `json:"adaptive_support"`
	RemoteSupport   string `json:"remote_support"`
}

// handleSearch is a plain substring lookup over the loaded catalog,
// independent of the recommendation pipeline.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	data := s.data.Get()
	if data == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "no catalog loaded"})
		return
	}

	keyword := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("keyword")))
	category := strings.TrimSpace(r.URL.Query().Get("category"))

	var maxDuration int
	if raw := r.URL.Query().Get("max_duration_minutes"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "max_duration_minutes must be a non-negative integer"})
			return
		}
		maxDuration = parsed
	}

	items := []SearchItem{}
	for _, item := range data.Snapshot.Items() {
		if keyword != "" && !strings.Contains(strings.ToLower(item.IndexText()), keyword) {
			continue
		}
		if category != "" && string(item.Category) != category {
			continue
		}
		if maxDuration > 0 && item.HasKnownDuration() && item.DurationMinutes > maxDuration {
			continue
		}

		items = append(items, SearchItem{
			ID:              item.ID,
			Name:            item.Name,
			URL:             item.URL,
			Category:        string(item.Category),
			DurationMinutes: item.DurationMinutes,
			AdaptiveSupport: yesNo(item.AdaptiveSupport),
			RemoteSupport:   yesNo(item.RemoteSupport),
		})
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"count": len(items),
	})
}

func (s *Server) writeRecommendError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, recommend.ErrInvalidConstraints):
		code = http.StatusBadRequest
	case errors.Is(err, recommend.ErrIndexUnavailable),
		errors.Is(err, recommend.ErrRerankerUnavailable):
		code = http.StatusServiceUnavailable
	case errors.Is(err, r.Context().Err()):
		code = http.StatusGatewayTimeout
	}

	s.metrics.Requests.WithLabelValues("error").Inc()
	s.logger.Error("recommendation failed", zap.Int("code", code), zap.Error(err))
	s.writeJSON(w, code, errorResponse{Error: err.Error()})
}

func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json body: " + err.Error()})
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("write response", zap.Error(err))
	}
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
