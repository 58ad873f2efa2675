package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/bastiangx/wordchain/pkg/engine"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

// Limits bounds request sizes. Zero values fall back to the defaults in
// DefaultLimits.
type Limits struct {
	DefaultSuggestions int
	MaxSuggestions     int
	MaxTextLength      int
}

// DefaultLimits mirrors the [server] defaults of the config file.
func DefaultLimits() Limits {
	return Limits{DefaultSuggestions: 3, MaxSuggestions: 20, MaxTextLength: 4096}
}

// Handlers serves the engine over JSON.
type Handlers struct {
	predictor engine.IPredictor
	limits    Limits
	logger    *log.Logger
}

// NewHandlers wires the engine into gin handlers.
func NewHandlers(predictor engine.IPredictor, limits Limits, logger *log.Logger) *Handlers {
	def := DefaultLimits()
	if limits.MaxSuggestions < 1 {
		limits.MaxSuggestions = def.MaxSuggestions
	}
	if limits.DefaultSuggestions < 1 {
		limits.DefaultSuggestions = min(def.DefaultSuggestions, limits.MaxSuggestions)
	}
	if limits.MaxTextLength < 1 {
		limits.MaxTextLength = def.MaxTextLength
	}
	return &Handlers{predictor: predictor, limits: limits, logger: logger}
}

func (h *Handlers) fail(c *gin.Context, status int, msg string) {
	c.JSON(status, ErrorResponse{Error: msg, RequestID: c.GetString(requestIDKey)})
}

// Predict handles POST /predict.
func (h *Handlers) Predict(c *gin.Context) {
	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Text) > h.limits.MaxTextLength {
		h.fail(c, http.StatusRequestEntityTooLarge, "text too long")
		return
	}

	k := h.limits.DefaultSuggestions
	if req.K != nil {
		if *req.K < 1 {
			h.fail(c, http.StatusBadRequest, "k must be positive")
			return
		}
		k = min(*req.K, h.limits.MaxSuggestions)
	}

	start := time.Now()
	suggestions, order := h.predictor.PredictNextWords(req.Text, k)
	h.logger.Debug("Prediction", "took", time.Since(start), "order", order, "count", len(suggestions))

	c.JSON(http.StatusOK, PredictResponse{Suggestions: suggestions, Order: order})
}

// Sources handles GET /sources.
func (h *Handlers) Sources(c *gin.Context) {
	c.JSON(http.StatusOK, SourcesResponse{Sources: h.predictor.ListSources()})
}

// ToggleSource handles POST /toggle_source.
func (h *Handlers) ToggleSource(c *gin.Context) {
	var req ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	resp := ToggleResponse{Success: h.predictor.ToggleSource(req.Source, active)}
	if !resp.Success {
		resp.Closest, _ = h.predictor.ClosestSource(req.Source)
	}
	c.JSON(http.StatusOK, resp)
}

// Complete handles POST /complete.
func (h *Handlers) Complete(c *gin.Context) {
	var req CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	prefix := strings.TrimSpace(req.Prefix)
	if prefix == "" {
		h.fail(c, http.StatusBadRequest, "prefix is required")
		return
	}

	limit := req.Limit
	if limit < 1 || limit > h.limits.MaxSuggestions {
		limit = h.limits.MaxSuggestions
	}
	c.JSON(http.StatusOK, CompleteResponse{Completions: h.predictor.Complete(prefix, limit)})
}

// Stats handles GET /stats.
func (h *Handlers) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.predictor.Stats())
}

// Health handles GET /health.
func (h *Handlers) Health(c *gin.Context) {
	s := h.predictor.Stats()
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"trained": s.Trained,
		"sources": s.Sources,
	})
}
