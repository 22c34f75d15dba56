package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/loan-guidance/loan-guidance-backend/internal/guidance/scorer"
)

const pingTimeout = time.Second

// Pinger is anything whose reachability /health reports.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// ModelStatusFunc reports the model behind the active scorer.
type ModelStatusFunc func(ctx context.Context) scorer.Status

type StatusResponse struct {
	Status      string `json:"status"`
	Service     string `json:"service"`
	Message     string `json:"message"`
	Version     string `json:"version"`
	ModelStatus string `json:"model_status"`
}

type HealthResponse struct {
	Status       string    `json:"status"`
	Timestamp    time.Time `json:"timestamp"`
	Service      string    `json:"service"`
	Version      string    `json:"version"`
	ModelLoaded  bool      `json:"model_loaded"`
	ModelVersion string    `json:"model_version,omitempty"`
	ModelSource  string    `json:"model_source,omitempty"`
	Cache        string    `json:"cache"`
	DB           string    `json:"db"`
}

type HealthHandler struct {
	serviceName string
	version     string
	model       ModelStatusFunc
	cache       Pinger
	db          Pinger
	now         func() time.Time
}

// NewHealthHandler builds the status endpoints. cache and db may be nil
// when those components are disabled.
func NewHealthHandler(serviceName, version string, model ModelStatusFunc, cache, db Pinger) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		model:       model,
		cache:       cache,
		db:          db,
		now:         time.Now,
	}
}

func (h *HealthHandler) Root(c *gin.Context) {
	modelStatus := "not loaded"
	if h.model(c.Request.Context()).Loaded {
		modelStatus = "loaded"
	}

	c.JSON(http.StatusOK, StatusResponse{
		Status:      "online",
		Service:     h.serviceName,
		Message:     "Loan Guidance System API",
		Version:     h.version,
		ModelStatus: modelStatus,
	})
}

// HealthCheck always answers 200 while the process runs; component states
// are informational.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx := c.Request.Context()
	model := h.model(ctx)

	c.JSON(http.StatusOK, HealthResponse{
		Status:       "healthy",
		Timestamp:    h.now().UTC(),
		Service:      h.serviceName,
		Version:      h.version,
		ModelLoaded:  model.Loaded,
		ModelVersion: model.Version,
		ModelSource:  model.Source,
		Cache:        pingStatus(ctx, h.cache),
		DB:           pingStatus(ctx, h.db),
	})
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}

func pingStatus(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disabled"
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := p.Ping(pingCtx); err != nil {
		return "down"
	}
	return "up"
}
