// Package guidance serves the loan assessment endpoints.
package guidance

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/loan-guidance/loan-guidance-backend/internal/api/http/middleware"
	"github.com/loan-guidance/loan-guidance-backend/internal/guidance/domain"
	"github.com/loan-guidance/loan-guidance-backend/internal/guidance/service"
)

// Assessor is implemented by service.GuidanceService.
type Assessor interface {
	Assess(ctx context.Context, req *domain.LoanApplicationRequest) (*service.Result, error)
}

type PredictResponse struct {
	Status         string          `json:"status"`
	ModelVersion   string          `json:"model_version"`
	RequestSummary domain.Summary  `json:"request_summary"`
	Guidance       domain.Guidance `json:"guidance"`
}

type ErrorResponse struct {
	Error   string              `json:"error"`
	Type    string              `json:"type"`
	Details []domain.FieldError `json:"details,omitempty"`
}

type Handler struct {
	svc    Assessor
	logger *slog.Logger
}

func NewHandler(svc Assessor, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// Predict assesses a loan application.
func (h *Handler) Predict(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		h.respondError(c, domain.FromDecodeError(err))
		return
	}
	req, err := domain.DecodeRequest(body)
	if err != nil {
		h.respondError(c, err)
		return
	}

	res, err := h.svc.Assess(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, PredictResponse{
		Status:         "success",
		ModelVersion:   res.Assessment.ModelVersion,
		RequestSummary: res.Application.Summary(),
		Guidance:       res.Assessment.Guidance,
	})
}

func (h *Handler) respondError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	var depErr *domain.DependencyError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "request validation failed",
			Type:    "ValidationError",
			Details: verr.Fields,
		})
	case errors.As(err, &depErr):
		status, msg := http.StatusBadGateway, "risk scoring service returned an invalid response"
		if depErr.Unavailable() {
			status, msg = http.StatusServiceUnavailable, "risk scoring service unavailable"
		}
		c.JSON(status, ErrorResponse{Error: msg, Type: "DependencyError"})
	default:
		h.logger.Error("unexpected assessment error",
			"request_id", middleware.GetRequestID(c.Request.Context()),
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error", Type: "InternalError"})
	}
}
