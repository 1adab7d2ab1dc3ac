package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"profileHub/domain"
	"profileHub/pkg/metrics"
)

type (
	RecommendationHandler struct {
		validate              *validator.Validate
		recommendationService RecommendationService
	}

	RecommendationService interface {
		CollaborativeFiltering(ctx context.Context, userID uint, limit int) ([]domain.RecommendationResult, error)
		ContentBased(ctx context.Context, userID uint, limit int) ([]domain.RecommendationResult, error)
		Trending(ctx context.Context, limit int) ([]domain.RecommendationResult, error)
		Hybrid(ctx context.Context, userID uint, limit int) ([]domain.RecommendationResult, error)
	}

	RecommendationQuery struct {
		Strategy string `query:"strategy" validate:"omitempty,oneof=collaborative content trending hybrid"`
		Limit    int    `query:"limit"`
	}
)

func NewRecommendationHandler(svc RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{
		validate:              validator.New(),
		recommendationService: svc,
	}
}

// GET /api/v1/recommendations/:userId?strategy=hybrid&limit=10
func (h *RecommendationHandler) Recommend(c echo.Context) error {
	start := time.Now()
	metrics.RecommendRequests.Inc()
	defer func() {
		metrics.RecommendLatency.Observe(time.Since(start).Seconds())
	}()

	userID, err := parseUserID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	var q RecommendationQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}

	ctx := c.Request().Context()

	var results []domain.RecommendationResult
	switch q.Strategy {
	case "collaborative":
		results, err = h.recommendationService.CollaborativeFiltering(ctx, userID, q.Limit)
	case "content":
		results, err = h.recommendationService.ContentBased(ctx, userID, q.Limit)
	case "trending":
		results, err = h.recommendationService.Trending(ctx, q.Limit)
	default:
		results, err = h.recommendationService.Hybrid(ctx, userID, q.Limit)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(results))
}
