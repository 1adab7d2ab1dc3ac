package rest

import (
	"context"
	"net/http"
	"strconv"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"profileHub/domain"
)

type (
	SegmentHandler struct {
		validate       *validator.Validate
		segmentService SegmentService
	}

	SegmentService interface {
		CreateSegment(ctx context.Context, segment *domain.UserSegment) (*domain.UserSegment, error)
		GetAll(ctx context.Context) ([]domain.UserSegment, error)
		GetByID(ctx context.Context, id uint) (*domain.UserSegment, error)
		SegmentByRFM(ctx context.Context) (map[string]*domain.UserSegment, error)
		SegmentByScore(ctx context.Context) (map[string]*domain.UserSegment, error)
		SegmentByChurnRisk(ctx context.Context) (map[string]*domain.UserSegment, error)
		RefreshDynamicSegments(ctx context.Context) error
	}

	SegmentRequest struct {
		Name        string                    `json:"name" validate:"required"`
		Description string                    `json:"description"`
		Type        string                    `json:"type" validate:"required,oneof=STATIC DYNAMIC RFM BEHAVIOR CUSTOM"`
		Conditions  []domain.SegmentCondition `json:"conditions"`
		UserIDs     []uint                    `json:"user_ids"`
	}
)

func NewSegmentHandler(svc SegmentService) *SegmentHandler {
	return &SegmentHandler{
		validate:       validator.New(),
		segmentService: svc,
	}
}

func (h *SegmentHandler) Create(c echo.Context) error {
	var req SegmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	segment := &domain.UserSegment{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		Conditions:  req.Conditions,
		UserIDs:     req.UserIDs,
		UserCount:   len(req.UserIDs),
	}

	created, err := h.segmentService.CreateSegment(c.Request().Context(), segment)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(created))
}

func (h *SegmentHandler) GetAll(c echo.Context) error {
	segments, err := h.segmentService.GetAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(segments))
}

func (h *SegmentHandler) GetByID(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	segment, err := h.segmentService.GetByID(c.Request().Context(), uint(id))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(segment))
}

// AutoSegment runs one of the built-in segmenters picked by the :strategy
// path param (rfm, score, churn).
func (h *SegmentHandler) AutoSegment(c echo.Context) error {
	ctx := c.Request().Context()

	var (
		segments map[string]*domain.UserSegment
		err      error
	)

	switch c.Param("strategy") {
	case "rfm":
		segments, err = h.segmentService.SegmentByRFM(ctx)
	case "score":
		segments, err = h.segmentService.SegmentByScore(ctx)
	case "churn":
		segments, err = h.segmentService.SegmentByChurnRisk(ctx)
	default:
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "unknown strategy, want rfm, score or churn"})
	}

	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(segments))
}

func (h *SegmentHandler) Refresh(c echo.Context) error {
	if err := h.segmentService.RefreshDynamicSegments(c.Request().Context()); err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("dynamic segments refreshed"))
}
