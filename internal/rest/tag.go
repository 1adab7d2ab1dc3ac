package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"profileHub/domain"
)

type (
	TagHandler struct {
		validate   *validator.Validate
		tagService TagService
	}

	TagService interface {
		Upsert(ctx context.Context, tag *domain.UserTag) (*domain.UserTag, error)
		UpsertBatch(ctx context.Context, tags []domain.UserTag) ([]domain.UserTag, error)
		UserTags(ctx context.Context, userID uint) ([]domain.UserTag, error)
		TagsByCategory(ctx context.Context, userID uint, category string) ([]domain.UserTag, error)
		AdjustWeight(ctx context.Context, userID uint, tagName string, delta float64) error
		Deduplicate(ctx context.Context, userID uint) (int, error)
	}

	TagRequest struct {
		UserID   uint       `json:"user_id" validate:"required"`
		TagName  string     `json:"tag_name" validate:"required"`
		Category string     `json:"category"`
		Source   string     `json:"source"`
		Weight   float64    `json:"weight" validate:"omitempty,gte=0,lte=1"`
		ExpireAt *time.Time `json:"expire_at"`
	}

	TagBatchRequest struct {
		Tags []TagRequest `json:"tags" validate:"required,min=1,dive"`
	}

	AdjustWeightRequest struct {
		TagName string  `json:"tag_name" validate:"required"`
		Delta   float64 `json:"delta" validate:"required"`
	}
)

func NewTagHandler(svc TagService) *TagHandler {
	return &TagHandler{
		validate:   validator.New(),
		tagService: svc,
	}
}

func (h *TagHandler) Upsert(c echo.Context) error {
	var req TagRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	tag, err := h.tagService.Upsert(c.Request().Context(), req.toDomain())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(tag))
}

func (h *TagHandler) UpsertBatch(c echo.Context) error {
	var req TagBatchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	tags := make([]domain.UserTag, 0, len(req.Tags))
	for i := range req.Tags {
		tags = append(tags, *req.Tags[i].toDomain())
	}

	saved, err := h.tagService.UpsertBatch(c.Request().Context(), tags)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(saved))
}

// GET /api/v1/tags/:userId?category=behavior
func (h *TagHandler) UserTags(c echo.Context) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx := c.Request().Context()

	var tags []domain.UserTag
	if category := c.QueryParam("category"); category != "" {
		tags, err = h.tagService.TagsByCategory(ctx, userID, category)
	} else {
		tags, err = h.tagService.UserTags(ctx, userID)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(tags))
}

func (h *TagHandler) AdjustWeight(c echo.Context) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	var req AdjustWeightRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.tagService.AdjustWeight(c.Request().Context(), userID, req.TagName, req.Delta); err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("weight adjusted"))
}

func (h *TagHandler) Deduplicate(c echo.Context) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	removed, err := h.tagService.Deduplicate(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]int{"removed": removed}))
}

func (r *TagRequest) toDomain() *domain.UserTag {
	return &domain.UserTag{
		UserID:   r.UserID,
		TagName:  r.TagName,
		Category: r.Category,
		Source:   r.Source,
		Weight:   r.Weight,
		ExpireAt: r.ExpireAt,
	}
}
