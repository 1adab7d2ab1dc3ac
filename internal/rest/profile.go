package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"profileHub/business/profile"
	"profileHub/domain"
)

type (
	ProfileHandler struct {
		validate       *validator.Validate
		profileService ProfileService
	}

	ProfileService interface {
		Get(ctx context.Context, userID uint) (*domain.UserProfile, error)
		CreateOrUpdate(ctx context.Context, input profile.ProfileInput) (*domain.UserProfile, error)
		Initialize(ctx context.Context, userID uint, username string) (*domain.UserProfile, error)
		RecalculateScore(ctx context.Context, userID uint) (*domain.UserProfile, error)
		Delete(ctx context.Context, userID uint) error
		All(ctx context.Context) ([]domain.UserProfile, error)
		Analyze(ctx context.Context, userID uint) (*profile.Insights, error)
	}

	InitializeRequest struct {
		UserID   uint   `json:"user_id" validate:"required"`
		Username string `json:"username"`
	}
)

func NewProfileHandler(svc ProfileService) *ProfileHandler {
	return &ProfileHandler{
		validate:       validator.New(),
		profileService: svc,
	}
}

func (h *ProfileHandler) Get(c echo.Context) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	p, err := h.profileService.Get(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(p))
}

func (h *ProfileHandler) GetAll(c echo.Context) error {
	profiles, err := h.profileService.All(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(profiles))
}

func (h *ProfileHandler) Upsert(c echo.Context) error {
	var input profile.ProfileInput
	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&input); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	p, err := h.profileService.CreateOrUpdate(c.Request().Context(), input)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(p))
}

func (h *ProfileHandler) Initialize(c echo.Context) error {
	var req InitializeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	p, err := h.profileService.Initialize(c.Request().Context(), req.UserID, req.Username)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(p))
}

func (h *ProfileHandler) Recalculate(c echo.Context) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	p, err := h.profileService.RecalculateScore(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(p))
}

func (h *ProfileHandler) Delete(c echo.Context) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.profileService.Delete(c.Request().Context(), userID); err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("profile deleted"))
}

func (h *ProfileHandler) Insights(c echo.Context) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	insights, err := h.profileService.Analyze(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(insights))
}
