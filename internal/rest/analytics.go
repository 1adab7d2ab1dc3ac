package rest

import (
	"context"
	"net/http"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"

	"profileHub/domain"
)

type (
	AnalyticsHandler struct {
		analyticsService AnalyticsService
	}

	AnalyticsService interface {
		ActivityScore(ctx context.Context, userID uint) (float64, error)
		InterestWeights(ctx context.Context, userID uint) (map[string]float64, error)
		ConversionRate(ctx context.Context, userID uint) (float64, error)
		PurchaseCycle(ctx context.Context, userID uint) (*float64, error)
		RFM(ctx context.Context, userID uint) (domain.RFMResult, error)
		ChurnRisk(ctx context.Context, userID uint) (domain.ChurnRisk, error)
		PurchaseFunnel(ctx context.Context, userID uint) (domain.PurchaseFunnel, error)
	}

	// BehaviorSummary bundles the per-user analytics into one response.
	BehaviorSummary struct {
		ActivityScore  float64            `json:"activity_score"`
		Interests      map[string]float64 `json:"interests"`
		ConversionRate float64            `json:"conversion_rate"`
		PurchaseCycle  *float64           `json:"purchase_cycle_days"`
	}
)

func NewAnalyticsHandler(svc AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: svc}
}

func (h *AnalyticsHandler) Behavior(c echo.Context) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	ctx := c.Request().Context()

	activity, err := h.analyticsService.ActivityScore(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}
	interests, err := h.analyticsService.InterestWeights(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}
	conversion, err := h.analyticsService.ConversionRate(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}
	cycle, err := h.analyticsService.PurchaseCycle(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	summary := BehaviorSummary{
		ActivityScore:  activity,
		Interests:      interests,
		ConversionRate: conversion,
		PurchaseCycle:  cycle,
	}
	return c.JSON(http.StatusOK, fres.Response.StatusOK(summary))
}

func (h *AnalyticsHandler) RFM(c echo.Context) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	rfm, err := h.analyticsService.RFM(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(rfm))
}

func (h *AnalyticsHandler) ChurnRisk(c echo.Context) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	risk, err := h.analyticsService.ChurnRisk(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(risk))
}

func (h *AnalyticsHandler) Funnel(c echo.Context) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	funnel, err := h.analyticsService.PurchaseFunnel(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(funnel))
}
