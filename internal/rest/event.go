package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"

	"profileHub/domain"
)

type ResponseError struct {
	Message string `json:"message"`
}

type (
	EventHandler struct {
		validate     *validator.Validate
		eventService EventService
	}

	EventService interface {
		Record(ctx context.Context, event *domain.UserEvent) error
		RecordBatch(ctx context.Context, events []*domain.UserEvent) error
		UserEvents(ctx context.Context, userID uint) ([]domain.UserEvent, error)
	}

	EventRequest struct {
		UserID    uint           `json:"user_id" validate:"required"`
		EventType string         `json:"event_type" validate:"required"`
		EventData map[string]any `json:"event_data"`
		EventTime time.Time      `json:"event_time"`
		Source    string         `json:"source"`
		Weight    float64        `json:"weight"`
	}

	EventBatchRequest struct {
		Events []EventRequest `json:"events" validate:"required,min=1,dive"`
	}
)

func NewEventHandler(svc EventService) *EventHandler {
	return &EventHandler{
		validate:     validator.New(),
		eventService: svc,
	}
}

func (h *EventHandler) Record(c echo.Context) error {
	var req EventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	event := req.toDomain()
	if err := h.eventService.Record(c.Request().Context(), event); err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(event))
}

func (h *EventHandler) RecordBatch(c echo.Context) error {
	var req EventBatchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	events := make([]*domain.UserEvent, 0, len(req.Events))
	for i := range req.Events {
		events = append(events, req.Events[i].toDomain())
	}

	if err := h.eventService.RecordBatch(c.Request().Context(), events); err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(map[string]int{"recorded": len(events)}))
}

func (h *EventHandler) UserEvents(c echo.Context) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	events, err := h.eventService.UserEvents(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(events))
}

func (r *EventRequest) toDomain() *domain.UserEvent {
	return &domain.UserEvent{
		UserID:    r.UserID,
		EventType: r.EventType,
		EventData: datatypes.JSONMap(r.EventData),
		EventTime: r.EventTime,
		Source:    r.Source,
		Weight:    r.Weight,
	}
}

func parseUserID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
