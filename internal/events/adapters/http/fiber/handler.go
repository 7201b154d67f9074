package fiber

import (
	"context"
	"errors"
	"net/http"

	"dashboard-aggregates-service/internal/events/core/domain"
	"dashboard-aggregates-service/internal/events/core/usecase"

	"github.com/gofiber/fiber/v2"
)

type StoreEventUseCase interface {
	Execute(ctx context.Context, in usecase.StoreEventInput) (*domain.Event, error)
	BulkCreateEvents(ctx context.Context, in usecase.BulkCreateEventsInput) (usecase.BulkCreateEventsResult, error)
}

// retryAfterSeconds is advertised when the ingestion queue is full.
const retryAfterSeconds = "1"

type EventHandler struct {
	storeUC StoreEventUseCase
}

func NewEventHandler(storeUC StoreEventUseCase) *EventHandler {
	return &EventHandler{storeUC: storeUC}
}

// CreateEvent godoc
// @Summary Ingest a session event
// @Description Validates the event and queues it for asynchronous storage
// @Tags Events
// @Accept json
// @Produce json
// @Param request body CreateEventRequest true "Event payload"
// @Success 202 {object} CreateEventResponse
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse "Queue full"
// @Router /events [post]
func (h *EventHandler) CreateEvent(c *fiber.Ctx) error {
	var req CreateEventRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid_json",
		})
	}

	e, err := h.storeUC.Execute(c.UserContext(), toInput(req))
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(http.StatusAccepted).JSON(CreateEventResponse{
		Status:  "queued",
		EventID: e.ID.String(),
	})
}

// BulkCreateEvents godoc
// @Summary Bulk ingest session events
// @Description Validates every event, then queues them for asynchronous storage
// @Tags Events
// @Accept json
// @Produce json
// @Param request body BulkCreateEventsRequest true "Bulk event payload"
// @Success 202 {object} BulkCreateEventsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} BulkCreateEventsResponse "Queue filled up; rejected events may be retried"
// @Router /events/bulk [post]
func (h *EventHandler) BulkCreateEvents(c *fiber.Ctx) error {
	var req BulkCreateEventsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid_json",
		})
	}

	if len(req.Events) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "events_list_required",
		})
	}

	inputs := make([]usecase.StoreEventInput, len(req.Events))
	for i, e := range req.Events {
		inputs[i] = toInput(e)
	}

	result, err := h.storeUC.BulkCreateEvents(
		c.UserContext(),
		usecase.BulkCreateEventsInput{Events: inputs},
	)
	if errors.Is(err, domain.ErrQueueFull) {
		c.Set(fiber.HeaderRetryAfter, retryAfterSeconds)
		return c.Status(fiber.StatusServiceUnavailable).JSON(BulkCreateEventsResponse{
			Queued:   result.Queued,
			Rejected: result.Rejected,
		})
	}
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(BulkCreateEventsResponse{
		Queued:   result.Queued,
		Rejected: result.Rejected,
	})
}

func toInput(r CreateEventRequest) usecase.StoreEventInput {
	return usecase.StoreEventInput{
		SessionID:     r.SessionID,
		Country:       r.Country,
		FirstSeenDate: r.FirstSeenDate,
		EventDate:     r.EventDate,
		DeviceClass:   r.DeviceClass,
	}
}

func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, usecase.ErrInvalidEvent),
		errors.Is(err, usecase.ErrFutureTime):
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_event",
			Message: err.Error(),
		})
	case errors.Is(err, domain.ErrQueueFull):
		c.Set(fiber.HeaderRetryAfter, retryAfterSeconds)
		return c.Status(http.StatusServiceUnavailable).JSON(ErrorResponse{
			Error:   "queue_full",
			Message: err.Error(),
		})
	default:
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Error: "internal_server_error",
		})
	}
}
