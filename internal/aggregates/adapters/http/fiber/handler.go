package fiber

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"dashboard-aggregates-service/internal/aggregates/core/domain"
	"dashboard-aggregates-service/internal/aggregates/core/usecase"
	"dashboard-aggregates-service/internal/platform/logger"

	"github.com/gofiber/fiber/v2"
)

type GetCohortUseCase interface {
	Execute(ctx context.Context, in usecase.GetCohortInput) (*domain.CohortMatrix, error)
}

type GetGeoTrendsUseCase interface {
	Execute(ctx context.Context, in usecase.GetGeoTrendsInput) (*domain.GeoSnapshot, error)
}

type GetLocationsUseCase interface {
	Execute(ctx context.Context, in usecase.GetLocationsInput) (*domain.GeoSnapshot, error)
}

type RefreshAggregatesUseCase interface {
	Execute(ctx context.Context) error
}

// statusClientClosedRequest is nginx's non-standard code for a caller that
// hung up before the response.
const statusClientClosedRequest = 499

// Defaults fill in omitted query parameters.
type Defaults struct {
	MaxOffset  int
	TopN       int
	WindowDays int           // from = to - (WindowDays-1) when from is omitted
	RetryAfter time.Duration // advertised on 503
	Now        func() time.Time
}

type AggregatesHandler struct {
	cohortUC    GetCohortUseCase
	geoUC       GetGeoTrendsUseCase
	locationsUC GetLocationsUseCase
	refreshUC   RefreshAggregatesUseCase
	defaults    Defaults
}

func NewAggregatesHandler(
	cohortUC GetCohortUseCase,
	geoUC GetGeoTrendsUseCase,
	locationsUC GetLocationsUseCase,
	refreshUC RefreshAggregatesUseCase,
	defaults Defaults,
) *AggregatesHandler {
	if defaults.WindowDays <= 0 {
		defaults.WindowDays = 30
	}
	if defaults.RetryAfter <= 0 {
		defaults.RetryAfter = 5 * time.Second
	}
	if defaults.Now == nil {
		defaults.Now = time.Now
	}
	return &AggregatesHandler{
		cohortUC:    cohortUC,
		geoUC:       geoUC,
		locationsUC: locationsUC,
		refreshUC:   refreshUC,
		defaults:    defaults,
	}
}

// Register mounts every aggregate route on r.
func (h *AggregatesHandler) Register(r fiber.Router) {
	r.Get("/cohort-analysis", h.GetCohortAnalysis)
	r.Get("/geo-trends", h.GetGeoTrends)
	r.Get("/locations", h.GetLocations)
	r.Post("/aggregates/refresh", h.RefreshAggregates)
}

// GetCohortAnalysis godoc
// @Summary Cohort retention matrix
// @Description Returns the noised cohort-retention matrix for cohorts first seen in [from, to]
// @Tags Aggregates
// @Produce json
// @Param from query string false "First cohort day (YYYY-MM-DD), defaults to a 30-day window ending at to"
// @Param to query string false "Last cohort day (YYYY-MM-DD), defaults to today"
// @Param max_offset query int false "Largest day offset, 0..30"
// @Success 200 {object} CohortResponse
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /cohort-analysis [get]
func (h *AggregatesHandler) GetCohortAnalysis(c *fiber.Ctx) error {
	from, to, err := h.dateRange(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	maxOffset, err := queryInt(c, "max_offset", h.defaults.MaxOffset)
	if err != nil {
		return badRequest(c, err.Error())
	}

	m, err := h.cohortUC.Execute(c.UserContext(), usecase.GetCohortInput{
		From:      from,
		To:        to,
		MaxOffset: maxOffset,
	})
	if err != nil {
		return h.writeError(c, err)
	}

	return c.Status(http.StatusOK).JSON(toCohortResponse(m))
}

// GetGeoTrends godoc
// @Summary Visitors by country
// @Description Returns noised distinct-session counts per country for sessions active in [from, to]
// @Tags Aggregates
// @Produce json
// @Param from query string false "First event day (YYYY-MM-DD)"
// @Param to query string false "Last event day (YYYY-MM-DD)"
// @Param top query int false "Keep only the N largest countries"
// @Success 200 {object} GeoResponse
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /geo-trends [get]
func (h *AggregatesHandler) GetGeoTrends(c *fiber.Ctx) error {
	from, to, err := h.dateRange(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	top, err := queryInt(c, "top", h.defaults.TopN)
	if err != nil || top < 0 {
		return badRequest(c, "invalid 'top' parameter")
	}

	snap, err := h.geoUC.Execute(c.UserContext(), usecase.GetGeoTrendsInput{From: from, To: to, Top: top})
	if err != nil {
		return h.writeError(c, err)
	}

	return c.Status(http.StatusOK).JSON(toGeoResponse(snap))
}

// GetLocations godoc
// @Summary Locations map
// @Description Returns noised visitor counts per country from the configured location source
// @Tags Aggregates
// @Produce json
// @Param top query int false "Keep only the N largest countries"
// @Success 200 {object} GeoResponse
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /locations [get]
func (h *AggregatesHandler) GetLocations(c *fiber.Ctx) error {
	top, err := queryInt(c, "top", h.defaults.TopN)
	if err != nil || top < 0 {
		return badRequest(c, "invalid 'top' parameter")
	}

	snap, err := h.locationsUC.Execute(c.UserContext(), usecase.GetLocationsInput{Top: top})
	if err != nil {
		return h.writeError(c, err)
	}

	return c.Status(http.StatusOK).JSON(toGeoResponse(snap))
}

// RefreshAggregates godoc
// @Summary Drop cached aggregates
// @Description The next request for every window recomputes with fresh noise. Allowed once per refresh interval.
// @Tags Aggregates
// @Produce json
// @Success 200 {object} RefreshResponse
// @Failure 429 {object} ErrorResponse "Refreshed less than one refresh interval ago"
// @Failure 503 {object} ErrorResponse
// @Router /aggregates/refresh [post]
func (h *AggregatesHandler) RefreshAggregates(c *fiber.Ctx) error {
	if err := h.refreshUC.Execute(c.UserContext()); err != nil {
		var throttled *domain.RefreshThrottledError
		if errors.As(err, &throttled) {
			c.Set(fiber.HeaderRetryAfter, retryAfterSeconds(throttled.RetryAfter))
			return c.Status(http.StatusTooManyRequests).JSON(ErrorResponse{
				Error:     "refresh_throttled",
				Message:   err.Error(),
				Retryable: true,
			})
		}
		if errors.Is(err, context.Canceled) {
			return h.writeError(c, err)
		}
		return h.writeError(c, fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err))
	}
	return c.Status(http.StatusOK).JSON(RefreshResponse{Success: true, Status: "refreshed"})
}

func (h *AggregatesHandler) dateRange(c *fiber.Ctx) (from, to time.Time, err error) {
	to = domain.Day(h.defaults.Now())
	if s := c.Query("to", ""); s != "" {
		if to, err = time.Parse(domain.DateLayout, s); err != nil {
			return from, to, errors.New("invalid 'to' parameter, expected YYYY-MM-DD")
		}
	}

	from = to.AddDate(0, 0, -(h.defaults.WindowDays - 1))
	if s := c.Query("from", ""); s != "" {
		if from, err = time.Parse(domain.DateLayout, s); err != nil {
			return from, to, errors.New("invalid 'from' parameter, expected YYYY-MM-DD")
		}
	}
	return from, to, nil
}

func queryInt(c *fiber.Ctx, key string, def int) (int, error) {
	s := c.Query(key, "")
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid '%s' parameter", key)
	}
	return n, nil
}

func retryAfterSeconds(d time.Duration) string {
	return strconv.Itoa(max(1, int(math.Ceil(d.Seconds()))))
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
		Error:   "invalid_request",
		Message: msg,
	})
}

func (h *AggregatesHandler) writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidWindow):
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_window",
			Message: err.Error(),
		})
	case errors.Is(err, context.Canceled):
		// The client is gone; nobody reads this body.
		logger.FromContext(c.UserContext()).Debug("aggregate request canceled", logger.String("path", c.Path()))
		return c.Status(statusClientClosedRequest).JSON(ErrorResponse{
			Error: "request_canceled",
		})
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		c.Set(fiber.HeaderRetryAfter, retryAfterSeconds(h.defaults.RetryAfter))
		return c.Status(http.StatusServiceUnavailable).JSON(ErrorResponse{
			Error:     "upstream_unavailable",
			Message:   "aggregates are temporarily unavailable, retry later",
			Retryable: true,
		})
	default:
		logger.FromContext(c.UserContext()).Error("aggregate request failed",
			logger.String("path", c.Path()),
			logger.Error(err),
		)
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Error: "internal_server_error",
		})
	}
}

func toCohortResponse(m *domain.CohortMatrix) CohortResponse {
	resp := CohortResponse{
		Success: true,
		Window: WindowResponse{
			From:      m.Window.From.Format(domain.DateLayout),
			To:        m.Window.To.Format(domain.DateLayout),
			MaxOffset: m.Window.MaxOffset,
		},
		Data: make([]CohortCellResponse, 0),
		Rows: make([]CohortRowResponse, 0, len(m.Rows)),
		Warnings: WarningsResponse{
			Malformed:   m.Malformed,
			OutOfWindow: m.OutOfWindow,
		},
	}

	for _, cell := range m.Cells() {
		resp.Data = append(resp.Data, CohortCellResponse{
			CohortDay:    cell.CohortDay.Format(domain.DateLayout),
			DayOffset:    cell.DayOffset,
			SessionCount: cell.SessionCount,
		})
	}

	for _, row := range m.Rows {
		r := CohortRowResponse{
			CohortDay: row.CohortDay.Format(domain.DateLayout),
			Counts:    row.Counts,
			Retention: make([]*float64, len(row.Counts)),
		}
		if size, ok := row.Size(); ok {
			r.Size = &size
		}
		for offset := range row.Counts {
			if rate, ok := row.RetentionRate(offset); ok {
				r.Retention[offset] = &rate
			}
		}
		resp.Rows = append(resp.Rows, r)
	}

	return resp
}

func toGeoResponse(s *domain.GeoSnapshot) GeoResponse {
	resp := GeoResponse{
		Success:        true,
		Data:           make([]GeoEntryResponse, 0, len(s.Entries)),
		TotalVisitors:  s.TotalVisitors,
		TotalCountries: s.TotalCountries,
		Warnings:       WarningsResponse{Malformed: s.Malformed},
	}
	for _, e := range s.Entries {
		resp.Data = append(resp.Data, GeoEntryResponse{
			Country:           e.Country,
			Name:              e.Name,
			VisitorCount:      e.VisitorCount,
			Percentage:        e.Percentage,
			DisplayPercentage: strconv.FormatFloat(e.Percentage, 'f', 2, 64),
			Tier:              e.Tier,
		})
	}
	return resp
}
