package fiber

import "dashboard-aggregates-service/internal/aggregates/core/bucket"

type CohortCellResponse struct {
	CohortDay    string `json:"cohort_day" example:"2024-01-01"`
	DayOffset    int    `json:"day_offset" example:"7"`
	SessionCount int64  `json:"session_count" example:"12"`
}

// CohortRowResponse is one dense matrix row. Size and retention are null
// when the published day-0 count is zero.
type CohortRowResponse struct {
	CohortDay string     `json:"cohort_day" example:"2024-01-01"`
	Size      *int64     `json:"size"`
	Counts    []int64    `json:"counts"`
	Retention []*float64 `json:"retention"`
}

type WindowResponse struct {
	From      string `json:"from" example:"2024-01-01"`
	To        string `json:"to" example:"2024-01-31"`
	MaxOffset int    `json:"max_offset" example:"30"`
}

type WarningsResponse struct {
	Malformed   int `json:"malformed"`
	OutOfWindow int `json:"out_of_window,omitempty"`
}

type CohortResponse struct {
	Success  bool                 `json:"success"`
	Window   WindowResponse       `json:"window"`
	Data     []CohortCellResponse `json:"data"`
	Rows     []CohortRowResponse  `json:"rows"`
	Warnings WarningsResponse     `json:"warnings"`
}

type GeoEntryResponse struct {
	Country           string      `json:"country" example:"USA"`
	Name              string      `json:"name,omitempty" example:"United States"`
	VisitorCount      int64       `json:"visitor_count" example:"100"`
	Percentage        float64     `json:"percentage" example:"66.66666666666667"`
	DisplayPercentage string      `json:"display_percentage" example:"66.67"`
	Tier              bucket.Tier `json:"tier" swaggertype:"string" enums:"none,very_low,low,medium,high,very_high"`
}

type GeoResponse struct {
	Success        bool               `json:"success"`
	Data           []GeoEntryResponse `json:"data"`
	TotalVisitors  int64              `json:"total_visitors" example:"150"`
	TotalCountries int                `json:"total_countries" example:"3"`
	Warnings       WarningsResponse   `json:"warnings"`
}

type RefreshResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status" example:"refreshed"`
}

type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error" example:"invalid_window"`
	Message   string `json:"message" example:"invalid window: negative span"`
	Retryable bool   `json:"retryable,omitempty"`
}
