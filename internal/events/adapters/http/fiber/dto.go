package fiber

// CreateEventRequest represents one session activity
// @Description Session event ingestion DTO
type CreateEventRequest struct {
	SessionID     string `json:"session_id" example:"9f0c1d2e"`
	Country       string `json:"country" example:"USA"`
	FirstSeenDate string `json:"first_seen_date" example:"2024-01-01"`
	EventDate     string `json:"event_date" example:"2024-01-08"`
	DeviceClass   string `json:"device_class" example:"mobile"`
}

type CreateEventResponse struct {
	Status  string `json:"status" example:"queued"`
	EventID string `json:"event_id,omitempty"`
	Message string `json:"message,omitempty"`
}

type BulkCreateEventsRequest struct {
	Events []CreateEventRequest `json:"events"`
}

type BulkCreateEventsResponse struct {
	Queued   int `json:"queued"`
	Rejected int `json:"rejected"`
}

type ErrorResponse struct {
	Error   string `json:"error" example:"invalid_event"`
	Message string `json:"message" example:"Event payload is invalid"`
}
