package models

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the JSON body of a failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"traceId,omitempty"`
}

// ComplexResponse echoes a request that combines path, query and body
// parameters.
type ComplexResponse struct {
	ID        string         `json:"id"`
	Action    string         `json:"action"`
	Payload   map[string]any `json:"payload"`
	Timestamp int64          `json:"timestamp"`
}
