package handlers

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	IntCode string `json:"intCode"`
}

type BodyResponse struct {
	IntCode string        `json:"intCode"`
	Data    []interface{} `json:"data"`
}

// StandardResponse is the envelope used by paged admin listings
type StandardResponse struct {
	StatusCode int          `json:"statusCode"`
	Body       BodyResponse `json:"body"`
}
