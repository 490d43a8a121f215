package types

const (
	// StatusSuccess is the status value carried by every successful envelope.
	StatusSuccess = "success"
	StatusError   = "error"
)

type SuccessEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
}

// PaginatedEnvelope is a SuccessEnvelope with a pagination block.
type PaginatedEnvelope struct {
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
	Data       any    `json:"data"`
	Pagination any    `json:"pagination"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Status string   `json:"status"`
	Error  APIError `json:"error"`
}
