package types

// SuccessEnvelope is the body of every 2xx response.
type SuccessEnvelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorEnvelope is the body of every non-2xx response. Error carries the raw
// error text and is only populated for internal errors outside production.
type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
	Error   string `json:"error,omitempty"`
}
