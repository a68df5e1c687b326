package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

// Warning is attached to read responses that degraded to cached data.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type WarningEnvelope struct {
	Data    any      `json:"data"`
	Warning *Warning `json:"warning,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
