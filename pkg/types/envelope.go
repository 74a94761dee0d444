package types

// SuccessEnvelope is the standard wrapper for successful API responses.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public error body.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope is the standard wrapper for failed API responses.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
