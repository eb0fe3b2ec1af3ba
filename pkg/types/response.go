// Package types defines the JSON envelopes every tillpoint endpoint speaks.
// Successful responses wrap their payload in {"data": ...}; failures carry a
// machine-readable code alongside a message safe to show at the till.
package types

// SuccessEnvelope wraps a successful response body.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// Success builds the envelope for a payload.
func Success(data any) SuccessEnvelope {
	return SuccessEnvelope{Data: data}
}

// APIError is the client-facing error body. Details is optional structured
// context, only populated for codes that allow it.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps an APIError for transport.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// Failure builds the envelope for an error code and message.
func Failure(code, message string) ErrorEnvelope {
	return ErrorEnvelope{Error: APIError{Code: code, Message: message}}
}
