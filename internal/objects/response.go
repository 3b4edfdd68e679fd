// Package objects contains wire objects shared between handlers and middleware.
package objects

// Error is the wire representation of a request failure.
type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ErrorResponse is the JSON envelope for all error responses.
type ErrorResponse struct {
	Error Error `json:"error"`
}
