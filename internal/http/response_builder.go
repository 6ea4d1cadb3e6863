// This file implements the Builder Pattern for JSON responses. Every error
// body has the same shape and carries the request ID.

package http

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"

	"shopfloor/internal/middleware/trace"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	payload    interface{}
	errMsg     string
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Payload sets the value encoded as the response body.
func (b *JSONResponseBuilder) Payload(v interface{}) *JSONResponseBuilder {
	b.payload = v
	return b
}

// Error turns the body into an ErrorBody with msg.
func (b *JSONResponseBuilder) Error(msg string) *JSONResponseBuilder {
	b.errMsg = msg
	return b
}

// Write sends the built response. The request supplies the request ID
// for error bodies.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter, r *http.Request) {
	body := b.payload
	if b.errMsg != "" {
		eb := ErrorBody{Error: b.errMsg}
		if r != nil {
			eb.RequestID = trace.GetRequestID(r.Context())
		}
		body = eb
	}

	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal error"}`))
		return
	}
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(buf.Bytes())
}

// JSON creates a 200 response carrying v.
func JSON(v interface{}) *JSONResponseBuilder {
	return NewJSONResponse().Payload(v)
}

// ErrorResponse creates an error response with the given status.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Error(message)
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// BadGatewayError creates a 502 response for upstream snapshot failures.
func BadGatewayError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadGateway, message)
}

// ServiceUnavailableError creates a 503 Service Unavailable error response.
func ServiceUnavailableError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusServiceUnavailable, message)
}

// TooManyRequests creates a 429 response with a one-minute Retry-After.
func TooManyRequests(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, message).Header("Retry-After", "60")
}
