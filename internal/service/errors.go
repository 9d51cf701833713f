package service

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/JackaZhai/nano-banana/internal/pkg/upstream"
)

// APIError 带 HTTP 状态码的业务错误
type APIError struct {
	Message    string
	StatusCode int
	Details    string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

// Body 响应体
func (e *APIError) Body() map[string]any {
	body := map[string]any{"error": e.Message}
	if e.Details != "" {
		body["details"] = e.Details
	}
	return body
}

// NewValidationError 参数校验错误
func NewValidationError(message string) *APIError {
	return &APIError{Message: message, StatusCode: http.StatusBadRequest}
}

// NewNotFoundError 资源不存在
func NewNotFoundError(message string) *APIError {
	return &APIError{Message: message, StatusCode: http.StatusNotFound}
}

// fromUpstreamError 将上游客户端错误映射为 APIError
func fromUpstreamError(err error) error {
	var statusErr *upstream.StatusError
	if errors.As(err, &statusErr) {
		return &APIError{Message: "API request failed", StatusCode: statusErr.StatusCode, Details: statusErr.Body}
	}
	var decodeErr *upstream.DecodeError
	if errors.As(err, &decodeErr) {
		return &APIError{Message: fmt.Sprintf("Invalid JSON from upstream: %v", decodeErr.Err), StatusCode: http.StatusBadGateway, Details: decodeErr.Body}
	}
	var transportErr *upstream.TransportError
	if errors.As(err, &transportErr) {
		return &APIError{Message: fmt.Sprintf("Network error: %v", transportErr.Err), StatusCode: http.StatusBadGateway}
	}
	return err
}
