package notion

import (
	"context"
	"errors"
	"fmt"
)

// ErrorCode is the closed taxonomy calling code branches on.
type ErrorCode string

const (
	CodeUnauthorized       ErrorCode = "unauthorized"
	CodeRestrictedResource ErrorCode = "restricted_resource"
	CodeObjectNotFound     ErrorCode = "object_not_found"
	CodeRateLimited        ErrorCode = "rate_limited"
	CodeInvalidRequest     ErrorCode = "invalid_request"
	CodeConflict           ErrorCode = "conflict_error"
	CodeServiceUnavailable ErrorCode = "service_unavailable"
	CodeClientError        ErrorCode = "client_error"
	CodeUnknownHTTP        ErrorCode = "unknown_http_error"
	CodeUnknown            ErrorCode = "unknown_error"
	CodeMaxRetriesExceeded ErrorCode = "max_retries_exceeded"
)

// APIError is a classified upstream error. Code is always set; Status only
// when the upstream reported one.
type APIError struct {
	Message string
	Code    ErrorCode
	Status  int
	Context string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsRateLimited reports whether err is a classified rate-limit error.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == CodeRateLimited
}

// TransformError is raised when a raw page cannot be assembled into a
// domain entity. Raw carries the source payload for debugging.
type TransformError struct {
	Message string
	Field   string
	Raw     any
}

func (e *TransformError) Error() string {
	return e.Message
}

// ResponseError is the structured error body the content API returns.
// It is what SafeCall classifies; callers outside this package only ever
// see the classified APIError.
type ResponseError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("api error %s (status %d): %s", e.Code, e.Status, e.Message)
}

// UnknownHTTPError covers upstream responses that are neither success nor
// a recognizable structured error body.
type UnknownHTTPError struct {
	Status int
	Body   string
}

func (e *UnknownHTTPError) Error() string {
	return fmt.Sprintf("unexpected http %d: %s", e.Status, e.Body)
}

// SafeCall executes op and classifies any failure into an APIError whose
// message embeds label. Classification happens before any retry decision,
// so the retry policy always sees the true underlying error kind.
func SafeCall[T any](ctx context.Context, label string, op func(context.Context) (T, error)) (T, error) {
	result, err := op(ctx)
	if err == nil {
		return result, nil
	}

	var zero T
	return zero, Classify(err, label)
}

// Classify maps a raw transport or API error into the taxonomy. Already
// classified errors pass through unchanged.
func Classify(err error, label string) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var respErr *ResponseError
	if errors.As(err, &respErr) {
		return classifyResponse(respErr, label)
	}

	var httpErr *UnknownHTTPError
	if errors.As(err, &httpErr) {
		return &APIError{
			Message: fmt.Sprintf("unknown HTTP error [%s]: %s", label, httpErr.Error()),
			Code:    CodeUnknownHTTP,
			Status:  httpErr.Status,
			Context: label,
		}
	}

	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return &APIError{
			Message: fmt.Sprintf("client error [%s]: %v; check notion.api_key and notion.database_id", label, clientErr.Err),
			Code:    CodeClientError,
			Context: label,
		}
	}

	return &APIError{
		Message: fmt.Sprintf("unexpected error [%s]: %v", label, err),
		Code:    CodeUnknown,
		Context: label,
	}
}

func classifyResponse(err *ResponseError, label string) *APIError {
	var message string
	code := ErrorCode(err.Code)

	switch code {
	case CodeUnauthorized:
		message = fmt.Sprintf("authentication failed [%s]: API key is invalid or expired", label)
	case CodeRestrictedResource:
		message = fmt.Sprintf("resource access denied [%s]: the integration has no permission on this database", label)
	case CodeObjectNotFound:
		message = fmt.Sprintf("resource not found [%s]: database or page does not exist or was deleted", label)
	case CodeRateLimited:
		message = fmt.Sprintf("rate limit exceeded [%s]: slow down requests", label)
	case CodeInvalidRequest:
		message = fmt.Sprintf("invalid request [%s]: %s", label, err.Message)
	case CodeConflict:
		message = fmt.Sprintf("conflict [%s]: concurrent modification detected", label)
	case CodeServiceUnavailable:
		message = fmt.Sprintf("service temporarily unavailable [%s]: try again later", label)
	default:
		// Unmapped codes keep their original code with a generic message.
		message = fmt.Sprintf("api error [%s]: %s (code: %s)", label, err.Message, err.Code)
	}

	return &APIError{
		Message: message,
		Code:    code,
		Status:  err.Status,
		Context: label,
	}
}

// ClientError wraps transport-level failures (connection, timeout, bad
// request construction) before classification.
type ClientError struct {
	Err error
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("client error: %v", e.Err)
}

func (e *ClientError) Unwrap() error {
	return e.Err
}
