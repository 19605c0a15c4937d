// internal/common/errors/handler.go
package errors

import (
	"net/http"
)

// ErrorHandler turns errors into API responses with standardized logging
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// ErrorResponse is the JSON body written for every failed request
type ErrorResponse struct {
	Error *StandardError `json:"error"`
}

// Handle normalizes err, logs it and returns the HTTP status and body to write.
// Client errors are logged as warnings, everything else as errors.
func (h *ErrorHandler) Handle(method, path string, err error) (int, ErrorResponse) {
	stdErr := Wrap(err)
	status := HTTPStatus(stdErr.Code)

	fields := map[string]interface{}{
		"method":        method,
		"path":          path,
		"status":        status,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
	}
	if cause := stdErr.Unwrap(); cause != nil {
		fields["cause"] = cause.Error()
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", fields)
	} else {
		h.logger.Warn("Request rejected", fields)
	}
	return status, ErrorResponse{Error: stdErr}
}
