package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"kernelprovider/internal/kernels"
	"kernelprovider/internal/provider"
	"kernelprovider/internal/registry"
	"kernelprovider/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// requestError rejects a request before it reaches the service.
type requestError struct {
	status int
	msg    string
}

func (e requestError) Error() string   { return e.msg }
func (e requestError) StatusCode() int { return e.status }

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var he HTTPError
	switch {
	case errors.As(err, &he):
		return he.StatusCode()
	case registry.IsNoSuchKernel(err), kernels.IsKernelNotFound(err):
		return http.StatusNotFound
	case provider.IsConfigError(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

// writeServiceError logs err and writes it with its mapped status.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	ev := zlog.Warn()
	if status >= http.StatusInternalServerError {
		ev = zlog.Error()
	}
	ev.Err(err).Str("path", r.URL.Path).Int("status", status).Msg("request failed")
	writeJSONError(w, status, err.Error())
}
