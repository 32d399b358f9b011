package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	dErrors "rhymcaffer/pkg/domain-errors"
	"rhymcaffer/pkg/platform/middleware/auth"
)

// Envelope is the uniform wrapper applied to every API response.
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	IsSuccess  bool   `json:"isSuccess"`
	Message    string `json:"message"`
	Data       any    `json:"data"`
}

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Errors after WriteHeader cannot change the status code, so we ignore encoding errors.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteSuccess writes a 200 envelope carrying data.
func WriteSuccess(w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusOK, Envelope{
		StatusCode: http.StatusOK,
		IsSuccess:  true,
		Message:    message,
		Data:       data,
	})
}

// WriteFailure writes a failed envelope with the given status and message.
func WriteFailure(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Envelope{
		StatusCode: status,
		IsSuccess:  false,
		Message:    message,
	})
}

// WriteError centralizes domain error translation to HTTP responses.
// The HTTP status always mirrors the envelope statusCode.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		status := DomainCodeToHTTPStatus(domainErr.Code)
		msg := domainErr.Message
		if msg == "" || status == http.StatusInternalServerError {
			msg = http.StatusText(status)
		}
		WriteFailure(w, status, msg)
		return
	}

	// Fallback for unexpected errors
	WriteFailure(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeInvalidArgument:
		return http.StatusBadRequest
	case dErrors.CodeConflict, dErrors.CodeAlreadyExists:
		// Uniqueness and duplicate-membership failures are reported as 400.
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	case dErrors.CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// RequireCaller extracts the authenticated caller from context.
// Returns a domain error suitable for HTTP response on failure.
func RequireCaller(ctx context.Context, logger *slog.Logger, requestID string) (*auth.Caller, error) {
	caller := auth.GetCaller(ctx)
	if caller == nil {
		if logger != nil {
			logger.ErrorContext(ctx, "caller missing from context despite auth middleware",
				"request_id", requestID)
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	return caller, nil
}

// PathID parses a positive integer identifier from a chi URL parameter.
func PathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidArgument, "invalid "+name)
	}
	return v, nil
}

// QueryBool reads an optional boolean query parameter.
func QueryBool(r *http.Request, name string, def bool) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, dErrors.New(dErrors.CodeInvalidArgument, name+" must be a boolean")
	}
	return v, nil
}

// QueryInt reads an optional integer query parameter.
func QueryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidArgument, name+" must be an integer")
	}
	return v, nil
}

// QueryIntPtr reads an optional integer query parameter; nil when absent.
func QueryIntPtr(r *http.Request, name string) (*int, error) {
	if r.URL.Query().Get(name) == "" {
		return nil, nil
	}
	v, err := QueryInt(r, name, 0)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
