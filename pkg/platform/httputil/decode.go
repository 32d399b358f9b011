package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	dErrors "rhymcaffer/pkg/domain-errors"
	str "rhymcaffer/pkg/string"
)

// DecodeJSON decodes a JSON request body into the target type.
// Returns the decoded value and true on success.
// On failure, writes an error response and returns nil, false.
//
// Usage:
//
//	ids, ok := httputil.DecodeJSON[[]int64](w, r, h.logger, ctx, requestID)
//	if !ok {
//	    return
//	}
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "failed to decode request body",
			"error", err,
			"request_id", requestID,
		)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return nil, false
	}
	return &req, true
}

// Validatable is implemented by request types that support validation.
type Validatable interface {
	Validate() error
}

// Normalizable is implemented by request types that support normalization.
type Normalizable interface {
	Normalize()
}

// Sanitizable is implemented by request types that support sanitization.
type Sanitizable interface {
	Sanitize()
}

// PrepareRequest sanitizes, normalizes, and validates a request.
func PrepareRequest(req any) error {
	if s, ok := req.(Sanitizable); ok {
		s.Sanitize()
	}
	if n, ok := req.(Normalizable); ok {
		n.Normalize()
	}
	if v, ok := req.(Validatable); ok {
		return v.Validate()
	}
	return nil
}

// DecodeAndPrepare combines JSON decoding with request preparation.
// It decodes the JSON body, then calls Sanitize(), Normalize(), and Validate()
// if the target type implements those interfaces.
//
// Usage:
//
//	req, ok := httputil.DecodeAndPrepare[models.ArtistRequest](w, r, h.logger, ctx, requestID)
//	if !ok {
//	    return
//	}
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	req, ok := DecodeJSON[T](w, r, logger, ctx, requestID)
	if !ok {
		return nil, false
	}

	if err := PrepareRequest(req); err != nil {
		logger.WarnContext(ctx, "invalid request",
			"error", err,
			"request_id", requestID,
		)
		// Preserve original error code if it's already a domain error
		var domainErr *dErrors.Error
		if errors.As(err, &domainErr) {
			WriteError(w, err)
		} else {
			WriteError(w, dErrors.New(dErrors.CodeValidation, err.Error()))
		}
		return nil, false
	}

	return req, true
}

// DecodeAndPrepareAll decodes a JSON array and prepares every element. The
// first failing element is reported as "item N: <reason>" with a zero-based N.
func DecodeAndPrepareAll[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) ([]*T, bool) {
	items, ok := DecodeJSON[[]*T](w, r, logger, ctx, requestID)
	if !ok {
		return nil, false
	}
	if len(*items) == 0 {
		WriteError(w, dErrors.New(dErrors.CodeInvalidArgument, "request list must not be empty"))
		return nil, false
	}
	for i, item := range *items {
		if item == nil {
			WriteError(w, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("item %d: invalid request body", i)))
			return nil, false
		}
		if err := PrepareRequest(item); err != nil {
			logger.WarnContext(ctx, "invalid bulk request item",
				"error", err,
				"index", i,
				"request_id", requestID,
			)
			WriteError(w, dErrors.Wrap(err, dErrors.CodeValidation, fmt.Sprintf("item %d: %s", i, err.Error())))
			return nil, false
		}
	}
	return *items, true
}

// DecodeIDs decodes a JSON array of entity ids for bulk link operations.
// Duplicates are collapsed; an empty list or a non-positive id is rejected.
func DecodeIDs(w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) ([]int64, bool) {
	ids, ok := DecodeJSON[[]int64](w, r, logger, ctx, requestID)
	if !ok {
		return nil, false
	}
	if len(*ids) == 0 {
		WriteError(w, dErrors.New(dErrors.CodeInvalidArgument, "id list must not be empty"))
		return nil, false
	}
	for _, id := range *ids {
		if id <= 0 {
			WriteError(w, dErrors.New(dErrors.CodeInvalidArgument, "ids must be positive"))
			return nil, false
		}
	}
	return str.Dedupe(*ids), true
}
