// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/kmart/internal/logging"
	"github.com/tomtom215/kmart/internal/recommend"
	"github.com/tomtom215/kmart/internal/tracker"
	"github.com/tomtom215/kmart/internal/validation"
)

// errorStatus classifies err into a status code, error code and client
// message. Unclassified errors map to an opaque 500.
func errorStatus(err error) (status int, code, message string) {
	switch {
	case errors.Is(err, recommend.ErrNotFound):
		return http.StatusNotFound, ErrCodeNotFound, "Product not found"
	case errors.Is(err, tracker.ErrInvalidInteractionType):
		return http.StatusBadRequest, ErrCodeInvalidInteractionType, err.Error()
	case errors.Is(err, tracker.ErrUnknownCategory):
		return http.StatusNotFound, ErrCodeNotFound, "Unknown interaction category"
	case errors.Is(err, recommend.ErrTrainingInProgress):
		return http.StatusConflict, ErrCodeTrainingInProgress, "Training is already in progress"
	case errors.Is(err, recommend.ErrInsufficientData):
		return http.StatusUnprocessableEntity, ErrCodeInsufficientData, err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, ErrCodeTimeout, "Request timed out"
	default:
		return http.StatusInternalServerError, ErrCodeInternalError, "Internal server error"
	}
}

// ServiceError writes the response for an error returned by the engine or
// the tracker. 5xx errors are logged with the request id; the client only
// sees the opaque message.
func (rw *ResponseWriter) ServiceError(operation string, err error) {
	status, code, message := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logging.Ctx(rw.r.Context()).Error().
			Err(err).
			Str("operation", operation).
			Int("status", status).
			Msg("Request failed")
	}
	rw.Error(status, code, message)
}

// ValidationError writes a 400 VALIDATION_FAILED response.
func (rw *ResponseWriter) ValidationError(verr *validation.RequestValidationError) {
	apiErr := verr.ToAPIError()
	var details interface{}
	if len(apiErr.Details) > 0 {
		details = apiErr.Details
	}
	rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeValidationFailed, apiErr.Message, details)
}
