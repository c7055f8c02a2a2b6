package handlers

import (
	"net/http"

	"github.com/upb/semantic-retrieval/internal/observability"
	"github.com/upb/semantic-retrieval/services"
	"github.com/upb/semantic-retrieval/utils"
	"go.uber.org/zap"
)

// HandleServiceError maps domain errors to HTTP responses. Bodies carry only
// the error kind and its caller-safe message; the wrapped cause is logged.
func HandleServiceError(w http.ResponseWriter, r *http.Request, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	logger = observability.LoggerFromContext(r.Context(), logger)
	errType := services.GetErrorType(err)
	details := services.GetErrorDetails(err)

	status := http.StatusInternalServerError
	kind := errType.Kind()
	message := services.GetErrorMessage(err)

	switch {
	case services.IsValidationError(err):
		status = http.StatusBadRequest

	case services.IsSearchError(err), services.IsConfigurationError(err):
		details = nil

	default:
		// Recovered embedding errors never reach here on the happy path;
		// anything that does is reported as internal.
		kind = services.ErrorTypeInternal.Kind()
		message = services.ErrInternal.Message
		details = nil
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("kind", kind),
			zap.String("error_type", string(errType)),
			zap.Error(err))
	} else {
		logger.Debug("request rejected",
			zap.String("kind", kind),
			zap.String("message", message),
			zap.Any("details", details))
	}

	var writeErr error
	if kind == utils.KindInternalError {
		writeErr = utils.WriteInternalServerError(w, message)
	} else {
		writeErr = utils.WriteError(w, status, kind, message, details)
	}
	if writeErr != nil {
		logger.Error("failed to write error response", zap.Error(writeErr))
	}
}

// HandleValidationError handles errors from request decoding and struct validation
func HandleValidationError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var details map[string]interface{}
	message := err.Error()

	if utils.IsValidationError(err) {
		details = make(map[string]interface{})
		for k, v := range utils.GetValidationFields(err) {
			details[k] = v
		}
	}
	if decodeErr, ok := err.(*utils.DecodeError); ok && decodeErr.Field != "" {
		details = map[string]interface{}{decodeErr.Field: decodeErr.Message}
	}

	if err := utils.WriteBadRequest(w, message, details); err != nil {
		logger.Error("failed to write validation error response", zap.Error(err))
	}
}
