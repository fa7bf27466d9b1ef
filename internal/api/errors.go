package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MJE43/gbwild/internal/codec"
	"github.com/MJE43/gbwild/internal/game"
	"github.com/MJE43/gbwild/internal/species"
	"github.com/MJE43/gbwild/internal/store"
)

// ErrorBuilder helps construct structured errors with context
type ErrorBuilder struct {
	errType   string
	message   string
	context   map[string]interface{}
	requestID string
}

// NewError creates a new error builder
func NewError(errType, message string) *ErrorBuilder {
	return &ErrorBuilder{
		errType: errType,
		message: message,
		context: make(map[string]interface{}),
	}
}

// WithContext adds context information to the error
func (eb *ErrorBuilder) WithContext(key string, value interface{}) *ErrorBuilder {
	eb.context[key] = value
	return eb
}

// WithRequestID adds request ID to the error
func (eb *ErrorBuilder) WithRequestID(requestID string) *ErrorBuilder {
	eb.requestID = requestID
	return eb
}

// WithCause adds the underlying cause error
func (eb *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	if err != nil {
		eb.context["cause"] = err.Error()
	}
	return eb
}

// Build creates the final EngineError
func (eb *ErrorBuilder) Build() EngineError {
	return EngineError{
		Type:      eb.errType,
		Message:   eb.message,
		Context:   eb.context,
		RequestID: eb.requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// ErrorHandler provides centralized error handling with logging
type ErrorHandler struct {
	logger *log.Logger
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *log.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// classify maps a pipeline or store error to its response type and status.
func classify(err error) (string, int) {
	var (
		unrecognized *game.UnrecognizedRomError
		unknown      *species.UnknownSpeciesError
		mismatch     *codec.TableLengthMismatchError
		tooLarge     *http.MaxBytesError
		field        *fieldError
		engineErr    EngineError
	)
	switch {
	case errors.As(err, &engineErr):
		return engineErr.Type, statusFor(engineErr.Type)
	case errors.As(err, &field):
		return ErrTypeInvalidParams, http.StatusBadRequest
	case errors.As(err, &tooLarge):
		return ErrTypeRomTooLarge, http.StatusRequestEntityTooLarge
	case errors.As(err, &unrecognized):
		return ErrTypeUnrecognizedRom, http.StatusUnprocessableEntity
	case errors.As(err, &unknown):
		return ErrTypeUnknownSpecies, http.StatusUnprocessableEntity
	case errors.As(err, &mismatch):
		return ErrTypeTableLength, http.StatusInternalServerError
	case errors.Is(err, store.ErrRunNotFound):
		return ErrTypeRunNotFound, http.StatusNotFound
	default:
		return ErrTypeInternal, http.StatusInternalServerError
	}
}

func statusFor(errType string) int {
	switch errType {
	case ErrTypeRomTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrTypeUnrecognizedRom, ErrTypeUnknownSpecies:
		return http.StatusUnprocessableEntity
	case ErrTypeRunNotFound:
		return http.StatusNotFound
	case ErrTypeServiceUnavailable:
		return http.StatusServiceUnavailable
	case ErrTypeTimeout:
		return http.StatusRequestTimeout
	}
	if GetErrorCategory(errType) == CategoryValidation {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// HandleError classifies err, logs it and writes the matching response.
func (eh *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetReqID(r.Context())
	errType, status := classify(err)

	var engineErr EngineError
	if !errors.As(err, &engineErr) {
		b := NewError(errType, err.Error()).
			WithRequestID(requestID).
			WithCause(errors.Unwrap(err)).
			WithContext("path", r.URL.Path).
			WithContext("method", r.Method)
		var field *fieldError
		if errors.As(err, &field) {
			b.WithContext("field", field.field)
		}
		engineErr = b.Build()
	}

	eh.logError(r, engineErr, status)
	eh.writeErrorResponse(w, status, engineErr)
}

// logError logs the error with appropriate level and context
func (eh *ErrorHandler) logError(r *http.Request, engineErr EngineError, status int) {
	category := GetErrorCategory(engineErr.Type)

	logLevel := "ERROR"
	if status < 500 {
		logLevel = "WARN"
	}

	eh.logger.Printf(
		"error_occurred level=%s type=%s category=%s status=%d request_id=%s method=%s path=%s message=%q context=%+v",
		logLevel, engineErr.Type, category, status, engineErr.RequestID, r.Method, r.URL.Path, engineErr.Message, engineErr.Context,
	)
}

// writeErrorResponse writes the error response as JSON
func (eh *ErrorHandler) writeErrorResponse(w http.ResponseWriter, status int, engineErr EngineError) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", EngineVersion)
	w.Header().Set("X-Error-Type", engineErr.Type)
	w.Header().Set("X-Error-Category", string(GetErrorCategory(engineErr.Type)))
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(engineErr); err != nil {
		eh.logger.Printf("error_encode_failed type=%s err=%v", engineErr.Type, err)
	}
}

// RecoveryHandler provides panic recovery with structured error logging
func (eh *ErrorHandler) RecoveryHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				requestID := middleware.GetReqID(r.Context())

				eh.logger.Printf(
					"panic_recovered request_id=%s path=%s method=%s panic=%v",
					requestID, r.URL.Path, r.Method, rvr,
				)

				engineErr := NewError(ErrTypeInternal, "Internal server error").
					WithRequestID(requestID).
					WithContext("panic", fmt.Sprintf("%v", rvr)).
					WithContext("path", r.URL.Path).
					WithContext("method", r.Method).
					Build()

				eh.writeErrorResponse(w, http.StatusInternalServerError, engineErr)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
