package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"parcel-service/internal/apperr"
	"parcel-service/internal/logx"
)

// Error codes carried in the "error" field of failure envelopes.
const (
	CodeValidation          = "ValidationError"
	CodeNotFound            = "NotFound"
	CodeInvalidTransition   = "InvalidTransition"
	CodeCourierUnavailable  = "CourierUnavailable"
	CodeConcurrencyConflict = "ConcurrencyConflict"
	CodeConflict            = "Conflict"
	CodeInternal            = "InternalError"
)

const bodyLimit = 1 << 20

var validate = newValidator()

// newValidator reports fields by their json names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func reqID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return "-"
}

func writeJSON(logger logx.Logger, w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		logger.Error("json encode failed",
			logx.String("req_id", reqID(r.Context())),
			logx.Err(err),
		)
	}
}

type successResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeOK(logger logx.Logger, w http.ResponseWriter, r *http.Request, status int, data any) {
	writeJSON(logger, w, r, status, successResponse{Success: true, Data: data})
}

func writeError(logger logx.Logger, w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	logger.Info("http error",
		logx.String("req_id", reqID(r.Context())),
		logx.Int("status", status),
		logx.String("code", code),
		logx.String("msg", msg),
	)
	writeJSON(logger, w, r, status, ErrorResponse{Error: code, Message: msg})
}

// writeServiceError maps a service error onto a status and error code.
func writeServiceError(logger logx.Logger, w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			logx.String("req_id", reqID(r.Context())),
			logx.String("path", r.URL.Path),
			logx.Err(err),
		)
		msg = "internal error"
	}
	writeError(logger, w, r, status, code, msg)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, apperr.ErrInvalid):
		return http.StatusBadRequest, CodeValidation
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, apperr.ErrInvalidTransition):
		return http.StatusUnprocessableEntity, CodeInvalidTransition
	case errors.Is(err, apperr.ErrCourierUnavailable):
		return http.StatusUnprocessableEntity, CodeCourierUnavailable
	case errors.Is(err, apperr.ErrConcurrencyConflict):
		return http.StatusConflict, CodeConcurrencyConflict
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict, CodeConflict
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// decodeJSON decodes and validates the body into dst, answering 400 on failure.
func decodeJSON[T any](logger logx.Logger, w http.ResponseWriter, r *http.Request, dst *T) bool {
	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeError(logger, w, r, http.StatusBadRequest, CodeValidation, "invalid json")
		return false
	}
	if err := dec.Decode(new(struct{})); err != io.EOF {
		writeError(logger, w, r, http.StatusBadRequest, CodeValidation, "invalid json: trailing data")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(logger, w, r, http.StatusBadRequest, CodeValidation, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

func idFromURL(r *http.Request, name string) (int64, error) {
	idStr := chi.URLParam(r, name)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}
