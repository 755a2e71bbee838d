// SPDX-License-Identifier: MIT

// Package httputil maps decoding and domain errors to JSON HTTP responses.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/katalvlaran/rbcm/internal/logging"
)

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// DecodeErr answers a failed JSON decode with 400, 413 or 500.
func DecodeErr(ctx context.Context, w http.ResponseWriter, err error) {
	var (
		syntaxErr      *json.SyntaxError
		unmarshalError *json.UnmarshalTypeError
		maxBytesErr    *http.MaxBytesError
	)
	switch {
	case errors.As(err, &syntaxErr):
		RespBadRequest(ctx, w, "malformed json at position %v", syntaxErr.Offset)
	case errors.Is(err, io.ErrUnexpectedEOF):
		RespBadRequest(ctx, w, "malformed json")
	case errors.As(err, &unmarshalError):
		RespBadRequest(ctx, w, "invalid value for %v at position %v", unmarshalError.Field, unmarshalError.Offset)
	case strings.HasPrefix(err.Error(), "json: unknown field"):
		fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
		RespBadRequest(ctx, w, "unknown field %s", fieldName)
	case errors.Is(err, io.EOF):
		RespBadRequest(ctx, w, "body must not be empty")
	case errors.As(err, &maxBytesErr):
		RespError(ctx, w, http.StatusRequestEntityTooLarge, "body exceeds %d bytes", maxBytesErr.Limit)
	default:
		RespInternalError(ctx, w, "failed to decode json: %v", err)
	}
}

// RespBadRequest writes a 400 with the formatted message.
func RespBadRequest(ctx context.Context, w http.ResponseWriter, format string, args ...any) {
	RespError(ctx, w, http.StatusBadRequest, format, args...)
}

// RespInternalError logs the formatted message and writes a generic 500.
func RespInternalError(ctx context.Context, w http.ResponseWriter, format string, args ...any) {
	logging.FromContext(ctx).Errorf(format, args...)
	RespJSON(ctx, w, http.StatusInternalServerError, ErrorBody{Error: "internal error"})
}

// RespError writes status with the formatted message as the error body.
func RespError(ctx context.Context, w http.ResponseWriter, status int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logging.FromContext(ctx).Debugw("request rejected", "status", status, "error", msg)
	RespJSON(ctx, w, status, ErrorBody{Error: msg})
}

// RespJSON encodes v with the given status.
func RespJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		logging.FromContext(ctx).Errorw("failed to encode response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)

		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

// DecodeJSON checks method and content type, bounds the body and decodes it
// into v, rejecting unknown fields. It writes the error response itself and
// reports whether decoding succeeded.
func DecodeJSON(ctx context.Context, w http.ResponseWriter, r *http.Request, maxBytes int64, v any) bool {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		RespError(ctx, w, http.StatusMethodNotAllowed, "method %v is not allowed", r.Method)

		return false
	}
	if t := r.Header.Get("Content-Type"); !strings.HasPrefix(t, "application/json") {
		RespError(ctx, w, http.StatusUnsupportedMediaType, "content-type is not application/json")

		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	d := json.NewDecoder(r.Body)
	d.DisallowUnknownFields()
	if err := d.Decode(v); err != nil {
		DecodeErr(ctx, w, err)

		return false
	}

	return true
}
