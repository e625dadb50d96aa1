package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5/middleware" // For RequestID

	"github.com/neoaplicacoes/customer-api/internal/types"
)

// ErrorResponse writes a standard JSON error response including request ID.
func ErrorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	reqID := middleware.GetReqID(r.Context())
	resp := map[string]interface{}{
		"success":    false,
		"error":      message,
		"request_id": reqID,
	}
	WriteJSONResponse(w, r, status, resp)
}

// ErrorResponseFromErr maps a (possibly wrapped) sentinel error to an HTTP
// status and a client-safe message. Anything unrecognized is treated as
// unexpected: logged with full detail server-side, reported opaquely to the
// client.
func ErrorResponseFromErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, types.ErrNotFound):
		ErrorResponse(w, r, http.StatusNotFound, "Resource not found")
	case errors.Is(err, types.ErrConflict):
		ErrorResponse(w, r, http.StatusConflict, "Resource already exists")
	case errors.Is(err, types.ErrUnauthenticated):
		ErrorResponse(w, r, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, types.ErrForbidden):
		ErrorResponse(w, r, http.StatusForbidden, "Insufficient permissions")
	case errors.Is(err, types.ErrBadRequest):
		ErrorResponse(w, r, http.StatusBadRequest, "Invalid request")
	case errors.Is(err, types.ErrTooManyRequests):
		ErrorResponse(w, r, http.StatusTooManyRequests, "Too many requests")
	case errors.Is(err, types.ErrInternal):
		ErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
	default:
		slog.ErrorContext(r.Context(), "Unexpected error",
			slog.Any("error", err),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		ErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
	}
}

// WriteJSONResponse encodes the data to JSON and writes the response header and body.
func WriteJSONResponse(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}

	js, err := json.Marshal(data)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to marshal JSON response",
			slog.Any("error", err),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err = w.Write(js); err != nil {
		slog.ErrorContext(r.Context(), "Failed to write response body",
			slog.Any("error", err),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	}
}

// DecodeJSONBody reads and decodes a JSON request body safely.
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	// Cap the body size to prevent abuse.
	maxBytes := 1_048_576
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)

		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")

		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q (wanted %s)", unmarshalTypeError.Field, unmarshalTypeError.Type)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)

		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")

		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			fieldName = strings.Trim(fieldName, `"`)
			return fmt.Errorf("body contains unknown key %q", fieldName)

		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytesError.Limit)

		case errors.As(err, &invalidUnmarshalError):
			panic(fmt.Errorf("developer error: invalid argument passed to json.Unmarshal: %w", err))

		default:
			return fmt.Errorf("error decoding JSON body: %w", err)
		}
	}

	// Reject trailing data after the first JSON object.
	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// ParsePageRequest reads pageNumber, size and sort query parameters.
// sortable whitelists the properties accepted in "property,asc|desc" form;
// an unknown property falls back to the repository's default ordering.
func ParsePageRequest(r *http.Request, sortable map[string]string) types.PageRequest {
	q := r.URL.Query()

	req := types.PageRequest{Size: defaultPageSize}

	if v := q.Get("pageNumber"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			req.PageNumber = n
		}
	}
	if v := q.Get("size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			if n > maxPageSize {
				n = maxPageSize
			}
			req.Size = n
		}
	}
	if v := q.Get("sort"); v != "" {
		parts := strings.SplitN(v, ",", 2)
		if col, ok := sortable[parts[0]]; ok {
			req.SortField = col
			req.SortDesc = len(parts) == 2 && strings.EqualFold(parts[1], "desc")
		}
	}
	return req
}
