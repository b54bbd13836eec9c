package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/clprng/internal/stream"
)

func writeBadRequest(c *echo.Context, msg string) error {
	code := stream.StatusInvalidArgument
	return writeError(c, http.StatusBadRequest, "invalid_request_error", &code, msg)
}

func writeNotFound(c *echo.Context, msg string) error {
	code := stream.StatusInvalidArgument
	return writeError(c, http.StatusNotFound, "not_found_error", &code, msg)
}

func writeError(c *echo.Context, httpStatus int, errType string, status *int, msg string) error {
	return writeJSON(c, httpStatus, map[string]any{
		"error": ErrorBody{
			Message: msg,
			Type:    errType,
			Status:  status,
		},
	})
}

// writeStreamError reports err with the HTTP status matching its stream
// status code.
func writeStreamError(c *echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return writeBadRequest(c, err.Error())
	case errors.Is(err, ErrNotFound):
		return writeNotFound(c, err.Error())
	case errors.Is(err, ErrTooManyStreams):
		return writeError(c, http.StatusTooManyRequests, "capacity_error", nil, "stream limit reached")
	}
	code := stream.Status(err)
	return writeError(c, httpStatus(code), stream.StatusText(code), &code, err.Error())
}

func httpStatus(code int) int {
	switch code {
	case stream.StatusOK:
		return http.StatusOK
	case stream.StatusUnknownAlgorithm, stream.StatusUnsupportedPrecision,
		stream.StatusRequestTooLarge, stream.StatusInvalidArgument:
		return http.StatusBadRequest
	case stream.StatusInvalidState:
		return http.StatusConflict
	case stream.StatusCompileError:
		return http.StatusUnprocessableEntity
	case stream.StatusAllocationError:
		return http.StatusInsufficientStorage
	case stream.StatusDeviceError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(c *echo.Context, status int, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Blob(status, echo.MIMEApplicationJSON, b)
}

// decodeJSON reads one JSON value and rejects unknown fields.
func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		if errors.Is(err, io.EOF) {
			return out, newInvalidRequest("request body is empty")
		}
		return out, newInvalidRequest(fmt.Sprintf("decode request: %v", err))
	}
	return out, nil
}
