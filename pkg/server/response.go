package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"storybook/pkg/storytree"
)

const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeInvalidPayload  = "INVALID_PAYLOAD"
	CodeNotFound        = "NOT_FOUND"
	CodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
	CodeRequest         = "REQUEST_ERROR"
	CodeServer          = "SERVER_ERROR"
)

// APIResponse is the envelope of every /api/v1 response.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func ok(data any) APIResponse {
	return APIResponse{Success: true, Data: data}
}

func fail(code, msg string, details map[string]any) APIResponse {
	return APIResponse{Error: &APIError{Code: code, Message: msg, Details: details}}
}

// errorResponse maps domain errors to a status and envelope. Unknown errors
// are reported without their text.
func errorResponse(err error) (int, APIResponse) {
	var verr *storytree.ValidationError
	var herr *echo.HTTPError

	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, fail(CodeValidation, verr.Error(), map[string]any{"problems": verr.Problems})
	case errors.Is(err, storytree.ErrPayload):
		return http.StatusBadRequest, fail(CodeInvalidPayload, err.Error(), nil)
	case errors.As(err, &herr):
		return herr.Code, fail(codeForStatus(herr.Code), fmt.Sprint(herr.Message), nil)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, fail(CodeServer, "request cancelled", nil)
	default:
		return http.StatusInternalServerError, fail(CodeServer, "internal server error", nil)
	}
}

func codeForStatus(status int) string {
	switch {
	case status == http.StatusBadRequest:
		return CodeInvalidPayload
	case status == http.StatusNotFound:
		return CodeNotFound
	case status == http.StatusRequestEntityTooLarge:
		return CodePayloadTooLarge
	case status == http.StatusUnprocessableEntity:
		return CodeValidation
	case status >= http.StatusInternalServerError:
		return CodeServer
	default:
		return CodeRequest
	}
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, resp := errorResponse(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "path", c.Path(), "error", err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, resp)
	}
	if err != nil {
		log.Error("writing error response", "error", err)
	}
}
