package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrNotFound matches any 404 from the backend via errors.Is.
var ErrNotFound = errors.New("backend: not found")

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
	Path    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend: %s returned %d", e.Path, e.Status)
	}
	return fmt.Sprintf("backend: %s returned %d: %s", e.Path, e.Status, e.Message)
}

// Is makes errors.Is(err, ErrNotFound) true for 404 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// StatusOf returns the HTTP status carried by err, or 0 when err is not an
// *APIError.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// MessageOf returns the backend's message when err is an *APIError with one,
// and fallback otherwise.
func MessageOf(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// errorBody is the NestJS error shape; message is a string or a list.
type errorBody struct {
	Message json.RawMessage `json:"message"`
	Error   string          `json:"error"`
}

func parseAPIError(resp *http.Response, path string) *APIError {
	apiErr := &APIError{Status: resp.StatusCode, Path: path}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		apiErr.Message = decodeMessage(body.Message)
		if apiErr.Message == "" {
			apiErr.Message = body.Error
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(http.StatusText(resp.StatusCode))
	}
	return apiErr
}

func decodeMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, "; ")
	}
	return ""
}
