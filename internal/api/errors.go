package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Code int
	// Message is the backend's own error text, when it sent one.
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend status %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("backend status %d", e.Code)
}

type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

func newStatusError(resp *http.Response) *StatusError {
	se := &StatusError{Code: resp.StatusCode}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(raw) == 0 {
		return se
	}
	var eb errorBody
	if json.Unmarshal(raw, &eb) == nil {
		se.Message = strings.TrimSpace(eb.Error)
		if se.Message == "" {
			se.Message = strings.TrimSpace(eb.Detail)
		}
	}
	return se
}

// Message reduces err to one line suitable for showing a user. Backend
// messages are used verbatim; anything else falls back to fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var se *StatusError
	if errors.As(err, &se) {
		if se.Message != "" {
			return se.Message
		}
		return fmt.Sprintf("Request failed with status code %d", se.Code)
	}
	return fallback
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}
