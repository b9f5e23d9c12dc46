package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Input errors are raised before any request is sent.
var (
	ErrNoFile      = errors.New("no file provided")
	ErrNoText      = errors.New("no text provided")
	ErrNotLoggedIn = errors.New("user not logged in")
)

// ErrUnauthorized matches any call the backend rejected with 401. By the time
// it is returned the stored session has already been cleared.
var ErrUnauthorized = errors.New("unauthorized")

// StatusError is a non-2xx response from the backend.
type StatusError struct {
	Method  string
	Path    string
	Status  int
	Message string // backend "error" or "detail" field, when present
}

func (e *StatusError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.Status, msg)
}

// Unwrap lets errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *StatusError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// InputError reports request fields that failed validation.
type InputError struct {
	Fields []string
	Err    error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input: %s", strings.Join(e.Fields, ", "))
}

func (e *InputError) Unwrap() error {
	return e.Err
}

func newStatusError(method, path string, status int, body []byte) *StatusError {
	se := &StatusError{Method: method, Path: path, Status: status}
	var payload struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			se.Message = payload.Error
		} else {
			se.Message = payload.Detail
		}
	}
	return se
}
