package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"buyback-pos/internal/backend"
)

// ValidationError is a local guard that stopped an action before any backend
// call was made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

var ErrStaleBill = errors.New("another bill is still open")

// Message turns any error coming out of a page action into the sentence shown
// inline on the page.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Message
	}

	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		return fmt.Sprintf("Request failed (%d %s)", apiErr.Status, http.StatusText(apiErr.Status))
	}

	switch {
	case errors.Is(err, ErrStaleBill):
		return "A previous bill is still open. Continue it or delete it first."
	case errors.Is(err, backend.ErrTimeout):
		return "The server did not answer in time. Please try again."
	case errors.Is(err, backend.ErrUnavailable):
		return "Cannot reach the server. Check the connection and try again."
	case errors.Is(err, context.Canceled):
		return "The request was cancelled."
	case errors.Is(err, backend.ErrNoSellLines):
		return "Select at least one item to sell."
	}
	return err.Error()
}
