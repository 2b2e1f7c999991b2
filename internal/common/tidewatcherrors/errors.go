// Package tidewatcherrors contains generic errors that should be returned by code handling HTTP requests.
// The server middleware looks for the error types defined in this file and sets the HTTP
// response status accordingly.
//
// If multiple errors occur in some function, that function should return an error of type
// multierror.Error from package github.com/hashicorp/go-multierror that encapsulates those
// individual errors.
package tidewatcherrors

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// ErrMissingCredentials is returned by an auth service when a request carries no credentials
// the service knows how to handle. Authentication falls through to the next configured service.
type ErrMissingCredentials struct {
	// Name of the auth service that rejected the request
	AuthService string
	// Optional message included with the error message
	Message string
}

func (err *ErrMissingCredentials) Error() (s string) {
	if err.AuthService != "" {
		s = fmt.Sprintf("no credentials provided for auth service %q", err.AuthService)
	} else {
		s = "no credentials provided"
	}
	if err.Message != "" {
		s = s + fmt.Sprintf("; %s", err.Message)
	}
	return
}

// ErrInvalidCredentials is returned when credentials were provided but failed validation,
// e.g., a wrong password or an expired token.
type ErrInvalidCredentials struct {
	// Principal that attempted to authenticate
	Username string
	// Name of the auth service that rejected the credentials
	AuthService string
	// Optional message included with the error message
	Message string
}

func (err *ErrInvalidCredentials) Error() (s string) {
	if err.Username != "" {
		s = fmt.Sprintf("invalid credentials for user %q", err.Username)
	} else {
		s = "invalid credentials"
	}
	if err.AuthService != "" {
		s = s + fmt.Sprintf(" (auth service %q)", err.AuthService)
	}
	if err.Message != "" {
		s = s + fmt.Sprintf("; %s", err.Message)
	}
	return
}

// ErrNotFound is a generic error to be returned whenever some resource isn't found.
// Type and Message are optional and are omitted from the error message if not provided.
type ErrNotFound struct {
	Type    string // Resource type, e.g., "sheet" or "file"
	Value   string // Resource name, e.g., "input.xlsx"
	Message string // An optional message to include in the error message
}

func (err *ErrNotFound) Error() (s string) {
	if err.Type != "" {
		s = fmt.Sprintf("resource %q of type %q does not exist", err.Value, err.Type)
	} else {
		s = fmt.Sprintf("resource %q does not exist", err.Value)
	}
	if err.Message != "" {
		return s + fmt.Sprintf("; %s", err.Message)
	}
	return s
}

// ErrSourceUnavailable is returned when the backing data source (e.g., the jobs spreadsheet)
// is missing or cannot be opened. Loads treat it as a degraded, not fatal, condition.
type ErrSourceUnavailable struct {
	Path string // Location of the source that could not be read
	Err  error  // Underlying cause, may be nil
}

func (err *ErrSourceUnavailable) Error() string {
	if err.Err != nil {
		return fmt.Sprintf("source %q unavailable: %s", err.Path, err.Err)
	}
	return fmt.Sprintf("source %q unavailable", err.Path)
}

func (err *ErrSourceUnavailable) Unwrap() error {
	return err.Err
}

// ErrInvalidArgument is a generic error to be returned on invalid argument.
// Message is optional and is omitted from the error message if not provided.
type ErrInvalidArgument struct {
	Name    string      // Name of the field referred to, e.g., "pageSize"
	Value   interface{} // The invalid value that was provided
	Message string      // An optional message to include with the error message
}

func (err *ErrInvalidArgument) Error() string {
	if err.Message == "" {
		return fmt.Sprintf("value %q is invalid for field %q", err.Value, err.Name)
	}
	return fmt.Sprintf("value %q is invalid for field %q; %s", err.Value, err.Name, err.Message)
}

// CodeFromError maps error types to HTTP status codes.
// Uses errors.As to look through the chain of errors, as opposed to just considering the
// topmost error in the chain.
func CodeFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	{
		var e *ErrMissingCredentials
		if errors.As(err, &e) {
			return http.StatusUnauthorized
		}
	}
	{
		var e *ErrInvalidCredentials
		if errors.As(err, &e) {
			return http.StatusUnauthorized
		}
	}
	{
		var e *ErrNotFound
		if errors.As(err, &e) {
			return http.StatusNotFound
		}
	}
	{
		var e *ErrInvalidArgument
		if errors.As(err, &e) {
			return http.StatusBadRequest
		}
	}
	{
		var e *ErrSourceUnavailable
		if errors.As(err, &e) {
			return http.StatusServiceUnavailable
		}
	}
	return http.StatusInternalServerError
}

// IsAuthError returns true if err indicates an authentication failure, i.e., missing or
// invalid credentials somewhere in the chain of errors.
func IsAuthError(err error) bool {
	var missing *ErrMissingCredentials
	var invalid *ErrInvalidCredentials
	return errors.As(err, &missing) || errors.As(err, &invalid)
}
