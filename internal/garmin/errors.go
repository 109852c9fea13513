package garmin

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
)

var (
	// ErrConnection covers rejected credentials and an unreachable service.
	ErrConnection = errors.New("garmin connect connection error")
	// ErrTooManyRequests is returned when garmin connect answers with 429.
	ErrTooManyRequests = errors.New("garmin connect too many requests")
	ErrNotLoggedIn     = errors.New("not logged in")
)

// errFromStatus maps a non 2xx response to one of the package errors.
func errFromStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrConnection, resp.StatusCode)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", ErrTooManyRequests, resp.StatusCode)
	default:
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}
}

// loginError classifies an error from the token endpoint.
func loginError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		switch retrieveErr.Response.StatusCode {
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %s", ErrTooManyRequests, retrieveErr.Response.Status)
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %s", ErrConnection, retrieveErr.Response.Status)
		default:
			return fmt.Errorf("login: %w", err)
		}
	}
	// no response at all means the service was not reachable
	return fmt.Errorf("%w: %w", ErrConnection, err)
}

// Outcome is the metrics label for the result of a garmin call.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrConnection):
		return "connection_error"
	case errors.Is(err, ErrTooManyRequests):
		return "too_many_requests"
	default:
		return "error"
	}
}
