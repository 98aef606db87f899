package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 10 * time.Second

	// MaxFetchBytes caps a fetched body. Label image sources are small;
	// anything larger is a mistake or abuse.
	MaxFetchBytes = 8 << 20
)

var (
	// ErrNotFound is returned when the resource does not exist (HTTP 404).
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")

	// ErrTooLarge is returned when the response body exceeds MaxFetchBytes.
	ErrTooLarge = errors.New("response too large")
)

// NewHTTPClient creates an HTTP client with a standard timeout for
// fetching remote resources.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: DefaultTimeout}
}

// FetchBytes performs an HTTP GET and returns the response body, retrying
// transient failures automatically. Pass nil for client to use a default
// one with the standard timeout.
//
// Error mapping:
//   - 404 returns [ErrNotFound]
//   - 5xx and 429 responses and network errors retry, then return [ErrNetwork]
//   - other non-200 statuses return [ErrNetwork] without retrying
//   - bodies over [MaxFetchBytes] return [ErrTooLarge]
func FetchBytes(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if client == nil {
		client = NewHTTPClient()
	}

	var data []byte
	fetch := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}

		resp, err := client.Do(req)
		if err != nil {
			return &RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
		}
		defer resp.Body.Close()

		if err := checkStatus(resp.StatusCode); err != nil {
			return err
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, MaxFetchBytes+1))
		if err != nil {
			return &RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
		}
		if len(body) > MaxFetchBytes {
			return ErrTooLarge
		}
		data = body
		return nil
	}

	if err := RetryWithBackoff(ctx, fetch); err != nil {
		return nil, err
	}
	return data, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500 || code == http.StatusTooManyRequests:
		return &RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
