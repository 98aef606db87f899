// Package httputil provides HTTP utilities for fetching remote label
// resources.
//
// # Overview
//
// Image items may reference http(s) sources; previews pull them through
// this package:
//
//   - [FetchBytes]: bounded GET with retry for transient failures
//   - [Retry]: automatic retry with exponential backoff
//
// # Fetching
//
// [FetchBytes] GETs a URL and returns the body, capped at [MaxFetchBytes].
// A 404 maps to [ErrNotFound]; 5xx responses and network errors retry,
// other statuses fail immediately:
//
//	data, err := httputil.FetchBytes(ctx, nil, src)
//	if errors.Is(err, httputil.ErrNotFound) {
//	    // render a placeholder instead
//	}
//
// # Retry
//
// [Retry] wraps requests with automatic retry for transient failures.
// It only retries errors wrapped with [RetryableError]; everything else
// returns immediately. The delay doubles after each failed attempt:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return fetchOnce()
//	})
//
// # Configuration
//
// Default settings are suitable for most use cases:
//
//   - Request timeout: 10 seconds
//   - Response cap: 8 MiB
//   - Max retries: 3
//   - Base backoff: 1 second
package httputil
