package iospecify

import (
	"context"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"
)

// RetryBaseDelay is the first backoff delay. It doubles with every
// attempt. Tests override it to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

// doWithRetry sends a request and repeats it on 429 and 5xx statuses up to
// maxRetries times. The last response is returned as is when retries are
// exhausted. Zero maxRetries sends the request once.
func doWithRetry(
	ctx context.Context,
	hc *http.Client,
	newReq func() (*http.Request, error),
	maxRetries int,
) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		req, err := newReq()
		if err != nil {
			return nil, err
		}
		resp, err := hc.Do(req)
		if err != nil {
			return nil, err
		}
		if !retriable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		slog.Warn("Retrying request", "url", req.URL.String(),
			"status", resp.StatusCode, "backoff", backoff,
			"attempt", attempt+1, "max", maxRetries)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

func retriable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
