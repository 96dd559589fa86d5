package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

// TokenSource supplies the opaque bearer credential for authenticated
// calls. Issuance and validation live outside this core.
type TokenSource func() string

// errServerFault marks 5xx responses inside the breaker so repeated
// backend faults open it just like transport errors do.
var errServerFault = errors.New("backend fault")

// Client is a thin JSON client for the storefront backend. All the
// typed APIs (cart, order, payment, review) share it. A circuit breaker
// in front of the transport sheds load from a backend that keeps
// failing instead of hammering it with every page interaction.
type Client struct {
	baseURL string
	http    *http.Client
	token   TokenSource
	breaker *gobreaker.CircuitBreaker[*http.Response]
}

func NewClient(baseURL string, token TokenSource) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		token:   token,
		breaker: gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
			Name:        "storefront-backend",
			MaxRequests: 3,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

// do issues one request and decodes the JSON response into out (when out
// is non-nil). Non-2xx statuses are mapped to the package sentinels so
// callers can branch with errors.Is.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if t := c.token(); t != "" {
			req.Header.Set("Authorization", "Bearer "+t)
		}
	}

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return resp, errServerFault
		}
		return resp, nil
	})
	if resp == nil {
		// Transport failure or open breaker.
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if err := statusToError(resp); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func statusToError(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrConflict, readErrorMessage(resp))
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, readErrorMessage(resp))
	default:
		return fmt.Errorf("backend returned %d: %s", resp.StatusCode, readErrorMessage(resp))
	}
}

func readErrorMessage(resp *http.Response) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || payload.Error == "" {
		return resp.Status
	}
	return payload.Error
}
