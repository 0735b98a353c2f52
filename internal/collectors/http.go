package collectors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

const (
	maxAttempts = 5
	maxBackoff  = 30 * time.Second
	userAgent   = "crossarb-scanner/1.0"
)

// APIError is returned when a venue answers with a non-retryable status.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api status %d: %s", e.Status, e.Body)
}

// RetryPolicy controls GetJSON's backoff. The zero value uses the defaults.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
}

func (p RetryPolicy) attempts() int {
	if p.Attempts <= 0 {
		return maxAttempts
	}
	return p.Attempts
}

func (p RetryPolicy) delay(attempt int, status int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = time.Second
	}
	backoff := base * time.Duration(1<<uint(attempt-1))
	if status == http.StatusTooManyRequests {
		backoff *= 2
	}
	if backoff > maxBackoff {
		backoff = maxBackoff
	}
	return backoff
}

// GetJSON issues a GET against rawURL with the given query and headers and
// decodes a 2xx body into dst. Transport errors, 429 and 5xx responses are
// retried with exponential backoff; other statuses fail immediately.
func GetJSON(ctx context.Context, client *http.Client, rawURL string, query map[string]string, headers map[string]string, policy RetryPolicy, dst any) error {
	if client == nil {
		return fmt.Errorf("collectors: http client is required")
	}
	var lastErr error
	for attempt := 1; attempt <= policy.attempts(); attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return err
		}
		q := req.URL.Query()
		for k, v := range query {
			q.Set(k, v)
		}
		req.URL.RawQuery = q.Encode()
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		status, err := doOnce(client, req, dst)
		if err == nil {
			return nil
		}
		lastErr = err
		if !shouldRetry(status) {
			return err
		}
		if attempt == policy.attempts() {
			break
		}
		if err := sleep(ctx, policy.delay(attempt, status)); err != nil {
			return err
		}
	}
	return fmt.Errorf("after %d attempts: %w", policy.attempts(), lastErr)
}

func doOnce(client *http.Client, req *http.Request, dst any) (int, error) {
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			return resp.StatusCode, &APIError{Status: resp.StatusCode, Body: "decode: " + err.Error()}
		}
		return resp.StatusCode, nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return resp.StatusCode, &APIError{Status: resp.StatusCode, Body: string(body)}
}

func shouldRetry(status int) bool {
	if status == 0 {
		return true
	}
	return status == http.StatusTooManyRequests || status >= 500
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// FlexFloat decodes JSON numbers that venues sometimes send as strings.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*f = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*f = FlexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = FlexFloat(v)
	return nil
}
