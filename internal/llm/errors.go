package llm

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Sentinel errors for failures that carry no extra data.
var (
	ErrCredentialMissing = errors.New("credential missing")
	ErrEmptyResponse     = errors.New("backend returned empty response")
	ErrTimeout           = errors.New("call timed out")
)

// RateLimitedError marks a retryable backend failure (429 or any 5xx).
// Hint is the server-supplied suggested wait, zero when absent.
type RateLimitedError struct {
	StatusCode int
	Hint       time.Duration
	Err        error
}

func (e *RateLimitedError) Error() string {
	if e.Hint > 0 {
		return fmt.Sprintf("backend rate limited (status %d, retry hint %s): %v", e.StatusCode, e.Hint, e.Err)
	}
	return fmt.Sprintf("backend rate limited (status %d): %v", e.StatusCode, e.Err)
}

func (e *RateLimitedError) Unwrap() error { return e.Err }

// ModelNotFoundError marks a non-retryable failure for one model id.
// The quota adapter advances to the next fallback candidate on it.
type ModelNotFoundError struct {
	Provider Provider
	Model    string
	Err      error
}

func (e *ModelNotFoundError) Error() string {
	return fmt.Sprintf("model %s/%s not found: %v", e.Provider, e.Model, e.Err)
}

func (e *ModelNotFoundError) Unwrap() error { return e.Err }

// retryable reports whether a status code warrants a retry of the same model.
func retryable(status int) bool {
	return status == 429 || status >= 500
}

// OpenAI-style 429 bodies embed the suggested wait in prose, e.g.
// "Rate limit reached ... Please try again in 5s." or "... in 820ms."
var retryHintPattern = regexp.MustCompile(`(?i)try again in\s+([0-9]+(?:\.[0-9]+)?)\s*(ms|s)`)

func parseRetryHint(msg string) time.Duration {
	m := retryHintPattern.FindStringSubmatch(msg)
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	unit := time.Second
	if m[2] == "ms" {
		unit = time.Millisecond
	}
	return time.Duration(v * float64(unit))
}
