package quota

import (
	"fmt"
	"strings"

	"github.com/blindpanel/blindpanel-go/internal/llm"
)

// ExhaustedError marks a model whose retry budget ran out on retryable
// failures. Rate-limit exhaustion does not advance the fallback list.
type ExhaustedError struct {
	Provider llm.Provider
	Model    string
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s/%s: retries exhausted after %d attempts: %v", e.Provider, e.Model, e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// AllModelsUnavailableError marks a call whose every candidate was rejected.
// Err carries the preferred cause: the last retryable failure when one
// occurred, else the last not-found.
type AllModelsUnavailableError struct {
	Provider llm.Provider
	Models   []string
	Err      error
}

func (e *AllModelsUnavailableError) Error() string {
	return fmt.Sprintf("%s: all models unavailable (%s): %v", e.Provider, strings.Join(e.Models, ", "), e.Err)
}

func (e *AllModelsUnavailableError) Unwrap() error { return e.Err }
