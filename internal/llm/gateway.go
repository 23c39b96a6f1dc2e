package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blindpanel/blindpanel-go/internal/logger"
)

// Provider identifies a backend family reachable through the gateway.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// ParseProvider maps a config string onto the provider enum.
func ParseProvider(s string) (Provider, error) {
	switch Provider(strings.ToLower(strings.TrimSpace(s))) {
	case ProviderOpenAI:
		return ProviderOpenAI, nil
	case ProviderAnthropic:
		return ProviderAnthropic, nil
	}
	return "", fmt.Errorf("unknown provider %q", s)
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is the backend-neutral conversation unit. Each backend family
// translates it into its own shape (role naming, system handling).
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is one generation call. Temperature is optional; MaxTokens of 0
// lets the backend default apply.
type Request struct {
	Provider    Provider
	Model       string
	Messages    []Message
	Temperature *float32
	MaxTokens   int
}

// Gateway is the uniform call contract over heterogeneous backends.
// It is a minimal interface so tests can substitute a fake.
type Gateway interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Config controls gateway-wide behavior.
type Config struct {
	// CallTimeout is the hard per-call deadline. Zero means no extra deadline
	// beyond the caller's context.
	CallTimeout time.Duration
	// AllowPlaceholder substitutes a deterministic placeholder answer when a
	// provider has no credential, instead of failing the call.
	AllowPlaceholder bool
}

// Credentials maps a provider to its raw API key. An absent or empty entry
// means the provider is not usable.
type Credentials map[Provider]string

// backend is one backend family's translation of the generic call.
type backend interface {
	generate(ctx context.Context, req Request) (string, error)
}

// Service implements Gateway over the configured backend families.
type Service struct {
	cfg      Config
	backends map[Provider]backend
}

// New builds the gateway. Backends are only constructed for providers that
// have a credential; calls to the others hit the placeholder path.
func New(cfg Config, creds Credentials) *Service {
	s := &Service{cfg: cfg, backends: make(map[Provider]backend)}
	if key := creds[ProviderOpenAI]; key != "" {
		s.backends[ProviderOpenAI] = newOpenAIBackend(key)
	}
	if key := creds[ProviderAnthropic]; key != "" {
		s.backends[ProviderAnthropic] = newAnthropicBackend(key)
	}
	return s
}

// Generate performs one call against the requested provider. Exactly one of
// text or a typed error comes back; errors are never swallowed here.
func (s *Service) Generate(ctx context.Context, req Request) (string, error) {
	switch req.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return "", fmt.Errorf("unknown provider %q", req.Provider)
	}
	if latestUserContent(req.Messages) == "" {
		return "", fmt.Errorf("request has no user prompt")
	}

	be, ok := s.backends[req.Provider]
	if !ok {
		if s.cfg.AllowPlaceholder {
			logger.L.Warn("no credential for provider, returning placeholder", "provider", req.Provider, "model", req.Model)
			return placeholderAnswer(req.Messages), nil
		}
		return "", fmt.Errorf("provider %s: %w", req.Provider, ErrCredentialMissing)
	}

	callCtx := ctx
	if s.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.cfg.CallTimeout)
		defer cancel()
	}

	text, err := be.generate(callCtx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%s/%s after %s: %w", req.Provider, req.Model, s.cfg.CallTimeout, ErrTimeout)
		}
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%s/%s: %w", req.Provider, req.Model, ErrEmptyResponse)
	}
	return text, nil
}

const placeholderExcerptLimit = 80

// placeholderAnswer derives a clearly-marked deterministic stand-in from the
// latest user message so credential-less environments stay runnable.
func placeholderAnswer(msgs []Message) string {
	prompt := latestUserContent(msgs)
	runes := []rune(prompt)
	if len(runes) > placeholderExcerptLimit {
		prompt = string(runes[:placeholderExcerptLimit]) + "…"
	}
	return fmt.Sprintf("[placeholder response] No credential configured; echoing prompt: %s", prompt)
}

func latestUserContent(msgs []Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == RoleUser {
			return strings.TrimSpace(msgs[i].Content)
		}
	}
	return ""
}
