package llm

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Anthropic requires max_tokens; applied when the request leaves it unset.
const anthropicDefaultMaxTokens = 1024

// anthropicBackend covers the Anthropic family. System messages are lifted
// out of the message list into the dedicated system field, and only
// user/assistant turns remain in the list itself.
type anthropicBackend struct {
	client anthropic.Client
}

func newAnthropicBackend(apiKey string) *anthropicBackend {
	return &anthropicBackend{client: anthropic.NewClient(option.WithAPIKey(apiKey))}
}

func (b *anthropicBackend) generate(ctx context.Context, req Request) (string, error) {
	system, msgs := toAnthropicMessages(req.Messages)

	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = anthropicDefaultMaxTokens
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		Messages:  msgs,
		MaxTokens: maxTokens,
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Type: "text", Text: system}}
	}
	if req.Temperature != nil {
		params.Temperature = anthropic.Float(float64(*req.Temperature))
	}

	message, err := b.client.Messages.New(ctx, params)
	if err != nil {
		return "", translateAnthropicError(req, err)
	}
	for _, block := range message.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", nil
}

func toAnthropicMessages(msgs []Message) (system string, out []anthropic.MessageParam) {
	var sys []string
	for _, m := range msgs {
		switch m.Role {
		case RoleSystem:
			sys = append(sys, m.Content)
		case RoleAssistant:
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	return strings.Join(sys, "\n\n"), out
}

func translateAnthropicError(req Request, err error) error {
	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	if apiErr.StatusCode == http.StatusNotFound {
		return &ModelNotFoundError{Provider: req.Provider, Model: req.Model, Err: err}
	}
	if retryable(apiErr.StatusCode) {
		return &RateLimitedError{
			StatusCode: apiErr.StatusCode,
			Hint:       anthropicRetryAfter(apiErr.Response),
			Err:        err,
		}
	}
	return err
}

func anthropicRetryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	v := resp.Header.Get("retry-after")
	if v == "" {
		return 0
	}
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}
