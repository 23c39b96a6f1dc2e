package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

// openaiBackend covers the OpenAI-compatible family. Roles map one to one
// and the system message stays inline in the message list.
type openaiBackend struct {
	client *openai.Client
}

func newOpenAIBackend(apiKey string) *openaiBackend {
	return &openaiBackend{client: openai.NewClient(apiKey)}
}

func (b *openaiBackend) generate(ctx context.Context, req Request) (string, error) {
	apiReq := openai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: toOpenAIMessages(req.Messages),
	}
	if req.Temperature != nil {
		apiReq.Temperature = *req.Temperature
	}
	if req.MaxTokens > 0 {
		apiReq.MaxTokens = req.MaxTokens
	}

	resp, err := b.client.CreateChatCompletion(ctx, apiReq)
	if err != nil {
		return "", translateOpenAIError(req, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s/%s: %w", req.Provider, req.Model, ErrEmptyResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

func toOpenAIMessages(msgs []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case RoleSystem:
			role = openai.ChatMessageRoleSystem
		case RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return out
}

// translateOpenAIError converts SDK errors into the gateway taxonomy.
func translateOpenAIError(req Request, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusNotFound || apiErr.Code == "model_not_found" {
			return &ModelNotFoundError{Provider: req.Provider, Model: req.Model, Err: err}
		}
		if retryable(apiErr.HTTPStatusCode) {
			return &RateLimitedError{
				StatusCode: apiErr.HTTPStatusCode,
				Hint:       parseRetryHint(apiErr.Message),
				Err:        err,
			}
		}
		return err
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == http.StatusNotFound {
			return &ModelNotFoundError{Provider: req.Provider, Model: req.Model, Err: err}
		}
		if retryable(reqErr.HTTPStatusCode) {
			return &RateLimitedError{StatusCode: reqErr.HTTPStatusCode, Err: err}
		}
	}
	return err
}
