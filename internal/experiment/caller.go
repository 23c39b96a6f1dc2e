package experiment

import (
	"context"
	"fmt"

	"github.com/blindpanel/blindpanel-go/internal/debate"
	"github.com/blindpanel/blindpanel-go/internal/llm"
	"github.com/blindpanel/blindpanel-go/internal/quota"
)

// Fixed generation parameters across all conditions, so condition outputs
// differ only by strategy.
const (
	callTemperature float32 = 0.7
	callMaxTokens           = 1024
)

// Generator is the slice of the quota adapter the router dispatches to.
type Generator interface {
	Generate(ctx context.Context, req quota.Request) (string, error)
}

// ModelRef resolves one provider's preferred model and its ordered
// fallback list.
type ModelRef struct {
	Model     string
	Fallbacks []string
}

// Catalog is the per-provider model resolution handed in by configuration.
type Catalog map[llm.Provider]ModelRef

// BackendCaller implements debate.Caller by routing each agent's call to
// its provider's quota adapter, attaching the catalog fallback list.
type BackendCaller struct {
	adapters map[llm.Provider]Generator
	catalog  Catalog
}

func NewBackendCaller(adapters map[llm.Provider]Generator, catalog Catalog) *BackendCaller {
	return &BackendCaller{adapters: adapters, catalog: catalog}
}

func (c *BackendCaller) Generate(ctx context.Context, agent debate.Agent, msgs []llm.Message) (string, error) {
	ad, ok := c.adapters[agent.Provider]
	if !ok {
		return "", fmt.Errorf("no adapter for provider %q", agent.Provider)
	}
	ref := c.catalog[agent.Provider]
	model := agent.Model
	if model == "" {
		model = ref.Model
	}
	temp := callTemperature
	return ad.Generate(ctx, quota.Request{
		Model:       model,
		Fallbacks:   ref.Fallbacks,
		Messages:    msgs,
		Temperature: &temp,
		MaxTokens:   callMaxTokens,
	})
}
