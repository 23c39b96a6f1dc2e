// Package debate runs multi-round multi-agent conversations that converge
// on one synthesized answer.
package debate

import (
	"context"

	"github.com/blindpanel/blindpanel-go/internal/llm"
)

// Agent is one debate participant. Immutable for the lifetime of a run.
type Agent struct {
	ID        string
	Name      string
	Provider  llm.Provider
	Model     string
	Persona   string
	Moderator bool
}

// Turn is one produced contribution, appended to the run transcript in
// generation order. The synthesis turn carries round = rounds+1.
type Turn struct {
	Round     int          `json:"round"`
	AgentID   string       `json:"agent_id"`
	AgentName string       `json:"agent_name"`
	Provider  llm.Provider `json:"provider"`
	Model     string       `json:"model"`
	Content   string       `json:"content"`
}

// Result is a completed debate: the moderator's synthesized answer plus the
// full transcript.
type Result struct {
	Answer     string
	Transcript []Turn
}

// Caller dispatches one agent's accumulated conversation to its backend.
// The experiment layer implements it on top of the quota adapters; tests
// substitute scripted fakes.
type Caller interface {
	Generate(ctx context.Context, agent Agent, msgs []llm.Message) (string, error)
}
