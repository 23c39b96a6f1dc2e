// Package experiment fans one question out over four fixed generation
// conditions and folds the results into a blinded, order-randomized run.
package experiment

import (
	"context"
	"fmt"

	"github.com/blindpanel/blindpanel-go/internal/debate"
	"github.com/blindpanel/blindpanel-go/internal/llm"
)

// ConditionID names one of the four canonical generation strategies.
type ConditionID string

const (
	ConditionSingle      ConditionID = "single"
	ConditionPrimed      ConditionID = "primed"
	ConditionMixedDebate ConditionID = "mixed_debate"
	ConditionPanelDebate ConditionID = "panel_debate"
)

// ConditionOrder is the canonical slot order. Runner position i must carry
// ConditionOrder[i] so failed slots keep their identity.
var ConditionOrder = [4]ConditionID{ConditionSingle, ConditionPrimed, ConditionMixedDebate, ConditionPanelDebate}

func (c ConditionID) Label() string {
	switch c {
	case ConditionSingle:
		return "Single call"
	case ConditionPrimed:
		return "Role-primed call"
	case ConditionMixedDebate:
		return "Mixed-backend debate"
	case ConditionPanelDebate:
		return "Same-backend panel debate"
	}
	return string(c)
}

// Result is the uniform shape every condition produces.
type Result struct {
	Condition  ConditionID
	Label      string
	Answer     string
	Transcript []debate.Turn
}

// Runner executes one condition. Errors are not handled here; the
// coordinator converts them into placeholder results.
type Runner interface {
	Condition() ConditionID
	Run(ctx context.Context, question string) (Result, error)
}

// SingleCall is the one-exchange condition: one system/user pair, fixed
// parameters, a single synthetic transcript turn.
type SingleCall struct {
	id     ConditionID
	agent  debate.Agent
	system string
	caller debate.Caller
}

func NewSingleCall(id ConditionID, agent debate.Agent, system string, caller debate.Caller) *SingleCall {
	return &SingleCall{id: id, agent: agent, system: system, caller: caller}
}

func (s *SingleCall) Condition() ConditionID { return s.id }

func (s *SingleCall) Run(ctx context.Context, question string) (Result, error) {
	msgs := []llm.Message{
		{Role: llm.RoleSystem, Content: s.system},
		{Role: llm.RoleUser, Content: question},
	}
	out, err := s.caller.Generate(ctx, s.agent, msgs)
	if err != nil {
		return Result{}, fmt.Errorf("condition %s: %w", s.id, err)
	}
	return Result{
		Condition: s.id,
		Label:     s.id.Label(),
		Answer:    out,
		Transcript: []debate.Turn{{
			Round:     1,
			AgentID:   s.agent.ID,
			AgentName: s.agent.Name,
			Provider:  s.agent.Provider,
			Model:     s.agent.Model,
			Content:   out,
		}},
	}, nil
}

// DebateBacked delegates to the debate engine with a fixed roster and
// round count; answer and transcript are the debate's own.
type DebateBacked struct {
	id     ConditionID
	engine *debate.Engine
	agents []debate.Agent
	rounds int
}

func NewDebateBacked(id ConditionID, engine *debate.Engine, agents []debate.Agent, rounds int) *DebateBacked {
	return &DebateBacked{id: id, engine: engine, agents: agents, rounds: rounds}
}

func (d *DebateBacked) Condition() ConditionID { return d.id }

func (d *DebateBacked) Run(ctx context.Context, question string) (Result, error) {
	res, err := d.engine.Run(ctx, question, d.agents, d.rounds)
	if err != nil {
		return Result{}, fmt.Errorf("condition %s: %w", d.id, err)
	}
	return Result{
		Condition:  d.id,
		Label:      d.id.Label(),
		Answer:     res.Answer,
		Transcript: res.Transcript,
	}, nil
}
