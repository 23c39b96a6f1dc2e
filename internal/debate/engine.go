package debate

import (
	"context"
	"errors"
	"fmt"

	"github.com/qmuntal/stateless"

	"github.com/blindpanel/blindpanel-go/internal/llm"
	"github.com/blindpanel/blindpanel-go/internal/logger"
)

// FSM states. One run walks Init -> Round (re-entered per round) ->
// Synthesis -> Done, or lands in Error.
var (
	stateInit      stateless.State = "Init"
	stateRound     stateless.State = "Round"
	stateSynthesis stateless.State = "Synthesis"
	stateDone      stateless.State = "Done"
	stateError     stateless.State = "Error"
)

// FSM triggers.
var (
	triggerStart       stateless.Trigger = "Start"
	triggerNextRound   stateless.Trigger = "NextRound"
	triggerRoundsDone  stateless.Trigger = "RoundsDone"
	triggerSynthesized stateless.Trigger = "Synthesized"
	triggerFailed      stateless.Trigger = "Failed"
)

// Engine runs debates through a Caller. Stateless itself; every run owns
// its histories and transcript exclusively.
type Engine struct {
	caller Caller
}

func NewEngine(caller Caller) *Engine {
	return &Engine{caller: caller}
}

// runState is the mutable context threaded through one run's FSM actions.
type runState struct {
	prompts    promptBuilder
	agents     []Agent
	rounds     int
	histories  map[string][]llm.Message
	transcript []Turn
	round      int
	answer     string
	lastErr    error
}

// Run executes a debate: rounds sequential over agents in fixed order,
// then one synthesis turn by the moderator at round rounds+1.
func (e *Engine) Run(ctx context.Context, question string, agents []Agent, rounds int) (*Result, error) {
	if len(agents) == 0 {
		return nil, errors.New("debate needs at least one agent")
	}
	if rounds < 1 {
		return nil, fmt.Errorf("debate needs at least one round, got %d", rounds)
	}
	seen := make(map[string]bool, len(agents))
	for _, a := range agents {
		if seen[a.ID] {
			return nil, fmt.Errorf("duplicate agent id %q", a.ID)
		}
		seen[a.ID] = true
	}

	st := &runState{
		prompts:   promptBuilder{question: question},
		agents:    agents,
		rounds:    rounds,
		histories: make(map[string][]llm.Message, len(agents)),
	}
	for _, a := range agents {
		st.histories[a.ID] = []llm.Message{{Role: llm.RoleSystem, Content: systemPrompt(a)}}
	}

	fsm := stateless.NewStateMachine(stateInit)
	fsm.Configure(stateInit).
		Permit(triggerStart, stateRound)

	fsm.Configure(stateRound).
		PermitReentry(triggerNextRound).
		Permit(triggerRoundsDone, stateSynthesis).
		Permit(triggerFailed, stateError).
		OnEntry(func(ctx context.Context, _ ...any) error {
			st.round++
			logger.L.Debug("debate round starting", "round", st.round, "agents", len(st.agents))
			if err := e.playRound(ctx, st); err != nil {
				st.lastErr = err
				return fsm.FireCtx(ctx, triggerFailed)
			}
			if st.round < st.rounds {
				return fsm.FireCtx(ctx, triggerNextRound)
			}
			return fsm.FireCtx(ctx, triggerRoundsDone)
		})

	fsm.Configure(stateSynthesis).
		Permit(triggerSynthesized, stateDone).
		Permit(triggerFailed, stateError).
		OnEntry(func(ctx context.Context, _ ...any) error {
			if err := e.synthesize(ctx, st); err != nil {
				st.lastErr = err
				return fsm.FireCtx(ctx, triggerFailed)
			}
			return fsm.FireCtx(ctx, triggerSynthesized)
		})

	if err := fsm.FireCtx(ctx, triggerStart); err != nil {
		return nil, fmt.Errorf("debate state machine: %w", err)
	}

	current, err := fsm.State(ctx)
	if err != nil {
		return nil, fmt.Errorf("debate state machine: %w", err)
	}
	if current != stateDone {
		if st.lastErr != nil {
			return nil, st.lastErr
		}
		return nil, fmt.Errorf("debate ended in unexpected state %v", current)
	}
	return &Result{Answer: st.answer, Transcript: st.transcript}, nil
}

// playRound runs one full round, strictly one agent after another. Round
// r+1 prompts depend on r's complete output, so there is no intra-round
// concurrency.
func (e *Engine) playRound(ctx context.Context, st *runState) error {
	for _, agent := range st.agents {
		var prompt string
		if st.round == 1 {
			prompt = st.prompts.build(promptOpening, st.round, nil)
		} else {
			prompt = st.prompts.build(promptRebuttal, st.round, peersFor(st.transcript, st.round-1, agent.ID))
		}
		st.histories[agent.ID] = append(st.histories[agent.ID], llm.Message{Role: llm.RoleUser, Content: prompt})

		out, err := e.caller.Generate(ctx, agent, st.histories[agent.ID])
		if err != nil {
			return fmt.Errorf("round %d, agent %s: %w", st.round, agent.ID, err)
		}
		st.histories[agent.ID] = append(st.histories[agent.ID], llm.Message{Role: llm.RoleAssistant, Content: out})
		st.transcript = append(st.transcript, Turn{
			Round:     st.round,
			AgentID:   agent.ID,
			AgentName: agent.Name,
			Provider:  agent.Provider,
			Model:     agent.Model,
			Content:   out,
		})
	}
	return nil
}

// synthesize has the moderator fold the whole transcript into one answer,
// using its own accumulated history, recorded at round rounds+1.
func (e *Engine) synthesize(ctx context.Context, st *runState) error {
	mod := moderatorOf(st.agents)
	prompt := st.prompts.build(promptSynthesis, 0, st.transcript)
	st.histories[mod.ID] = append(st.histories[mod.ID], llm.Message{Role: llm.RoleUser, Content: prompt})

	out, err := e.caller.Generate(ctx, mod, st.histories[mod.ID])
	if err != nil {
		return fmt.Errorf("synthesis by agent %s: %w", mod.ID, err)
	}
	st.histories[mod.ID] = append(st.histories[mod.ID], llm.Message{Role: llm.RoleAssistant, Content: out})
	st.transcript = append(st.transcript, Turn{
		Round:     st.rounds + 1,
		AgentID:   mod.ID,
		AgentName: mod.Name,
		Provider:  mod.Provider,
		Model:     mod.Model,
		Content:   out,
	})
	st.answer = out
	return nil
}

// peersFor returns the given round's turns excluding the acting agent's own.
func peersFor(transcript []Turn, round int, selfID string) []Turn {
	var peers []Turn
	for _, t := range transcript {
		if t.Round == round && t.AgentID != selfID {
			peers = append(peers, t)
		}
	}
	return peers
}

// moderatorOf picks the moderator-flagged agent, else the first.
func moderatorOf(agents []Agent) Agent {
	for _, a := range agents {
		if a.Moderator {
			return a
		}
	}
	return agents[0]
}
