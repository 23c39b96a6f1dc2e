package experiment

import (
	"github.com/blindpanel/blindpanel-go/internal/debate"
	"github.com/blindpanel/blindpanel-go/internal/llm"
)

const (
	plainSystem = "You are a careful, knowledgeable assistant. Answer the question directly and completely."

	primedPersona = "You are a senior domain expert with decades of experience. Weigh evidence " +
		"carefully, state your assumptions, and give the answer a thoughtful specialist would give."

	advocatePersona   = "You argue for the strongest affirmative reading of the question and build the best possible case for it."
	skepticPersona    = "You stress-test every claim, hunt for counterexamples, and argue the strongest opposing case."
	pragmatistPersona = "You weigh the practical consequences of each position and push the group toward a workable conclusion."
)

// DefaultRunners builds the four canonical condition runners: a plain
// single call and a role-primed single call on the primary provider, a
// mixed-backend debate across both providers, and a same-backend
// multi-role panel on the primary provider.
func DefaultRunners(engine *debate.Engine, caller debate.Caller, primary, secondary llm.Provider, rounds int) []Runner {
	single := debate.Agent{ID: "solo", Name: "Solo", Provider: primary}
	primed := debate.Agent{ID: "expert", Name: "Expert", Provider: primary}

	mixed := []debate.Agent{
		{ID: "advocate", Name: "Advocate", Provider: primary, Persona: advocatePersona, Moderator: true},
		{ID: "skeptic", Name: "Skeptic", Provider: secondary, Persona: skepticPersona},
	}
	panel := []debate.Agent{
		{ID: "optimist", Name: "Optimist", Provider: primary, Persona: advocatePersona},
		{ID: "skeptic", Name: "Skeptic", Provider: primary, Persona: skepticPersona},
		{ID: "pragmatist", Name: "Pragmatist", Provider: primary, Persona: pragmatistPersona, Moderator: true},
	}

	return []Runner{
		NewSingleCall(ConditionSingle, single, plainSystem, caller),
		NewSingleCall(ConditionPrimed, primed, plainSystem+"\n\n"+primedPersona, caller),
		NewDebateBacked(ConditionMixedDebate, engine, mixed, rounds),
		NewDebateBacked(ConditionPanelDebate, engine, panel, rounds),
	}
}
