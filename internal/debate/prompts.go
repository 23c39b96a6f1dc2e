package debate

import (
	"fmt"
	"strings"
)

// promptKind is the closed set of prompt formats the engine emits. Keeping
// the builder keyed by this enum keeps each format contract testable on
// its own.
type promptKind int

const (
	promptOpening promptKind = iota
	promptRebuttal
	promptSynthesis
)

const (
	// peerExcerptLimit bounds each peer turn quoted in a rebuttal prompt.
	peerExcerptLimit = 600
	// digestExcerptLimit bounds each turn quoted in the synthesis digest.
	digestExcerptLimit = 900
)

const rulesTemplate = `You are %s. %s

You are taking part in a structured multi-agent debate on a single question.
Follow the output format requested in each prompt exactly. Be rigorous and
concise, and change your position when a peer presents a stronger argument.`

// systemPrompt seeds an agent's private history with the debate rules and
// its persona.
func systemPrompt(a Agent) string {
	return fmt.Sprintf(rulesTemplate, a.Name, a.Persona)
}

// promptBuilder renders the prompt for one agent turn.
type promptBuilder struct {
	question string
}

func (b promptBuilder) build(kind promptKind, round int, peers []Turn) string {
	switch kind {
	case promptOpening:
		return b.opening()
	case promptRebuttal:
		return b.rebuttal(round, peers)
	default:
		return b.synthesis(peers)
	}
}

func (b promptBuilder) opening() string {
	return fmt.Sprintf(`Question: %s

Give your opening contribution in exactly this format:
ANSWER: your initial answer in one or two sentences
REASONING:
- supporting points as bullets
QUESTIONS FOR PEERS: questions you want the other participants to address
CONFIDENCE: a number from 0 to 100`, b.question)
}

func (b promptBuilder) rebuttal(round int, peers []Turn) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Round %d. The other participants said in the previous round:\n\n", round)
	for _, t := range peers {
		fmt.Fprintf(&sb, "%s:\n%s\n\n", t.AgentName, truncate(t.Content, peerExcerptLimit))
	}
	sb.WriteString(`Respond in exactly this format:
CRITIQUE: what is weakest in the peer arguments above
POSITION: defend or concede your previous answer, stating which
QUESTIONS: up to two questions for specific peers
CONFIDENCE: your updated confidence from 0 to 100`)
	return sb.String()
}

func (b promptBuilder) synthesis(transcript []Turn) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "The debate on the question below has ended.\n\nQuestion: %s\n\nTranscript:\n\n", b.question)
	for _, t := range transcript {
		fmt.Fprintf(&sb, "[round %d] %s:\n%s\n\n", t.Round, t.AgentName, truncate(t.Content, digestExcerptLimit))
	}
	sb.WriteString(`As moderator, synthesize the debate in exactly this format:
FINAL ANSWER: the single best answer to the question
JUSTIFICATION: why this answer, drawing on the strongest arguments
REMAINING UNCERTAINTY: what is still unresolved
CONFIDENCE: a number from 0 to 100`)
	return sb.String()
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
