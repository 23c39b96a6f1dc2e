package debate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpeningPrompt(t *testing.T) {
	b := promptBuilder{question: "is the moon a planet?"}
	p := b.build(promptOpening, 1, nil)
	require.Contains(t, p, "is the moon a planet?")
	for _, label := range []string{"ANSWER:", "REASONING:", "QUESTIONS FOR PEERS:", "CONFIDENCE:"} {
		require.Contains(t, p, label)
	}
}

func TestRebuttalPromptTruncatesPeerTurns(t *testing.T) {
	long := strings.Repeat("y", peerExcerptLimit+200)
	b := promptBuilder{question: "q"}
	p := b.build(promptRebuttal, 2, []Turn{{Round: 1, AgentName: "Beta", Content: long}})

	require.Contains(t, p, "Beta:")
	require.Contains(t, p, "…")
	require.NotContains(t, p, long)
	require.Contains(t, p, long[:peerExcerptLimit])
	for _, label := range []string{"CRITIQUE:", "POSITION:", "QUESTIONS:", "CONFIDENCE:"} {
		require.Contains(t, p, label)
	}
}

func TestSynthesisPromptLabelsEveryTurn(t *testing.T) {
	b := promptBuilder{question: "q"}
	p := b.build(promptSynthesis, 0, []Turn{
		{Round: 1, AgentName: "Alpha", Content: "first"},
		{Round: 2, AgentName: "Beta", Content: "second"},
	})
	require.Contains(t, p, "[round 1] Alpha:")
	require.Contains(t, p, "[round 2] Beta:")
	for _, label := range []string{"FINAL ANSWER:", "JUSTIFICATION:", "REMAINING UNCERTAINTY:", "CONFIDENCE:"} {
		require.Contains(t, p, label)
	}
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "short", truncate("short", 10))
	require.Equal(t, "exact", truncate("exact", 5))
	require.Equal(t, "ab…", truncate("abcd", 2))
	// Rune-safe on multibyte input.
	require.Equal(t, "héll…", truncate("héllo wörld", 4))
}
