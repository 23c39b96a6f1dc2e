package experiment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	id     ConditionID
	answer string
	err    error
}

func (f *fakeRunner) Condition() ConditionID { return f.id }

func (f *fakeRunner) Run(_ context.Context, _ string) (Result, error) {
	if f.err != nil {
		return Result{}, f.err
	}
	return Result{Condition: f.id, Label: f.id.Label(), Answer: f.answer}, nil
}

func healthyRunners() []Runner {
	out := make([]Runner, 0, 4)
	for _, id := range ConditionOrder {
		out = append(out, &fakeRunner{id: id, answer: "answer from " + string(id)})
	}
	return out
}

// identityPerm keeps blinding deterministic where a test needs it.
func identityPerm(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return p
}

func TestRun_FourBlindedResponsesWithLabelPermutation(t *testing.T) {
	c, err := NewCoordinator(healthyRunners(), Options{})
	require.NoError(t, err)

	run, err := c.Run(context.Background(), "  a question  ")
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)
	require.False(t, run.CreatedAt.IsZero())
	require.Equal(t, "a question", run.Question, "question must be trimmed")

	seen := map[string]bool{}
	for i, resp := range run.Responses {
		require.Equal(t, BlindLabels[i], resp.BlindID, "labels are assigned sequentially post-shuffle")
		seen[resp.BlindID] = true
	}
	require.Len(t, seen, 4)
}

func TestRun_RevealIsABijection(t *testing.T) {
	c, err := NewCoordinator(healthyRunners(), Options{})
	require.NoError(t, err)

	run, err := c.Run(context.Background(), "q")
	require.NoError(t, err)

	reveal := run.Reveal()
	require.Len(t, reveal, 4)
	sources := map[ConditionID]bool{}
	for _, label := range BlindLabels {
		id, ok := run.Source(label)
		require.True(t, ok)
		require.False(t, sources[id], "condition %s appears under two labels", id)
		sources[id] = true
		require.Equal(t, id, reveal[label])
	}
	// Each blinded answer matches its revealed source.
	for _, resp := range run.Responses {
		src := reveal[resp.BlindID]
		require.Equal(t, "answer from "+string(src), resp.Answer)
	}
}

func TestRun_PermutationVariesAcrossRuns(t *testing.T) {
	c, err := NewCoordinator(healthyRunners(), Options{})
	require.NoError(t, err)

	orderings := map[string]bool{}
	for i := 0; i < 60; i++ {
		run, err := c.Run(context.Background(), "q")
		require.NoError(t, err)
		var key strings.Builder
		for _, label := range BlindLabels {
			id, _ := run.Source(label)
			key.WriteString(string(id))
			key.WriteByte('|')
		}
		orderings[key.String()] = true
	}
	require.Greater(t, len(orderings), 1, "permutations should be independently random per run")
}

func TestRun_FailureIsolated(t *testing.T) {
	boom := errors.New("model melted")
	runners := healthyRunners()
	runners[2] = &fakeRunner{id: ConditionMixedDebate, err: boom}

	c, err := NewCoordinator(runners, Options{Perm: identityPerm})
	require.NoError(t, err)

	run, err := c.Run(context.Background(), "q")
	require.NoError(t, err, "a failing condition must not fail the run")

	failed := 0
	for _, resp := range run.Responses {
		if strings.Contains(resp.Answer, "failed to produce an answer") {
			failed++
			require.Contains(t, resp.Answer, "model melted")
			require.Empty(t, resp.Transcript)
			src, _ := run.Source(resp.BlindID)
			require.Equal(t, ConditionMixedDebate, src, "failed slot keeps its canonical identity")
		}
	}
	require.Equal(t, 1, failed)
}

func TestRun_SerialAndConcurrentAgree(t *testing.T) {
	for _, concurrent := range []bool{false, true} {
		t.Run(fmt.Sprintf("concurrent=%v", concurrent), func(t *testing.T) {
			c, err := NewCoordinator(healthyRunners(), Options{Concurrent: concurrent, Perm: identityPerm})
			require.NoError(t, err)
			run, err := c.Run(context.Background(), "q")
			require.NoError(t, err)
			for i, resp := range run.Responses {
				require.Equal(t, "answer from "+string(ConditionOrder[i]), resp.Answer)
			}
		})
	}
}

func TestRun_Validation(t *testing.T) {
	c, err := NewCoordinator(healthyRunners(), Options{MaxQuestionRunes: 10})
	require.NoError(t, err)

	var verr *ValidationError
	_, err = c.Run(context.Background(), "   ")
	require.ErrorAs(t, err, &verr)

	_, err = c.Run(context.Background(), strings.Repeat("x", 11))
	require.ErrorAs(t, err, &verr)

	run, err := c.Run(context.Background(), "short one")
	require.NoError(t, err)
	require.NotNil(t, run)
}

func TestNewCoordinator_RejectsBadRunnerSets(t *testing.T) {
	if _, err := NewCoordinator(healthyRunners()[:3], Options{}); err == nil {
		t.Fatalf("expected error for three runners")
	}
	swapped := healthyRunners()
	swapped[0], swapped[1] = swapped[1], swapped[0]
	if _, err := NewCoordinator(swapped, Options{}); err == nil {
		t.Fatalf("expected error for out-of-order runners")
	}
}
