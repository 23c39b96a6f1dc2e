package experiment

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/blindpanel/blindpanel-go/internal/logger"
)

const defaultMaxQuestionRunes = 2000

// ValidationError rejects a malformed submission before any backend work.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "invalid question: " + e.Reason }

// Options tunes the coordinator.
type Options struct {
	// Concurrent starts all four conditions together instead of running
	// them to completion one after another.
	Concurrent bool
	// MaxQuestionRunes bounds the trimmed question length.
	MaxQuestionRunes int
	// Perm overrides the permutation source; tests inject a seeded one.
	Perm func(n int) []int
}

// Coordinator runs the four condition pipelines for one question and
// produces a blinded, shuffled run.
type Coordinator struct {
	runners [4]Runner
	opts    Options
}

// NewCoordinator requires exactly four runners in canonical slot order.
func NewCoordinator(runners []Runner, opts Options) (*Coordinator, error) {
	if len(runners) != len(ConditionOrder) {
		return nil, fmt.Errorf("need exactly %d runners, got %d", len(ConditionOrder), len(runners))
	}
	c := &Coordinator{opts: opts}
	for i, r := range runners {
		if r.Condition() != ConditionOrder[i] {
			return nil, fmt.Errorf("runner %d is %s, want %s", i, r.Condition(), ConditionOrder[i])
		}
		c.runners[i] = r
	}
	if c.opts.MaxQuestionRunes <= 0 {
		c.opts.MaxQuestionRunes = defaultMaxQuestionRunes
	}
	if c.opts.Perm == nil {
		c.opts.Perm = rand.Perm
	}
	return c, nil
}

// Run validates the question, executes the four conditions with isolated
// failures, and returns the blinded run.
func (c *Coordinator) Run(ctx context.Context, question string) (*Run, error) {
	q := strings.TrimSpace(question)
	if q == "" {
		return nil, &ValidationError{Reason: "empty after trimming"}
	}
	if n := len([]rune(q)); n > c.opts.MaxQuestionRunes {
		return nil, &ValidationError{Reason: fmt.Sprintf("%d runes exceeds limit of %d", n, c.opts.MaxQuestionRunes)}
	}

	var results [4]Result
	if c.opts.Concurrent {
		var wg sync.WaitGroup
		for i, r := range c.runners {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i] = c.runOne(ctx, r, q)
			}()
		}
		wg.Wait()
	} else {
		for i, r := range c.runners {
			results[i] = c.runOne(ctx, r, q)
		}
	}

	blind := newBlindAssignment(c.opts.Perm)
	run := &Run{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Question:  q,
		reveal:    blind.byLabel,
	}
	for i := range run.Responses {
		src := results[blind.slotFor[i]]
		run.Responses[i] = BlindedResponse{
			BlindID:    BlindLabels[i],
			Answer:     src.Answer,
			Transcript: src.Transcript,
		}
	}
	logger.L.Info("run completed", "run_id", run.ID, "concurrent", c.opts.Concurrent)
	return run, nil
}

// runOne executes a single condition, converting any failure into a
// visible placeholder result so one bad condition never hides the others.
func (c *Coordinator) runOne(ctx context.Context, r Runner, question string) Result {
	res, err := r.Run(ctx, question)
	if err != nil {
		logger.L.Error("condition failed", "condition", r.Condition(), "error", err)
		return fallbackResult(r.Condition(), err)
	}
	return res
}

func fallbackResult(id ConditionID, err error) Result {
	return Result{
		Condition:  id,
		Label:      id.Label(),
		Answer:     fmt.Sprintf("This condition failed to produce an answer: %v", err),
		Transcript: nil,
	}
}
