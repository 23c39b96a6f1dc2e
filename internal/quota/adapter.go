// Package quota makes one rate-limited backend usable under aggressive
// limits: every call to the backend passes through a single-worker FIFO
// queue that enforces minimum spacing, retries with backoff (honoring
// server retry hints), and walks a model fallback list.
package quota

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/blindpanel/blindpanel-go/internal/llm"
	"github.com/blindpanel/blindpanel-go/internal/logger"
)

// ErrClosed is returned for calls made after Close.
var ErrClosed = errors.New("quota adapter closed")

// Options tunes one adapter instance.
type Options struct {
	// MinSpacing is the minimum gap before any attempt fires, and the floor
	// for every retry delay.
	MinSpacing time.Duration
	// BaseDelay seeds exponential backoff when the server gave no hint.
	BaseDelay time.Duration
	// MaxAttempts caps attempts per model candidate.
	MaxAttempts int
}

func (o Options) withDefaults() Options {
	if o.MinSpacing <= 0 {
		o.MinSpacing = 500 * time.Millisecond
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = time.Second
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	return o
}

// Request is one call through the adapter. Model is the preferred model id;
// Fallbacks are tried in order when a candidate is not found.
type Request struct {
	Model       string
	Fallbacks   []string
	Messages    []llm.Message
	Temperature *float32
	MaxTokens   int
}

type job struct {
	ctx    context.Context
	req    Request
	result chan jobResult
}

type jobResult struct {
	text string
	err  error
}

// Adapter serializes all traffic for one provider. Each instance owns its
// queue and worker goroutine, so separate adapters never share scheduling
// state.
type Adapter struct {
	provider llm.Provider
	gw       llm.Gateway
	opts     Options

	mu     sync.Mutex
	closed bool
	queue  chan *job
	done   chan struct{}
}

// New starts the adapter's worker goroutine. Close releases it.
func New(provider llm.Provider, gw llm.Gateway, opts Options) *Adapter {
	a := &Adapter{
		provider: provider,
		gw:       gw,
		opts:     opts.withDefaults(),
		queue:    make(chan *job, 64),
		done:     make(chan struct{}),
	}
	go a.loop()
	return a
}

// Close stops the worker. Already-queued jobs are still settled; in-flight
// backoff waits are cut short with ErrClosed.
func (a *Adapter) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.closed = true
	close(a.done)
	close(a.queue)
}

// Generate enqueues one call and blocks until it settles. Calls begin
// strictly in enqueue order; a call only starts once every earlier call
// to this adapter has settled, success or failure.
func (a *Adapter) Generate(ctx context.Context, req Request) (string, error) {
	j := &job{ctx: ctx, req: req, result: make(chan jobResult, 1)}
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return "", ErrClosed
	}
	a.queue <- j
	a.mu.Unlock()

	r := <-j.result
	return r.text, r.err
}

func (a *Adapter) loop() {
	for j := range a.queue {
		j.result <- a.run(j)
	}
}

// run executes one queued call: spacing, per-candidate retries, fallback.
func (a *Adapter) run(j *job) jobResult {
	if err := j.ctx.Err(); err != nil {
		return jobResult{err: err}
	}
	if err := a.wait(j.ctx, a.opts.MinSpacing); err != nil {
		return jobResult{err: err}
	}

	candidates := append([]string{j.req.Model}, j.req.Fallbacks...)
	var lastNotFound error
	var lastRetryable error

	for _, model := range candidates {
		attempt := 0
		for {
			attempt++
			text, err := a.gw.Generate(j.ctx, llm.Request{
				Provider:    a.provider,
				Model:       model,
				Messages:    j.req.Messages,
				Temperature: j.req.Temperature,
				MaxTokens:   j.req.MaxTokens,
			})
			if err == nil {
				return jobResult{text: text}
			}

			var notFound *llm.ModelNotFoundError
			if errors.As(err, &notFound) {
				logger.L.Warn("model not found, advancing fallback", "provider", a.provider, "model", model)
				lastNotFound = err
				break
			}

			var rateLimited *llm.RateLimitedError
			if !errors.As(err, &rateLimited) {
				// Not retryable and not a fallback trigger: surface as is.
				return jobResult{err: err}
			}
			lastRetryable = err

			if attempt >= a.opts.MaxAttempts {
				return jobResult{err: &ExhaustedError{
					Provider: a.provider,
					Model:    model,
					Attempts: attempt,
					Err:      err,
				}}
			}
			delay := a.retryDelay(rateLimited.Hint, attempt)
			logger.L.Info("retrying after backoff",
				"provider", a.provider, "model", model, "attempt", attempt, "delay", delay)
			if err := a.wait(j.ctx, delay); err != nil {
				return jobResult{err: err}
			}
		}
	}

	cause := lastRetryable
	if cause == nil {
		cause = lastNotFound
	}
	return jobResult{err: &AllModelsUnavailableError{
		Provider: a.provider,
		Models:   candidates,
		Err:      cause,
	}}
}

// retryDelay picks max(hint, MinSpacing) when the server supplied a hint,
// else exponential backoff from BaseDelay floored at MinSpacing.
func (a *Adapter) retryDelay(hint time.Duration, attempt int) time.Duration {
	if hint > 0 {
		return max(hint, a.opts.MinSpacing)
	}
	return max(a.opts.BaseDelay<<(attempt-1), a.opts.MinSpacing)
}

// wait sleeps for d unless the job's context is canceled or the adapter
// is closed first.
func (a *Adapter) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-a.done:
		return ErrClosed
	}
}
