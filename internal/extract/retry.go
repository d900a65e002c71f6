package extract

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Transport performs one provider call with a chosen model and correlation id
// and returns the model's raw text output.
type Transport interface {
	Call(ctx context.Context, model, correlationID string) (string, error)
}

// Selector provides the current model and the downgrade path through the
// priority list.
type Selector interface {
	// Select returns the model to call, resolving and caching it on first use.
	Select(ctx context.Context) (string, error)
	// Downgrade moves to the next model in the priority list. ok is false when
	// the list is exhausted.
	Downgrade() (model string, ok bool)
}

// callState is the retry machine state.
type callState int

const (
	stateSelectingModel callState = iota
	stateCalling
	stateBackingOff
	stateExhausted
)

// Caller drives the bounded retry policy around a Transport:
//
//	selecting-model -> calling
//	calling -> done               on success
//	calling -> backing-off        on rate limit, 5xx, or network failure
//	calling -> selecting-model    on model-not-found (no backoff consumed)
//	calling -> exhausted          on any other error
//	backing-off -> calling        while attempts remain
//	backing-off -> exhausted      on the final attempt
type Caller struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxJitter   time.Duration

	// Sleep is injectable so policy tests run without real delays.
	Sleep func(time.Duration)
}

// NewCaller returns a Caller with the production retry policy: 3 attempts,
// 500ms base delay doubling per attempt, up to 500ms of jitter.
func NewCaller() *Caller {
	return &Caller{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxJitter:   500 * time.Millisecond,
		Sleep:       time.Sleep,
	}
}

// Outcome reports the successful attempt's raw output and identifiers.
type Outcome struct {
	Raw           string
	Model         string
	CorrelationID string
}

// Do runs the retry machine until done or exhausted. Each attempt carries a
// freshly generated correlation id. A model-not-found failure downgrades to
// the next model in the priority list without consuming an attempt; all other
// failures either back off or surface immediately.
func (c *Caller) Do(ctx context.Context, sel Selector, t Transport) (*Outcome, error) {
	var (
		model   string
		lastErr error
		attempt int
	)

	state := stateSelectingModel
	for {
		switch state {
		case stateSelectingModel:
			m, err := sel.Select(ctx)
			if err != nil {
				return nil, fmt.Errorf("selecting model: %w", err)
			}
			model = m
			state = stateCalling

		case stateCalling:
			attempt++
			corrID := uuid.New().String()
			raw, err := t.Call(ctx, model, corrID)
			if err == nil {
				return &Outcome{Raw: raw, Model: model, CorrelationID: corrID}, nil
			}
			lastErr = err

			switch {
			case isModelNotFound(err):
				next, ok := sel.Downgrade()
				if !ok {
					state = stateExhausted
					break
				}
				// Downgrades retry immediately and do not consume an attempt.
				model = next
				attempt--
				state = stateCalling
			case isTransient(err):
				if attempt >= c.MaxAttempts {
					state = stateExhausted
					break
				}
				state = stateBackingOff
			default:
				state = stateExhausted
			}

		case stateBackingOff:
			c.Sleep(c.backoff(attempt))
			state = stateCalling

		case stateExhausted:
			return nil, lastErr
		}
	}
}

// backoff returns the delay before the next attempt: base doubling per
// attempt plus random jitter.
func (c *Caller) backoff(attempt int) time.Duration {
	delay := c.BaseDelay << (attempt - 1)
	if c.MaxJitter > 0 {
		delay += time.Duration(rand.Int63n(int64(c.MaxJitter)))
	}
	return delay
}
