package pipeline

import (
	"context"
	"sync"
)

// Phase is where the pipeline is within its current cycle.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseValidating Phase = "validating"
	PhaseLoading    Phase = "loading"
	PhaseRendering  Phase = "rendering"
	PhaseSettled    Phase = "settled"
)

// Outcome is how a cycle ended.
type Outcome string

const (
	OutcomeSuccess    Outcome = "success"
	OutcomeWarning    Outcome = "warning"
	OutcomeFailed     Outcome = "failed"
	OutcomeLanding    Outcome = "landing"
	OutcomeSkipped    Outcome = "skipped"
	OutcomeSuperseded Outcome = "superseded"
)

// Cycle is the handle of one update, navigation or relayout pass.
type Cycle struct {
	epoch uint64
	done  chan struct{}
	once  sync.Once

	outcome Outcome
	cause   error
}

func newCycle(epoch uint64) *Cycle {
	return &Cycle{epoch: epoch, done: make(chan struct{})}
}

// finishedCycle returns a cycle that has already ended.
func finishedCycle(epoch uint64, o Outcome, cause error) *Cycle {
	c := newCycle(epoch)
	c.finish(o, cause)
	return c
}

func (c *Cycle) finish(o Outcome, cause error) {
	c.once.Do(func() {
		c.outcome = o
		c.cause = cause
		close(c.done)
	})
}

// Epoch is the token the cycle was stamped with.
func (c *Cycle) Epoch() uint64 { return c.epoch }

// Done is closed when the cycle ends.
func (c *Cycle) Done() <-chan struct{} { return c.done }

// Wait blocks until the cycle ends or ctx is done.
func (c *Cycle) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-c.done:
		return c.outcome, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Cause is the validation or engine error behind a Warning or Failed
// outcome. It is nil until the cycle ends.
func (c *Cycle) Cause() error {
	select {
	case <-c.done:
		return c.cause
	default:
		return nil
	}
}
