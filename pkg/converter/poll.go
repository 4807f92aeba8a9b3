package converter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arnavsurve/virtuoso-converter/pkg/assistant"
	"github.com/arnavsurve/virtuoso-converter/pkg/core"
	"github.com/arnavsurve/virtuoso-converter/pkg/types"
)

// State is the lifecycle of one conversion job.
type State string

const (
	StateCreated   State = "CREATED"
	StateSubmitted State = "SUBMITTED"
	StateRunning   State = "RUNNING"
	StateCompleted State = "COMPLETED"
	StateFailed    State = "FAILED"
	StateTimedOut  State = "TIMED_OUT"
	StateCancelled State = "CANCELLED"
)

// Terminal reports whether no further transition can happen from s.
func (s State) Terminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateTimedOut, StateCancelled:
		return true
	}
	return false
}

// PollOptions bounds the wait on a run. A zero Timeout or MaxAttempts
// disables that bound; a non-positive Interval falls back to
// core.DefaultPollInterval.
type PollOptions struct {
	Interval    time.Duration
	Timeout     time.Duration
	MaxAttempts int
}

// pollRun queries the run immediately and then once per interval until the
// service reports completed or failed, a bound fires or ctx ends. Every other
// remote status keeps the run in StateRunning.
func pollRun(ctx context.Context, svc assistant.Service, threadID, runID string, opts PollOptions, logger types.Logger) (assistant.RunState, State, error) {
	interval := opts.Interval
	if interval <= 0 {
		interval = core.DefaultPollInterval
	}

	pollCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		pollCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	// interrupted classifies why pollCtx ended.
	interrupted := func(attempts int) (assistant.RunState, State, error) {
		if err := ctx.Err(); err != nil {
			return assistant.RunState{ID: runID}, StateCancelled, fmt.Errorf("polling run %s cancelled: %w", runID, err)
		}
		return assistant.RunState{ID: runID}, StateTimedOut,
			fmt.Errorf("%w: run %s not finished after %s (%d attempts)", ErrTimedOut, runID, opts.Timeout, attempts)
	}

	attempts := 0
	for {
		if pollCtx.Err() != nil {
			return interrupted(attempts)
		}

		state, err := svc.GetRunStatus(pollCtx, threadID, runID)
		attempts++
		if err != nil {
			if pollCtx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
				return interrupted(attempts)
			}
			return state, StateRunning, fmt.Errorf("%w: %w", ErrTransport, err)
		}

		logger.Info().
			Str("run_status", string(state.Status)).
			Int("attempt", attempts).
			Msgf("Run status: %s", state.Status)

		switch state.Status {
		case assistant.RunStatusCompleted:
			return state, StateCompleted, nil
		case assistant.RunStatusFailed:
			return state, StateFailed, nil
		}

		if opts.MaxAttempts > 0 && attempts >= opts.MaxAttempts {
			return state, StateTimedOut,
				fmt.Errorf("%w: run %s still %s after %d attempts", ErrTimedOut, runID, state.Status, attempts)
		}

		timer := time.NewTimer(interval)
		select {
		case <-pollCtx.Done():
			timer.Stop()
			return interrupted(attempts)
		case <-timer.C:
		}
	}
}
