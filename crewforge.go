// Package crewforge turns a free-text task description into a validated
// multi-agent crew plan by driving four LLM-backed reasoning phases
// (analysis, planning, implementation, evaluation) with a bounded
// refinement loop.
package crewforge

import (
	"log/slog"
	"time"
)

const (
	// DefaultScoreThreshold is the evaluation score at which the flow
	// terminates without further refinement.
	DefaultScoreThreshold = 7.0

	// DefaultMaxPhaseIterations caps refinement re-entries per phase.
	DefaultMaxPhaseIterations = 3

	// DefaultMaxRefinements caps refinement re-entries across the whole run,
	// a runaway-safety backstop distinct from the per-phase cap.
	DefaultMaxRefinements = 6

	// DefaultPhaseTimeout bounds a single phase executor call. A timeout is
	// a fallback trigger, not a fatal error.
	DefaultPhaseTimeout = 5 * time.Minute
)

// Flow drives the four phases strictly in order, applies the refinement
// decision after each evaluation, and finalizes the best available
// implementation. One Flow may serve concurrent runs, each run owns its own
// State.
type Flow struct {
	executors Executors
	flowConfig
}

type flowConfig struct {
	scoreThreshold     float64
	maxPhaseIterations int
	maxRefinements     int
	phaseTimeout       time.Duration
	logger             *slog.Logger

	phaseStartHook     PhaseStartHook
	phaseCompletedHook PhaseCompletedHook
	phaseFallbackHook  PhaseFallbackHook
	refinementHook     RefinementHook
	flowCompletedHook  FlowCompletedHook
}

// New creates a flow with the given phase executors. Missing executors are
// allowed: a nil executor fails every attempt and its phase always falls
// back.
func New(executors Executors, options ...Option) *Flow {
	flow := &Flow{
		executors: executors,
		flowConfig: flowConfig{
			scoreThreshold:     DefaultScoreThreshold,
			maxPhaseIterations: DefaultMaxPhaseIterations,
			maxRefinements:     DefaultMaxRefinements,
			phaseTimeout:       DefaultPhaseTimeout,
			logger:             slog.New(slog.DiscardHandler),

			phaseStartHook:     defaultPhaseStartHook,
			phaseCompletedHook: defaultPhaseCompletedHook,
			phaseFallbackHook:  defaultPhaseFallbackHook,
			refinementHook:     defaultRefinementHook,
			flowCompletedHook:  defaultFlowCompletedHook,
		},
	}

	for _, opt := range options {
		opt(&flow.flowConfig)
	}

	return flow
}

// Option configures a Flow.
type Option func(*flowConfig)

// WithLogger sets the logger for the flow. The default discards all logs.
func WithLogger(logger *slog.Logger) Option {
	return func(c *flowConfig) {
		c.logger = logger
	}
}

// WithScoreThreshold sets the evaluation score at which the flow terminates.
func WithScoreThreshold(threshold float64) Option {
	return func(c *flowConfig) {
		c.scoreThreshold = threshold
	}
}

// WithMaxPhaseIterations sets the refinement cap per phase.
func WithMaxPhaseIterations(n int) Option {
	return func(c *flowConfig) {
		c.maxPhaseIterations = n
	}
}

// WithMaxRefinements sets the refinement cap across the whole run.
func WithMaxRefinements(n int) Option {
	return func(c *flowConfig) {
		c.maxRefinements = n
	}
}

// WithPhaseTimeout sets the timeout for a single phase executor call.
func WithPhaseTimeout(d time.Duration) Option {
	return func(c *flowConfig) {
		c.phaseTimeout = d
	}
}

// WithPhaseStartHook sets a hook called before each phase attempt.
func WithPhaseStartHook(hook PhaseStartHook) Option {
	return func(c *flowConfig) {
		c.phaseStartHook = hook
	}
}

// WithPhaseCompletedHook sets a hook called after each successful attempt.
func WithPhaseCompletedHook(hook PhaseCompletedHook) Option {
	return func(c *flowConfig) {
		c.phaseCompletedHook = hook
	}
}

// WithPhaseFallbackHook sets a hook called when a fallback is substituted.
func WithPhaseFallbackHook(hook PhaseFallbackHook) Option {
	return func(c *flowConfig) {
		c.phaseFallbackHook = hook
	}
}

// WithRefinementHook sets a hook called on each refinement re-entry.
func WithRefinementHook(hook RefinementHook) Option {
	return func(c *flowConfig) {
		c.refinementHook = hook
	}
}

// WithFlowCompletedHook sets a hook called once the final plan is produced.
func WithFlowCompletedHook(hook FlowCompletedHook) Option {
	return func(c *flowConfig) {
		c.flowCompletedHook = hook
	}
}
