package pipeline

import (
	"context"
	"log/slog"

	"github.com/jobguard/jobguard/internal/model"
	"github.com/jobguard/jobguard/internal/render"
)

// Scan carries one server response through the pipeline.
type Scan struct {
	Session *model.ScanSession
	Result  *model.ScanResult

	// Set by the classify step.
	Tier        model.Tier
	Probability float64

	// Set by the render step.
	Report *render.Report

	// Performed lists completed step names in order.
	Performed []string
}

// Step is one stage of post-response processing.
type Step interface {
	// Do executes the step. A returned error stops the pipeline.
	Do(ctx context.Context, scan *Scan) error

	// Name returns the step's name for logging.
	Name() string
}

// Pipeline executes steps in the order they were added.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates an empty pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddSteps appends steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs every step in sequence and stops at the first error.
func (p *Pipeline) Execute(ctx context.Context, scan *Scan) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled", "step", step.Name(), "reason", ctx.Err())
			return ctx.Err()
		default:
		}

		if err := step.Do(ctx, scan); err != nil {
			p.logger.Error("step failed", "step", step.Name(), "error", err)
			return err
		}

		p.logger.Debug("step completed", "step", step.Name())
		scan.Performed = append(scan.Performed, step.Name())
	}
	return nil
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
