// Package pipeline runs a named sequence of dependent stages. A stage
// never begins before its predecessor has resolved, and the first
// failure aborts the remainder.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Step is one stage of a pipeline.
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// Runner executes steps strictly in sequence.
type Runner struct {
	logger  *zap.Logger
	onEnter func(name string)
}

// NewRunner creates a runner. onEnter, if non-nil, is invoked before
// each step begins, in step order.
func NewRunner(logger *zap.Logger, onEnter func(name string)) *Runner {
	return &Runner{logger: logger, onEnter: onEnter}
}

// Run executes the steps of the named pipeline in order and returns the
// first failure, wrapped with the failing step's name.
func (r *Runner) Run(ctx context.Context, name string, steps []Step) error {
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if r.onEnter != nil {
			r.onEnter(step.Name)
		}

		r.logger.Debug("pipeline step started",
			zap.String("pipeline", name),
			zap.String("step", step.Name))

		if err := step.Run(ctx); err != nil {
			r.logger.Warn("pipeline step failed",
				zap.String("pipeline", name),
				zap.String("step", step.Name),
				zap.Error(err))
			return fmt.Errorf("%s: %w", step.Name, err)
		}
	}
	return nil
}
