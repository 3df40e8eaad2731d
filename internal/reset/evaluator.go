package reset

import (
	"context"
	"fmt"

	"defaultreset/internal/models"
	"defaultreset/internal/monitoring"

	"go.uber.org/zap"
)

// Runner performs a quantity reset
type Runner interface {
	ResetQuantities(ctx context.Context, trigger Trigger) (Report, error)
}

// Result is what one Check did
type Result struct {
	Outcome Outcome
	State   State
	Report  *Report
}

// Evaluator decides once per request cycle whether the store just closed
// and quantities should be reset
type Evaluator struct {
	flags   FlagStore
	runner  Runner
	monitor *monitoring.Monitor
	logger  *zap.Logger
}

// NewEvaluator creates an evaluator over the given option store and runner
func NewEvaluator(flags FlagStore, runner Runner, monitor *monitoring.Monitor, logger *zap.Logger) *Evaluator {
	return &Evaluator{
		flags:   flags,
		runner:  runner,
		monitor: monitor,
		logger:  logger,
	}
}

// Check reads the options, applies one transition and runs the reset when
// it is due. If the reset fails the flags stay as they were before it, so
// the next Check tries again.
func (e *Evaluator) Check(ctx context.Context) (Result, error) {
	auto, err := AutoReset(ctx, e.flags)
	if err != nil {
		return e.fail(err)
	}
	if auto != Yes {
		e.monitor.RecordCheck(string(OutcomeDisabled))
		return Result{Outcome: OutcomeDisabled}, nil
	}

	// A garbled completed flag counts as done so only an "open" signal can
	// re-arm the cycle.
	var cur State
	if cur.ShouldRun, err = loadFlag(ctx, e.flags, models.OptionShouldRun, No); err != nil {
		return e.fail(err)
	}
	if cur.Completed, err = loadFlag(ctx, e.flags, models.OptionCompleted, Yes); err != nil {
		return e.fail(err)
	}
	sig, err := readSignal(ctx, e.flags)
	if err != nil {
		return e.fail(err)
	}

	step := Next(cur, sig)
	if err := e.persist(ctx, cur, step.Pending); err != nil {
		return e.fail(err)
	}

	res := Result{Outcome: step.Outcome, State: step.Final}
	if step.Run {
		report, err := e.runner.ResetQuantities(ctx, TriggerAuto)
		if err != nil {
			return e.fail(err)
		}
		if err := e.persist(ctx, step.Pending, step.Final); err != nil {
			return e.fail(err)
		}
		res.Report = &report
	}

	if step.Outcome == OutcomeFailsafe {
		e.logger.Warn("store status missing, automatic reset suppressed")
	} else if step.Outcome != OutcomeIdle {
		e.logger.Info("reset trigger",
			zap.String("outcome", string(step.Outcome)),
			zap.String("should_run", string(step.Final.ShouldRun)),
			zap.String("completed", string(step.Final.Completed)))
	}
	e.monitor.RecordCheck(string(step.Outcome))
	return res, nil
}

// persist writes the flags that differ between from and to
func (e *Evaluator) persist(ctx context.Context, from, to State) error {
	if from.ShouldRun != to.ShouldRun {
		if err := e.flags.Set(ctx, models.OptionShouldRun, string(to.ShouldRun)); err != nil {
			return err
		}
	}
	if from.Completed != to.Completed {
		if err := e.flags.Set(ctx, models.OptionCompleted, string(to.Completed)); err != nil {
			return err
		}
	}
	return nil
}

func (e *Evaluator) fail(err error) (Result, error) {
	e.monitor.RecordFailure("check")
	return Result{}, fmt.Errorf("check reset trigger: %w", err)
}
