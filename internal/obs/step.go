package obs

import (
	"context"
	"time"
)

// StepRecorder times one scenario step.
type StepRecorder struct {
	ctx   context.Context
	pkg   string
	start time.Time
}

// StartStep tags ctx with the step text and returns a recorder whose Finish
// emits one structured event for the step.
func StartStep(ctx context.Context, pkg, step string) (context.Context, *StepRecorder) {
	ctx = WithStep(ctx, step)
	return ctx, &StepRecorder{ctx: ctx, pkg: pkg, start: time.Now()}
}

// Finish logs step_done at debug level on success, step_failed at error level
// otherwise.
func (r *StepRecorder) Finish(err error) {
	durMS := float64(time.Since(r.start).Microseconds()) / 1000.0
	l := From(r.ctx).With("pkg", r.pkg)
	if err != nil {
		l.Error("step_failed", "dur_ms", durMS, "error", err)
		return
	}
	l.Debug("step_done", "dur_ms", durMS)
}
