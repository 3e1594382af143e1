package suite

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mwiater/redqueen/internal/fixture"
)

// Runner measures planned jobs one after another.
type Runner struct {
	// Options are applied to every fixture.
	Options []fixture.Option
	Log     logrus.FieldLogger

	// OnStart, when set, is called before each job with its 1-based position.
	OnStart func(job Job, index, total int)
	// OnFinish, when set, is called after each job with the job's error.
	OnFinish func(job Job, rec *fixture.Record, err error)
}

// Run plans filter and measures every job, handing each record to sink. A
// failing job is logged and skipped; its error is part of the joined error
// returned at the end. A sink error or a cancelled ctx stops the run.
func (r *Runner) Run(ctx context.Context, filter []Selection, sink func(*fixture.Record) error) error {
	jobs, err := Plan(filter)
	if err != nil {
		return err
	}
	log := r.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	hardware := Hardware()

	var errs []error
	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}
		if r.OnStart != nil {
			r.OnStart(job, i+1, len(jobs))
		}

		rec, err := r.runJob(ctx, job, hardware)
		if r.OnFinish != nil {
			r.OnFinish(job, rec, err)
		}
		if err != nil {
			log.WithFields(logrus.Fields{"id": job.ID(), "tool": job.Bench.Tool}).WithError(err).Error("benchmark failed")
			errs = append(errs, fmt.Errorf("%s: %w", job.ID(), err))
			continue
		}
		if err := sink(rec); err != nil {
			return errors.Join(append(errs, err)...)
		}
	}
	return errors.Join(errs...)
}

func (r *Runner) runJob(ctx context.Context, job Job, hardware string) (*fixture.Record, error) {
	c, err := job.Bench.Prepare(job.Variant, job.Input)
	if err != nil {
		return nil, err
	}
	if c.Close != nil {
		defer c.Close()
	}

	opts := r.Options
	if r.Log != nil {
		opts = append(opts[:len(opts):len(opts)], fixture.WithLogger(r.Log))
	}
	f, err := fixture.New(job.ID(), opts...)
	if err != nil {
		return nil, err
	}
	rec := f.Record()
	rec.Name = job.Input.Name
	rec.Algorithm = job.Variant
	rec.ToolVersion = ToolVersion(job.Bench.Module)
	rec.HardwareDescription = hardware

	rec, _, err = fixture.Run(ctx, f, c.Gauge, c.Op)
	return rec, err
}
