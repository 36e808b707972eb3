package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/edvin/panelengine/internal/metrics"
	"github.com/edvin/panelengine/internal/model"
)

// Options configures a run. The zero value is a headless run.
type Options struct {
	// Interactive marks the setup context: progress steps are reported and
	// the address reconciliation phase runs unconditionally.
	Interactive bool
	Reporter    Reporter
	// Software dispatches software rows out of process. Defaults to
	// ProcessDispatcher with the given helper path.
	Software       ExternalDispatcher
	SoftwareHelper string
}

// Runner walks the fixed phase pipeline once per invocation. Row-level
// handler failures are recorded and skipped; query, resolution, write and
// batch failures abort the run.
type Runner struct {
	db       DB
	registry *Registry
	logger   zerolog.Logger
	reporter Reporter
	software ExternalDispatcher

	interactive bool
}

func NewRunner(db DB, registry *Registry, logger zerolog.Logger, opts Options) *Runner {
	r := &Runner{
		db:          db,
		registry:    registry,
		logger:      logger,
		reporter:    opts.Reporter,
		software:    opts.Software,
		interactive: opts.Interactive,
	}
	if r.reporter == nil {
		r.reporter = NopReporter{}
	}
	if r.software == nil {
		r.software = ProcessDispatcher{Helper: opts.SoftwareHelper}
	}
	return r
}

// Run executes every phase in order and returns the first category-level
// failure, leaving untouched rows exactly as they were. A nil return means
// every eligible row received an outcome.
func (r *Runner) Run(ctx context.Context) error {
	didWork := false

	for _, ph := range Phases() {
		if ph.Gated && !didWork && !r.interactive {
			r.logger.Debug().Str("phase", ph.Label).Msg("skipping gated phase, no prior work")
			continue
		}

		var (
			work bool
			err  error
		)
		switch ph.Dispatch {
		case DispatchBatch:
			work, err = r.runBatch(ctx, ph)
		default:
			work, err = r.runRows(ctx, ph)
		}
		if err != nil {
			metrics.RunsTotal.WithLabelValues("error").Inc()
			return err
		}
		didWork = didWork || work
	}

	metrics.RunsTotal.WithLabelValues("ok").Inc()
	return nil
}

// runRows drives a per-row or external phase: query eligible rows, resolve
// the handler lazily, then dispatch and persist one outcome per row. A row
// failure never stops the loop.
func (r *Runner) runRows(ctx context.Context, ph Phase) (bool, error) {
	tasks, err := pendingRows(ctx, r.db, ph)
	if err != nil {
		return false, err
	}
	if len(tasks) == 0 {
		return false, nil
	}

	var h Handler
	if ph.Dispatch == DispatchRows {
		h, err = r.registry.Resolve(ph.Kind)
		if err != nil {
			return false, err
		}
	}

	r.logger.Info().Str("phase", ph.Label).Int("rows", len(tasks)).Msg("processing pending rows")

	for i, t := range tasks {
		r.reporter.Step(ph.Label, i+1, len(tasks), t.Name)

		var procErr error
		if ph.Dispatch == DispatchExternal {
			procErr = r.software.Dispatch(ctx, ph.Kind, t)
		} else {
			procErr = r.process(ctx, h, t)
		}

		if procErr != nil {
			r.logger.Error().Err(procErr).
				Str("phase", ph.Label).Str("id", t.ID).Str("name", t.Name).
				Msg("task failed")
			metrics.RowsProcessed.WithLabelValues(string(ph.Kind), "error").Inc()
		} else {
			metrics.RowsProcessed.WithLabelValues(string(ph.Kind), "ok").Inc()
		}

		if err := writeOutcome(ctx, r.db, ph, t, procErr); err != nil {
			return false, err
		}
	}

	return true, nil
}

// process invokes the handler, converting a panic into a row-level failure.
func (r *Runner) process(ctx context.Context, h Handler, t model.TaskRow) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("handler panic: %v", p)
		}
	}()
	return h.Process(ctx, t)
}

// runBatch drives a batch phase: one handler call covers every pending row.
// The handler writes per-row outcomes itself; a batch error cannot be pinned
// to one row and aborts the run.
func (r *Runner) runBatch(ctx context.Context, ph Phase) (bool, error) {
	if ph.Pending != "" {
		tasks, err := pendingRows(ctx, r.db, ph)
		if err != nil {
			return false, err
		}
		if len(tasks) == 0 {
			return false, nil
		}
	}

	h, err := r.registry.ResolveBatch(ph.Kind)
	if err != nil {
		return false, err
	}

	r.logger.Info().Str("phase", ph.Label).Msg("running batch phase")

	work, err := h.ProcessAll(ctx)
	if err != nil {
		return false, fmt.Errorf("%s batch: %w", ph.Label, err)
	}
	return work, nil
}
