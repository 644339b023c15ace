// Package scheduler keeps storage and the trigger registry consistent: it
// loads active schedules at startup, re-registers triggers on every
// create/update, and exposes the manual run-now path.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/reportdeck/internal/models"
	"github.com/reportdeck/internal/report"
	"github.com/reportdeck/internal/schedule"
)

type Store interface {
	GetActiveScheduledReports(ctx context.Context) ([]models.ScheduledReport, error)
	GetScheduledReportByID(ctx context.Context, id uint) (*models.ScheduledReport, error)
	UpdateScheduledReport(ctx context.Context, id uint, patch map[string]any) error
}

// Executor is the run pipeline the orchestrator fires into.
type Executor interface {
	Execute(ctx context.Context, rep *models.ScheduledReport) report.ExecutionResult
}

type Orchestrator struct {
	store    Store
	registry *schedule.Registry
	executor Executor
	log      zerolog.Logger
}

func New(store Store, registry *schedule.Registry, executor Executor, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		store:    store,
		registry: registry,
		executor: executor,
		log:      log.With().Str("component", "scheduler").Logger(),
	}
}

// Initialize registers a trigger for every active recurring schedule.
func (o *Orchestrator) Initialize(ctx context.Context) error {
	reports, err := o.store.GetActiveScheduledReports(ctx)
	if err != nil {
		return fmt.Errorf("failed to load schedules: %v", err)
	}

	registered := 0
	for i := range reports {
		rep := reports[i]
		if !rep.Recurring() {
			continue
		}
		o.register(rep)
		registered++
	}

	o.log.Info().
		Int("loaded", len(reports)).
		Int("registered", registered).
		Msg("scheduler initialized")
	return nil
}

// Upsert reconciles the trigger for a created or updated schedule. The old
// trigger is always cancelled first; a new one exists afterwards only for
// an active recurring schedule with a valid expression.
func (o *Orchestrator) Upsert(ctx context.Context, rep *models.ScheduledReport) {
	o.registry.Cancel(rep.ID)

	if rep.Status != models.ReportStatusActive || !rep.Recurring() {
		if err := o.store.UpdateScheduledReport(ctx, rep.ID, map[string]any{"next_run_at": nil}); err != nil {
			o.log.Error().Uint("report_id", rep.ID).Err(err).Msg("failed to clear next run")
		}
		rep.NextRunAt = nil
		return
	}

	o.register(*rep)

	next := schedule.NextExecutionOrFallback(*rep.CronExpression, rep.Timezone, time.Now().UTC())
	if err := o.store.UpdateScheduledReport(ctx, rep.ID, map[string]any{"next_run_at": next}); err != nil {
		o.log.Error().Uint("report_id", rep.ID).Err(err).Msg("failed to persist next run")
	}
	rep.NextRunAt = &next
}

// Remove cancels the trigger. Callers must invoke this before deleting the
// storage row so no fire can land after the delete.
func (o *Orchestrator) Remove(id uint) {
	o.registry.Cancel(id)
}

// RunNow executes a schedule immediately, bypassing any trigger. Used for
// the manual execute action and for one-shot sends.
func (o *Orchestrator) RunNow(ctx context.Context, id uint) (report.ExecutionResult, error) {
	rep, err := o.store.GetScheduledReportByID(ctx, id)
	if err != nil {
		return report.ExecutionResult{}, err
	}
	return o.executor.Execute(ctx, rep), nil
}

func (o *Orchestrator) register(rep models.ScheduledReport) {
	id := rep.ID
	o.registry.Schedule(id, *rep.CronExpression, rep.Timezone, func() {
		ctx := context.Background()
		// Re-read the row at fire time; the closure deliberately captures
		// only the id so edits between fires are always observed.
		current, err := o.store.GetScheduledReportByID(ctx, id)
		if err != nil {
			o.log.Error().Uint("report_id", id).Err(err).Msg("trigger fired for unloadable schedule")
			return
		}
		if current.Status != models.ReportStatusActive {
			return
		}
		o.executor.Execute(ctx, current)
	})
}
