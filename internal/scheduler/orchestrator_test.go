package scheduler

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reportdeck/internal/models"
	"github.com/reportdeck/internal/report"
	"github.com/reportdeck/internal/schedule"
)

type fakeStore struct {
	active  []models.ScheduledReport
	byID    map[uint]*models.ScheduledReport
	patches map[uint][]map[string]any
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		byID:    map[uint]*models.ScheduledReport{},
		patches: map[uint][]map[string]any{},
	}
}

func (f *fakeStore) GetActiveScheduledReports(ctx context.Context) ([]models.ScheduledReport, error) {
	return f.active, nil
}

func (f *fakeStore) GetScheduledReportByID(ctx context.Context, id uint) (*models.ScheduledReport, error) {
	if rep, ok := f.byID[id]; ok {
		return rep, nil
	}
	return nil, fmt.Errorf("report %d not found", id)
}

func (f *fakeStore) UpdateScheduledReport(ctx context.Context, id uint, patch map[string]any) error {
	f.patches[id] = append(f.patches[id], patch)
	return nil
}

type fakeExecutor struct {
	executed []uint
}

func (f *fakeExecutor) Execute(ctx context.Context, rep *models.ScheduledReport) report.ExecutionResult {
	f.executed = append(f.executed, rep.ID)
	return report.ExecutionResult{Success: true}
}

func cronExpr(expr string) *string { return &expr }

func activeReport(id uint, expr string) models.ScheduledReport {
	rep := models.ScheduledReport{
		Name:           fmt.Sprintf("report-%d", id),
		CronExpression: cronExpr(expr),
		Timezone:       "UTC",
		Status:         models.ReportStatusActive,
	}
	rep.ID = id
	return rep
}

func newTestOrchestrator(store *fakeStore, exec *fakeExecutor) (*Orchestrator, *schedule.Registry) {
	registry := schedule.NewRegistry(zerolog.Nop())
	return New(store, registry, exec, zerolog.Nop()), registry
}

func TestInitialize_RegistersOnlyRecurringActives(t *testing.T) {
	store := newFakeStore()
	oneShot := activeReport(3, "")
	oneShot.CronExpression = nil
	oneShot.OneShot = true
	store.active = []models.ScheduledReport{
		activeReport(1, "0 9 * * 1"),
		activeReport(2, "*/15 * * * *"),
		oneShot,
	}

	orch, registry := newTestOrchestrator(store, &fakeExecutor{})
	require.NoError(t, orch.Initialize(context.Background()))

	assert.ElementsMatch(t, []uint{1, 2}, registry.ListActive())
}

func TestUpsert_ActiveRecurringPersistsNextRun(t *testing.T) {
	store := newFakeStore()
	orch, registry := newTestOrchestrator(store, &fakeExecutor{})

	rep := activeReport(7, "0 9 * * *")
	orch.Upsert(context.Background(), &rep)

	assert.Contains(t, registry.ListActive(), uint(7))
	require.NotNil(t, rep.NextRunAt)
	assert.True(t, rep.NextRunAt.After(rep.CreatedAt))

	require.Len(t, store.patches[7], 1)
	assert.NotNil(t, store.patches[7][0]["next_run_at"])
}

func TestUpsert_PausedClearsTriggerAndNextRun(t *testing.T) {
	store := newFakeStore()
	orch, registry := newTestOrchestrator(store, &fakeExecutor{})

	rep := activeReport(7, "0 9 * * *")
	orch.Upsert(context.Background(), &rep)
	require.Contains(t, registry.ListActive(), uint(7))

	rep.Status = models.ReportStatusPaused
	orch.Upsert(context.Background(), &rep)

	assert.NotContains(t, registry.ListActive(), uint(7))
	assert.Nil(t, rep.NextRunAt)

	patches := store.patches[7]
	require.Len(t, patches, 2)
	assert.Nil(t, patches[1]["next_run_at"])
}

func TestUpsert_ReplacesExistingTrigger(t *testing.T) {
	store := newFakeStore()
	orch, registry := newTestOrchestrator(store, &fakeExecutor{})

	rep := activeReport(7, "0 9 * * *")
	orch.Upsert(context.Background(), &rep)
	rep.CronExpression = cronExpr("0 18 * * *")
	orch.Upsert(context.Background(), &rep)

	// Still exactly one live trigger for the id.
	ids := registry.ListActive()
	count := 0
	for _, id := range ids {
		if id == 7 {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestRemove_CancelsTrigger(t *testing.T) {
	store := newFakeStore()
	orch, registry := newTestOrchestrator(store, &fakeExecutor{})

	rep := activeReport(7, "0 9 * * *")
	orch.Upsert(context.Background(), &rep)
	orch.Remove(7)

	assert.NotContains(t, registry.ListActive(), uint(7))
}

func TestRunNow(t *testing.T) {
	store := newFakeStore()
	rep := activeReport(9, "0 9 * * *")
	store.byID[9] = &rep

	exec := &fakeExecutor{}
	orch, _ := newTestOrchestrator(store, exec)

	result, err := orch.RunNow(context.Background(), 9)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, []uint{9}, exec.executed)
}

func TestRunNow_UnknownID(t *testing.T) {
	store := newFakeStore()
	exec := &fakeExecutor{}
	orch, _ := newTestOrchestrator(store, exec)

	_, err := orch.RunNow(context.Background(), 42)
	assert.Error(t, err)
	assert.Empty(t, exec.executed)
}
