package board

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"tablero/internal/models"
	"tablero/internal/storage/sqlite"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), discardLogger())
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestBoard(t *testing.T) *Board {
	t.Helper()
	b, err := New(context.Background(), newTestStore(t), discardLogger())
	if err != nil {
		t.Fatalf("Failed to create board: %v", err)
	}
	return b
}

// startSprint is a shorthand used by most tests below.
func startSprint(t *testing.T, b *Board, companyID, name string) models.Sprint {
	t.Helper()
	sprint, err := b.StartSprint(context.Background(), companyID, SprintInput{Name: name})
	if err != nil {
		t.Fatalf("Failed to start sprint: %v", err)
	}
	return sprint
}

func createTask(t *testing.T, b *Board, companyID, title string) models.Task {
	t.Helper()
	task, err := b.CreateTask(context.Background(), companyID, TaskInput{Title: title, CreatorID: "creator-1"})
	if err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}
	return task
}

func TestCreateTaskScenario(t *testing.T) {
	b := newTestBoard(t)
	ctx := context.Background()

	company, err := b.AddCompany(ctx, "C1", "")
	if err != nil {
		t.Fatalf("Failed to add company: %v", err)
	}
	sprint := startSprint(t, b, company.ID, "S1")
	task := createTask(t, b, company.ID, "Fix bug")

	if task.Status != models.StatusPending {
		t.Errorf("Expected status pending, got %s", task.Status)
	}
	if task.SprintID != sprint.ID {
		t.Errorf("Expected sprint id %s, got %s", sprint.ID, task.SprintID)
	}
	if len(task.History) != 1 || task.History[0].Kind != models.HistoryCreated {
		t.Errorf("Expected single created history event, got %+v", task.History)
	}
	if task.LoggedTimes == nil || len(task.LoggedTimes) != 0 {
		t.Errorf("Expected empty logged times, got %+v", task.LoggedTimes)
	}

	visible := b.VisibleTasks(company.ID)
	if len(visible) != 1 || visible[0].ID != task.ID {
		t.Fatalf("Expected visible tasks [%s], got %+v", task.ID, visible)
	}
}

func TestEveryOperationAppendsOneHistoryEvent(t *testing.T) {
	b := newTestBoard(t)
	ctx := context.Background()

	sprint := startSprint(t, b, "c1", "S1")
	task := createTask(t, b, "c1", "T1")

	steps := []struct {
		name string
		op   func() error
		kind models.HistoryKind
	}{
		{"transition", func() error {
			return b.TransitionTask(ctx, "c1", task.ID, models.StatusInProgress)
		}, models.HistoryStatusChanged},
		{"log time", func() error {
			return b.LogTime(ctx, "c1", task.ID, 30, "work")
		}, models.HistoryTimeLogged},
		{"reassign", func() error {
			return b.ReassignSprintTasks(ctx, "c1", sprint.ID, "", nil, []string{task.ID})
		}, models.HistorySprintChanged},
	}

	for i, step := range steps {
		if err := step.op(); err != nil {
			t.Fatalf("Step %s failed: %v", step.name, err)
		}
		got, ok := b.GetTask("c1", task.ID)
		if !ok {
			t.Fatalf("Task disappeared after %s", step.name)
		}
		want := i + 2
		if len(got.History) != want {
			t.Errorf("After %s expected %d history events, got %d", step.name, want, len(got.History))
		}
		last := got.History[len(got.History)-1]
		if last.Kind != step.kind {
			t.Errorf("After %s expected history kind %s, got %s", step.name, step.kind, last.Kind)
		}
	}
}

func TestTransitionDoneStampsFinishedAt(t *testing.T) {
	b := newTestBoard(t)
	ctx := context.Background()

	startSprint(t, b, "c1", "S1")
	task := createTask(t, b, "c1", "T1")

	if err := b.TransitionTask(ctx, "c1", task.ID, models.StatusDone); err != nil {
		t.Fatalf("Failed to transition: %v", err)
	}
	done, _ := b.GetTask("c1", task.ID)
	if done.FinishedAt == nil {
		t.Fatal("Expected finished_at to be stamped on done")
	}
	stamped := *done.FinishedAt

	// Moving away from done must not clear the stamp.
	if err := b.TransitionTask(ctx, "c1", task.ID, models.StatusInProgress); err != nil {
		t.Fatalf("Failed to transition: %v", err)
	}
	reopened, _ := b.GetTask("c1", task.ID)
	if reopened.FinishedAt == nil || !reopened.FinishedAt.Equal(stamped) {
		t.Errorf("Expected finished_at %v preserved, got %v", stamped, reopened.FinishedAt)
	}
}

func TestTransitionIsIdempotentAtStateLevel(t *testing.T) {
	b := newTestBoard(t)
	ctx := context.Background()

	startSprint(t, b, "c1", "S1")
	task := createTask(t, b, "c1", "T1")

	for i := 0; i < 2; i++ {
		if err := b.TransitionTask(ctx, "c1", task.ID, models.StatusInProgress); err != nil {
			t.Fatalf("Failed to transition: %v", err)
		}
	}

	got, _ := b.GetTask("c1", task.ID)
	if got.Status != models.StatusInProgress {
		t.Errorf("Expected status in-progress, got %s", got.Status)
	}
	// Reapplying the same status is a semantic no-op but still audited.
	if len(got.History) != 3 {
		t.Errorf("Expected 3 history events (created + 2 transitions), got %d", len(got.History))
	}
}

func TestLogTimeScenario(t *testing.T) {
	b := newTestBoard(t)
	ctx := context.Background()

	fixed := time.Date(2026, time.March, 10, 15, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return fixed }

	startSprint(t, b, "c1", "S1")
	task := createTask(t, b, "c1", "T1")

	if err := b.LogTime(ctx, "c1", task.ID, 90, "Investigated"); err != nil {
		t.Fatalf("Failed to log time: %v", err)
	}

	got, _ := b.GetTask("c1", task.ID)
	if len(got.LoggedTimes) != 1 {
		t.Fatalf("Expected 1 time entry, got %d", len(got.LoggedTimes))
	}
	entry := got.LoggedTimes[0]
	if entry.Minutes != 90 || entry.Description != "Investigated" || !entry.Date.Equal(fixed) {
		t.Errorf("Unexpected time entry %+v", entry)
	}
	if len(got.History) != 2 {
		t.Errorf("Expected history to grow by 1, got %d events", len(got.History))
	}
}

func TestFinishSprintOrphansTasks(t *testing.T) {
	b := newTestBoard(t)
	ctx := context.Background()

	sprint := startSprint(t, b, "c1", "S1")
	task := createTask(t, b, "c1", "T1")

	retro := &models.Retrospective{Good: []string{"shipped"}, Improve: []string{"estimates"}, Actions: []string{"plan"}}
	if err := b.FinishSprint(ctx, "c1", sprint.ID, retro, 8); err != nil {
		t.Fatalf("Failed to finish sprint: %v", err)
	}

	finished := b.Sprints("c1")[0]
	if finished.Status != models.SprintFinished {
		t.Errorf("Expected status finished, got %s", finished.Status)
	}
	if finished.Velocity != 8 || finished.Retrospective == nil {
		t.Errorf("Expected velocity and retrospective stored, got %+v", finished)
	}
	if _, ok := b.ActiveSprint("c1"); ok {
		t.Error("Expected active pointer cleared after finish")
	}

	// The task stays bound to the finished sprint but leaves the board view.
	got, _ := b.GetTask("c1", task.ID)
	if got.SprintID != sprint.ID {
		t.Errorf("Expected task still bound to %s, got %q", sprint.ID, got.SprintID)
	}
	if visible := b.VisibleTasks("c1"); len(visible) != 0 {
		t.Errorf("Expected orphaned task hidden, got %+v", visible)
	}
}

func TestReopenSprintKeepsPriorRetrospective(t *testing.T) {
	b := newTestBoard(t)
	ctx := context.Background()

	sprint := startSprint(t, b, "c1", "S1")
	retro := &models.Retrospective{Good: []string{"ok"}}
	if err := b.FinishSprint(ctx, "c1", sprint.ID, retro, 5); err != nil {
		t.Fatalf("Failed to finish sprint: %v", err)
	}
	if err := b.ReopenSprint(ctx, "c1", sprint.ID); err != nil {
		t.Fatalf("Failed to reopen sprint: %v", err)
	}

	got := b.Sprints("c1")[0]
	if got.Status != models.SprintReopened {
		t.Errorf("Expected status reopened, got %s", got.Status)
	}
	if got.Retrospective == nil || got.Velocity != 5 {
		t.Errorf("Expected stale retrospective and velocity kept, got %+v", got)
	}
	active, ok := b.ActiveSprint("c1")
	if !ok || active.ID != sprint.ID {
		t.Errorf("Expected reopened sprint active, got %+v ok=%v", active, ok)
	}
}

// Reopening while a different sprint is active force-finishes the active one,
// so a single sprint per company ever holds the active slot.
func TestReopenWhileAnotherSprintActive(t *testing.T) {
	b := newTestBoard(t)
	ctx := context.Background()

	first := startSprint(t, b, "c1", "S1")
	if err := b.FinishSprint(ctx, "c1", first.ID, nil, 0); err != nil {
		t.Fatalf("Failed to finish sprint: %v", err)
	}
	second := startSprint(t, b, "c1", "S2")

	if err := b.ReopenSprint(ctx, "c1", first.ID); err != nil {
		t.Fatalf("Failed to reopen sprint: %v", err)
	}

	active, ok := b.ActiveSprint("c1")
	if !ok || active.ID != first.ID {
		t.Fatalf("Expected reopened sprint %s active, got %+v", first.ID, active)
	}

	activeLooking := 0
	for _, s := range b.Sprints("c1") {
		if s.Status == models.SprintActive || s.Status == models.SprintReopened {
			activeLooking++
		}
		if s.ID == second.ID && s.Status != models.SprintFinished {
			t.Errorf("Expected demoted sprint force-finished, got %s", s.Status)
		}
	}
	if activeLooking != 1 {
		t.Errorf("Expected exactly one active-looking sprint, got %d", activeLooking)
	}
}

func TestDeleteSprintClearsPointerAndLeavesDanglingTasks(t *testing.T) {
	b := newTestBoard(t)
	ctx := context.Background()

	sprint := startSprint(t, b, "c1", "S1")
	task := createTask(t, b, "c1", "T1")

	if err := b.DeleteSprint(ctx, "c1", sprint.ID); err != nil {
		t.Fatalf("Failed to delete sprint: %v", err)
	}
	if len(b.Sprints("c1")) != 0 {
		t.Error("Expected sprint removed")
	}
	if _, ok := b.ActiveSprint("c1"); ok {
		t.Error("Expected active pointer cleared after delete")
	}

	got, _ := b.GetTask("c1", task.ID)
	if got.SprintID != sprint.ID {
		t.Errorf("Expected dangling sprint reference kept, got %q", got.SprintID)
	}
}

func TestDeleteTaskIsIdempotent(t *testing.T) {
	b := newTestBoard(t)
	ctx := context.Background()

	startSprint(t, b, "c1", "S1")
	task := createTask(t, b, "c1", "T1")

	if err := b.DeleteTask(ctx, "c1", task.ID); err != nil {
		t.Fatalf("Failed to delete task: %v", err)
	}
	if _, ok := b.GetTask("c1", task.ID); ok {
		t.Fatal("Expected task removed")
	}
	if err := b.DeleteTask(ctx, "c1", task.ID); err != nil {
		t.Errorf("Expected re-delete no-op, got %v", err)
	}
}

func TestReassignSprintTasks(t *testing.T) {
	b := newTestBoard(t)
	ctx := context.Background()

	old := startSprint(t, b, "c1", "S1")
	moved := createTask(t, b, "c1", "moved")
	pending := createTask(t, b, "c1", "pending")
	residual := createTask(t, b, "c1", "residual")

	if err := b.FinishSprint(ctx, "c1", old.ID, nil, 0); err != nil {
		t.Fatalf("Failed to finish sprint: %v", err)
	}
	next := startSprint(t, b, "c1", "S2")
	unrelated := createTask(t, b, "c1", "unrelated")

	err := b.ReassignSprintTasks(ctx, "c1", old.ID, next.ID, []string{moved.ID}, []string{pending.ID})
	if err != nil {
		t.Fatalf("Failed to reassign: %v", err)
	}

	cases := []struct {
		name       string
		id         string
		wantSprint string
	}{
		{"moved task rebinds to next sprint", moved.ID, next.ID},
		{"pending task is unbound", pending.ID, ""},
		{"residual task defaults to pending", residual.ID, ""},
	}
	for _, tc := range cases {
		got, _ := b.GetTask("c1", tc.id)
		if got.SprintID != tc.wantSprint {
			t.Errorf("%s: expected sprint %q, got %q", tc.name, tc.wantSprint, got.SprintID)
		}
		last := got.History[len(got.History)-1]
		if last.Kind != models.HistorySprintChanged {
			t.Errorf("%s: expected sprint_changed event, got %s", tc.name, last.Kind)
		}
	}

	// The task created in the next sprint is not bound to the old one and
	// must come through untouched.
	got, _ := b.GetTask("c1", unrelated.ID)
	if got.SprintID != next.ID || len(got.History) != 1 {
		t.Errorf("Expected unrelated task untouched, got sprint %q with %d events", got.SprintID, len(got.History))
	}
}

func TestVisibleTasksExcludesForeignSprints(t *testing.T) {
	b := newTestBoard(t)
	ctx := context.Background()

	old := startSprint(t, b, "c1", "S1")
	createTask(t, b, "c1", "orphan-to-be")
	if err := b.FinishSprint(ctx, "c1", old.ID, nil, 0); err != nil {
		t.Fatalf("Failed to finish sprint: %v", err)
	}
	next := startSprint(t, b, "c1", "S2")
	current := createTask(t, b, "c1", "current")

	for _, task := range b.VisibleTasks("c1") {
		if task.SprintID != "" && task.SprintID != next.ID {
			t.Errorf("Visible task %s bound to non-active sprint %s", task.ID, task.SprintID)
		}
	}
	visible := b.VisibleTasks("c1")
	if len(visible) != 1 || visible[0].ID != current.ID {
		t.Errorf("Expected only the current sprint's task visible, got %+v", visible)
	}
}

func TestUnknownIdsAreNoOps(t *testing.T) {
	b := newTestBoard(t)
	ctx := context.Background()

	if err := b.TransitionTask(ctx, "ghost", "t1", models.StatusDone); err != nil {
		t.Errorf("Expected transition no-op, got %v", err)
	}
	if err := b.LogTime(ctx, "ghost", "t1", 10, "x"); err != nil {
		t.Errorf("Expected log time no-op, got %v", err)
	}
	if err := b.FinishSprint(ctx, "ghost", "s1", nil, 0); err != nil {
		t.Errorf("Expected finish no-op, got %v", err)
	}
	if err := b.ReopenSprint(ctx, "ghost", "s1"); err != nil {
		t.Errorf("Expected reopen no-op, got %v", err)
	}
	if err := b.DeleteSprint(ctx, "ghost", "s1"); err != nil {
		t.Errorf("Expected delete sprint no-op, got %v", err)
	}
	if err := b.RemoveCompany(ctx, "ghost"); err != nil {
		t.Errorf("Expected remove company no-op, got %v", err)
	}
	if err := b.RemoveCreator(ctx, "ghost"); err != nil {
		t.Errorf("Expected remove creator no-op, got %v", err)
	}
}

func TestMonthWindow(t *testing.T) {
	now := time.Date(2026, time.February, 14, 9, 30, 0, 0, time.UTC)
	start, end := monthWindow(now)

	wantStart := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2026, time.February, 28, 23, 0, 0, 0, time.UTC)
	if !start.Equal(wantStart) {
		t.Errorf("Expected start %v, got %v", wantStart, start)
	}
	if !end.Equal(wantEnd) {
		t.Errorf("Expected end %v, got %v", wantEnd, end)
	}
}

func TestStartSprintUsesMonthWindow(t *testing.T) {
	b := newTestBoard(t)
	b.now = func() time.Time {
		return time.Date(2026, time.August, 20, 12, 0, 0, 0, time.UTC)
	}

	sprint := startSprint(t, b, "c1", "S1")
	if sprint.StartDate.Day() != 1 || sprint.StartDate.Month() != time.August {
		t.Errorf("Expected start on Aug 1, got %v", sprint.StartDate)
	}
	if sprint.EndDate.Day() != 31 || sprint.EndDate.Hour() != 23 {
		t.Errorf("Expected end Aug 31 23:00, got %v", sprint.EndDate)
	}
	if sprint.Status != models.SprintActive {
		t.Errorf("Expected active status, got %s", sprint.Status)
	}
}

func TestStandupAndBurndownRecording(t *testing.T) {
	b := newTestBoard(t)
	ctx := context.Background()

	sprint := startSprint(t, b, "c1", "S1")

	err := b.RecordStandup(ctx, "c1", sprint.ID, models.DailyStandup{
		Member: "ana", Yesterday: "api", Today: "tests",
	})
	if err != nil {
		t.Fatalf("Failed to record standup: %v", err)
	}
	if err := b.RecordBurndownPoint(ctx, "c1", sprint.ID, 21); err != nil {
		t.Fatalf("Failed to record burndown: %v", err)
	}

	got := b.Sprints("c1")[0]
	if len(got.DailyStandups) != 1 || got.DailyStandups[0].Member != "ana" {
		t.Errorf("Expected one standup entry, got %+v", got.DailyStandups)
	}
	if len(got.Burndown) != 1 || got.Burndown[0].PointsRemaining != 21 {
		t.Errorf("Expected one burndown point, got %+v", got.Burndown)
	}
}

func TestStateSurvivesReload(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	b, err := New(ctx, store, discardLogger())
	if err != nil {
		t.Fatalf("Failed to create board: %v", err)
	}

	company, err := b.AddCompany(ctx, "C1", "logo.png")
	if err != nil {
		t.Fatalf("Failed to add company: %v", err)
	}
	creator, err := b.AddCreator(ctx, "Ana")
	if err != nil {
		t.Fatalf("Failed to add creator: %v", err)
	}
	if err := b.Select(ctx, company.ID, creator.ID); err != nil {
		t.Fatalf("Failed to select: %v", err)
	}
	sprint := startSprint(t, b, company.ID, "S1")
	first := createTask(t, b, company.ID, "first")
	second := createTask(t, b, company.ID, "second")
	if err := b.LogTime(ctx, company.ID, first.ID, 45, "spike"); err != nil {
		t.Fatalf("Failed to log time: %v", err)
	}

	reloaded, err := New(ctx, store, discardLogger())
	if err != nil {
		t.Fatalf("Failed to reload board: %v", err)
	}

	tasks := reloaded.Tasks(company.ID)
	if len(tasks) != 2 || tasks[0].ID != first.ID || tasks[1].ID != second.ID {
		t.Fatalf("Expected task order preserved, got %+v", tasks)
	}
	if tasks[0].LoggedTimes[0].Minutes != 45 {
		t.Errorf("Expected logged time preserved, got %+v", tasks[0].LoggedTimes)
	}
	active, ok := reloaded.ActiveSprint(company.ID)
	if !ok || active.ID != sprint.ID {
		t.Errorf("Expected active sprint %s after reload, got %+v", sprint.ID, active)
	}
	if state := reloaded.AppState(); state.CurrentCompanyID != company.ID || state.CurrentCreatorID != creator.ID {
		t.Errorf("Expected selection preserved, got %+v", state)
	}
	if companies := reloaded.Companies(); len(companies) != 1 || companies[0].Logo != "logo.png" {
		t.Errorf("Expected company preserved, got %+v", companies)
	}
}

func TestCompaniesArePartitioned(t *testing.T) {
	b := newTestBoard(t)

	startSprint(t, b, "c1", "S1")
	startSprint(t, b, "c2", "Other")
	mine := createTask(t, b, "c1", "mine")
	createTask(t, b, "c2", "theirs")

	visible := b.VisibleTasks("c1")
	if len(visible) != 1 || visible[0].ID != mine.ID {
		t.Errorf("Expected only c1 tasks on c1 board, got %+v", visible)
	}
}

func TestChronologicalHistorySortsByDate(t *testing.T) {
	later := time.Date(2026, time.May, 2, 0, 0, 0, 0, time.UTC)
	earlier := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	task := models.Task{History: []models.HistoryEvent{
		{Date: later, Kind: models.HistoryStatusChanged},
		{Date: earlier, Kind: models.HistoryCreated},
	}}

	sorted := ChronologicalHistory(task)
	if sorted[0].Kind != models.HistoryCreated || sorted[1].Kind != models.HistoryStatusChanged {
		t.Errorf("Expected events sorted by date, got %+v", sorted)
	}
	// The stored trail keeps append order.
	if task.History[0].Kind != models.HistoryStatusChanged {
		t.Error("Expected original trail untouched")
	}
}
