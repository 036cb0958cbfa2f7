package board

import (
	"context"
	"time"

	"tablero/internal/metrics"
	"tablero/internal/models"
)

// SprintInput carries the caller-provided fields of a new sprint. The sprint
// window is never caller-specified; it is computed from the board's clock.
type SprintInput struct {
	Name        string
	Description string
	Objectives  []string
	Goal        string
	Capacity    int
}

// monthWindow returns the fixed sprint window for the month containing now:
// the first day at midnight through the last day clamped to 23:00 local time.
func monthWindow(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastDay := start.AddDate(0, 1, -1)
	end := time.Date(lastDay.Year(), lastDay.Month(), lastDay.Day(), 23, 0, 0, 0, now.Location())
	return start, end
}

// StartSprint creates an active sprint spanning the current calendar month
// and makes it the company's active sprint. Guaranteeing that no other sprint
// is active for the company is the caller's responsibility.
func (b *Board) StartSprint(ctx context.Context, companyID string, input SprintInput) (models.Sprint, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	start, end := monthWindow(b.now())
	sprint := models.Sprint{
		ID:          b.newID(),
		CompanyID:   companyID,
		Name:        input.Name,
		Description: input.Description,
		StartDate:   start,
		EndDate:     end,
		Status:      models.SprintActive,
		Objectives:  input.Objectives,
		Goal:        input.Goal,
		Capacity:    input.Capacity,
	}
	if sprint.Objectives == nil {
		sprint.Objectives = []string{}
	}

	if b.state.Sprints == nil {
		b.state.Sprints = map[string][]models.Sprint{}
	}
	b.state.Sprints[companyID] = append(b.state.Sprints[companyID], sprint)
	if b.state.ActiveSprints == nil {
		b.state.ActiveSprints = map[string]string{}
	}
	b.state.ActiveSprints[companyID] = sprint.ID

	metrics.IncBoardOperation("sprint_start")
	b.logger.Info("sprint started",
		"company", companyID, "sprint", sprint.ID, "name", sprint.Name)
	return sprint, b.persistSprints(ctx)
}

// FinishSprint marks the sprint finished, storing the retrospective and
// velocity over any prior values, and clears the company's active pointer
// when it referenced this sprint. Tasks still bound to the sprint are left
// bound; reassignment is a separate step. Unknown ids are a no-op.
func (b *Board) FinishSprint(ctx context.Context, companyID, sprintID string, retro *models.Retrospective, velocity int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	sprint := b.findSprint(companyID, sprintID)
	if sprint == nil {
		return nil
	}

	sprint.Status = models.SprintFinished
	sprint.Retrospective = retro
	sprint.Velocity = velocity
	if b.state.ActiveSprints[companyID] == sprintID {
		delete(b.state.ActiveSprints, companyID)
	}

	metrics.IncBoardOperation("sprint_finish")
	b.logger.Info("sprint finished",
		"company", companyID, "sprint", sprintID, "velocity", velocity)
	return b.persistSprints(ctx)
}

// ReopenSprint puts a sprint back in the company's active slot. If a
// different sprint currently holds the slot it is force-finished first, so
// at most one sprint per company ever looks active. The reopened sprint's
// prior retrospective and velocity are kept until a later finish overwrites
// them. Unknown ids are a no-op.
func (b *Board) ReopenSprint(ctx context.Context, companyID, sprintID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	sprint := b.findSprint(companyID, sprintID)
	if sprint == nil {
		return nil
	}

	if currentID, ok := b.state.ActiveSprints[companyID]; ok && currentID != sprintID {
		if current := b.findSprint(companyID, currentID); current != nil {
			current.Status = models.SprintFinished
			b.logger.Warn("force-finished active sprint on reopen",
				"company", companyID, "demoted", currentID, "reopened", sprintID)
		}
	}

	sprint.Status = models.SprintReopened
	if b.state.ActiveSprints == nil {
		b.state.ActiveSprints = map[string]string{}
	}
	b.state.ActiveSprints[companyID] = sprintID

	metrics.IncBoardOperation("sprint_reopen")
	return b.persistSprints(ctx)
}

// DeleteSprint removes the sprint and clears the active pointer when it
// referenced the sprint. Tasks keeping this sprint id are left with a
// dangling reference on purpose. Unknown ids are a no-op.
func (b *Board) DeleteSprint(ctx context.Context, companyID, sprintID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	sprints, ok := b.state.Sprints[companyID]
	if !ok {
		return nil
	}

	kept := sprints[:0]
	removed := false
	for _, s := range sprints {
		if s.ID == sprintID {
			removed = true
			continue
		}
		kept = append(kept, s)
	}
	if !removed {
		return nil
	}
	b.state.Sprints[companyID] = kept
	if b.state.ActiveSprints[companyID] == sprintID {
		delete(b.state.ActiveSprints, companyID)
	}

	metrics.IncBoardOperation("sprint_delete")
	b.logger.Info("sprint deleted", "company", companyID, "sprint", sprintID)
	return b.persistSprints(ctx)
}

// RecordStandup appends one daily scrum entry to the sprint, stamped with the
// board's clock. Unknown ids are a no-op.
func (b *Board) RecordStandup(ctx context.Context, companyID, sprintID string, standup models.DailyStandup) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	sprint := b.findSprint(companyID, sprintID)
	if sprint == nil {
		return nil
	}

	standup.Date = b.now()
	sprint.DailyStandups = append(sprint.DailyStandups, standup)

	metrics.IncBoardOperation("sprint_standup")
	return b.persistSprints(ctx)
}

// RecordBurndownPoint appends one remaining-points sample to the sprint's
// burndown series. Unknown ids are a no-op.
func (b *Board) RecordBurndownPoint(ctx context.Context, companyID, sprintID string, pointsRemaining int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	sprint := b.findSprint(companyID, sprintID)
	if sprint == nil {
		return nil
	}

	sprint.Burndown = append(sprint.Burndown, models.BurndownPoint{
		Date:            b.now(),
		PointsRemaining: pointsRemaining,
	})

	metrics.IncBoardOperation("sprint_burndown")
	return b.persistSprints(ctx)
}

// findSprint returns a pointer into the company's collection, or nil.
// Callers must hold the write lock.
func (b *Board) findSprint(companyID, sprintID string) *models.Sprint {
	sprints, ok := b.state.Sprints[companyID]
	if !ok {
		return nil
	}
	for i := range sprints {
		if sprints[i].ID == sprintID {
			return &sprints[i]
		}
	}
	return nil
}
