package board

import (
	"sort"

	"tablero/internal/models"
)

// Companies returns a copy of the company list.
func (b *Board) Companies() []models.Company {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]models.Company(nil), b.state.Companies...)
}

// Creators returns a copy of the global creator list.
func (b *Board) Creators() []models.Creator {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]models.Creator(nil), b.state.Creators...)
}

// AppState returns the current company/creator selection.
func (b *Board) AppState() models.AppState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state.AppState
}

// ActiveSprint resolves the company's active sprint pointer. The second
// return is false when no pointer is set or the pointer does not resolve.
func (b *Board) ActiveSprint(companyID string) (models.Sprint, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.activeSprintLocked(companyID)
}

func (b *Board) activeSprintLocked(companyID string) (models.Sprint, bool) {
	sprintID, ok := b.state.ActiveSprints[companyID]
	if !ok || sprintID == "" {
		return models.Sprint{}, false
	}
	for _, s := range b.state.Sprints[companyID] {
		if s.ID == sprintID {
			return s, true
		}
	}
	return models.Sprint{}, false
}

// Sprints returns a copy of the company's sprint list in creation order.
func (b *Board) Sprints(companyID string) []models.Sprint {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]models.Sprint(nil), b.state.Sprints[companyID]...)
}

// Tasks returns a copy of the company's full task collection, including
// tasks bound to inactive sprints that the board view hides.
func (b *Board) Tasks(companyID string) []models.Task {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]models.Task(nil), b.state.Tasks[companyID]...)
}

// GetTask looks up one task by id within a company.
func (b *Board) GetTask(companyID, taskID string) (models.Task, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, t := range b.state.Tasks[companyID] {
		if t.ID == taskID {
			return t, true
		}
	}
	return models.Task{}, false
}

// VisibleTasks derives the tasks shown on the company's board: tasks bound
// to the active sprint plus unsprinted pending tasks. Tasks bound to any
// other sprint id stay in storage but are excluded until reassigned. The
// view is recomputed on every call, never cached.
func (b *Board) VisibleTasks(companyID string) []models.Task {
	b.mu.RLock()
	defer b.mu.RUnlock()

	active, hasActive := b.activeSprintLocked(companyID)

	visible := []models.Task{}
	for _, t := range b.state.Tasks[companyID] {
		switch {
		case hasActive && t.SprintID == active.ID:
			visible = append(visible, t)
		case t.SprintID == "" && t.Status == models.StatusPending:
			visible = append(visible, t)
		}
	}
	return visible
}

// ChronologicalHistory returns the task's audit trail sorted by event date.
// The stored trail is in append order, which is not guaranteed to match.
func ChronologicalHistory(task models.Task) []models.HistoryEvent {
	events := append([]models.HistoryEvent(nil), task.History...)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
	return events
}
