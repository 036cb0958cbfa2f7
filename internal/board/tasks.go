package board

import (
	"context"
	"fmt"

	"tablero/internal/metrics"
	"tablero/internal/models"
)

// TaskInput carries the caller-provided fields of a new task. Validation of
// required fields (title, creator, an active sprint for the company) is the
// caller's job; the board assigns everything else.
type TaskInput struct {
	Title              string
	Description        string
	CreatorID          string
	AssigneeID         string
	EstimatedMinutes   int
	StoryPoints        int
	Priority           models.Priority
	UserStory          *models.UserStory
	AcceptanceCriteria []models.AcceptanceCriterion
	Impediments        []string
	DefinitionOfDone   []string
}

// CreateTask adds a pending task to the company's collection, bound to the
// company's active sprint, with a single "created" history event. The
// company's collection is created lazily on first use.
func (b *Board) CreateTask(ctx context.Context, companyID string, input TaskInput) (models.Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	task := models.Task{
		ID:                 b.newID(),
		Title:              input.Title,
		Description:        input.Description,
		CreatorID:          input.CreatorID,
		AssigneeID:         input.AssigneeID,
		Status:             models.StatusPending,
		CreatedAt:          now,
		EstimatedMinutes:   input.EstimatedMinutes,
		StoryPoints:        input.StoryPoints,
		Priority:           input.Priority,
		UserStory:          input.UserStory,
		AcceptanceCriteria: input.AcceptanceCriteria,
		Impediments:        input.Impediments,
		DefinitionOfDone:   input.DefinitionOfDone,
		LoggedTimes:        []models.TimeEntry{},
		SprintID:           b.state.ActiveSprints[companyID],
		History: []models.HistoryEvent{{
			Date:        now,
			Kind:        models.HistoryCreated,
			Description: "Task created",
			Status:      models.StatusPending,
		}},
	}

	if b.state.Tasks == nil {
		b.state.Tasks = map[string][]models.Task{}
	}
	b.state.Tasks[companyID] = append(b.state.Tasks[companyID], task)

	metrics.IncBoardOperation("task_create")
	b.logger.Info("task created",
		"company", companyID, "task", task.ID, "sprint", task.SprintID)
	return task, b.persistTasks(ctx)
}

// TransitionTask overwrites the task's status and records a status_changed
// event. Moving to done stamps the finish time; moving away from done leaves
// any prior finish time untouched. Unknown company or task ids are a no-op.
func (b *Board) TransitionTask(ctx context.Context, companyID, taskID string, status models.TaskStatus) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	task := b.findTask(companyID, taskID)
	if task == nil {
		return nil
	}

	now := b.now()
	task.Status = status
	if status == models.StatusDone {
		finished := now
		task.FinishedAt = &finished
	}
	task.History = append(task.History, models.HistoryEvent{
		Date:        now,
		Kind:        models.HistoryStatusChanged,
		Description: fmt.Sprintf("Status changed to %s", status),
		Status:      status,
	})

	metrics.IncBoardOperation("task_transition")
	return b.persistTasks(ctx)
}

// LogTime appends an immutable time entry stamped with the board's clock and
// records a time_logged event. Unknown ids are a no-op.
func (b *Board) LogTime(ctx context.Context, companyID, taskID string, minutes int, description string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	task := b.findTask(companyID, taskID)
	if task == nil {
		return nil
	}

	now := b.now()
	task.LoggedTimes = append(task.LoggedTimes, models.TimeEntry{
		Date:        now,
		Minutes:     minutes,
		Description: description,
	})
	task.History = append(task.History, models.HistoryEvent{
		Date:        now,
		Kind:        models.HistoryTimeLogged,
		Description: fmt.Sprintf("Logged %d minutes: %s", minutes, description),
		Status:      task.Status,
	})

	metrics.IncBoardOperation("task_log_time")
	return b.persistTasks(ctx)
}

// DeleteTask removes the task from the company's collection. Deleting an
// absent id is a no-op.
func (b *Board) DeleteTask(ctx context.Context, companyID, taskID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	tasks, ok := b.state.Tasks[companyID]
	if !ok {
		return nil
	}

	kept := tasks[:0]
	removed := false
	for _, t := range tasks {
		if t.ID == taskID {
			removed = true
			continue
		}
		kept = append(kept, t)
	}
	if !removed {
		return nil
	}
	b.state.Tasks[companyID] = kept

	metrics.IncBoardOperation("task_delete")
	b.logger.Info("task deleted", "company", companyID, "task", taskID)
	return b.persistTasks(ctx)
}

// ReassignSprintTasks rebinds every task currently attached to oldSprintID
// when its sprint closes. Ids in moveSet go to newSprintID (or become
// unsprinted when newSprintID is empty); ids in pendingSet are unbound and
// left pending. Tasks in neither set are also unbound rather than staying
// attached to the closed sprint, so no task drops out of every board view.
func (b *Board) ReassignSprintTasks(ctx context.Context, companyID, oldSprintID, newSprintID string, moveSet, pendingSet []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	tasks, ok := b.state.Tasks[companyID]
	if !ok {
		return nil
	}

	// Ids outside moveSet get the pending treatment whether or not they were
	// listed in pendingSet; the explicit set exists so callers can state
	// intent and future policies can tell the two groups apart.
	move := toSet(moveSet)
	now := b.now()

	for i := range tasks {
		task := &tasks[i]
		if task.SprintID != oldSprintID {
			continue
		}

		var description string
		if _, ok := move[task.ID]; ok {
			task.SprintID = newSprintID
			if newSprintID != "" {
				description = "Task moved to the next sprint"
			} else {
				description = "Task removed from sprint"
			}
		} else {
			task.SprintID = ""
			description = "Task marked pending"
		}

		task.History = append(task.History, models.HistoryEvent{
			Date:        now,
			Kind:        models.HistorySprintChanged,
			Description: description,
			Status:      task.Status,
		})
	}

	metrics.IncBoardOperation("task_reassign_sprint")
	return b.persistTasks(ctx)
}

// findTask returns a pointer into the company's collection, or nil.
// Callers must hold the write lock.
func (b *Board) findTask(companyID, taskID string) *models.Task {
	tasks, ok := b.state.Tasks[companyID]
	if !ok {
		return nil
	}
	for i := range tasks {
		if tasks[i].ID == taskID {
			return &tasks[i]
		}
	}
	return nil
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
