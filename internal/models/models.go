package models

import "time"

// TaskStatus is one of the three board columns a task can live in.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in-progress"
	StatusDone       TaskStatus = "done"
)

// ValidTaskStatuses enumerates the statuses supported by the board columns.
var ValidTaskStatuses = map[TaskStatus]struct{}{
	StatusPending:    {},
	StatusInProgress: {},
	StatusDone:       {},
}

// ColumnLabel returns the human-readable board column title for a status.
func (s TaskStatus) ColumnLabel() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusDone:
		return "Done"
	default:
		return string(s)
	}
}

// SprintStatus tracks where a sprint is in its lifecycle.
type SprintStatus string

const (
	SprintActive   SprintStatus = "active"
	SprintFinished SprintStatus = "finished"
	SprintReopened SprintStatus = "reopened"
)

// Priority is an optional task priority; the zero value means unset.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ValidPriorities enumerates the accepted priority values.
var ValidPriorities = map[Priority]struct{}{
	PriorityHigh:   {},
	PriorityMedium: {},
	PriorityLow:    {},
}

// HistoryKind classifies the entries of a task's audit trail.
type HistoryKind string

const (
	HistoryCreated       HistoryKind = "created"
	HistoryStatusChanged HistoryKind = "status_changed"
	HistoryTimeLogged    HistoryKind = "time_logged"
	HistorySprintChanged HistoryKind = "sprint_changed"
)

// Company is the root scoping unit: tasks, sprints and the active sprint
// pointer are all partitioned by company id.
type Company struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
}

// Creator is a person who authors or is assigned tasks. Referenced by id
// from tasks; deleting a creator leaves dangling references behind.
type Creator struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AppState remembers the currently selected company and creator.
type AppState struct {
	CurrentCompanyID string `json:"current_company_id"`
	CurrentCreatorID string `json:"current_creator_id"`
}

// TimeEntry is a single immutable record of time spent on a task.
type TimeEntry struct {
	Date        time.Time `json:"date"`
	Minutes     int       `json:"minutes"`
	Description string    `json:"description"`
}

// HistoryEvent is one write-once entry in a task's audit trail. Events are
// stored in append order, not sorted by date; readers that want a
// chronological view must sort explicitly.
type HistoryEvent struct {
	Date        time.Time   `json:"date"`
	Kind        HistoryKind `json:"kind"`
	Description string      `json:"description"`
	Status      TaskStatus  `json:"status"`
}

// UserStory captures the "as a / I want / so that" framing of a task.
type UserStory struct {
	Role    string `json:"role"`
	Want    string `json:"want"`
	Benefit string `json:"benefit"`
}

// AcceptanceCriterion is a single checkable condition on a task.
type AcceptanceCriterion struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Done        bool   `json:"done"`
}

// Task represents a single card in the scrum board.
type Task struct {
	ID                 string                `json:"id"`
	Title              string                `json:"title"`
	Description        string                `json:"description"`
	CreatorID          string                `json:"creator_id"`
	Status             TaskStatus            `json:"status"`
	CreatedAt          time.Time             `json:"created_at"`
	FinishedAt         *time.Time            `json:"finished_at,omitempty"`
	EstimatedMinutes   int                   `json:"estimated_minutes,omitempty"`
	LoggedTimes        []TimeEntry           `json:"logged_times"`
	SprintID           string                `json:"sprint_id,omitempty"`
	AssigneeID         string                `json:"assignee_id,omitempty"`
	StoryPoints        int                   `json:"story_points,omitempty"`
	History            []HistoryEvent        `json:"history"`
	Priority           Priority              `json:"priority,omitempty"`
	UserStory          *UserStory            `json:"user_story,omitempty"`
	AcceptanceCriteria []AcceptanceCriterion `json:"acceptance_criteria,omitempty"`
	Impediments        []string              `json:"impediments,omitempty"`
	DefinitionOfDone   []string              `json:"definition_of_done,omitempty"`
}

// TotalLoggedMinutes sums every time entry recorded against the task.
func (t Task) TotalLoggedMinutes() int {
	total := 0
	for _, e := range t.LoggedTimes {
		total += e.Minutes
	}
	return total
}

// Retrospective is the structured end-of-sprint feedback.
type Retrospective struct {
	Good    []string `json:"good"`
	Improve []string `json:"improve"`
	Actions []string `json:"actions"`
}

// DailyStandup records one member's daily scrum answers.
type DailyStandup struct {
	Date        time.Time `json:"date"`
	Member      string    `json:"member"`
	Yesterday   string    `json:"yesterday"`
	Today       string    `json:"today"`
	Impediments []string  `json:"impediments,omitempty"`
}

// BurndownPoint is one sample of remaining story points over the sprint.
type BurndownPoint struct {
	Date            time.Time `json:"date"`
	PointsRemaining int       `json:"points_remaining"`
}

// Sprint is a fixed-window iteration scoped to one company.
type Sprint struct {
	ID            string          `json:"id"`
	CompanyID     string          `json:"company_id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	StartDate     time.Time       `json:"start_date"`
	EndDate       time.Time       `json:"end_date"`
	Status        SprintStatus    `json:"status"`
	Objectives    []string        `json:"objectives"`
	Retrospective *Retrospective  `json:"retrospective,omitempty"`
	Velocity      int             `json:"velocity,omitempty"`
	Capacity      int             `json:"capacity,omitempty"`
	Goal          string          `json:"goal,omitempty"`
	DailyStandups []DailyStandup  `json:"daily_standups,omitempty"`
	Burndown      []BurndownPoint `json:"burndown,omitempty"`
}
