package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"tablero/internal/board"
	"tablero/internal/models"
)

type taskRequest struct {
	Title              string                       `json:"title"`
	Description        string                       `json:"description"`
	CreatorID          string                       `json:"creator_id"`
	AssigneeID         string                       `json:"assignee_id"`
	EstimatedMinutes   int                          `json:"estimated_minutes"`
	StoryPoints        int                          `json:"story_points"`
	Priority           string                       `json:"priority"`
	UserStory          *models.UserStory            `json:"user_story"`
	AcceptanceCriteria []models.AcceptanceCriterion `json:"acceptance_criteria"`
	Impediments        []string                     `json:"impediments"`
	DefinitionOfDone   []string                     `json:"definition_of_done"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type timeRequest struct {
	Minutes     int    `json:"minutes"`
	Description string `json:"description"`
}

// handleBoard returns the company's visible column view: the active sprint
// plus the tasks belonging to it and the unsprinted pending ones.
func (s *Server) handleBoard(c *gin.Context) {
	companyID := c.Param("id")

	payload := gin.H{"tasks": s.board.VisibleTasks(companyID)}
	if active, ok := s.board.ActiveSprint(companyID); ok {
		payload["active_sprint"] = active
	}
	respondSuccess(c, http.StatusOK, payload)
}

// handleCreateTask inserts a new task into the company's active sprint. The
// board itself assumes pre-checked input, so the required-field and
// active-sprint preconditions are enforced here.
func (s *Server) handleCreateTask(c *gin.Context) {
	companyID := c.Param("id")

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Title == "" {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("title is required"))
		return
	}
	if req.CreatorID == "" {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("creator_id is required"))
		return
	}
	if _, ok := s.board.ActiveSprint(companyID); !ok {
		s.respondError(c, http.StatusConflict, fmt.Errorf("no active sprint for company"))
		return
	}

	priority := models.Priority(req.Priority)
	if req.Priority != "" {
		if _, ok := models.ValidPriorities[priority]; !ok {
			s.respondError(c, http.StatusBadRequest, fmt.Errorf("invalid priority %q", req.Priority))
			return
		}
	}

	task, err := s.board.CreateTask(c.Request.Context(), companyID, board.TaskInput{
		Title:              req.Title,
		Description:        req.Description,
		CreatorID:          req.CreatorID,
		AssigneeID:         req.AssigneeID,
		EstimatedMinutes:   req.EstimatedMinutes,
		StoryPoints:        req.StoryPoints,
		Priority:           priority,
		UserStory:          req.UserStory,
		AcceptanceCriteria: req.AcceptanceCriteria,
		Impediments:        req.Impediments,
		DefinitionOfDone:   req.DefinitionOfDone,
	})
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"task": task})
}

// handleTransitionTask moves a task between board columns.
func (s *Server) handleTransitionTask(c *gin.Context) {
	companyID := c.Param("id")
	taskID := c.Param("taskId")

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	status := models.TaskStatus(req.Status)
	if _, ok := models.ValidTaskStatuses[status]; !ok {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("invalid status %q", req.Status))
		return
	}

	if err := s.board.TransitionTask(c.Request.Context(), companyID, taskID, status); err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "updated"})
}

// handleLogTime appends a time entry to a task.
func (s *Server) handleLogTime(c *gin.Context) {
	companyID := c.Param("id")
	taskID := c.Param("taskId")

	var req timeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Minutes <= 0 {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("minutes must be positive"))
		return
	}
	if req.Description == "" {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("description is required"))
		return
	}

	if err := s.board.LogTime(c.Request.Context(), companyID, taskID, req.Minutes, req.Description); err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "logged"})
}

// handleDeleteTask removes a task completely.
func (s *Server) handleDeleteTask(c *gin.Context) {
	if err := s.board.DeleteTask(c.Request.Context(), c.Param("id"), c.Param("taskId")); err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}
