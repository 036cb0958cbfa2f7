package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"tablero/internal/board"
	"tablero/internal/models"
)

type sprintRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Objectives  []string `json:"objectives"`
	Goal        string   `json:"goal"`
	Capacity    int      `json:"capacity"`
}

type finishRequest struct {
	Retrospective *models.Retrospective `json:"retrospective"`
	Velocity      int                   `json:"velocity"`
}

// closeRequest finishes a sprint and reassigns its tasks in one intent.
type closeRequest struct {
	Retrospective *models.Retrospective `json:"retrospective"`
	Velocity      int                   `json:"velocity"`
	NextSprintID  string                `json:"next_sprint_id"`
	MoveTasks     []string              `json:"move_tasks"`
	PendingTasks  []string              `json:"pending_tasks"`
}

type standupRequest struct {
	Member      string   `json:"member"`
	Yesterday   string   `json:"yesterday"`
	Today       string   `json:"today"`
	Impediments []string `json:"impediments"`
}

type burndownRequest struct {
	PointsRemaining int `json:"points_remaining"`
}

// handleListSprints returns the company's sprints in creation order.
func (s *Server) handleListSprints(c *gin.Context) {
	respondSuccess(c, http.StatusOK, gin.H{"sprints": s.board.Sprints(c.Param("id"))})
}

// handleStartSprint starts a sprint spanning the current month. Starting is
// only allowed while no other sprint is active for the company; the board
// itself does not re-check, so the precondition lives here.
func (s *Server) handleStartSprint(c *gin.Context) {
	companyID := c.Param("id")

	var req sprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Name == "" {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("name is required"))
		return
	}
	if active, ok := s.board.ActiveSprint(companyID); ok {
		s.respondError(c, http.StatusConflict, fmt.Errorf("sprint %s is already active", active.ID))
		return
	}

	sprint, err := s.board.StartSprint(c.Request.Context(), companyID, board.SprintInput{
		Name:        req.Name,
		Description: req.Description,
		Objectives:  req.Objectives,
		Goal:        req.Goal,
		Capacity:    req.Capacity,
	})
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"sprint": sprint})
}

// handleFinishSprint closes a sprint with its retrospective and velocity.
// Tasks still bound to it stay bound until reassigned.
func (s *Server) handleFinishSprint(c *gin.Context) {
	var req finishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	err := s.board.FinishSprint(c.Request.Context(), c.Param("id"), c.Param("sprintId"), req.Retrospective, req.Velocity)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "finished"})
}

// handleCloseSprint finishes the sprint and reassigns its tasks. The two
// steps persist their own collections; there is no cross-key transaction.
func (s *Server) handleCloseSprint(c *gin.Context) {
	companyID := c.Param("id")
	sprintID := c.Param("sprintId")

	var req closeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	ctx := c.Request.Context()
	if err := s.board.FinishSprint(ctx, companyID, sprintID, req.Retrospective, req.Velocity); err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	if err := s.board.ReassignSprintTasks(ctx, companyID, sprintID, req.NextSprintID, req.MoveTasks, req.PendingTasks); err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "closed"})
}

// handleReopenSprint puts a finished sprint back in the active slot.
func (s *Server) handleReopenSprint(c *gin.Context) {
	if err := s.board.ReopenSprint(c.Request.Context(), c.Param("id"), c.Param("sprintId")); err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "reopened"})
}

// handleDeleteSprint removes a sprint; task references are left dangling.
func (s *Server) handleDeleteSprint(c *gin.Context) {
	if err := s.board.DeleteSprint(c.Request.Context(), c.Param("id"), c.Param("sprintId")); err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}

// handleRecordStandup appends a daily scrum entry to the sprint.
func (s *Server) handleRecordStandup(c *gin.Context) {
	var req standupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Member == "" {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("member is required"))
		return
	}

	err := s.board.RecordStandup(c.Request.Context(), c.Param("id"), c.Param("sprintId"), models.DailyStandup{
		Member:      req.Member,
		Yesterday:   req.Yesterday,
		Today:       req.Today,
		Impediments: req.Impediments,
	})
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "recorded"})
}

// handleRecordBurndown appends a remaining-points sample to the sprint.
func (s *Server) handleRecordBurndown(c *gin.Context) {
	var req burndownRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if req.PointsRemaining < 0 {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("points_remaining must not be negative"))
		return
	}

	err := s.board.RecordBurndownPoint(c.Request.Context(), c.Param("id"), c.Param("sprintId"), req.PointsRemaining)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "recorded"})
}
