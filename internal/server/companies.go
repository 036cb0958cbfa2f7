package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type companyRequest struct {
	Name string `json:"name"`
	Logo string `json:"logo"`
}

type creatorRequest struct {
	Name string `json:"name"`
}

type selectRequest struct {
	CompanyID string `json:"company_id"`
	CreatorID string `json:"creator_id"`
}

// handleListCompanies returns all registered companies.
func (s *Server) handleListCompanies(c *gin.Context) {
	respondSuccess(c, http.StatusOK, gin.H{"companies": s.board.Companies()})
}

// handleAddCompany registers a new company.
func (s *Server) handleAddCompany(c *gin.Context) {
	var req companyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Name == "" {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("name is required"))
		return
	}

	company, err := s.board.AddCompany(c.Request.Context(), req.Name, req.Logo)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"company": company})
}

// handleRemoveCompany drops a company record. Its tasks and sprints stay in
// storage keyed by the removed id.
func (s *Server) handleRemoveCompany(c *gin.Context) {
	if err := s.board.RemoveCompany(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}

// handleListCreators returns the global creator list.
func (s *Server) handleListCreators(c *gin.Context) {
	respondSuccess(c, http.StatusOK, gin.H{"creators": s.board.Creators()})
}

// handleAddCreator registers a new creator.
func (s *Server) handleAddCreator(c *gin.Context) {
	var req creatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Name == "" {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("name is required"))
		return
	}

	creator, err := s.board.AddCreator(c.Request.Context(), req.Name)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"creator": creator})
}

// handleRemoveCreator drops a creator; task references are left dangling.
func (s *Server) handleRemoveCreator(c *gin.Context) {
	if err := s.board.RemoveCreator(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}

// handleSelect stores the current company/creator selection.
func (s *Server) handleSelect(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	if err := s.board.Select(c.Request.Context(), req.CompanyID, req.CreatorID); err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"state": s.board.AppState()})
}
