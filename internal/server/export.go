package server

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tablero/internal/export"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// handleExport streams the company's visible tasks as an xlsx snapshot.
func (s *Server) handleExport(c *gin.Context) {
	tasks := s.board.VisibleTasks(c.Param("id"))
	if len(tasks) == 0 {
		s.respondError(c, http.StatusNotFound, fmt.Errorf("no tasks to export"))
		return
	}

	var buf bytes.Buffer
	if err := export.WriteTasks(&buf, tasks); err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}

	filename := export.Filename(time.Now())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
