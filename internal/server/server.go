package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tablero/internal/board"
)

// Server provides HTTP handlers for the sprint board backend.
type Server struct {
	engine    *gin.Engine
	board     *board.Board
	logger    *slog.Logger
	staticDir string
}

// New constructs the HTTP server with routes and middleware configured.
func New(b *board.Board, logger *slog.Logger, staticDir string) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithWriter(gin.DefaultWriter, "/api"))

	srv := &Server{
		engine:    router,
		board:     b,
		logger:    logger,
		staticDir: staticDir,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all API, metrics and static handlers together.
func (s *Server) registerRoutes() {
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)
		api.PUT("/state", s.handleSelect)

		api.GET("/creators", s.handleListCreators)
		api.POST("/creators", s.handleAddCreator)
		api.DELETE("/creators/:id", s.handleRemoveCreator)

		companies := api.Group("/companies")
		{
			companies.GET("", s.handleListCompanies)
			companies.POST("", s.handleAddCompany)
			companies.DELETE(":id", s.handleRemoveCompany)

			companies.GET(":id/board", s.handleBoard)
			companies.GET(":id/export", s.handleExport)

			companies.POST(":id/tasks", s.handleCreateTask)
			companies.PUT(":id/tasks/:taskId/status", s.handleTransitionTask)
			companies.POST(":id/tasks/:taskId/time", s.handleLogTime)
			companies.DELETE(":id/tasks/:taskId", s.handleDeleteTask)

			companies.GET(":id/sprints", s.handleListSprints)
			companies.POST(":id/sprints", s.handleStartSprint)
			companies.POST(":id/sprints/:sprintId/finish", s.handleFinishSprint)
			companies.POST(":id/sprints/:sprintId/reopen", s.handleReopenSprint)
			companies.POST(":id/sprints/:sprintId/close", s.handleCloseSprint)
			companies.DELETE(":id/sprints/:sprintId", s.handleDeleteSprint)
			companies.POST(":id/sprints/:sprintId/standups", s.handleRecordStandup)
			companies.POST(":id/sprints/:sprintId/burndown", s.handleRecordBurndown)
		}
	}

	s.mountStatic()
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondError logs the error and returns a JSON payload.
func (s *Server) respondError(c *gin.Context, status int, err error) {
	if err != nil {
		s.logger.Error("request failed", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// respondSuccess wraps a payload in a JSON envelope for consistency.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}
