package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/reportdeck/internal/auth"
	"github.com/reportdeck/internal/models"
	"github.com/reportdeck/internal/monitor"
	"github.com/reportdeck/internal/scheduler"
	"github.com/reportdeck/internal/storage"
)

type Server struct {
	store     storage.Store
	orch      *scheduler.Orchestrator
	monitor   *monitor.Monitor
	router    *gin.Engine
	jwtSecret []byte
	log       zerolog.Logger
}

type Config struct {
	JWTSecret    string
	ArtifactsDir string
}

func NewServer(store storage.Store, orch *scheduler.Orchestrator, mon *monitor.Monitor, cfg Config, log zerolog.Logger) *Server {
	server := &Server{
		store:     store,
		orch:      orch,
		monitor:   mon,
		router:    gin.Default(),
		jwtSecret: []byte(cfg.JWTSecret),
		log:       log.With().Str("component", "api").Logger(),
	}

	server.setupRoutes(cfg.ArtifactsDir)
	return server
}

func (s *Server) setupRoutes(artifactsDir string) {
	// Public routes
	s.router.POST("/api/v1/auth/login", s.login)
	s.router.POST("/api/v1/auth/register", s.register)
	if artifactsDir != "" {
		s.router.Static("/artifacts", artifactsDir)
	}

	// Protected routes (require authentication)
	api := s.router.Group("/api/v1")
	api.Use(auth.Middleware(s.jwtSecret, s.store))

	reports := api.Group("/reports")
	{
		reports.GET("", s.listReports)
		reports.GET("/:id", s.getReport)
		reports.POST("", auth.RequireRole(models.RoleAdmin, models.RoleEditor), s.createReport)
		reports.PUT("/:id", auth.RequireRole(models.RoleAdmin, models.RoleEditor), s.updateReport)
		reports.DELETE("/:id", auth.RequireRole(models.RoleAdmin, models.RoleEditor), s.deleteReport)
		reports.POST("/:id/execute", auth.RequireRole(models.RoleAdmin, models.RoleEditor), s.executeReport)
		reports.GET("/:id/executions", s.listReportExecutions)
	}
	api.POST("/reports/send-now", auth.RequireRole(models.RoleAdmin, models.RoleEditor), s.sendNow)

	endpoints := api.Group("/endpoints")
	{
		endpoints.GET("", s.listEndpoints)
		endpoints.GET("/:id", s.getEndpoint)
		endpoints.POST("", auth.RequireRole(models.RoleAdmin, models.RoleEditor), s.createEndpoint)
		endpoints.PUT("/:id", auth.RequireRole(models.RoleAdmin, models.RoleEditor), s.updateEndpoint)
		endpoints.DELETE("/:id", auth.RequireRole(models.RoleAdmin, models.RoleEditor), s.deleteEndpoint)
		endpoints.POST("/:id/test", s.testEndpoint)
		endpoints.GET("/:id/checks", s.listEndpointChecks)
	}

	api.GET("/templates", s.listTemplates)

	integrations := api.Group("/integrations")
	integrations.Use(auth.RequireRole(models.RoleAdmin))
	{
		integrations.GET("", s.listIntegrations)
		integrations.POST("", s.createIntegration)
		integrations.DELETE("/:id", s.deleteIntegration)
	}
}

func (s *Server) Start(port int) error {
	return s.router.Run(fmt.Sprintf(":%d", port))
}

// Router is exposed for handler tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) login(c *gin.Context) {
	var loginReq struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&loginReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := s.store.GetUserByUsername(c.Request.Context(), loginReq.Username)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if !user.CheckPassword(loginReq.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := auth.GenerateToken(s.jwtSecret, user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (s *Server) register(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
		Email    string `json:"email" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := models.User{
		Username: req.Username,
		Email:    req.Email,
		Role:     models.RoleViewer,
		IsActive: true,
	}
	if err := user.SetPassword(req.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}

	if err := s.store.CreateUser(c.Request.Context(), &user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, user)
}
