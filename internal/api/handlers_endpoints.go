package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/reportdeck/internal/models"
)

type endpointRequest struct {
	Name             string `json:"name" binding:"required"`
	URL              string `json:"url" binding:"required,url"`
	Method           string `json:"method"`
	ExpectedStatuses []int  `json:"expected_statuses"`
	CheckInterval    int    `json:"check_interval"`
	IsActive         *bool  `json:"is_active"`
}

func (r *endpointRequest) apply(ep *models.MonitoredEndpoint) {
	ep.Name = r.Name
	ep.URL = r.URL
	ep.Method = r.Method
	if ep.Method == "" {
		ep.Method = http.MethodGet
	}
	ep.ExpectedStatuses = r.ExpectedStatuses
	ep.CheckInterval = r.CheckInterval
	if ep.CheckInterval <= 0 {
		ep.CheckInterval = 300
	}
	if r.IsActive != nil {
		ep.IsActive = *r.IsActive
	} else {
		ep.IsActive = true
	}
}

func (s *Server) listEndpoints(c *gin.Context) {
	endpoints, err := s.store.GetMonitoredEndpoints(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, endpoints)
}

func (s *Server) getEndpoint(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	ep, err := s.store.GetMonitoredEndpointByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found"})
		return
	}
	c.JSON(http.StatusOK, ep)
}

func (s *Server) createEndpoint(c *gin.Context) {
	var req endpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var ep models.MonitoredEndpoint
	req.apply(&ep)

	if err := s.store.CreateMonitoredEndpoint(c.Request.Context(), &ep); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.monitor.Upsert(&ep)
	c.JSON(http.StatusCreated, ep)
}

func (s *Server) updateEndpoint(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	ep, err := s.store.GetMonitoredEndpointByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found"})
		return
	}

	var req endpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req.apply(ep)
	if err := s.store.SaveMonitoredEndpoint(c.Request.Context(), ep); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.monitor.Upsert(ep)
	c.JSON(http.StatusOK, ep)
}

func (s *Server) deleteEndpoint(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if _, err := s.store.GetMonitoredEndpointByID(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found"})
		return
	}

	s.monitor.Remove(id)
	if err := s.store.DeleteMonitoredEndpoint(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "endpoint deleted successfully"})
}

func (s *Server) testEndpoint(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	check, err := s.monitor.TestNow(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found"})
		return
	}
	c.JSON(http.StatusOK, check)
}

func (s *Server) listEndpointChecks(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if l, err := strconv.Atoi(raw); err == nil && l > 0 {
			limit = l
		}
	}

	checks, err := s.store.ListEndpointChecks(c.Request.Context(), id, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, checks)
}

func (s *Server) listTemplates(c *gin.Context) {
	templates, err := s.store.ListTemplates(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, templates)
}

func (s *Server) listIntegrations(c *gin.Context) {
	integrations, err := s.store.ListIntegrations(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, integrations)
}

func (s *Server) createIntegration(c *gin.Context) {
	var integration models.Integration
	if err := c.ShouldBindJSON(&integration); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := models.NewCredentials(integration.Type, integration.Credentials); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.store.CreateIntegration(c.Request.Context(), &integration); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, integration)
}

func (s *Server) deleteIntegration(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := s.store.DeleteIntegration(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "integration deleted successfully"})
}
