package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/reportdeck/internal/models"
	"github.com/reportdeck/internal/schedule"
)

type reportRequest struct {
	Name              string                    `json:"name" binding:"required"`
	Description       string                    `json:"description"`
	TemplateID        uint                      `json:"template_id"`
	PresentationID    uint                      `json:"presentation_id"`
	CronExpression    *string                   `json:"cron_expression"`
	Timezone          string                    `json:"timezone"`
	Status            models.ReportStatus       `json:"status"`
	Recipients        []string                  `json:"recipients" binding:"required"`
	CCList            []string                  `json:"cc_list"`
	BCCList           []string                  `json:"bcc_list"`
	EmailSubject      string                    `json:"email_subject"`
	EmailBody         string                    `json:"email_body"`
	EmailTemplateID   uint                      `json:"email_template_id"`
	CustomContent     string                    `json:"custom_content"`
	TemplateVariables []models.TemplateVariable `json:"template_variables"`
	FormatSettings    models.FormatSettings     `json:"format_settings"`
}

func (r *reportRequest) validate() string {
	if r.CronExpression != nil && *r.CronExpression != "" {
		if err := schedule.Validate(*r.CronExpression); err != nil {
			return err.Error()
		}
	}
	if r.TemplateID == 0 && r.PresentationID == 0 {
		return "a template_id or presentation_id is required"
	}
	return ""
}

func (r *reportRequest) apply(rep *models.ScheduledReport) {
	rep.Name = r.Name
	rep.Description = r.Description
	rep.TemplateID = r.TemplateID
	rep.PresentationID = r.PresentationID
	rep.CronExpression = r.CronExpression
	if r.CronExpression != nil && *r.CronExpression == "" {
		rep.CronExpression = nil
	}
	rep.Timezone = r.Timezone
	rep.Status = r.Status
	if rep.Status == "" {
		rep.Status = models.ReportStatusActive
	}
	rep.Recipients = r.Recipients
	rep.CCList = r.CCList
	rep.BCCList = r.BCCList
	rep.EmailSubject = r.EmailSubject
	rep.EmailBody = r.EmailBody
	rep.EmailTemplateID = r.EmailTemplateID
	rep.CustomContent = r.CustomContent
	rep.TemplateVariables = r.TemplateVariables
	rep.FormatSettings = r.FormatSettings
}

func (s *Server) listReports(c *gin.Context) {
	reports, err := s.store.GetScheduledReports(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	type listedReport struct {
		models.ScheduledReport
		ScheduleDescription string `json:"schedule_description"`
	}
	out := make([]listedReport, 0, len(reports))
	for _, rep := range reports {
		item := listedReport{ScheduledReport: rep}
		if rep.CronExpression != nil {
			item.ScheduleDescription = schedule.Describe(*rep.CronExpression, rep.Timezone)
		}
		out = append(out, item)
	}

	c.JSON(http.StatusOK, out)
}

func (s *Server) getReport(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	rep, err := s.store.GetScheduledReportByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}

	c.JSON(http.StatusOK, rep)
}

func (s *Server) createReport(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	var rep models.ScheduledReport
	req.apply(&rep)

	if err := s.store.CreateScheduledReport(c.Request.Context(), &rep); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.orch.Upsert(c.Request.Context(), &rep)
	c.JSON(http.StatusCreated, rep)
}

func (s *Server) updateReport(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	rep, err := s.store.GetScheduledReportByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}

	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	req.apply(rep)
	if err := s.store.SaveScheduledReport(c.Request.Context(), rep); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.orch.Upsert(c.Request.Context(), rep)
	c.JSON(http.StatusOK, rep)
}

func (s *Server) deleteReport(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if _, err := s.store.GetScheduledReportByID(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}

	// Cancel the trigger before the row goes away so no fire can land on
	// a deleted report.
	s.orch.Remove(id)
	if err := s.store.DeleteScheduledReport(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "report deleted successfully"})
}

func (s *Server) executeReport(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := s.orch.RunNow(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}

	if !result.Success {
		c.JSON(http.StatusInternalServerError, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) listReportExecutions(c *gin.Context) {
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

	execs, err := s.store.ListReportExecutions(c.Request.Context(), id, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, execs)
}

// sendNow persists a one-shot report (null cron, one_shot flag) and runs it
// synchronously. The row is kept for history with status completed.
func (s *Server) sendNow(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.CronExpression = nil
	req.Status = models.ReportStatusCompleted
	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	var rep models.ScheduledReport
	req.apply(&rep)
	rep.OneShot = true

	if err := s.store.CreateScheduledReport(c.Request.Context(), &rep); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	result, err := s.orch.RunNow(c.Request.Context(), rep.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if !result.Success {
		c.JSON(http.StatusInternalServerError, result)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}
