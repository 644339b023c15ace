package storage

import (
	"context"

	"github.com/reportdeck/internal/models"
)

// Store is the persistence surface the scheduling engine consumes. The
// engine components accept narrower interfaces; this one is the union the
// API layer and the gorm implementation satisfy.
type Store interface {
	GetScheduledReports(ctx context.Context) ([]models.ScheduledReport, error)
	GetActiveScheduledReports(ctx context.Context) ([]models.ScheduledReport, error)
	GetScheduledReportByID(ctx context.Context, id uint) (*models.ScheduledReport, error)
	CreateScheduledReport(ctx context.Context, report *models.ScheduledReport) error
	SaveScheduledReport(ctx context.Context, report *models.ScheduledReport) error
	UpdateScheduledReport(ctx context.Context, id uint, patch map[string]any) error
	DeleteScheduledReport(ctx context.Context, id uint) error

	CreateReportExecution(ctx context.Context, exec *models.ReportExecution) error
	ListReportExecutions(ctx context.Context, reportID uint, limit int) ([]models.ReportExecution, error)
	LatestArtifactURL(ctx context.Context, reportID uint) (string, error)

	GetMonitoredEndpoints(ctx context.Context) ([]models.MonitoredEndpoint, error)
	GetActiveMonitoredEndpoints(ctx context.Context) ([]models.MonitoredEndpoint, error)
	GetMonitoredEndpointByID(ctx context.Context, id uint) (*models.MonitoredEndpoint, error)
	CreateMonitoredEndpoint(ctx context.Context, endpoint *models.MonitoredEndpoint) error
	SaveMonitoredEndpoint(ctx context.Context, endpoint *models.MonitoredEndpoint) error
	UpdateMonitoredEndpoint(ctx context.Context, id uint, patch map[string]any) error
	DeleteMonitoredEndpoint(ctx context.Context, id uint) error

	CreateEndpointCheck(ctx context.Context, check *models.EndpointCheck) error
	ListEndpointChecks(ctx context.Context, endpointID uint, limit int) ([]models.EndpointCheck, error)

	GetTemplateByID(ctx context.Context, id uint) (*models.ReportTemplate, error)
	ListTemplates(ctx context.Context) ([]models.ReportTemplate, error)
	GetPresentationByID(ctx context.Context, id uint) (*models.Presentation, error)
	GetEmailTemplateByID(ctx context.Context, id uint) (*models.EmailTemplate, error)

	ListIntegrations(ctx context.Context) ([]models.Integration, error)
	CreateIntegration(ctx context.Context, integration *models.Integration) error
	DeleteIntegration(ctx context.Context, id uint) error

	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
}
