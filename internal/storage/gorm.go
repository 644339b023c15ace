package storage

import (
	"context"
	"fmt"

	"github.com/reportdeck/internal/models"
	"gorm.io/gorm"
)

// GormStore implements Store on top of the gorm database handle.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) GetScheduledReports(ctx context.Context) ([]models.ScheduledReport, error) {
	var reports []models.ScheduledReport
	if err := s.db.WithContext(ctx).Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("failed to list scheduled reports: %v", err)
	}
	return reports, nil
}

func (s *GormStore) GetActiveScheduledReports(ctx context.Context) ([]models.ScheduledReport, error) {
	var reports []models.ScheduledReport
	if err := s.db.WithContext(ctx).
		Where("status = ?", models.ReportStatusActive).
		Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("failed to list active scheduled reports: %v", err)
	}
	return reports, nil
}

func (s *GormStore) GetScheduledReportByID(ctx context.Context, id uint) (*models.ScheduledReport, error) {
	var report models.ScheduledReport
	if err := s.db.WithContext(ctx).First(&report, id).Error; err != nil {
		return nil, fmt.Errorf("failed to find scheduled report %d: %w", id, err)
	}
	return &report, nil
}

func (s *GormStore) CreateScheduledReport(ctx context.Context, report *models.ScheduledReport) error {
	return s.db.WithContext(ctx).Create(report).Error
}

func (s *GormStore) SaveScheduledReport(ctx context.Context, report *models.ScheduledReport) error {
	return s.db.WithContext(ctx).Save(report).Error
}

func (s *GormStore) UpdateScheduledReport(ctx context.Context, id uint, patch map[string]any) error {
	return s.db.WithContext(ctx).
		Model(&models.ScheduledReport{}).
		Where("id = ?", id).
		Updates(patch).Error
}

func (s *GormStore) DeleteScheduledReport(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.ScheduledReport{}, id).Error
}

func (s *GormStore) CreateReportExecution(ctx context.Context, exec *models.ReportExecution) error {
	return s.db.WithContext(ctx).Create(exec).Error
}

func (s *GormStore) ListReportExecutions(ctx context.Context, reportID uint, limit int) ([]models.ReportExecution, error) {
	var execs []models.ReportExecution
	query := s.db.WithContext(ctx).
		Where("report_id = ?", reportID).
		Order("started_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&execs).Error; err != nil {
		return nil, fmt.Errorf("failed to list executions for report %d: %v", reportID, err)
	}
	return execs, nil
}

// LatestArtifactURL returns the artifact URL of the most recent successful
// execution, or "" when there is none.
func (s *GormStore) LatestArtifactURL(ctx context.Context, reportID uint) (string, error) {
	var exec models.ReportExecution
	err := s.db.WithContext(ctx).
		Where("report_id = ? AND success = ? AND artifact_url <> ''", reportID, true).
		Order("started_at desc").
		First(&exec).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", nil
		}
		return "", err
	}
	return exec.ArtifactURL, nil
}

func (s *GormStore) GetMonitoredEndpoints(ctx context.Context) ([]models.MonitoredEndpoint, error) {
	var endpoints []models.MonitoredEndpoint
	if err := s.db.WithContext(ctx).Find(&endpoints).Error; err != nil {
		return nil, fmt.Errorf("failed to list monitored endpoints: %v", err)
	}
	return endpoints, nil
}

func (s *GormStore) GetActiveMonitoredEndpoints(ctx context.Context) ([]models.MonitoredEndpoint, error) {
	var endpoints []models.MonitoredEndpoint
	if err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Find(&endpoints).Error; err != nil {
		return nil, fmt.Errorf("failed to list active monitored endpoints: %v", err)
	}
	return endpoints, nil
}

func (s *GormStore) GetMonitoredEndpointByID(ctx context.Context, id uint) (*models.MonitoredEndpoint, error) {
	var endpoint models.MonitoredEndpoint
	if err := s.db.WithContext(ctx).First(&endpoint, id).Error; err != nil {
		return nil, fmt.Errorf("failed to find monitored endpoint %d: %w", id, err)
	}
	return &endpoint, nil
}

func (s *GormStore) CreateMonitoredEndpoint(ctx context.Context, endpoint *models.MonitoredEndpoint) error {
	return s.db.WithContext(ctx).Create(endpoint).Error
}

func (s *GormStore) SaveMonitoredEndpoint(ctx context.Context, endpoint *models.MonitoredEndpoint) error {
	return s.db.WithContext(ctx).Save(endpoint).Error
}

func (s *GormStore) UpdateMonitoredEndpoint(ctx context.Context, id uint, patch map[string]any) error {
	return s.db.WithContext(ctx).
		Model(&models.MonitoredEndpoint{}).
		Where("id = ?", id).
		Updates(patch).Error
}

func (s *GormStore) DeleteMonitoredEndpoint(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.MonitoredEndpoint{}, id).Error
}

func (s *GormStore) CreateEndpointCheck(ctx context.Context, check *models.EndpointCheck) error {
	return s.db.WithContext(ctx).Create(check).Error
}

func (s *GormStore) ListEndpointChecks(ctx context.Context, endpointID uint, limit int) ([]models.EndpointCheck, error) {
	var checks []models.EndpointCheck
	query := s.db.WithContext(ctx).
		Where("endpoint_id = ?", endpointID).
		Order("checked_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&checks).Error; err != nil {
		return nil, fmt.Errorf("failed to list checks for endpoint %d: %v", endpointID, err)
	}
	return checks, nil
}

func (s *GormStore) GetTemplateByID(ctx context.Context, id uint) (*models.ReportTemplate, error) {
	var tmpl models.ReportTemplate
	if err := s.db.WithContext(ctx).First(&tmpl, id).Error; err != nil {
		return nil, fmt.Errorf("failed to find template %d: %w", id, err)
	}
	return &tmpl, nil
}

func (s *GormStore) ListTemplates(ctx context.Context) ([]models.ReportTemplate, error) {
	var tmpls []models.ReportTemplate
	if err := s.db.WithContext(ctx).Find(&tmpls).Error; err != nil {
		return nil, fmt.Errorf("failed to list templates: %v", err)
	}
	return tmpls, nil
}

func (s *GormStore) GetPresentationByID(ctx context.Context, id uint) (*models.Presentation, error) {
	var pres models.Presentation
	if err := s.db.WithContext(ctx).
		Preload("Slides", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		First(&pres, id).Error; err != nil {
		return nil, fmt.Errorf("failed to find presentation %d: %w", id, err)
	}
	return &pres, nil
}

func (s *GormStore) GetEmailTemplateByID(ctx context.Context, id uint) (*models.EmailTemplate, error) {
	var tmpl models.EmailTemplate
	if err := s.db.WithContext(ctx).First(&tmpl, id).Error; err != nil {
		return nil, fmt.Errorf("failed to find email template %d: %w", id, err)
	}
	return &tmpl, nil
}

func (s *GormStore) ListIntegrations(ctx context.Context) ([]models.Integration, error) {
	var integrations []models.Integration
	if err := s.db.WithContext(ctx).Find(&integrations).Error; err != nil {
		return nil, fmt.Errorf("failed to list integrations: %v", err)
	}
	return integrations, nil
}

func (s *GormStore) CreateIntegration(ctx context.Context, integration *models.Integration) error {
	if err := integration.Credentials.Validate(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(integration).Error
}

func (s *GormStore) DeleteIntegration(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.Integration{}, id).Error
}

func (s *GormStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Create(user).Error
}
