package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reportdeck/internal/models"
)

func TestNewCredentials(t *testing.T) {
	creds, err := models.NewCredentials(models.IntegrationS3, models.Credentials{
		S3: &models.S3Credentials{
			AccessKeyID:     "AKIA123",
			SecretAccessKey: "secret",
			Region:          "eu-west-1",
			Bucket:          "reports",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.IntegrationS3, creds.Type)
}

func TestCredentialsValidate(t *testing.T) {
	tests := []struct {
		name    string
		creds   models.Credentials
		wantErr string
	}{
		{
			name: "s3 missing bucket",
			creds: models.Credentials{
				Type: models.IntegrationS3,
				S3:   &models.S3Credentials{AccessKeyID: "AKIA123", SecretAccessKey: "secret"},
			},
			wantErr: "bucket",
		},
		{
			name:    "s3 payload absent",
			creds:   models.Credentials{Type: models.IntegrationS3},
			wantErr: "s3 credentials are required",
		},
		{
			name: "postgresql valid",
			creds: models.Credentials{
				Type: models.IntegrationPostgreSQL,
				PostgreSQL: &models.PostgreSQLCredentials{
					Host:     "db.internal",
					Port:     5432,
					Database: "analytics",
					Username: "reporter",
				},
			},
		},
		{
			name: "postgresql missing host",
			creds: models.Credentials{
				Type:       models.IntegrationPostgreSQL,
				PostgreSQL: &models.PostgreSQLCredentials{Database: "analytics", Username: "reporter"},
			},
			wantErr: "host",
		},
		{
			name: "google analytics valid",
			creds: models.Credentials{
				Type: models.IntegrationGoogleAnalytics,
				GoogleAnalytics: &models.GoogleAnalyticsCredentials{
					PropertyID:  "GA4-12345",
					ClientEmail: "svc@project.iam.gserviceaccount.com",
				},
			},
		},
		{
			name: "facebook ads missing token",
			creds: models.Credentials{
				Type:        models.IntegrationFacebookAds,
				FacebookAds: &models.FacebookAdsCredentials{AccountID: "act_1"},
			},
			wantErr: "access_token",
		},
		{
			name:    "unknown type",
			creds:   models.Credentials{Type: "mysql"},
			wantErr: "unknown integration type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.creds.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestStatusExpected(t *testing.T) {
	ep := &models.MonitoredEndpoint{}
	assert.True(t, ep.StatusExpected(200))
	assert.False(t, ep.StatusExpected(204))

	ep.ExpectedStatuses = []int{200, 301, 401}
	assert.True(t, ep.StatusExpected(301))
	assert.False(t, ep.StatusExpected(500))
}

func TestRecurring(t *testing.T) {
	expr := "0 9 * * 1"
	rep := &models.ScheduledReport{CronExpression: &expr}
	assert.True(t, rep.Recurring())

	rep.OneShot = true
	assert.False(t, rep.Recurring())

	rep.OneShot = false
	empty := ""
	rep.CronExpression = &empty
	assert.False(t, rep.Recurring())

	rep.CronExpression = nil
	assert.False(t, rep.Recurring())
}
