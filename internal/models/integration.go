package models

import (
	"fmt"

	"gorm.io/gorm"
)

type IntegrationType string

const (
	IntegrationS3              IntegrationType = "s3"
	IntegrationPostgreSQL      IntegrationType = "postgresql"
	IntegrationGoogleAnalytics IntegrationType = "google_analytics"
	IntegrationFacebookAds     IntegrationType = "facebook_ads"
)

// Credentials is a tagged union; exactly the field matching Type must be set.
// Construct through NewCredentials so required fields are checked up front.
type Credentials struct {
	Type            IntegrationType             `json:"type"`
	S3              *S3Credentials              `json:"s3,omitempty"`
	PostgreSQL      *PostgreSQLCredentials      `json:"postgresql,omitempty"`
	GoogleAnalytics *GoogleAnalyticsCredentials `json:"google_analytics,omitempty"`
	FacebookAds     *FacebookAdsCredentials     `json:"facebook_ads,omitempty"`
}

type S3Credentials struct {
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	Region          string `json:"region"`
	Bucket          string `json:"bucket"`
}

type PostgreSQLCredentials struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type GoogleAnalyticsCredentials struct {
	PropertyID   string `json:"property_id"`
	ClientEmail  string `json:"client_email"`
	PrivateKey   string `json:"private_key"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

type FacebookAdsCredentials struct {
	AccountID   string `json:"account_id"`
	AccessToken string `json:"access_token"`
}

func NewCredentials(typ IntegrationType, creds Credentials) (Credentials, error) {
	creds.Type = typ
	if err := creds.Validate(); err != nil {
		return Credentials{}, err
	}
	return creds, nil
}

func (c Credentials) Validate() error {
	switch c.Type {
	case IntegrationS3:
		if c.S3 == nil {
			return fmt.Errorf("s3 credentials are required")
		}
		if c.S3.AccessKeyID == "" || c.S3.SecretAccessKey == "" || c.S3.Bucket == "" {
			return fmt.Errorf("s3 credentials require access_key_id, secret_access_key and bucket")
		}
	case IntegrationPostgreSQL:
		if c.PostgreSQL == nil {
			return fmt.Errorf("postgresql credentials are required")
		}
		if c.PostgreSQL.Host == "" || c.PostgreSQL.Database == "" || c.PostgreSQL.Username == "" {
			return fmt.Errorf("postgresql credentials require host, database and username")
		}
	case IntegrationGoogleAnalytics:
		if c.GoogleAnalytics == nil {
			return fmt.Errorf("google analytics credentials are required")
		}
		if c.GoogleAnalytics.PropertyID == "" || c.GoogleAnalytics.ClientEmail == "" {
			return fmt.Errorf("google analytics credentials require property_id and client_email")
		}
	case IntegrationFacebookAds:
		if c.FacebookAds == nil {
			return fmt.Errorf("facebook ads credentials are required")
		}
		if c.FacebookAds.AccountID == "" || c.FacebookAds.AccessToken == "" {
			return fmt.Errorf("facebook ads credentials require account_id and access_token")
		}
	default:
		return fmt.Errorf("unknown integration type: %s", c.Type)
	}
	return nil
}

// Integration is a configured third-party data source.
type Integration struct {
	gorm.Model
	Name        string          `json:"name" gorm:"uniqueIndex;not null"`
	Type        IntegrationType `json:"type" gorm:"not null"`
	Credentials Credentials     `json:"credentials" gorm:"serializer:json"`
	IsActive    bool            `json:"is_active" gorm:"default:true"`
}
