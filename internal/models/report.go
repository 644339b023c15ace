package models

import (
	"time"

	"gorm.io/gorm"
)

type ReportStatus string

const (
	ReportStatusActive    ReportStatus = "active"
	ReportStatusPaused    ReportStatus = "paused"
	ReportStatusCompleted ReportStatus = "completed"
)

type VariableKind string

const (
	VariableStatic    VariableKind = "static"
	VariableQuery     VariableKind = "query"
	VariableTimestamp VariableKind = "timestamp"
	VariableFormula   VariableKind = "formula"
)

// TemplateVariable is a user-declared placeholder resolved at execution time.
type TemplateVariable struct {
	Name  string       `json:"name"`
	Kind  VariableKind `json:"kind"`
	Value string       `json:"value"`
}

type FormatSettings struct {
	Format        string `json:"format"`
	IncludeCharts bool   `json:"include_charts"`
}

// ScheduledReport is a recurring (or one-shot) report delivery job. An active
// report with a cron expression has exactly one live trigger in the registry;
// paused, completed and one-shot reports have none.
type ScheduledReport struct {
	gorm.Model
	Name        string `json:"name" gorm:"not null"`
	Description string `json:"description"`

	TemplateID     uint `json:"template_id"`
	PresentationID uint `json:"presentation_id"`

	// CronExpression is a 5-field schedule string. Nil marks a one-shot
	// "send now" report that is executed once and never re-triggered.
	CronExpression *string      `json:"cron_expression"`
	Timezone       string       `json:"timezone"`
	Status         ReportStatus `json:"status" gorm:"default:active"`
	OneShot        bool         `json:"one_shot"`

	Recipients []string `json:"recipients" gorm:"serializer:json"`
	CCList     []string `json:"cc_list" gorm:"serializer:json"`
	BCCList    []string `json:"bcc_list" gorm:"serializer:json"`

	EmailSubject      string             `json:"email_subject"`
	EmailBody         string             `json:"email_body"`
	EmailTemplateID   uint               `json:"email_template_id"`
	CustomContent     string             `json:"custom_content"`
	TemplateVariables []TemplateVariable `json:"template_variables" gorm:"serializer:json"`

	FormatSettings FormatSettings `json:"format_settings" gorm:"serializer:json"`

	// Execution bookkeeping. ExecutionCount == SuccessCount + ErrorCount
	// after every settled run.
	ExecutionCount int        `json:"execution_count" gorm:"default:0"`
	SuccessCount   int        `json:"success_count" gorm:"default:0"`
	ErrorCount     int        `json:"error_count" gorm:"default:0"`
	LastExecutedAt *time.Time `json:"last_executed_at"`
	LastError      string     `json:"last_error"`
	NextRunAt      *time.Time `json:"next_run_at"`
}

// Recurring reports are the only ones the trigger registry may own.
func (r *ScheduledReport) Recurring() bool {
	return r.CronExpression != nil && *r.CronExpression != "" && !r.OneShot
}

// ReportExecution is one settled run of a scheduled report.
type ReportExecution struct {
	gorm.Model
	ReportID    uint      `json:"report_id" gorm:"index"`
	Success     bool      `json:"success"`
	ArtifactURL string    `json:"artifact_url"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
}
