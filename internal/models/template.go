package models

import (
	"gorm.io/gorm"
)

// ReportTemplate is a standalone content source for rendered reports.
type ReportTemplate struct {
	gorm.Model
	Name        string `json:"name" gorm:"uniqueIndex;not null"`
	Description string `json:"description"`
	HTML        string `json:"html"`
}

// Presentation is a multi-slide content source.
type Presentation struct {
	gorm.Model
	Name        string  `json:"name" gorm:"not null"`
	Description string  `json:"description"`
	Slides      []Slide `json:"slides" gorm:"foreignKey:PresentationID"`
}

type Slide struct {
	gorm.Model
	PresentationID uint   `json:"presentation_id" gorm:"index"`
	Position       int    `json:"position"`
	Title          string `json:"title"`
	Content        string `json:"content"` // HTML fragment
}

// EmailTemplate is a reusable email body; the report's custom content is
// substituted into it via the {custom_content} token.
type EmailTemplate struct {
	gorm.Model
	Name    string `json:"name" gorm:"uniqueIndex;not null"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}
