package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SurveyStatus string

const (
	SurveyStatusDraft     SurveyStatus = "draft"
	SurveyStatusPublished SurveyStatus = "published"
	SurveyStatusClosed    SurveyStatus = "closed"
)

func (s SurveyStatus) Valid() bool {
	switch s {
	case SurveyStatusDraft, SurveyStatusPublished, SurveyStatusClosed:
		return true
	}
	return false
}

type Survey struct {
	ID                  uuid.UUID    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Title               string       `gorm:"column:title;size:255;not null" json:"title"`
	Description         *string      `gorm:"column:description;type:text" json:"description"`
	IntroContent        *string      `gorm:"column:intro_content;type:text" json:"intro_content"`
	Status              SurveyStatus `gorm:"column:status;size:20;not null;default:'draft';index" json:"status"`
	ShareID             *string      `gorm:"column:share_id;size:32;uniqueIndex" json:"share_id"`
	AllowEdit           bool         `gorm:"column:allow_edit;not null" json:"allow_edit"`
	DuplicatePrevention bool         `gorm:"column:duplicate_prevention;not null" json:"duplicate_prevention"`

	// Branding shown on the public page
	LogoURL              *string `gorm:"column:logo_url;type:text" json:"logo_url"`
	OrganizationName     *string `gorm:"column:organization_name;size:255" json:"organization_name"`
	OrganizationSubtitle *string `gorm:"column:organization_subtitle;size:255" json:"organization_subtitle"`
	LogoWidth            *int    `gorm:"column:logo_width" json:"logo_width"`
	LogoHeight           *int    `gorm:"column:logo_height" json:"logo_height"`
	TextPosition         *string `gorm:"column:text_position;size:20" json:"text_position"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Sections      []Section `gorm:"foreignKey:SurveyID;constraint:OnDelete:CASCADE" json:"sections"`
	ResponseCount int       `gorm:"-" json:"response_count"`
}

func (Survey) TableName() string {
	return "surveys"
}

func (s *Survey) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// CanAcceptResponses holds only while the survey is published.
func (s *Survey) CanAcceptResponses() bool {
	return s.Status == SurveyStatusPublished
}
