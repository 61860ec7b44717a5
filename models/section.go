package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Section struct {
	ID               uuid.UUID                          `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SurveyID         uuid.UUID                          `gorm:"column:survey_id;type:uuid;not null;index" json:"survey_id"`
	Title            *string                            `gorm:"column:title;size:255" json:"title"`
	Description      *string                            `gorm:"column:description;type:text" json:"description"`
	OrderIndex       int                                `gorm:"column:order_index;not null" json:"order_index"`
	IsConditional    bool                               `gorm:"column:is_conditional;not null" json:"is_conditional"`
	ConditionalLogic datatypes.JSONType[ConditionalLogic] `gorm:"column:conditional_logic" json:"conditional_logic"`
	CreatedAt        time.Time                          `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time                          `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Questions []Question `gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE" json:"questions"`
}

func (Section) TableName() string {
	return "sections"
}

func (s *Section) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
