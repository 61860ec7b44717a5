package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuestionOption struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	QuestionID uuid.UUID `gorm:"column:question_id;type:uuid;not null;index" json:"question_id"`
	Label      string    `gorm:"column:label;type:text;not null" json:"label"`
	Value      string    `gorm:"column:value;type:text;not null" json:"value"`
	OrderIndex int       `gorm:"column:order_index;not null" json:"order_index"`
	AllowOther bool      `gorm:"column:allow_other;not null" json:"allow_other"` // free-text "other" answer
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (QuestionOption) TableName() string {
	return "question_options"
}

func (o *QuestionOption) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
