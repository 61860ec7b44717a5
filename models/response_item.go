package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ResponseItem struct {
	ID          uuid.UUID   `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ResponseID  uuid.UUID   `gorm:"column:response_id;type:uuid;not null;uniqueIndex:idx_response_items_response_question" json:"response_id"`
	QuestionID  uuid.UUID   `gorm:"column:question_id;type:uuid;not null;uniqueIndex:idx_response_items_response_question" json:"question_id"`
	AnswerValue AnswerValue `gorm:"column:answer_value;type:jsonb" json:"answer_value"`
	AnswerText  *string     `gorm:"column:answer_text;type:text" json:"answer_text"`
	CreatedAt   time.Time   `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ResponseItem) TableName() string {
	return "response_items"
}

func (i *ResponseItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Text returns answer_text, or "" when absent.
func (i *ResponseItem) Text() string {
	if i == nil || i.AnswerText == nil {
		return ""
	}
	return *i.AnswerText
}

// HasAnswer reports whether the item carries a value or non-empty text.
func (i *ResponseItem) HasAnswer() bool {
	return i != nil && (!i.AnswerValue.IsEmpty() || i.Text() != "")
}
