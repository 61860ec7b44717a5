package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Response struct {
	ID                uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SurveyID          uuid.UUID  `gorm:"column:survey_id;type:uuid;not null;index" json:"survey_id"`
	UserInfoEncrypted *string    `gorm:"column:user_info_encrypted;type:text" json:"-"`
	UserInfoHash      *string    `gorm:"column:user_info_hash;size:64;index" json:"user_info_hash,omitempty"`
	IPAddress         *string    `gorm:"column:ip_address;size:64" json:"ip_address,omitempty"`
	UserAgent         *string    `gorm:"column:user_agent;type:text" json:"-"`
	StartedAt         time.Time  `gorm:"column:started_at;not null" json:"started_at"`
	SubmittedAt       *time.Time `gorm:"column:submitted_at;index" json:"submitted_at"`
	IsComplete        bool       `gorm:"column:is_complete;not null;index" json:"is_complete"`

	Items []ResponseItem `gorm:"foreignKey:ResponseID;constraint:OnDelete:CASCADE" json:"items"`
}

func (Response) TableName() string {
	return "responses"
}

func (r *Response) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ItemsByQuestion indexes the items; the store keeps at most one per question.
func (r *Response) ItemsByQuestion() map[uuid.UUID]*ResponseItem {
	out := make(map[uuid.UUID]*ResponseItem, len(r.Items))
	for i := range r.Items {
		out[r.Items[i].QuestionID] = &r.Items[i]
	}
	return out
}
