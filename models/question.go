package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionType string

const (
	QuestionSingleChoice   QuestionType = "single_choice"
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionLikert         QuestionType = "likert"
	QuestionShortText      QuestionType = "short_text"
	QuestionLongText       QuestionType = "long_text"
	QuestionNumber         QuestionType = "number"
	QuestionDate           QuestionType = "date"
	QuestionDropdown       QuestionType = "dropdown"
)

func (t QuestionType) Valid() bool {
	switch t {
	case QuestionSingleChoice, QuestionMultipleChoice, QuestionLikert, QuestionShortText,
		QuestionLongText, QuestionNumber, QuestionDate, QuestionDropdown:
		return true
	}
	return false
}

// HasOptions reports whether options are meaningful for the type.
func (t QuestionType) HasOptions() bool {
	return t == QuestionSingleChoice || t == QuestionMultipleChoice || t == QuestionDropdown
}

// ValidationRules are the per-question answer constraints. Pattern is kept as
// entered; only "email" is enforced.
type ValidationRules struct {
	MinLength *int     `json:"min_length,omitempty"`
	MaxLength *int     `json:"max_length,omitempty"`
	MinValue  *float64 `json:"min_value,omitempty"`
	MaxValue  *float64 `json:"max_value,omitempty"`
	Pattern   *string  `json:"pattern,omitempty"`
}

func (r ValidationRules) IsZero() bool {
	return r.MinLength == nil && r.MaxLength == nil && r.MinValue == nil && r.MaxValue == nil && r.Pattern == nil
}

// ConditionalLogic is stored for the presentation layer; nothing server side
// evaluates it.
type ConditionalLogic struct {
	QuestionID      string `json:"question_id,omitempty"`
	Operator        string `json:"operator,omitempty"` // equals | not_equals | contains | greater_than | less_than
	Value           any    `json:"value,omitempty"`
	Action          string `json:"action,omitempty"` // show | hide | skip_to
	TargetSectionID string `json:"target_section_id,omitempty"`
}

func (c ConditionalLogic) IsZero() bool {
	return c.QuestionID == "" && c.Operator == "" && c.Action == "" && c.Value == nil
}

const (
	DefaultLikertScaleMin = 1
	DefaultLikertScaleMax = 5
)

var DefaultLikertLabels = []string{"Very dissatisfied", "Dissatisfied", "Neutral", "Satisfied", "Very satisfied"}

type LikertConfig struct {
	ScaleMin int         `json:"scale_min,omitempty"`
	ScaleMax int         `json:"scale_max,omitempty"`
	Labels   []string    `json:"labels,omitempty"`
	Rows     []LikertRow `json:"rows,omitempty"`
}

// WithDefaults fills the 1..5 scale and default labels when they are missing.
func (c LikertConfig) WithDefaults() LikertConfig {
	if c.ScaleMin == 0 && c.ScaleMax == 0 {
		c.ScaleMin, c.ScaleMax = DefaultLikertScaleMin, DefaultLikertScaleMax
	}
	if len(c.Labels) == 0 {
		c.Labels = append([]string(nil), DefaultLikertLabels...)
	}
	return c
}

// LikertRow is either a plain label or a {text, image_url, style} object.
type LikertRow struct {
	Text     string         `json:"text"`
	ImageURL string         `json:"image_url,omitempty"`
	Style    map[string]any `json:"style,omitempty"`
}

func (r LikertRow) MarshalJSON() ([]byte, error) {
	if r.ImageURL == "" && len(r.Style) == 0 {
		return json.Marshal(r.Text)
	}
	type rich LikertRow
	return json.Marshal(rich(r))
}

func (r *LikertRow) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err == nil {
		*r = LikertRow{Text: label}
		return nil
	}
	type rich LikertRow
	var out rich
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*r = LikertRow(out)
	return nil
}

type Question struct {
	ID               uuid.UUID                            `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SectionID        uuid.UUID                            `gorm:"column:section_id;type:uuid;not null;index" json:"section_id"`
	Type             QuestionType                         `gorm:"column:type;size:30;not null" json:"type"`
	Title            string                               `gorm:"column:title;type:text;not null" json:"title"`
	Description      *string                              `gorm:"column:description;type:text" json:"description"`
	Required         bool                                 `gorm:"column:required;not null" json:"required"`
	OrderIndex       int                                  `gorm:"column:order_index;not null" json:"order_index"`
	IsHidden         bool                                 `gorm:"column:is_hidden;not null" json:"is_hidden"`
	ValidationRules  datatypes.JSONType[ValidationRules]  `gorm:"column:validation_rules" json:"validation_rules"`
	ConditionalLogic datatypes.JSONType[ConditionalLogic] `gorm:"column:conditional_logic" json:"conditional_logic"`
	LikertConfig     datatypes.JSONType[LikertConfig]     `gorm:"column:likert_config" json:"likert_config"`
	CreatedAt        time.Time                            `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time                            `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Options []QuestionOption `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"options"`
}

func (Question) TableName() string {
	return "questions"
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// Rules returns nil when the question carries no validation rules.
func (q *Question) Rules() *ValidationRules {
	r := q.ValidationRules.Data()
	if r.IsZero() {
		return nil
	}
	return &r
}
