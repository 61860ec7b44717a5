package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/datatypes"

	"github.com/vnkhanh/surveyhub/models"
)

// ImportedSurvey is the nested structure produced by document extraction.
type ImportedSurvey struct {
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	IntroContent string            `json:"intro_content"`
	Sections     []ImportedSection `json:"sections" binding:"dive"`
}

type ImportedSection struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Questions   []ImportedQuestion `json:"questions"`
}

type ImportedQuestion struct {
	Type         string               `json:"type"`
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	Required     bool                 `json:"required"`
	Options      []ImportedOption     `json:"options"`
	LikertConfig *models.LikertConfig `json:"likert_config"`
}

type ImportedOption struct {
	Label      string `json:"label"`
	Value      string `json:"value"`
	OrderIndex *int   `json:"order_index"`
	AllowOther bool   `json:"allow_other"`
}

type ImportedSectionSummary struct {
	Title         string `json:"title"`
	QuestionCount int    `json:"question_count"`
}

type ImportResult struct {
	SurveyID        string                   `json:"survey_id"`
	SurveyTitle     string                   `json:"survey_title"`
	SectionsCount   int                      `json:"sections_count"`
	QuestionsCount  int                      `json:"questions_count"`
	SectionsPreview []ImportedSectionSummary `json:"sections_preview"`
}

const defaultImportTitle = "Imported survey"

type ImportService struct {
	surveys *SurveyService
}

func NewImportService(surveys *SurveyService) *ImportService {
	return &ImportService{surveys: surveys}
}

// ImportSurvey creates a draft survey from an extracted structure in a single
// write. Questions without a title and sections left without questions are
// dropped; unknown question types become short_text.
func (s *ImportService) ImportSurvey(ctx context.Context, in ImportedSurvey) (*ImportResult, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = defaultImportTitle
	}
	survey := &models.Survey{
		ID:           s.surveys.newID(),
		Title:        title,
		Description:  optional(in.Description),
		IntroContent: optional(in.IntroContent),
		Status:       models.SurveyStatusDraft,
	}

	result := &ImportResult{
		SurveyID:        survey.ID.String(),
		SurveyTitle:     survey.Title,
		SectionsPreview: []ImportedSectionSummary{},
	}
	for _, sec := range in.Sections {
		var questions []ImportedQuestion
		for _, q := range sec.Questions {
			if strings.TrimSpace(q.Title) != "" {
				questions = append(questions, q)
			}
		}
		if len(questions) == 0 {
			continue
		}

		order := len(survey.Sections)
		section := models.Section{
			ID:          s.surveys.newID(),
			SurveyID:    survey.ID,
			Title:       optional(sec.Title),
			Description: optional(sec.Description),
			OrderIndex:  order,
		}
		for qi, q := range questions {
			section.Questions = append(section.Questions, s.importQuestion(section, qi, q))
		}
		survey.Sections = append(survey.Sections, section)

		label := strings.TrimSpace(sec.Title)
		if label == "" {
			label = fmt.Sprintf("Section %d", order+1)
		}
		result.SectionsPreview = append(result.SectionsPreview, ImportedSectionSummary{
			Title:         label,
			QuestionCount: len(questions),
		})
		result.QuestionsCount += len(questions)
	}
	result.SectionsCount = len(survey.Sections)

	if len(survey.Sections) == 0 {
		survey.Sections = []models.Section{{ID: s.surveys.newID(), SurveyID: survey.ID}}
	}
	if err := s.surveys.store.CreateSurvey(ctx, survey); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *ImportService) importQuestion(section models.Section, index int, in ImportedQuestion) models.Question {
	qt := models.QuestionType(strings.ToLower(strings.TrimSpace(in.Type)))
	if !qt.Valid() {
		qt = models.QuestionShortText
	}
	q := models.Question{
		ID:          s.surveys.newID(),
		SectionID:   section.ID,
		Type:        qt,
		Title:       strings.TrimSpace(in.Title),
		Description: optional(in.Description),
		Required:    in.Required,
		OrderIndex:  index,
	}
	if qt == models.QuestionLikert {
		cfg := models.LikertConfig{}
		if in.LikertConfig != nil {
			cfg = *in.LikertConfig
		}
		q.LikertConfig = datatypes.NewJSONType(cfg.WithDefaults())
	}

	opts := make([]OptionInput, 0, len(in.Options))
	for _, o := range in.Options {
		if strings.TrimSpace(o.Label) == "" {
			continue
		}
		value := o.Value
		opts = append(opts, OptionInput{
			Label:      o.Label,
			Value:      &value,
			OrderIndex: o.OrderIndex,
			AllowOther: o.AllowOther,
		})
	}
	q.Options = s.surveys.buildOptions(q.ID, opts)
	return q
}

func optional(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}
