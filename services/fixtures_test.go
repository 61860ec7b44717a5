package services

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/vnkhanh/surveyhub/models"
)

func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string { return &v }
func timePtr(v time.Time) *time.Time { return &v }

func question(title string, qt models.QuestionType) models.Question {
	return models.Question{ID: uuid.New(), Type: qt, Title: title}
}

func withRules(q models.Question, r models.ValidationRules) models.Question {
	q.ValidationRules = datatypes.NewJSONType(r)
	return q
}

func required(q models.Question) models.Question {
	q.Required = true
	return q
}

func hidden(q models.Question) models.Question {
	q.IsHidden = true
	return q
}

// buildSurvey attaches sections in the given order and wires the parent ids.
func buildSurvey(status models.SurveyStatus, sections ...[]models.Question) *models.Survey {
	s := &models.Survey{ID: uuid.New(), Title: "Customer feedback", Status: status}
	for i, qs := range sections {
		sec := models.Section{ID: uuid.New(), SurveyID: s.ID, OrderIndex: i}
		for j := range qs {
			qs[j].SectionID = sec.ID
			qs[j].OrderIndex = j
		}
		sec.Questions = qs
		s.Sections = append(s.Sections, sec)
	}
	return s
}

func textItem(q models.Question, text string) models.ResponseItem {
	return models.ResponseItem{ID: uuid.New(), QuestionID: q.ID, AnswerText: strPtr(text)}
}

func valueItem(q models.Question, v models.AnswerValue) models.ResponseItem {
	return models.ResponseItem{ID: uuid.New(), QuestionID: q.ID, AnswerValue: v}
}

func num(f float64) models.AnswerValue { return models.ScalarAnswer(models.NumberScalar(f)) }

func str(s string) models.AnswerValue { return models.ScalarAnswer(models.StringScalar(s)) }

func list(values ...string) models.AnswerValue {
	out := make([]models.Scalar, len(values))
	for i, v := range values {
		out[i] = models.StringScalar(v)
	}
	return models.ListAnswer(out...)
}

func completed(surveyID uuid.UUID, at time.Time, items ...models.ResponseItem) models.Response {
	r := models.Response{
		ID:          uuid.New(),
		SurveyID:    surveyID,
		StartedAt:   at.Add(-time.Minute),
		SubmittedAt: timePtr(at),
		IsComplete:  true,
	}
	for i := range items {
		items[i].ResponseID = r.ID
	}
	r.Items = items
	return r
}
