package services

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/vnkhanh/surveyhub/models"
)

// PatternEmail is the only pattern tag that is enforced.
const PatternEmail = "email"

var emailPattern = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+`)

// CheckAnswer evaluates one submitted item (nil when the question was not
// answered) against the question's required flag and validation rules.
func CheckAnswer(q *models.Question, item *models.ResponseItem) error {
	if q.Required && !item.HasAnswer() {
		return violation(ErrRequiredFieldMissing, q, BoundNone, 0)
	}
	if item == nil {
		return nil
	}
	rules := q.Rules()
	if rules == nil {
		return nil
	}

	if text := item.Text(); text != "" {
		n := utf8.RuneCountInString(text)
		// zero length bounds count as unset
		if rules.MinLength != nil && *rules.MinLength > 0 && n < *rules.MinLength {
			return violation(ErrTextLengthViolation, q, BoundMin, float64(*rules.MinLength))
		}
		if rules.MaxLength != nil && *rules.MaxLength > 0 && n > *rules.MaxLength {
			return violation(ErrTextLengthViolation, q, BoundMax, float64(*rules.MaxLength))
		}
		if rules.Pattern != nil && *rules.Pattern == PatternEmail && !emailPattern.MatchString(text) {
			return violation(ErrPatternMismatch, q, BoundNone, 0)
		}
	}

	if s, ok := item.AnswerValue.Scalar(); ok {
		if v, ok := s.Number(); ok {
			if rules.MinValue != nil && v < *rules.MinValue {
				return violation(ErrNumericRangeViolation, q, BoundMin, *rules.MinValue)
			}
			if rules.MaxValue != nil && v > *rules.MaxValue {
				return violation(ErrNumericRangeViolation, q, BoundMax, *rules.MaxValue)
			}
		}
	}
	return nil
}

// ValidateAnswers walks every question of the survey in section order and
// stops at the first violation.
func ValidateAnswers(survey *models.Survey, items []models.ResponseItem) error {
	byQuestion, err := indexItems(items)
	if err != nil {
		return err
	}
	for si := range survey.Sections {
		section := &survey.Sections[si]
		for qi := range section.Questions {
			q := &section.Questions[qi]
			if err := CheckAnswer(q, byQuestion[q.ID]); err != nil {
				return err
			}
		}
	}
	return nil
}

// indexItems rejects a submission that answers the same question twice.
func indexItems(items []models.ResponseItem) (map[uuid.UUID]*models.ResponseItem, error) {
	out := make(map[uuid.UUID]*models.ResponseItem, len(items))
	for i := range items {
		id := items[i].QuestionID
		if _, dup := out[id]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateAnswer, id)
		}
		out[id] = &items[i]
	}
	return out, nil
}

func violation(kind error, q *models.Question, bound BoundKind, limit float64) error {
	return &ValidationError{
		Kind:          kind,
		QuestionID:    q.ID,
		QuestionTitle: q.Title,
		Bound:         bound,
		Limit:         limit,
	}
}
