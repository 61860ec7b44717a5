package services

import (
	"strconv"

	"github.com/vnkhanh/surveyhub/models"
)

// SectionLetter maps a 0-based section position to A..Z, then AA, AB, ...
// the way spreadsheet columns are named.
func SectionLetter(index int) string {
	if index < 0 {
		return ""
	}
	var b []byte
	for n := index + 1; n > 0; n = (n - 1) / 26 {
		b = append([]byte{byte('A' + (n-1)%26)}, b...)
	}
	return string(b)
}

// QuestionNumber labels a question by section position and its position among
// the visible questions of that section, e.g. "B3". Hidden questions and
// questions missing from their section get "".
func QuestionNumber(survey *models.Survey, q *models.Question) string {
	for si := range survey.Sections {
		section := &survey.Sections[si]
		if section.ID != q.SectionID {
			continue
		}
		pos := 0
		for qi := range section.Questions {
			candidate := &section.Questions[qi]
			if candidate.IsHidden {
				continue
			}
			pos++
			if candidate.ID == q.ID {
				return SectionLetter(si) + strconv.Itoa(pos)
			}
		}
		return ""
	}
	return ""
}

// QuestionHeading is "A1. title", or just the title when there is no number.
func QuestionHeading(survey *models.Survey, q *models.Question) string {
	if n := QuestionNumber(survey, q); n != "" {
		return n + ". " + q.Title
	}
	return q.Title
}

// VisibleQuestions flattens the survey in section then question order,
// skipping hidden questions.
func VisibleQuestions(survey *models.Survey) []*models.Question {
	var out []*models.Question
	for si := range survey.Sections {
		section := &survey.Sections[si]
		for qi := range section.Questions {
			if q := &section.Questions[qi]; !q.IsHidden {
				out = append(out, q)
			}
		}
	}
	return out
}
