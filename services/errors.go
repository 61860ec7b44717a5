package services

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

var (
	ErrSurveyNotFound              = errors.New("survey not found")
	ErrSectionNotFound             = errors.New("section not found")
	ErrQuestionNotFound            = errors.New("question not found")
	ErrResponseNotFound            = errors.New("response not found")
	ErrSurveyNotAcceptingResponses = errors.New("survey is not accepting responses")
	ErrDuplicateSubmission         = errors.New("a response has already been submitted")
	ErrResponseAlreadySubmitted    = errors.New("response is already submitted")
	ErrDuplicateAnswer             = errors.New("question answered more than once")
	ErrPersistenceUnavailable      = errors.New("persistence unavailable")
	ErrUnsupportedFormat           = errors.New("unsupported export format")
	ErrInvalidIdentityKey          = errors.New("identity key is not configured")
	ErrInvalidQuestionType         = errors.New("invalid question type")

	ErrRequiredFieldMissing  = errors.New("required field missing")
	ErrTextLengthViolation   = errors.New("text length out of range")
	ErrPatternMismatch       = errors.New("pattern mismatch")
	ErrNumericRangeViolation = errors.New("numeric value out of range")
)

type BoundKind uint8

const (
	BoundNone BoundKind = iota
	BoundMin
	BoundMax
)

// ValidationError names the question an answer failed on. Kind is one of the
// four validation sentinels and is what errors.Is matches against.
type ValidationError struct {
	Kind          error
	QuestionID    uuid.UUID
	QuestionTitle string
	Bound         BoundKind
	Limit         float64
}

func (e *ValidationError) Error() string {
	limit := strconv.FormatFloat(e.Limit, 'f', -1, 64)
	switch {
	case e.Kind == ErrRequiredFieldMissing:
		return fmt.Sprintf("required question: %s", e.QuestionTitle)
	case e.Kind == ErrTextLengthViolation && e.Bound == BoundMin:
		return fmt.Sprintf("enter at least %s characters: %s", limit, e.QuestionTitle)
	case e.Kind == ErrTextLengthViolation:
		return fmt.Sprintf("enter at most %s characters: %s", limit, e.QuestionTitle)
	case e.Kind == ErrPatternMismatch:
		return fmt.Sprintf("invalid email address: %s", e.QuestionTitle)
	case e.Kind == ErrNumericRangeViolation && e.Bound == BoundMin:
		return fmt.Sprintf("minimum value is %s: %s", limit, e.QuestionTitle)
	case e.Kind == ErrNumericRangeViolation:
		return fmt.Sprintf("maximum value is %s: %s", limit, e.QuestionTitle)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.QuestionTitle)
}

func (e *ValidationError) Unwrap() error { return e.Kind }
