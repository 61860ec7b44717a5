package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/vnkhanh/surveyhub/models"
)

// OrderUpdate moves one section or question to a new order_index.
type OrderUpdate struct {
	ID         uuid.UUID `json:"id" binding:"required"`
	OrderIndex int       `json:"order_index" binding:"min=0"`
}

// SurveyReader loads a survey. With details the sections, questions and
// options are attached and sorted by order_index.
type SurveyReader interface {
	GetSurvey(ctx context.Context, id uuid.UUID, withDetails bool) (*models.Survey, error)
}

type SurveyStore interface {
	SurveyReader

	// CreateSurvey inserts the survey together with any attached sections,
	// questions and options.
	CreateSurvey(ctx context.Context, survey *models.Survey) error
	GetSurveyByShareID(ctx context.Context, shareID string) (*models.Survey, error)
	ListSurveys(ctx context.Context, status *models.SurveyStatus) ([]models.Survey, error)
	UpdateSurvey(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	DeleteSurvey(ctx context.Context, id uuid.UUID) error
	CountCompleteResponses(ctx context.Context, surveyID uuid.UUID) (int64, error)

	CreateSection(ctx context.Context, section *models.Section) error
	GetSection(ctx context.Context, id uuid.UUID) (*models.Section, error)
	UpdateSection(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	DeleteSection(ctx context.Context, id uuid.UUID) error
	NextSectionOrder(ctx context.Context, surveyID uuid.UUID) (int, error)
	ReorderSections(ctx context.Context, surveyID uuid.UUID, updates []OrderUpdate) error

	CreateQuestion(ctx context.Context, question *models.Question) error
	GetQuestion(ctx context.Context, id uuid.UUID) (*models.Question, error)
	// UpdateQuestion applies fields and, when options is non-nil, replaces
	// the question's options in the same transaction.
	UpdateQuestion(ctx context.Context, id uuid.UUID, fields map[string]interface{}, options []models.QuestionOption) error
	DeleteQuestion(ctx context.Context, id uuid.UUID) error
	NextQuestionOrder(ctx context.Context, sectionID uuid.UUID) (int, error)
	ReorderQuestions(ctx context.Context, sectionID uuid.UUID, updates []OrderUpdate) error
}

type ResponseStore interface {
	CreateResponse(ctx context.Context, resp *models.Response) error
	GetResponse(ctx context.Context, id uuid.UUID, includeItems bool) (*models.Response, error)
	// ListCompleteResponses returns completed responses, newest submission first.
	ListCompleteResponses(ctx context.Context, surveyID uuid.UUID, includeItems bool) ([]models.Response, error)
	// ReplaceItems swaps every item of an in-progress response for items.
	ReplaceItems(ctx context.Context, responseID uuid.UUID, items []models.ResponseItem) error
	CountCompleteResponses(ctx context.Context, surveyID uuid.UUID) (int64, error)
	HasCompleteResponseWithHash(ctx context.Context, surveyID uuid.UUID, hash string) (bool, error)
	// FinalizeResponse replaces the items and stores the completion fields of
	// resp in one transaction. When dedupe is set it fails with
	// ErrDuplicateSubmission if another completed response of the survey
	// already carries resp.UserInfoHash.
	FinalizeResponse(ctx context.Context, resp *models.Response, items []models.ResponseItem, dedupe bool) error
}

// StatisticsCache keeps computed reports per survey. A miss is (nil, nil).
type StatisticsCache interface {
	GetStatistics(ctx context.Context, surveyID uuid.UUID) (*StatisticsReport, error)
	SetStatistics(ctx context.Context, surveyID uuid.UUID, report *StatisticsReport) error
	InvalidateStatistics(ctx context.Context, surveyID uuid.UUID) error
}

type noopStatisticsCache struct{}

func (noopStatisticsCache) GetStatistics(context.Context, uuid.UUID) (*StatisticsReport, error) {
	return nil, nil
}

func (noopStatisticsCache) SetStatistics(context.Context, uuid.UUID, *StatisticsReport) error {
	return nil
}

func (noopStatisticsCache) InvalidateStatistics(context.Context, uuid.UUID) error { return nil }
