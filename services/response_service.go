package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vnkhanh/surveyhub/models"
)

// ItemInput is one submitted answer.
type ItemInput struct {
	QuestionID  uuid.UUID          `json:"question_id" binding:"required"`
	AnswerValue models.AnswerValue `json:"answer_value"`
	AnswerText  *string            `json:"answer_text"`
}

// Export is a rendered download.
type Export struct {
	Data        []byte
	ContentType string
	FileName    string
}

type ResponseService struct {
	surveys   SurveyReader
	responses ResponseStore
	cache     StatisticsCache
	sealer    *IdentitySealer
	now       func() time.Time
}

// NewResponseService wires the response lifecycle. cache and sealer may be
// nil; without a sealer surveys using duplicate prevention cannot accept
// identity info.
func NewResponseService(surveys SurveyReader, responses ResponseStore, cache StatisticsCache, sealer *IdentitySealer) *ResponseService {
	if cache == nil {
		cache = noopStatisticsCache{}
	}
	return &ResponseService{
		surveys:   surveys,
		responses: responses,
		cache:     cache,
		sealer:    sealer,
		now:       time.Now,
	}
}

// StartResponse opens an empty response for a survey that accepts responses.
func (s *ResponseService) StartResponse(ctx context.Context, surveyID uuid.UUID, ip, userAgent string) (*models.Response, error) {
	survey, err := s.surveys.GetSurvey(ctx, surveyID, false)
	if err != nil {
		return nil, err
	}
	if !survey.CanAcceptResponses() {
		return nil, ErrSurveyNotAcceptingResponses
	}

	resp := &models.Response{
		ID:        uuid.New(),
		SurveyID:  survey.ID,
		StartedAt: s.now().UTC(),
		Items:     []models.ResponseItem{},
	}
	if ip != "" {
		resp.IPAddress = &ip
	}
	if userAgent != "" {
		resp.UserAgent = &userAgent
	}
	if err := s.responses.CreateResponse(ctx, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// SaveItems replaces the answers of an in-progress response.
func (s *ResponseService) SaveItems(ctx context.Context, responseID uuid.UUID, inputs []ItemInput) (*models.Response, error) {
	resp, survey, err := s.loadOpen(ctx, responseID)
	if err != nil {
		return nil, err
	}
	items, err := buildItems(survey, resp.ID, inputs)
	if err != nil {
		return nil, err
	}
	if err := s.responses.ReplaceItems(ctx, resp.ID, items); err != nil {
		return nil, err
	}
	resp.Items = items
	return resp, nil
}

// ValidateAndFinalize checks the submitted answers against the survey and
// completes the response. identityInfo may be empty.
func (s *ResponseService) ValidateAndFinalize(ctx context.Context, responseID uuid.UUID, inputs []ItemInput, identityInfo string) (*models.Response, error) {
	resp, survey, err := s.loadOpen(ctx, responseID)
	if err != nil {
		return nil, err
	}
	items, err := buildItems(survey, resp.ID, inputs)
	if err != nil {
		return nil, err
	}
	if err := ValidateAnswers(survey, items); err != nil {
		return nil, err
	}

	dedupe := survey.DuplicatePrevention && identityInfo != ""
	if dedupe {
		hash := HashIdentity(identityInfo)
		dup, err := s.responses.HasCompleteResponseWithHash(ctx, survey.ID, hash)
		if err != nil {
			return nil, err
		}
		if dup {
			return nil, ErrDuplicateSubmission
		}
		if s.sealer == nil {
			return nil, ErrInvalidIdentityKey
		}
		sealed, err := s.sealer.Seal(identityInfo)
		if err != nil {
			return nil, fmt.Errorf("seal identity: %w", err)
		}
		resp.UserInfoHash = &hash
		resp.UserInfoEncrypted = &sealed
	}

	submitted := s.now().UTC()
	resp.SubmittedAt = &submitted
	resp.IsComplete = true
	if err := s.responses.FinalizeResponse(ctx, resp, items, dedupe); err != nil {
		return nil, err
	}
	resp.Items = items

	if err := s.cache.InvalidateStatistics(ctx, survey.ID); err != nil {
		log.Printf("invalidate statistics %s: %v", survey.ID, err)
	}
	return resp, nil
}

func (s *ResponseService) GetResponse(ctx context.Context, id uuid.UUID) (*models.Response, error) {
	return s.responses.GetResponse(ctx, id, true)
}

func (s *ResponseService) ListResponses(ctx context.Context, surveyID uuid.UUID, includeItems bool) ([]models.Response, error) {
	if _, err := s.surveys.GetSurvey(ctx, surveyID, false); err != nil {
		return nil, err
	}
	return s.responses.ListCompleteResponses(ctx, surveyID, includeItems)
}

// Statistics aggregates the completed responses of a survey. A cached report
// is served only while its total matches the number of completed responses.
// Cache failures are logged and fall back to the database.
func (s *ResponseService) Statistics(ctx context.Context, surveyID uuid.UUID) (*StatisticsReport, error) {
	if _, err := s.surveys.GetSurvey(ctx, surveyID, false); err != nil {
		return nil, err
	}
	complete, err := s.responses.CountCompleteResponses(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	cached, err := s.cache.GetStatistics(ctx, surveyID)
	if err != nil {
		log.Printf("read statistics cache %s: %v", surveyID, err)
	} else if cached != nil && int64(cached.TotalResponses) == complete {
		return cached, nil
	}

	responses, err := s.responses.ListCompleteResponses(ctx, surveyID, true)
	if err != nil {
		return nil, err
	}
	report := Aggregate(responses)
	if err := s.cache.SetStatistics(ctx, surveyID, report); err != nil {
		log.Printf("write statistics cache %s: %v", surveyID, err)
	}
	return report, nil
}

// Export renders the completed responses of a survey in the given format.
func (s *ResponseService) Export(ctx context.Context, surveyID uuid.UUID, format ExportFormat) (*Export, error) {
	survey, err := s.surveys.GetSurvey(ctx, surveyID, true)
	if err != nil {
		return nil, err
	}
	responses, err := s.responses.ListCompleteResponses(ctx, surveyID, true)
	if err != nil {
		return nil, err
	}
	data, err := RenderExport(survey, responses, format)
	if err != nil {
		return nil, err
	}
	return &Export{
		Data:        data,
		ContentType: format.ContentType(),
		FileName:    exportFileName(survey, format, s.now()),
	}, nil
}

// loadOpen returns an incomplete response and its survey with details, or an
// error if either is missing or no longer writable.
func (s *ResponseService) loadOpen(ctx context.Context, responseID uuid.UUID) (*models.Response, *models.Survey, error) {
	resp, err := s.responses.GetResponse(ctx, responseID, false)
	if err != nil {
		return nil, nil, err
	}
	survey, err := s.surveys.GetSurvey(ctx, resp.SurveyID, true)
	if err != nil {
		return nil, nil, err
	}
	if !survey.CanAcceptResponses() {
		return nil, nil, ErrSurveyNotAcceptingResponses
	}
	if resp.IsComplete {
		return nil, nil, ErrResponseAlreadySubmitted
	}
	return resp, survey, nil
}

// buildItems turns inputs into items of responseID. Each question may be
// answered once and must belong to the survey.
func buildItems(survey *models.Survey, responseID uuid.UUID, inputs []ItemInput) ([]models.ResponseItem, error) {
	known := make(map[uuid.UUID]bool)
	for si := range survey.Sections {
		for qi := range survey.Sections[si].Questions {
			known[survey.Sections[si].Questions[qi].ID] = true
		}
	}

	items := make([]models.ResponseItem, 0, len(inputs))
	seen := make(map[uuid.UUID]bool, len(inputs))
	for _, in := range inputs {
		if seen[in.QuestionID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateAnswer, in.QuestionID)
		}
		seen[in.QuestionID] = true
		if !known[in.QuestionID] {
			return nil, fmt.Errorf("%w: %s", ErrQuestionNotFound, in.QuestionID)
		}
		items = append(items, models.ResponseItem{
			ID:          uuid.New(),
			ResponseID:  responseID,
			QuestionID:  in.QuestionID,
			AnswerValue: in.AnswerValue,
			AnswerText:  in.AnswerText,
		})
	}
	return items, nil
}

func exportFileName(survey *models.Survey, format ExportFormat, at time.Time) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		}
		return -1
	}, survey.Title)
	if name == "" {
		name = "survey"
	}
	return fmt.Sprintf("%s_responses_%s.%s", name, at.UTC().Format("20060102_150405"), format.Extension())
}
