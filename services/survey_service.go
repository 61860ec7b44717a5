package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/vnkhanh/surveyhub/models"
	"github.com/vnkhanh/surveyhub/utils"
)

type CreateSurveyInput struct {
	Title                string  `json:"title" binding:"required,max=255"`
	Description          *string `json:"description"`
	IntroContent         *string `json:"intro_content"`
	AllowEdit            bool    `json:"allow_edit"`
	DuplicatePrevention  bool    `json:"duplicate_prevention"`
	LogoURL              *string `json:"logo_url"`
	OrganizationName     *string `json:"organization_name"`
	OrganizationSubtitle *string `json:"organization_subtitle"`
	LogoWidth            *int    `json:"logo_width"`
	LogoHeight           *int    `json:"logo_height"`
	TextPosition         *string `json:"text_position"`
}

// SurveyPatch holds the fields of a partial update. Absent keys are left
// unchanged; the nullable ones can be cleared with an explicit null.
type SurveyPatch struct {
	Title                *string                `json:"title" binding:"omitempty,min=1,max=255"`
	Description          utils.Nullable[string] `json:"description"`
	IntroContent         utils.Nullable[string] `json:"intro_content"`
	AllowEdit            *bool                  `json:"allow_edit"`
	DuplicatePrevention  *bool                  `json:"duplicate_prevention"`
	LogoURL              utils.Nullable[string] `json:"logo_url"`
	OrganizationName     utils.Nullable[string] `json:"organization_name"`
	OrganizationSubtitle utils.Nullable[string] `json:"organization_subtitle"`
	LogoWidth            utils.Nullable[int]    `json:"logo_width"`
	LogoHeight           utils.Nullable[int]    `json:"logo_height"`
	TextPosition         utils.Nullable[string] `json:"text_position"`
}

func (p SurveyPatch) fields() map[string]interface{} {
	f := map[string]interface{}{}
	setIf(f, "title", p.Title)
	p.Description.Apply(f, "description")
	p.IntroContent.Apply(f, "intro_content")
	setIf(f, "allow_edit", p.AllowEdit)
	setIf(f, "duplicate_prevention", p.DuplicatePrevention)
	p.LogoURL.Apply(f, "logo_url")
	p.OrganizationName.Apply(f, "organization_name")
	p.OrganizationSubtitle.Apply(f, "organization_subtitle")
	p.LogoWidth.Apply(f, "logo_width")
	p.LogoHeight.Apply(f, "logo_height")
	p.TextPosition.Apply(f, "text_position")
	return f
}

type SectionInput struct {
	SurveyID         uuid.UUID                `json:"survey_id" binding:"required"`
	Title            *string                  `json:"title"`
	Description      *string                  `json:"description"`
	OrderIndex       *int                     `json:"order_index" binding:"omitempty,min=0"`
	IsConditional    bool                     `json:"is_conditional"`
	ConditionalLogic *models.ConditionalLogic `json:"conditional_logic"`
}

type SectionPatch struct {
	Title            utils.Nullable[string]   `json:"title"`
	Description      utils.Nullable[string]   `json:"description"`
	OrderIndex       *int                     `json:"order_index" binding:"omitempty,min=0"`
	IsConditional    *bool                    `json:"is_conditional"`
	ConditionalLogic *models.ConditionalLogic `json:"conditional_logic"`
}

type OptionInput struct {
	Label      string  `json:"label" binding:"required"`
	Value      *string `json:"value"`
	OrderIndex *int    `json:"order_index" binding:"omitempty,min=0"`
	AllowOther bool    `json:"allow_other"`
}

type QuestionInput struct {
	SectionID        uuid.UUID                `json:"section_id" binding:"required"`
	Type             models.QuestionType      `json:"type" binding:"required,question_type"`
	Title            string                   `json:"title" binding:"required"`
	Description      *string                  `json:"description"`
	Required         bool                     `json:"required"`
	OrderIndex       *int                     `json:"order_index" binding:"omitempty,min=0"`
	IsHidden         bool                     `json:"is_hidden"`
	ValidationRules  *models.ValidationRules  `json:"validation_rules"`
	ConditionalLogic *models.ConditionalLogic `json:"conditional_logic"`
	LikertConfig     *models.LikertConfig     `json:"likert_config"`
	Options          []OptionInput            `json:"options" binding:"dive"`
}

// QuestionPatch replaces the options wholesale when Options is non-nil.
type QuestionPatch struct {
	Type             *models.QuestionType     `json:"type" binding:"omitempty,question_type"`
	Title            *string                  `json:"title" binding:"omitempty,min=1"`
	Description      utils.Nullable[string]   `json:"description"`
	Required         *bool                    `json:"required"`
	OrderIndex       *int                     `json:"order_index" binding:"omitempty,min=0"`
	IsHidden         *bool                    `json:"is_hidden"`
	ValidationRules  *models.ValidationRules  `json:"validation_rules"`
	ConditionalLogic *models.ConditionalLogic `json:"conditional_logic"`
	LikertConfig     *models.LikertConfig     `json:"likert_config"`
	Options          *[]OptionInput           `json:"options" binding:"omitempty,dive"`
}

type SurveyService struct {
	store SurveyStore
	newID func() uuid.UUID
}

func NewSurveyService(store SurveyStore) *SurveyService {
	return &SurveyService{store: store, newID: uuid.New}
}

// CreateSurvey stores a draft survey with one empty section.
func (s *SurveyService) CreateSurvey(ctx context.Context, in CreateSurveyInput) (*models.Survey, error) {
	survey := &models.Survey{
		ID:                   s.newID(),
		Title:                in.Title,
		Description:          in.Description,
		IntroContent:         in.IntroContent,
		Status:               models.SurveyStatusDraft,
		AllowEdit:            in.AllowEdit,
		DuplicatePrevention:  in.DuplicatePrevention,
		LogoURL:              in.LogoURL,
		OrganizationName:     in.OrganizationName,
		OrganizationSubtitle: in.OrganizationSubtitle,
		LogoWidth:            in.LogoWidth,
		LogoHeight:           in.LogoHeight,
		TextPosition:         in.TextPosition,
	}
	survey.Sections = []models.Section{{
		ID:         s.newID(),
		SurveyID:   survey.ID,
		OrderIndex: 0,
		Questions:  []models.Question{},
	}}
	if err := s.store.CreateSurvey(ctx, survey); err != nil {
		return nil, err
	}
	return survey, nil
}

// GetSurvey returns the full survey graph and its completed response count.
func (s *SurveyService) GetSurvey(ctx context.Context, id uuid.UUID) (*models.Survey, error) {
	survey, err := s.store.GetSurvey(ctx, id, true)
	if err != nil {
		return nil, err
	}
	n, err := s.store.CountCompleteResponses(ctx, id)
	if err != nil {
		return nil, err
	}
	survey.ResponseCount = int(n)
	return survey, nil
}

// GetSurveyByShareID is the public view; only published surveys are served.
func (s *SurveyService) GetSurveyByShareID(ctx context.Context, shareID string) (*models.Survey, error) {
	survey, err := s.store.GetSurveyByShareID(ctx, shareID)
	if err != nil {
		return nil, err
	}
	if !survey.CanAcceptResponses() {
		return nil, ErrSurveyNotAcceptingResponses
	}
	return survey, nil
}

func (s *SurveyService) ListSurveys(ctx context.Context, status *models.SurveyStatus) ([]models.Survey, error) {
	return s.store.ListSurveys(ctx, status)
}

func (s *SurveyService) UpdateSurvey(ctx context.Context, id uuid.UUID, patch SurveyPatch) (*models.Survey, error) {
	if fields := patch.fields(); len(fields) > 0 {
		if err := s.store.UpdateSurvey(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	return s.store.GetSurvey(ctx, id, false)
}

func (s *SurveyService) DeleteSurvey(ctx context.Context, id uuid.UUID) error {
	return s.store.DeleteSurvey(ctx, id)
}

// PublishSurvey opens the survey for responses and gives it a share id on
// first publish.
func (s *SurveyService) PublishSurvey(ctx context.Context, id uuid.UUID) (*models.Survey, error) {
	survey, err := s.store.GetSurvey(ctx, id, false)
	if err != nil {
		return nil, err
	}
	fields := map[string]interface{}{"status": models.SurveyStatusPublished}
	if survey.ShareID == nil || *survey.ShareID == "" {
		fields["share_id"] = newShareID(s.newID())
	}
	if err := s.store.UpdateSurvey(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.store.GetSurvey(ctx, id, false)
}

func (s *SurveyService) CloseSurvey(ctx context.Context, id uuid.UUID) (*models.Survey, error) {
	if err := s.store.UpdateSurvey(ctx, id, map[string]interface{}{"status": models.SurveyStatusClosed}); err != nil {
		return nil, err
	}
	return s.store.GetSurvey(ctx, id, false)
}

/* ========== Sections ========== */

func (s *SurveyService) CreateSection(ctx context.Context, in SectionInput) (*models.Section, error) {
	if _, err := s.store.GetSurvey(ctx, in.SurveyID, false); err != nil {
		return nil, err
	}
	order, err := s.orderOrNext(in.OrderIndex, func() (int, error) {
		return s.store.NextSectionOrder(ctx, in.SurveyID)
	})
	if err != nil {
		return nil, err
	}

	section := &models.Section{
		ID:            s.newID(),
		SurveyID:      in.SurveyID,
		Title:         in.Title,
		Description:   in.Description,
		OrderIndex:    order,
		IsConditional: in.IsConditional,
		Questions:     []models.Question{},
	}
	if in.ConditionalLogic != nil {
		section.ConditionalLogic = datatypes.NewJSONType(*in.ConditionalLogic)
	}
	if err := s.store.CreateSection(ctx, section); err != nil {
		return nil, err
	}
	return section, nil
}

func (s *SurveyService) UpdateSection(ctx context.Context, id uuid.UUID, patch SectionPatch) (*models.Section, error) {
	f := map[string]interface{}{}
	patch.Title.Apply(f, "title")
	patch.Description.Apply(f, "description")
	setIf(f, "order_index", patch.OrderIndex)
	setIf(f, "is_conditional", patch.IsConditional)
	if patch.ConditionalLogic != nil {
		f["conditional_logic"] = datatypes.NewJSONType(*patch.ConditionalLogic)
	}
	if len(f) > 0 {
		if err := s.store.UpdateSection(ctx, id, f); err != nil {
			return nil, err
		}
	}
	return s.store.GetSection(ctx, id)
}

func (s *SurveyService) DeleteSection(ctx context.Context, id uuid.UUID) error {
	return s.store.DeleteSection(ctx, id)
}

func (s *SurveyService) ReorderSections(ctx context.Context, surveyID uuid.UUID, updates []OrderUpdate) error {
	if _, err := s.store.GetSurvey(ctx, surveyID, false); err != nil {
		return err
	}
	return s.store.ReorderSections(ctx, surveyID, updates)
}

/* ========== Questions ========== */

func (s *SurveyService) CreateQuestion(ctx context.Context, in QuestionInput) (*models.Question, error) {
	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidQuestionType, in.Type)
	}
	if _, err := s.store.GetSection(ctx, in.SectionID); err != nil {
		return nil, err
	}
	order, err := s.orderOrNext(in.OrderIndex, func() (int, error) {
		return s.store.NextQuestionOrder(ctx, in.SectionID)
	})
	if err != nil {
		return nil, err
	}

	q := &models.Question{
		ID:          s.newID(),
		SectionID:   in.SectionID,
		Type:        in.Type,
		Title:       in.Title,
		Description: in.Description,
		Required:    in.Required,
		OrderIndex:  order,
		IsHidden:    in.IsHidden,
	}
	if in.ValidationRules != nil {
		q.ValidationRules = datatypes.NewJSONType(*in.ValidationRules)
	}
	if in.ConditionalLogic != nil {
		q.ConditionalLogic = datatypes.NewJSONType(*in.ConditionalLogic)
	}
	if in.Type == models.QuestionLikert {
		cfg := models.LikertConfig{}
		if in.LikertConfig != nil {
			cfg = *in.LikertConfig
		}
		q.LikertConfig = datatypes.NewJSONType(cfg.WithDefaults())
	}
	q.Options = s.buildOptions(q.ID, in.Options)

	if err := s.store.CreateQuestion(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *SurveyService) UpdateQuestion(ctx context.Context, id uuid.UUID, patch QuestionPatch) (*models.Question, error) {
	if patch.Type != nil && !patch.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidQuestionType, *patch.Type)
	}
	f := map[string]interface{}{}
	setIf(f, "type", patch.Type)
	setIf(f, "title", patch.Title)
	patch.Description.Apply(f, "description")
	setIf(f, "required", patch.Required)
	setIf(f, "order_index", patch.OrderIndex)
	setIf(f, "is_hidden", patch.IsHidden)
	if patch.ValidationRules != nil {
		f["validation_rules"] = datatypes.NewJSONType(*patch.ValidationRules)
	}
	if patch.ConditionalLogic != nil {
		f["conditional_logic"] = datatypes.NewJSONType(*patch.ConditionalLogic)
	}
	if patch.LikertConfig != nil {
		f["likert_config"] = datatypes.NewJSONType(patch.LikertConfig.WithDefaults())
	}

	var options []models.QuestionOption
	if patch.Options != nil {
		options = s.buildOptions(id, *patch.Options)
	}
	if len(f) > 0 || options != nil {
		if err := s.store.UpdateQuestion(ctx, id, f, options); err != nil {
			return nil, err
		}
	}
	return s.store.GetQuestion(ctx, id)
}

func (s *SurveyService) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	return s.store.DeleteQuestion(ctx, id)
}

func (s *SurveyService) ReorderQuestions(ctx context.Context, sectionID uuid.UUID, updates []OrderUpdate) error {
	if _, err := s.store.GetSection(ctx, sectionID); err != nil {
		return err
	}
	return s.store.ReorderQuestions(ctx, sectionID, updates)
}

// buildOptions never returns nil so an empty list still clears the options.
func (s *SurveyService) buildOptions(questionID uuid.UUID, inputs []OptionInput) []models.QuestionOption {
	out := make([]models.QuestionOption, 0, len(inputs))
	for i, in := range inputs {
		value := in.Label
		if in.Value != nil && *in.Value != "" {
			value = *in.Value
		}
		order := i
		if in.OrderIndex != nil {
			order = *in.OrderIndex
		}
		out = append(out, models.QuestionOption{
			ID:         s.newID(),
			QuestionID: questionID,
			Label:      in.Label,
			Value:      value,
			OrderIndex: order,
			AllowOther: in.AllowOther,
		})
	}
	return out
}

func (s *SurveyService) orderOrNext(explicit *int, next func() (int, error)) (int, error) {
	if explicit != nil {
		return *explicit, nil
	}
	return next()
}

func newShareID(id uuid.UUID) string {
	return strings.ReplaceAll(id.String(), "-", "")[:12]
}

func setIf[T any](fields map[string]interface{}, column string, v *T) {
	if v != nil {
		fields[column] = *v
	}
}
