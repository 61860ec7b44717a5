package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/surveyhub/models"
	"github.com/vnkhanh/surveyhub/services"
)

type SurveyRepository struct {
	db *gorm.DB
}

func NewSurveyRepository(db *gorm.DB) *SurveyRepository {
	return &SurveyRepository{db: db}
}

var _ services.SurveyStore = (*SurveyRepository)(nil)

func (r *SurveyRepository) CreateSurvey(ctx context.Context, survey *models.Survey) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(survey).Error
	})
	return translate(err, services.ErrSurveyNotFound, "create survey")
}

func (r *SurveyRepository) withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Sections", byOrder).
		Preload("Sections.Questions", byOrder).
		Preload("Sections.Questions.Options", byOrder)
}

func (r *SurveyRepository) GetSurvey(ctx context.Context, id uuid.UUID, withDetails bool) (*models.Survey, error) {
	q := r.db.WithContext(ctx)
	if withDetails {
		q = r.withDetails(q)
	}
	var survey models.Survey
	if err := q.First(&survey, "id = ?", id).Error; err != nil {
		return nil, translate(err, services.ErrSurveyNotFound, "get survey")
	}
	return &survey, nil
}

func (r *SurveyRepository) GetSurveyByShareID(ctx context.Context, shareID string) (*models.Survey, error) {
	var survey models.Survey
	err := r.withDetails(r.db.WithContext(ctx)).First(&survey, "share_id = ?", shareID).Error
	if err != nil {
		return nil, translate(err, services.ErrSurveyNotFound, "get survey by share id")
	}
	return &survey, nil
}

func (r *SurveyRepository) ListSurveys(ctx context.Context, status *models.SurveyStatus) ([]models.Survey, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	surveys := []models.Survey{}
	if err := q.Find(&surveys).Error; err != nil {
		return nil, translate(err, services.ErrSurveyNotFound, "list surveys")
	}
	return surveys, nil
}

func (r *SurveyRepository) UpdateSurvey(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.Survey{}).Where("id = ?", id).Updates(fields)
	return affected(res, services.ErrSurveyNotFound, "update survey")
}

// DeleteSurvey removes the survey with its sections, questions, options and
// responses.
func (r *SurveyRepository) DeleteSurvey(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		responses := tx.Model(&models.Response{}).Select("id").Where("survey_id = ?", id)
		if err := tx.Where("response_id IN (?)", responses).Delete(&models.ResponseItem{}).Error; err != nil {
			return translate(err, services.ErrSurveyNotFound, "delete response items")
		}
		if err := tx.Where("survey_id = ?", id).Delete(&models.Response{}).Error; err != nil {
			return translate(err, services.ErrSurveyNotFound, "delete responses")
		}

		sections := tx.Model(&models.Section{}).Select("id").Where("survey_id = ?", id)
		questions := tx.Model(&models.Question{}).Select("id").Where("section_id IN (?)", sections)
		if err := tx.Where("question_id IN (?)", questions).Delete(&models.QuestionOption{}).Error; err != nil {
			return translate(err, services.ErrSurveyNotFound, "delete options")
		}
		if err := tx.Where("section_id IN (?)", sections).Delete(&models.Question{}).Error; err != nil {
			return translate(err, services.ErrSurveyNotFound, "delete questions")
		}
		if err := tx.Where("survey_id = ?", id).Delete(&models.Section{}).Error; err != nil {
			return translate(err, services.ErrSurveyNotFound, "delete sections")
		}
		return affected(tx.Where("id = ?", id).Delete(&models.Survey{}), services.ErrSurveyNotFound, "delete survey")
	})
}

func (r *SurveyRepository) CountCompleteResponses(ctx context.Context, surveyID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Response{}).
		Where("survey_id = ? AND is_complete = ?", surveyID, true).
		Count(&n).Error
	return n, translate(err, services.ErrSurveyNotFound, "count responses")
}

/* ========== Sections ========== */

func (r *SurveyRepository) CreateSection(ctx context.Context, section *models.Section) error {
	return translate(r.db.WithContext(ctx).Create(section).Error, services.ErrSectionNotFound, "create section")
}

func (r *SurveyRepository) GetSection(ctx context.Context, id uuid.UUID) (*models.Section, error) {
	var section models.Section
	err := r.db.WithContext(ctx).
		Preload("Questions", byOrder).
		Preload("Questions.Options", byOrder).
		First(&section, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, services.ErrSectionNotFound, "get section")
	}
	return &section, nil
}

func (r *SurveyRepository) UpdateSection(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.Section{}).Where("id = ?", id).Updates(fields)
	return affected(res, services.ErrSectionNotFound, "update section")
}

func (r *SurveyRepository) DeleteSection(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		questions := tx.Model(&models.Question{}).Select("id").Where("section_id = ?", id)
		if err := tx.Where("question_id IN (?)", questions).Delete(&models.QuestionOption{}).Error; err != nil {
			return translate(err, services.ErrSectionNotFound, "delete options")
		}
		if err := tx.Where("section_id = ?", id).Delete(&models.Question{}).Error; err != nil {
			return translate(err, services.ErrSectionNotFound, "delete questions")
		}
		return affected(tx.Where("id = ?", id).Delete(&models.Section{}), services.ErrSectionNotFound, "delete section")
	})
}

func (r *SurveyRepository) NextSectionOrder(ctx context.Context, surveyID uuid.UUID) (int, error) {
	var next int
	err := r.db.WithContext(ctx).Model(&models.Section{}).
		Select("COALESCE(MAX(order_index) + 1, 0)").
		Where("survey_id = ?", surveyID).
		Scan(&next).Error
	return next, translate(err, services.ErrSurveyNotFound, "next section order")
}

func (r *SurveyRepository) ReorderSections(ctx context.Context, surveyID uuid.UUID, updates []services.OrderUpdate) error {
	return r.reorder(ctx, &models.Section{}, "survey_id", surveyID, updates, services.ErrSectionNotFound)
}

/* ========== Questions ========== */

func (r *SurveyRepository) CreateQuestion(ctx context.Context, question *models.Question) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(question).Error
	})
	return translate(err, services.ErrQuestionNotFound, "create question")
}

func (r *SurveyRepository) GetQuestion(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	var q models.Question
	if err := r.db.WithContext(ctx).Preload("Options", byOrder).First(&q, "id = ?", id).Error; err != nil {
		return nil, translate(err, services.ErrQuestionNotFound, "get question")
	}
	return &q, nil
}

func (r *SurveyRepository) UpdateQuestion(ctx context.Context, id uuid.UUID, fields map[string]interface{}, options []models.QuestionOption) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.Question{}).Where("id = ?", id).Count(&exists).Error; err != nil {
			return translate(err, services.ErrQuestionNotFound, "find question")
		}
		if exists == 0 {
			return services.ErrQuestionNotFound
		}

		if len(fields) > 0 {
			if err := tx.Model(&models.Question{}).Where("id = ?", id).Updates(fields).Error; err != nil {
				return translate(err, services.ErrQuestionNotFound, "update question")
			}
		}
		if options == nil {
			return nil
		}
		if err := tx.Where("question_id = ?", id).Delete(&models.QuestionOption{}).Error; err != nil {
			return translate(err, services.ErrQuestionNotFound, "delete options")
		}
		if len(options) == 0 {
			return nil
		}
		return translate(tx.Create(&options).Error, services.ErrQuestionNotFound, "create options")
	})
}

func (r *SurveyRepository) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", id).Delete(&models.QuestionOption{}).Error; err != nil {
			return translate(err, services.ErrQuestionNotFound, "delete options")
		}
		return affected(tx.Where("id = ?", id).Delete(&models.Question{}), services.ErrQuestionNotFound, "delete question")
	})
}

func (r *SurveyRepository) NextQuestionOrder(ctx context.Context, sectionID uuid.UUID) (int, error) {
	var next int
	err := r.db.WithContext(ctx).Model(&models.Question{}).
		Select("COALESCE(MAX(order_index) + 1, 0)").
		Where("section_id = ?", sectionID).
		Scan(&next).Error
	return next, translate(err, services.ErrSectionNotFound, "next question order")
}

func (r *SurveyRepository) ReorderQuestions(ctx context.Context, sectionID uuid.UUID, updates []services.OrderUpdate) error {
	return r.reorder(ctx, &models.Question{}, "section_id", sectionID, updates, services.ErrQuestionNotFound)
}

// reorder checks that every id belongs to the parent, then writes the new
// order indexes in one transaction.
func (r *SurveyRepository) reorder(ctx context.Context, model interface{}, parentColumn string, parentID uuid.UUID, updates []services.OrderUpdate, notFound error) error {
	if len(updates) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(updates))
	seen := make(map[uuid.UUID]bool, len(updates))
	for _, u := range updates {
		if !seen[u.ID] {
			seen[u.ID] = true
			ids = append(ids, u.ID)
		}
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(model).Where(parentColumn+" = ? AND id IN ?", parentID, ids).Count(&count).Error; err != nil {
			return translate(err, notFound, "validate order")
		}
		if count != int64(len(ids)) {
			return notFound
		}
		for _, u := range updates {
			if err := tx.Model(model).
				Where("id = ? AND "+parentColumn+" = ?", u.ID, parentID).
				Update("order_index", u.OrderIndex).Error; err != nil {
				return translate(err, notFound, "update order")
			}
		}
		return nil
	})
}
