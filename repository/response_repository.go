package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vnkhanh/surveyhub/models"
	"github.com/vnkhanh/surveyhub/services"
)

type ResponseRepository struct {
	db *gorm.DB
}

func NewResponseRepository(db *gorm.DB) *ResponseRepository {
	return &ResponseRepository{db: db}
}

var _ services.ResponseStore = (*ResponseRepository)(nil)

func (r *ResponseRepository) CreateResponse(ctx context.Context, resp *models.Response) error {
	return translate(r.db.WithContext(ctx).Omit("Items").Create(resp).Error, services.ErrResponseNotFound, "create response")
}

func (r *ResponseRepository) GetResponse(ctx context.Context, id uuid.UUID, includeItems bool) (*models.Response, error) {
	q := r.db.WithContext(ctx)
	if includeItems {
		q = q.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") })
	}
	var resp models.Response
	if err := q.First(&resp, "id = ?", id).Error; err != nil {
		return nil, translate(err, services.ErrResponseNotFound, "get response")
	}
	return &resp, nil
}

func (r *ResponseRepository) ListCompleteResponses(ctx context.Context, surveyID uuid.UUID, includeItems bool) ([]models.Response, error) {
	q := r.db.WithContext(ctx).
		Where("survey_id = ? AND is_complete = ?", surveyID, true).
		Order("submitted_at DESC, id ASC")
	if includeItems {
		q = q.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") })
	}
	responses := []models.Response{}
	if err := q.Find(&responses).Error; err != nil {
		return nil, translate(err, services.ErrResponseNotFound, "list responses")
	}
	return responses, nil
}

func (r *ResponseRepository) CountCompleteResponses(ctx context.Context, surveyID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Response{}).
		Where("survey_id = ? AND is_complete = ?", surveyID, true).
		Count(&n).Error
	return n, translate(err, services.ErrResponseNotFound, "count responses")
}

func (r *ResponseRepository) ReplaceItems(ctx context.Context, responseID uuid.UUID, items []models.ResponseItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var resp models.Response
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "is_complete").First(&resp, "id = ?", responseID).Error; err != nil {
			return translate(err, services.ErrResponseNotFound, "lock response")
		}
		if resp.IsComplete {
			return services.ErrResponseAlreadySubmitted
		}
		return replaceItems(tx, responseID, items)
	})
}

func (r *ResponseRepository) HasCompleteResponseWithHash(ctx context.Context, surveyID uuid.UUID, hash string) (bool, error) {
	n, err := countByHash(r.db.WithContext(ctx), surveyID, hash, uuid.Nil)
	return n > 0, err
}

// FinalizeResponse locks the survey row so two submissions carrying the same
// identity cannot both pass the duplicate check.
func (r *ResponseRepository) FinalizeResponse(ctx context.Context, resp *models.Response, items []models.ResponseItem, dedupe bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if dedupe && resp.UserInfoHash != nil {
			var survey models.Survey
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Select("id").First(&survey, "id = ?", resp.SurveyID).Error; err != nil {
				return translate(err, services.ErrSurveyNotFound, "lock survey")
			}
			n, err := countByHash(tx, resp.SurveyID, *resp.UserInfoHash, resp.ID)
			if err != nil {
				return err
			}
			if n > 0 {
				return services.ErrDuplicateSubmission
			}
		}

		res := tx.Model(&models.Response{}).
			Where("id = ? AND is_complete = ?", resp.ID, false).
			Updates(map[string]interface{}{
				"submitted_at":        resp.SubmittedAt,
				"is_complete":         true,
				"user_info_hash":      resp.UserInfoHash,
				"user_info_encrypted": resp.UserInfoEncrypted,
			})
		if res.Error != nil {
			return translate(res.Error, services.ErrResponseNotFound, "finalize response")
		}
		if res.RowsAffected == 0 {
			return services.ErrResponseAlreadySubmitted
		}
		return replaceItems(tx, resp.ID, items)
	})
}

func replaceItems(tx *gorm.DB, responseID uuid.UUID, items []models.ResponseItem) error {
	if err := tx.Where("response_id = ?", responseID).Delete(&models.ResponseItem{}).Error; err != nil {
		return translate(err, services.ErrResponseNotFound, "delete items")
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].ResponseID = responseID
	}
	return translate(tx.Create(&items).Error, services.ErrResponseNotFound, "create items")
}

func countByHash(db *gorm.DB, surveyID uuid.UUID, hash string, exclude uuid.UUID) (int64, error) {
	var n int64
	q := db.Model(&models.Response{}).
		Where("survey_id = ? AND is_complete = ? AND user_info_hash = ?", surveyID, true, hash)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	if err := q.Count(&n).Error; err != nil {
		return 0, translate(err, services.ErrResponseNotFound, "count by identity")
	}
	return n, nil
}
