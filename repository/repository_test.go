package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vnkhanh/surveyhub/config"
	"github.com/vnkhanh/surveyhub/models"
)

// newTestDB opens a private in-memory sqlite database with the survey tables.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	// every statement runs on one connection so the memory database survives
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func ptr[T any](v T) *T { return &v }

// seedSurvey stores a published survey with two sections: the first holds a
// required text question and a choice question with two options, the second a
// number question.
func seedSurvey(t *testing.T, repo *SurveyRepository) *models.Survey {
	t.Helper()
	surveyID := uuid.New()
	first, second := uuid.New(), uuid.New()
	choice := uuid.New()

	survey := &models.Survey{
		ID:     surveyID,
		Title:  "Customer feedback",
		Status: models.SurveyStatusPublished,
		Sections: []models.Section{
			{
				ID: second, SurveyID: surveyID, OrderIndex: 1, Title: ptr("Details"),
				Questions: []models.Question{
					{ID: uuid.New(), SectionID: second, Type: models.QuestionNumber, Title: "Age",
						ValidationRules: datatypes.NewJSONType(models.ValidationRules{MinValue: ptr(18.0)})},
				},
			},
			{
				ID: first, SurveyID: surveyID, OrderIndex: 0, Title: ptr("About you"),
				Questions: []models.Question{
					{ID: choice, SectionID: first, Type: models.QuestionSingleChoice, Title: "Color", OrderIndex: 1,
						Options: []models.QuestionOption{
							{QuestionID: choice, Label: "Blue", Value: "blue", OrderIndex: 1},
							{QuestionID: choice, Label: "Red", Value: "red", OrderIndex: 0},
						}},
					{ID: uuid.New(), SectionID: first, Type: models.QuestionShortText, Title: "Name", Required: true},
				},
			},
		},
	}
	if err := repo.CreateSurvey(context.Background(), survey); err != nil {
		t.Fatalf("create survey: %v", err)
	}
	return survey
}

func at(minutes int) *time.Time {
	v := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(minutes) * time.Minute)
	return &v
}
