package controllers

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"

	"github.com/vnkhanh/surveyhub/models"
	"github.com/vnkhanh/surveyhub/services"
)

func TestRegisterValidators(t *testing.T) {
	if err := RegisterValidators(); err != nil {
		t.Fatal(err)
	}

	valid := services.QuestionInput{SectionID: uuid.New(), Type: models.QuestionLikert, Title: "Rate us"}
	if err := binding.Validator.ValidateStruct(&valid); err != nil {
		t.Fatalf("expected valid question, got %v", err)
	}
	invalid := valid
	invalid.Type = "slider"
	if err := binding.Validator.ValidateStruct(&invalid); err == nil {
		t.Fatalf("expected question_type to reject %q", invalid.Type)
	}

	if err := binding.Validator.ValidateStruct(&listSurveysQuery{Status: "archived"}); err == nil {
		t.Fatalf("expected survey_status to reject archived")
	}
	if err := binding.Validator.ValidateStruct(&listSurveysQuery{}); err != nil {
		t.Fatalf("empty status is allowed: %v", err)
	}
}
