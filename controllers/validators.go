package controllers

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/vnkhanh/surveyhub/models"
)

// RegisterValidators adds the binding tags used by request payloads:
// question_type and survey_status.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding engine %T", binding.Validator.Engine())
	}
	if err := v.RegisterValidation("question_type", func(fl validator.FieldLevel) bool {
		return models.QuestionType(fl.Field().String()).Valid()
	}); err != nil {
		return err
	}
	return v.RegisterValidation("survey_status", func(fl validator.FieldLevel) bool {
		return models.SurveyStatus(fl.Field().String()).Valid()
	})
}
