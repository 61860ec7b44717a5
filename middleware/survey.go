package middleware

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vnkhanh/surveyhub/models"
	"github.com/vnkhanh/surveyhub/services"
)

const (
	CtxSurvey = "surveyObj" // survey loaded from :id
)

// LoadSurvey resolves the :id path parameter to a survey (without its
// sections) and stores it under CtxSurvey.
func LoadSurvey(surveys services.SurveyReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid survey id"})
			return
		}

		survey, err := surveys.GetSurvey(c.Request.Context(), id, false)
		if err != nil {
			if errors.Is(err, services.ErrSurveyNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Survey not found"})
				return
			}
			log.Printf("load survey %s: %v", id, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Could not read survey"})
			return
		}

		c.Set(CtxSurvey, survey)
		c.Next()
	}
}

// SurveyFrom returns the survey set by LoadSurvey.
func SurveyFrom(c *gin.Context) *models.Survey {
	return c.MustGet(CtxSurvey).(*models.Survey)
}
