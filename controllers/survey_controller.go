package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/surveyhub/middleware"
	"github.com/vnkhanh/surveyhub/models"
	"github.com/vnkhanh/surveyhub/services"
)

type SurveyController struct {
	surveys *services.SurveyService
	imports *services.ImportService
}

func NewSurveyController(surveys *services.SurveyService, imports *services.ImportService) *SurveyController {
	return &SurveyController{surveys: surveys, imports: imports}
}

type listSurveysQuery struct {
	Status string `form:"status" binding:"omitempty,survey_status"`
}

// GET /api/v1/surveys
func (sc *SurveyController) ListSurveys(c *gin.Context) {
	var q listSurveysQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badPayload(c, err)
		return
	}
	var status *models.SurveyStatus
	if q.Status != "" {
		s := models.SurveyStatus(q.Status)
		status = &s
	}

	surveys, err := sc.surveys.ListSurveys(c.Request.Context(), status)
	if err != nil {
		respondError(c, "list surveys", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": surveys, "total": len(surveys)})
}

// POST /api/v1/surveys
func (sc *SurveyController) CreateSurvey(c *gin.Context) {
	var in services.CreateSurveyInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badPayload(c, err)
		return
	}
	survey, err := sc.surveys.CreateSurvey(c.Request.Context(), in)
	if err != nil {
		respondError(c, "create survey", err)
		return
	}
	c.JSON(http.StatusCreated, survey)
}

// POST /api/v1/surveys/import
func (sc *SurveyController) ImportSurvey(c *gin.Context) {
	var in services.ImportedSurvey
	if err := c.ShouldBindJSON(&in); err != nil {
		badPayload(c, err)
		return
	}
	result, err := sc.imports.ImportSurvey(c.Request.Context(), in)
	if err != nil {
		respondError(c, "import survey", err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// GET /api/v1/surveys/:id
func (sc *SurveyController) GetSurvey(c *gin.Context) {
	survey, err := sc.surveys.GetSurvey(c.Request.Context(), middleware.SurveyFrom(c).ID)
	if err != nil {
		respondError(c, "get survey", err)
		return
	}
	c.JSON(http.StatusOK, survey)
}

// GET /api/v1/surveys/public/:share_id
func (sc *SurveyController) GetPublicSurvey(c *gin.Context) {
	survey, err := sc.surveys.GetSurveyByShareID(c.Request.Context(), c.Param("share_id"))
	if err != nil {
		respondError(c, "get public survey", err)
		return
	}
	c.JSON(http.StatusOK, survey)
}

// PUT /api/v1/surveys/:id
func (sc *SurveyController) UpdateSurvey(c *gin.Context) {
	var patch services.SurveyPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badPayload(c, err)
		return
	}
	survey, err := sc.surveys.UpdateSurvey(c.Request.Context(), middleware.SurveyFrom(c).ID, patch)
	if err != nil {
		respondError(c, "update survey", err)
		return
	}
	c.JSON(http.StatusOK, survey)
}

// DELETE /api/v1/surveys/:id
func (sc *SurveyController) DeleteSurvey(c *gin.Context) {
	if err := sc.surveys.DeleteSurvey(c.Request.Context(), middleware.SurveyFrom(c).ID); err != nil {
		respondError(c, "delete survey", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Survey deleted"})
}

// POST /api/v1/surveys/:id/publish
func (sc *SurveyController) PublishSurvey(c *gin.Context) {
	survey, err := sc.surveys.PublishSurvey(c.Request.Context(), middleware.SurveyFrom(c).ID)
	if err != nil {
		respondError(c, "publish survey", err)
		return
	}
	c.JSON(http.StatusOK, survey)
}

// POST /api/v1/surveys/:id/close
func (sc *SurveyController) CloseSurvey(c *gin.Context) {
	survey, err := sc.surveys.CloseSurvey(c.Request.Context(), middleware.SurveyFrom(c).ID)
	if err != nil {
		respondError(c, "close survey", err)
		return
	}
	c.JSON(http.StatusOK, survey)
}
