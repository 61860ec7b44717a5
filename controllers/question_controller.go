package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/surveyhub/middleware"
	"github.com/vnkhanh/surveyhub/services"
)

type reorderReq struct {
	Order []services.OrderUpdate `json:"order" binding:"required,dive"`
}

/* ========== Sections ========== */

// POST /api/v1/surveys/sections
func (sc *SurveyController) CreateSection(c *gin.Context) {
	var in services.SectionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badPayload(c, err)
		return
	}
	section, err := sc.surveys.CreateSection(c.Request.Context(), in)
	if err != nil {
		respondError(c, "create section", err)
		return
	}
	c.JSON(http.StatusCreated, section)
}

// PUT /api/v1/surveys/sections/:section_id
func (sc *SurveyController) UpdateSection(c *gin.Context) {
	id, ok := paramUUID(c, "section_id")
	if !ok {
		return
	}
	var patch services.SectionPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badPayload(c, err)
		return
	}
	section, err := sc.surveys.UpdateSection(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, "update section", err)
		return
	}
	c.JSON(http.StatusOK, section)
}

// DELETE /api/v1/surveys/sections/:section_id
func (sc *SurveyController) DeleteSection(c *gin.Context) {
	id, ok := paramUUID(c, "section_id")
	if !ok {
		return
	}
	if err := sc.surveys.DeleteSection(c.Request.Context(), id); err != nil {
		respondError(c, "delete section", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Section deleted"})
}

// POST /api/v1/surveys/:id/sections/reorder
func (sc *SurveyController) ReorderSections(c *gin.Context) {
	var req reorderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	if err := sc.surveys.ReorderSections(c.Request.Context(), middleware.SurveyFrom(c).ID, req.Order); err != nil {
		respondError(c, "reorder sections", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}

/* ========== Questions ========== */

// POST /api/v1/surveys/questions
func (sc *SurveyController) CreateQuestion(c *gin.Context) {
	var in services.QuestionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badPayload(c, err)
		return
	}
	q, err := sc.surveys.CreateQuestion(c.Request.Context(), in)
	if err != nil {
		respondError(c, "create question", err)
		return
	}
	c.JSON(http.StatusCreated, q)
}

// PUT /api/v1/surveys/questions/:question_id
func (sc *SurveyController) UpdateQuestion(c *gin.Context) {
	id, ok := paramUUID(c, "question_id")
	if !ok {
		return
	}
	var patch services.QuestionPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badPayload(c, err)
		return
	}
	q, err := sc.surveys.UpdateQuestion(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, "update question", err)
		return
	}
	c.JSON(http.StatusOK, q)
}

// DELETE /api/v1/surveys/questions/:question_id
func (sc *SurveyController) DeleteQuestion(c *gin.Context) {
	id, ok := paramUUID(c, "question_id")
	if !ok {
		return
	}
	if err := sc.surveys.DeleteQuestion(c.Request.Context(), id); err != nil {
		respondError(c, "delete question", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Question deleted"})
}

// POST /api/v1/surveys/sections/:section_id/questions/reorder
func (sc *SurveyController) ReorderQuestions(c *gin.Context) {
	id, ok := paramUUID(c, "section_id")
	if !ok {
		return
	}
	var req reorderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	if err := sc.surveys.ReorderQuestions(c.Request.Context(), id, req.Order); err != nil {
		respondError(c, "reorder questions", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}
