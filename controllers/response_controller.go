package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/surveyhub/middleware"
	"github.com/vnkhanh/surveyhub/services"
)

type ResponseController struct {
	responses *services.ResponseService
}

func NewResponseController(responses *services.ResponseService) *ResponseController {
	return &ResponseController{responses: responses}
}

type saveItemsReq struct {
	Items []services.ItemInput `json:"items" binding:"dive"`
}

type submitReq struct {
	Items    []services.ItemInput `json:"items" binding:"dive"`
	UserInfo string               `json:"user_info"`
}

/* ========== Respondent flow ========== */

// POST /api/v1/surveys/:id/responses/start
func (rc *ResponseController) StartResponse(c *gin.Context) {
	survey := middleware.SurveyFrom(c)
	resp, err := rc.responses.StartResponse(c.Request.Context(), survey.ID, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondError(c, "start response", err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// PUT /api/v1/surveys/responses/:response_id/items
func (rc *ResponseController) SaveItems(c *gin.Context) {
	id, ok := paramUUID(c, "response_id")
	if !ok {
		return
	}
	var req saveItemsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	resp, err := rc.responses.SaveItems(c.Request.Context(), id, req.Items)
	if err != nil {
		respondError(c, "save items", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// POST /api/v1/surveys/responses/:response_id/submit
func (rc *ResponseController) SubmitResponse(c *gin.Context) {
	id, ok := paramUUID(c, "response_id")
	if !ok {
		return
	}
	var req submitReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	resp, err := rc.responses.ValidateAndFinalize(c.Request.Context(), id, req.Items, req.UserInfo)
	if err != nil {
		respondError(c, "submit response", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Response submitted",
		"response": resp,
	})
}

/* ========== Results ========== */

// GET /api/v1/surveys/responses/:response_id
func (rc *ResponseController) GetResponse(c *gin.Context) {
	id, ok := paramUUID(c, "response_id")
	if !ok {
		return
	}
	resp, err := rc.responses.GetResponse(c.Request.Context(), id)
	if err != nil {
		respondError(c, "get response", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type listResponsesQuery struct {
	IncludeItems bool `form:"include_items"`
}

// GET /api/v1/surveys/:id/responses
func (rc *ResponseController) ListResponses(c *gin.Context) {
	var q listResponsesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badPayload(c, err)
		return
	}
	responses, err := rc.responses.ListResponses(c.Request.Context(), middleware.SurveyFrom(c).ID, q.IncludeItems)
	if err != nil {
		respondError(c, "list responses", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": responses, "total": len(responses)})
}

// GET /api/v1/surveys/:id/responses/statistics
func (rc *ResponseController) Statistics(c *gin.Context) {
	report, err := rc.responses.Statistics(c.Request.Context(), middleware.SurveyFrom(c).ID)
	if err != nil {
		respondError(c, "statistics", err)
		return
	}
	c.JSON(http.StatusOK, report)
}
