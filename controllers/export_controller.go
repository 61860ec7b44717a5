package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/surveyhub/middleware"
	"github.com/vnkhanh/surveyhub/services"
)

// GET /api/v1/surveys/:id/responses/download?format=csv|xlsx
func (rc *ResponseController) Download(c *gin.Context) {
	format, err := services.ParseExportFormat(c.Query("format"))
	if err != nil {
		respondError(c, "download", err)
		return
	}

	export, err := rc.responses.Export(c.Request.Context(), middleware.SurveyFrom(c).ID, format)
	if err != nil {
		respondError(c, "download", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.FileName))
	c.Data(http.StatusOK, export.ContentType, export.Data)
}
