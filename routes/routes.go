package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/surveyhub/controllers"
	"github.com/vnkhanh/surveyhub/middleware"
	"github.com/vnkhanh/surveyhub/services"
)

// Handlers groups everything the route table needs.
type Handlers struct {
	Surveys       *controllers.SurveyController
	Responses     *controllers.ResponseController
	Uploads       *controllers.UploadController
	Health        *controllers.HealthController
	SurveyReader  services.SurveyReader
	SubmitLimiter *middleware.IPRateLimiter
}

func SetupRoutes(r *gin.Engine, h Handlers) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	r.GET("/health", h.Health.HealthCheck)

	limited := middleware.RateLimitByIP(h.SubmitLimiter)
	loadSurvey := middleware.LoadSurvey(h.SurveyReader)

	api := r.Group("/api/v1")
	surveys := api.Group("/surveys")
	{
		surveys.GET("", h.Surveys.ListSurveys)
		surveys.POST("", h.Surveys.CreateSurvey)
		surveys.POST("/import", h.Surveys.ImportSurvey)
		surveys.POST("/upload-image", h.Uploads.UploadImage)
		surveys.GET("/public/:share_id", h.Surveys.GetPublicSurvey)

		surveys.POST("/sections", h.Surveys.CreateSection)
		surveys.PUT("/sections/:section_id", h.Surveys.UpdateSection)
		surveys.DELETE("/sections/:section_id", h.Surveys.DeleteSection)
		surveys.POST("/sections/:section_id/questions/reorder", h.Surveys.ReorderQuestions)

		surveys.POST("/questions", h.Surveys.CreateQuestion)
		surveys.PUT("/questions/:question_id", h.Surveys.UpdateQuestion)
		surveys.DELETE("/questions/:question_id", h.Surveys.DeleteQuestion)

		// respondent endpoints are public and rate limited per IP
		surveys.PUT("/responses/:response_id/items", limited, h.Responses.SaveItems)
		surveys.POST("/responses/:response_id/submit", limited, h.Responses.SubmitResponse)
		surveys.GET("/responses/:response_id", h.Responses.GetResponse)
	}

	survey := surveys.Group("/:id", loadSurvey)
	{
		survey.GET("", h.Surveys.GetSurvey)
		survey.PUT("", h.Surveys.UpdateSurvey)
		survey.DELETE("", h.Surveys.DeleteSurvey)
		survey.POST("/publish", h.Surveys.PublishSurvey)
		survey.POST("/close", h.Surveys.CloseSurvey)
		survey.POST("/sections/reorder", h.Surveys.ReorderSections)

		survey.POST("/responses/start", limited, h.Responses.StartResponse)
		survey.GET("/responses", h.Responses.ListResponses)
		survey.GET("/responses/statistics", h.Responses.Statistics)
		survey.GET("/responses/download", h.Responses.Download)
	}
}
