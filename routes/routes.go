package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/smartstudy/smart-study-backend/controllers"
	"github.com/smartstudy/smart-study-backend/middleware"
	"github.com/smartstudy/smart-study-backend/services"
	"github.com/smartstudy/smart-study-backend/ws"
)

func SetupRouter(r *gin.Engine, db *gorm.DB, vault *services.SessionVault, synth services.ContentSynthesizer) *gin.Engine {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/health", controllers.HealthCheck)

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
	}

	study := api.Group("/study")
	{
		study.Use(middleware.AuthMiddleware(), middleware.DBMiddleware(db), middleware.StudyContext(vault, synth))

		study.POST("/sessions", controllers.CreateStudySession)
		study.POST("/sessions/demo", controllers.LoadDemoSession)
		study.GET("/sessions", controllers.GetStudySessions)
		study.GET("/sessions/:id", controllers.GetStudySessionDetail)
		study.POST("/sessions/:id/chat", controllers.SendChatMessage)
		study.POST("/sessions/:id/flashcards/:cardID/explain", controllers.ExplainFlashcard)
	}

	r.GET("/ws/study/:id", ws.HandleStudyWebSocket)
	r.GET("/ws/status", ws.HandleGlobalWebSocket)

	return r
}
