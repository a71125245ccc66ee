package middleware

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/smartstudy/smart-study-backend/services"
)

func DBMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("db", db)
		c.Next()
	}
}

// StudyContext hands the session vault and the synthesizer to handlers.
// Both are owned by main; nothing here is a package-level singleton.
func StudyContext(vault *services.SessionVault, synth services.ContentSynthesizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("vault", vault)
		c.Set("synth", synth)
		c.Next()
	}
}
