package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/smartstudy/smart-study-backend/models"
	"github.com/smartstudy/smart-study-backend/services"
	"github.com/smartstudy/smart-study-backend/ws"
)

const maxUploadBytes = 20 * 1024 * 1024

// Fallback replies appended when a chat turn fails in transit, so the
// conversation never ends on an unresolved user message.
const (
	chatFailureFallback    = "Neural Link interrupted."
	explainFailureFallback = "Explanation link lost."
)

func vaultFrom(c *gin.Context) *services.SessionVault {
	return c.MustGet("vault").(*services.SessionVault)
}

func synthFrom(c *gin.Context) services.ContentSynthesizer {
	return c.MustGet("synth").(services.ContentSynthesizer)
}

// CreateStudySession runs the full pipeline for one uploaded document:
// extract, synthesize, assemble. No session is committed on failure.
func CreateStudySession(c *gin.Context) {
	vault := vaultFrom(c)
	synth := synthFrom(c)

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file attached"})
		return
	}
	if file.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file exceeds 20MB"})
		return
	}

	lang := models.ParseLanguage(c.PostForm("language"))
	uploadID := uuid.NewString()

	ws.SendStudyStatus(uploadID, "extracting", 0.2, "", "")
	text, err := services.ExtractText(file)
	if err != nil {
		ws.SendStudyStatus(uploadID, "error", 0, "", err.Error())
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": services.ErrExtractionFailed.Error(), "upload_id": uploadID})
		return
	}

	if err := services.CheckContentLength(text); err != nil {
		ws.SendStudyStatus(uploadID, "error", 0, "", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "upload_id": uploadID})
		return
	}

	ws.SendStudyStatus(uploadID, "synthesizing", 0.5, "", "")
	asset, err := synth.Synthesize(c.Request.Context(), text, lang)
	if err != nil {
		ws.SendStudyStatus(uploadID, "error", 0, "", err.Error())
		if errors.Is(err, services.ErrMalformedSynthesis) {
			c.JSON(http.StatusBadGateway, gin.H{"error": services.ErrMalformedSynthesis.Error(), "upload_id": uploadID})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "synthesis service unavailable", "details": err.Error(), "upload_id": uploadID})
		return
	}

	session := vault.Assemble(file.Filename, *asset)
	ws.SendStudyStatus(uploadID, "ready", 1, session.ID, "")
	ws.BroadcastVaultChanged()

	c.JSON(http.StatusCreated, gin.H{
		"session":   session,
		"upload_id": uploadID,
	})
}

// GetStudySessions lists the vault, newest first.
func GetStudySessions(c *gin.Context) {
	sessions := vaultFrom(c).List()
	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"total":    len(sessions),
	})
}

func GetStudySessionDetail(c *gin.Context) {
	session, err := vaultFrom(c).Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "study session not found"})
		return
	}
	c.JSON(http.StatusOK, session)
}

// LoadDemoSession inserts the built-in demo lesson. Loading it again
// returns the already stored session instead of a duplicate id.
func LoadDemoSession(c *gin.Context) {
	vault := vaultFrom(c)
	lang := models.ParseLanguage(c.Query("lang"))

	if existing, err := vault.Get(services.DemoSessionID()); err == nil {
		c.JSON(http.StatusOK, gin.H{"session": existing})
		return
	}

	session := services.DemoSession(lang)
	vault.Insert(session)
	ws.BroadcastVaultChanged()
	c.JSON(http.StatusCreated, gin.H{"session": session})
}

type ChatInput struct {
	Message  string `json:"message" binding:"required"`
	Language string `json:"language"`
}

// SendChatMessage runs one tutor chat turn against a session. The user
// message and the model reply (or a fallback on transport failure) are
// appended to history in that order; sends are serialized per session.
func SendChatMessage(c *gin.Context) {
	var input ChatInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	runChatTurn(c, c.Param("id"), input.Message, models.ParseLanguage(input.Language), chatFailureFallback)
}

type ExplainInput struct {
	Language string `json:"language"`
}

// ExplainFlashcard asks the tutor to expand on one of the session's
// flashcards, as a normal chat turn.
func ExplainFlashcard(c *gin.Context) {
	vault := vaultFrom(c)

	// Body is optional, language defaults to English.
	var input ExplainInput
	_ = c.ShouldBindJSON(&input)
	lang := models.ParseLanguage(input.Language)

	session, err := vault.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "study session not found"})
		return
	}

	cardID := c.Param("cardID")
	var card *models.Flashcard
	for i := range session.Asset.Flashcards {
		if fmt.Sprint(session.Asset.Flashcards[i].ID) == cardID {
			card = &session.Asset.Flashcards[i]
			break
		}
	}
	if card == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "flashcard not found"})
		return
	}

	var prompt string
	if lang == models.LangArabic {
		prompt = fmt.Sprintf("اشرح لي هذا المفهوم بذكاء واختصار: \"%s\" - \"%s\"", card.FrontText, card.BackText)
	} else {
		prompt = fmt.Sprintf("Explain this concept with high efficiency: \"%s\" - \"%s\"", card.FrontText, card.BackText)
	}

	runChatTurn(c, session.ID, prompt, lang, explainFailureFallback)
}

func runChatTurn(c *gin.Context, sessionID, message string, lang models.Language, fallback string) {
	vault := vaultFrom(c)
	synth := synthFrom(c)

	session, err := vault.Get(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "study session not found"})
		return
	}

	if err := vault.BeginSend(sessionID); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	defer vault.EndSend(sessionID)

	// The user turn is committed before the model call so a transport
	// failure never loses it.
	if err := vault.AppendMessage(sessionID, models.ChatMessage{Role: models.RoleUserMessage, Text: message}); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "study session not found"})
		return
	}

	reply, err := synth.Chat(c.Request.Context(), message, session.Asset.ChatbotPersonaContext, lang)
	if err != nil {
		reply = fallback
	}
	vault.AppendMessage(sessionID, models.ChatMessage{Role: models.RoleModelMessage, Text: reply})

	updated, _ := vault.Get(sessionID)
	c.JSON(http.StatusOK, gin.H{
		"reply":   reply,
		"history": updated.ChatHistory,
	})
}
