package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartstudy/smart-study-backend/middleware"
	"github.com/smartstudy/smart-study-backend/models"
	"github.com/smartstudy/smart-study-backend/services"
)

// stubSynthesizer is a fixture double for the model boundary: it returns
// canned schema-conforming data without any network call.
type stubSynthesizer struct {
	asset          *models.AcademicAsset
	synthesizeErr  error
	reply          string
	chatErr        error
	synthesizeSeen int
	lastQuestion   string
	lastPersona    string
	lastLang       models.Language
}

func (s *stubSynthesizer) Synthesize(_ context.Context, text string, lang models.Language) (*models.AcademicAsset, error) {
	s.synthesizeSeen++
	s.lastLang = lang
	if s.synthesizeErr != nil {
		return nil, s.synthesizeErr
	}
	return s.asset, nil
}

func (s *stubSynthesizer) Chat(_ context.Context, question, personaContext string, lang models.Language) (string, error) {
	s.lastQuestion = question
	s.lastPersona = personaContext
	s.lastLang = lang
	if s.chatErr != nil {
		return "", s.chatErr
	}
	return s.reply, nil
}

func stubAsset() *models.AcademicAsset {
	return &models.AcademicAsset{
		Meta:    models.AssetMeta{TopicTitle: "Genetics", ReadingTime: "8 min", DifficultyLevel: "Medium"},
		Summary: models.AssetSummary{Content: "DNA carries genetic information.", EnglishKeywords: []string{"Genetics", "DNA"}},
		Flashcards: []models.Flashcard{
			{ID: 1, FrontText: "What is DNA?", BackText: "The molecule of heredity.", Type: "definition"},
		},
		MindMapData: models.MindMapData{
			RootNode: "Genetics",
			Branches: []models.MindMapBranch{
				{Title: "DNA", Icon: "🧬", ColorCode: "#10b981", KeyPoints: []string{"Double helix"}},
			},
		},
		SpacedRepetitionSchedule: []models.SpacedRepetitionTask{
			{DayOffset: 1, NotificationTitle: "Review: DNA", ActivityType: "Review", Question: "Describe the double helix."},
		},
		ChatbotPersonaContext: "You are Gregor Mendel.",
	}
}

func newTestRouter(vault *services.SessionVault, synth services.ContentSynthesizer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	study := r.Group("/api/study")
	study.Use(middleware.StudyContext(vault, synth))
	study.POST("/sessions", CreateStudySession)
	study.POST("/sessions/demo", LoadDemoSession)
	study.GET("/sessions", GetStudySessions)
	study.GET("/sessions/:id", GetStudySessionDetail)
	study.POST("/sessions/:id/chat", SendChatMessage)
	study.POST("/sessions/:id/flashcards/:cardID/explain", ExplainFlashcard)
	return r
}

func uploadRequest(t *testing.T, fileName, content, language string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	if language != "" {
		require.NoError(t, w.WriteField("language", language))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/study/sessions", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestCreateStudySessionPipeline(t *testing.T) {
	vault := services.NewSessionVault()
	synth := &stubSynthesizer{asset: stubAsset()}
	r := newTestRouter(vault, synth)

	content := strings.Repeat("Genetics is the study of heredity. ", 5)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, uploadRequest(t, "genetics.txt", content, "en"))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 1, synth.synthesizeSeen)

	var resp struct {
		Session  models.StudySession `json:"session"`
		UploadID string              `json:"upload_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.UploadID)
	assert.Equal(t, "genetics.txt", resp.Session.FileName)
	assert.Equal(t, "Full Content", resp.Session.PageRange)
	assert.Equal(t, "Genetics", resp.Session.Asset.Meta.TopicTitle)
	assert.Empty(t, resp.Session.ChatHistory)

	// The new session is the vault head.
	head := vault.List()[0]
	assert.Equal(t, resp.Session.ID, head.ID)
}

func TestCreateStudySessionInsufficientContent(t *testing.T) {
	vault := services.NewSessionVault()
	synth := &stubSynthesizer{asset: stubAsset()}
	r := newTestRouter(vault, synth)

	// 49 characters is rejected before any synthesis call.
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, uploadRequest(t, "thin.txt", strings.Repeat("a", 49), "en"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, synth.synthesizeSeen)
	assert.Equal(t, 0, vault.Len())

	// Exactly 50 characters is accepted.
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, uploadRequest(t, "exact.txt", strings.Repeat("a", 50), "en"))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, synth.synthesizeSeen)
}

func TestCreateStudySessionSynthesisFailureCommitsNothing(t *testing.T) {
	vault := services.NewSessionVault()
	synth := &stubSynthesizer{synthesizeErr: errors.New("upstream unavailable")}
	r := newTestRouter(vault, synth)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, uploadRequest(t, "doc.txt", strings.Repeat("b", 100), "en"))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, 0, vault.Len(), "no partial session may be committed")
}

func TestCreateStudySessionMalformedSynthesis(t *testing.T) {
	vault := services.NewSessionVault()
	synth := &stubSynthesizer{synthesizeErr: services.ErrMalformedSynthesis}
	r := newTestRouter(vault, synth)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, uploadRequest(t, "doc.txt", strings.Repeat("b", 100), "en"))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "smaller section")
	assert.Equal(t, 0, vault.Len())
}

func postJSON(t *testing.T, r *gin.Engine, url string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestChatTurnRoundTrip(t *testing.T) {
	vault := services.NewSessionVault()
	synth := &stubSynthesizer{reply: "Peas show dominant traits."}
	r := newTestRouter(vault, synth)

	session := vault.Assemble("genetics.txt", *stubAsset())

	rec := postJSON(t, r, "/api/study/sessions/"+session.ID+"/chat", ChatInput{Message: "What did Mendel find?", Language: "en"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, "What did Mendel find?", synth.lastQuestion)
	assert.Equal(t, "You are Gregor Mendel.", synth.lastPersona)

	stored, err := vault.Get(session.ID)
	require.NoError(t, err)
	require.Len(t, stored.ChatHistory, 2)
	assert.Equal(t, models.ChatMessage{Role: "user", Text: "What did Mendel find?"}, stored.ChatHistory[0])
	assert.Equal(t, models.ChatMessage{Role: "model", Text: "Peas show dominant traits."}, stored.ChatHistory[1])
}

func TestChatTransportFailureAppendsFallback(t *testing.T) {
	vault := services.NewSessionVault()
	synth := &stubSynthesizer{chatErr: errors.New("network down")}
	r := newTestRouter(vault, synth)

	session := vault.Assemble("genetics.txt", *stubAsset())

	rec := postJSON(t, r, "/api/study/sessions/"+session.ID+"/chat", ChatInput{Message: "Hello?", Language: "en"})
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := vault.Get(session.ID)
	require.NoError(t, err)
	require.Len(t, stored.ChatHistory, 2, "the turn must never stay half-sent")
	assert.Equal(t, "user", stored.ChatHistory[0].Role)
	assert.Equal(t, models.ChatMessage{Role: "model", Text: chatFailureFallback}, stored.ChatHistory[1])
}

func TestChatRejectsConcurrentSend(t *testing.T) {
	vault := services.NewSessionVault()
	synth := &stubSynthesizer{reply: "ok"}
	r := newTestRouter(vault, synth)

	session := vault.Assemble("genetics.txt", *stubAsset())
	require.NoError(t, vault.BeginSend(session.ID))
	defer vault.EndSend(session.ID)

	rec := postJSON(t, r, "/api/study/sessions/"+session.ID+"/chat", ChatInput{Message: "again", Language: "en"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	stored, err := vault.Get(session.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.ChatHistory)
}

func TestChatUnknownSession(t *testing.T) {
	vault := services.NewSessionVault()
	r := newTestRouter(vault, &stubSynthesizer{reply: "ok"})

	rec := postJSON(t, r, "/api/study/sessions/missing/chat", ChatInput{Message: "hi"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExplainFlashcardBuildsPrompt(t *testing.T) {
	vault := services.NewSessionVault()
	synth := &stubSynthesizer{reply: "DNA is the hereditary molecule because..."}
	r := newTestRouter(vault, synth)

	session := vault.Assemble("genetics.txt", *stubAsset())

	rec := postJSON(t, r, "/api/study/sessions/"+session.ID+"/flashcards/1/explain", ExplainInput{Language: "en"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Contains(t, synth.lastQuestion, "Explain this concept with high efficiency")
	assert.Contains(t, synth.lastQuestion, "What is DNA?")

	stored, err := vault.Get(session.ID)
	require.NoError(t, err)
	require.Len(t, stored.ChatHistory, 2)
	assert.Equal(t, "user", stored.ChatHistory[0].Role)
}

func TestExplainFlashcardUnknownCard(t *testing.T) {
	vault := services.NewSessionVault()
	r := newTestRouter(vault, &stubSynthesizer{reply: "ok"})

	session := vault.Assemble("genetics.txt", *stubAsset())

	rec := postJSON(t, r, "/api/study/sessions/"+session.ID+"/flashcards/99/explain", ExplainInput{})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoadDemoSessionIsIdempotent(t *testing.T) {
	vault := services.NewSessionVault()
	r := newTestRouter(vault, &stubSynthesizer{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/study/sessions/demo?lang=en", nil))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, vault.Len())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/study/sessions/demo?lang=en", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, vault.Len(), "reloading the demo must not duplicate its id")
}

func TestGetStudySessions(t *testing.T) {
	vault := services.NewSessionVault()
	r := newTestRouter(vault, &stubSynthesizer{})

	first := vault.Assemble("a.txt", *stubAsset())
	second := vault.Assemble("b.txt", *stubAsset())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/study/sessions", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Sessions []models.StudySession `json:"sessions"`
		Total    int                   `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Total)
	assert.Equal(t, second.ID, resp.Sessions[0].ID)
	assert.Equal(t, first.ID, resp.Sessions[1].ID)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/study/sessions/"+first.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/study/sessions/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
