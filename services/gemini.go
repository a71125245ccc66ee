package services

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/smartstudy/smart-study-backend/models"
)

// MaxSynthesisInputChars caps the input of one synthesis call. Longer
// extractions are truncated, never summarized locally.
const MaxSynthesisInputChars = 30000

const defaultModel = "gemini-2.0-flash"

// EmptyReplyFallback is returned when the model answers a chat turn with no
// text at all.
const EmptyReplyFallback = "Neural connection interrupted."

// ContentSynthesizer is the boundary to the generative model. Handlers
// receive it through the gin context.
type ContentSynthesizer interface {
	Synthesize(ctx context.Context, text string, lang models.Language) (*models.AcademicAsset, error)
	Chat(ctx context.Context, question, personaContext string, lang models.Language) (string, error)
}

// GeminiSynthesizer talks to the Gemini API using GEMINI_API_KEY.
type GeminiSynthesizer struct {
	modelName string
}

func NewGeminiSynthesizer() *GeminiSynthesizer {
	name := os.Getenv("GEMINI_MODEL")
	if name == "" {
		name = defaultModel
	}
	return &GeminiSynthesizer{modelName: name}
}

const synthesisInstruction = `You are "Smart Study Pro", an AI academic engine.
GOAL: High-speed, high-resolution academic synthesis.

STRICT CONSTRAINTS:
1. OUTPUT ONLY VALID JSON. No preamble. No markdown blocks.
2. BE CONCISE. Keep text short to prevent response truncation.
3. LANGUAGE: Detect the language of the input or use the requested language '%s'.
   - If 'ar', use Academic Arabic.
   - Otherwise, use English.

DATA MAPPING:
- meta: topic, duration, level.
- summary: {content: "2 tight paragraphs in the target language", english_keywords: ["4 tags"]}
- flashcards: 5 items {id, front_text, back_text, type} (in target language)
- mind_map_data: {root_node, branches: 4 items (title, icon, color_code, key_points)} (in target language)
- visual_forge: {concepts: 6 items (importance 1-10, shapes: circle, hexagon, star, rect, label, description), connections: 4 items}
- chatbot_persona_context: 1-sentence persona.

If you cannot process everything, focus on the most important academic concepts.`

const chatInstruction = `You are the specific material tutor. Context: %s.
Give immediate, efficient, and precise answers. Language: %s.`

// TruncateForSynthesis cuts the text to MaxSynthesisInputChars runes.
func TruncateForSynthesis(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxSynthesisInputChars {
		return text
	}
	return string(runes[:MaxSynthesisInputChars])
}

// Synthesize sends the extracted text to Gemini with the academic-asset
// response schema bound at the transport layer and parses the result.
// Transport errors propagate to the caller; unrecoverable output surfaces
// as ErrMalformedSynthesis.
func (s *GeminiSynthesizer) Synthesize(ctx context.Context, text string, lang models.Language) (*models.AcademicAsset, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(os.Getenv("GEMINI_API_KEY")))
	if err != nil {
		return nil, fmt.Errorf("cannot create Gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(s.modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(fmt.Sprintf(synthesisInstruction, lang))},
	}
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = academicAssetSchema()

	resp, err := model.GenerateContent(ctx, genai.Text(TruncateForSynthesis(text)))
	if err != nil {
		return nil, fmt.Errorf("gemini synthesis call failed: %w", err)
	}

	var asset models.AcademicAsset
	if err := DecodeRepaired(responseText(resp), &asset); err != nil {
		return nil, err
	}
	if err := asset.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSynthesis, err)
	}
	return &asset, nil
}

// Chat constructs a fresh conversation seeded with the persona and language
// instruction and submits the question as its only turn. The conversation
// object is never reused across calls.
func (s *GeminiSynthesizer) Chat(ctx context.Context, question, personaContext string, lang models.Language) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(os.Getenv("GEMINI_API_KEY")))
	if err != nil {
		return "", fmt.Errorf("cannot create Gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(s.modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(fmt.Sprintf(chatInstruction, personaContext, lang))},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(question))
	if err != nil {
		return "", fmt.Errorf("gemini chat call failed: %w", err)
	}

	reply := strings.TrimSpace(responseText(resp))
	if reply == "" {
		return EmptyReplyFallback, nil
	}
	return reply, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String()
}

// academicAssetSchema mirrors the AcademicAsset shape so the model is
// constrained to emit conforming JSON.
func academicAssetSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"meta": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"topic_title":      {Type: genai.TypeString},
					"reading_time":     {Type: genai.TypeString},
					"difficulty_level": {Type: genai.TypeString},
				},
				Required: []string{"topic_title", "reading_time", "difficulty_level"},
			},
			"summary": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"content":          {Type: genai.TypeString},
					"english_keywords": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
				},
				Required: []string{"content", "english_keywords"},
			},
			"flashcards": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"id":         {Type: genai.TypeNumber},
						"front_text": {Type: genai.TypeString},
						"back_text":  {Type: genai.TypeString},
						"type":       {Type: genai.TypeString},
					},
					Required: []string{"id", "front_text", "back_text", "type"},
				},
			},
			"mind_map_data": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"root_node": {Type: genai.TypeString},
					"branches": {
						Type: genai.TypeArray,
						Items: &genai.Schema{
							Type: genai.TypeObject,
							Properties: map[string]*genai.Schema{
								"title":      {Type: genai.TypeString},
								"icon":       {Type: genai.TypeString},
								"color_code": {Type: genai.TypeString},
								"key_points": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
							},
							Required: []string{"title", "icon", "color_code", "key_points"},
						},
					},
				},
				Required: []string{"root_node", "branches"},
			},
			"spaced_repetition_schedule": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"day_offset":         {Type: genai.TypeNumber},
						"notification_title": {Type: genai.TypeString},
						"activity_type":      {Type: genai.TypeString},
						"question":           {Type: genai.TypeString},
					},
					Required: []string{"day_offset", "notification_title", "activity_type", "question"},
				},
			},
			"visual_forge": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"concepts": {
						Type: genai.TypeArray,
						Items: &genai.Schema{
							Type: genai.TypeObject,
							Properties: map[string]*genai.Schema{
								"id":          {Type: genai.TypeNumber},
								"label":       {Type: genai.TypeString},
								"description": {Type: genai.TypeString},
								"shape":       {Type: genai.TypeString},
								"importance":  {Type: genai.TypeNumber},
								"color":       {Type: genai.TypeString},
							},
							Required: []string{"id", "label", "description", "shape", "importance", "color"},
						},
					},
					"connections": {
						Type: genai.TypeArray,
						Items: &genai.Schema{
							Type: genai.TypeObject,
							Properties: map[string]*genai.Schema{
								"from": {Type: genai.TypeNumber},
								"to":   {Type: genai.TypeNumber},
							},
							Required: []string{"from", "to"},
						},
					},
				},
				Required: []string{"concepts", "connections"},
			},
			"chatbot_persona_context": {Type: genai.TypeString},
		},
		Required: []string{"meta", "summary", "flashcards", "mind_map_data", "spaced_repetition_schedule", "visual_forge", "chatbot_persona_context"},
	}
}
