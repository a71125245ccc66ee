package models

import (
	"errors"
	"fmt"
)

// Language of the generated study content.
type Language string

const (
	LangEnglish Language = "en"
	LangArabic  Language = "ar"
)

// ParseLanguage normalizes a client-supplied language code. Anything that is
// not Arabic falls back to English.
func ParseLanguage(s string) Language {
	if s == string(LangArabic) {
		return LangArabic
	}
	return LangEnglish
}

type AssetMeta struct {
	TopicTitle      string `json:"topic_title"`
	ReadingTime     string `json:"reading_time"`
	DifficultyLevel string `json:"difficulty_level"` // Easy|Medium|Hard
}

type AssetSummary struct {
	Content string `json:"content"`
	// Keywords are always tagged in English, even for Arabic content.
	EnglishKeywords []string `json:"english_keywords"`
}

type Flashcard struct {
	ID        int    `json:"id"`
	FrontText string `json:"front_text"`
	BackText  string `json:"back_text"`
	Type      string `json:"type"` // definition|formula|process
}

type MindMapBranch struct {
	Title     string   `json:"title"`
	Icon      string   `json:"icon"`
	ColorCode string   `json:"color_code"`
	KeyPoints []string `json:"key_points"`
}

type MindMapData struct {
	RootNode string          `json:"root_node"`
	Branches []MindMapBranch `json:"branches"`
}

type QuizData struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectOption string   `json:"correct_option"`
}

type SpacedRepetitionTask struct {
	DayOffset         int       `json:"day_offset"`
	NotificationTitle string    `json:"notification_title"`
	ActivityType      string    `json:"activity_type"`
	Question          string    `json:"question"`
	QuizData          *QuizData `json:"quiz_data,omitempty"`
}

type VisualConcept struct {
	ID          int    `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Shape       string `json:"shape"` // circle|rect|hexagon|star
	Importance  int    `json:"importance"`
	Color       string `json:"color"`
}

type VisualConnection struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type VisualForgeData struct {
	Concepts    []VisualConcept    `json:"concepts"`
	Connections []VisualConnection `json:"connections"`
}

// AcademicAsset is the full study package synthesized from one document.
type AcademicAsset struct {
	Meta                     AssetMeta              `json:"meta"`
	Summary                  AssetSummary           `json:"summary"`
	Flashcards               []Flashcard            `json:"flashcards"`
	MindMapData              MindMapData            `json:"mind_map_data"`
	SpacedRepetitionSchedule []SpacedRepetitionTask `json:"spaced_repetition_schedule"`
	VisualForge              *VisualForgeData       `json:"visual_forge,omitempty"`
	ChatbotPersonaContext    string                 `json:"chatbot_persona_context"`
}

// Validate checks that every required field of the asset and of its nested
// list items is present. An asset that fails here is treated as malformed
// model output and rejected as a whole.
func (a *AcademicAsset) Validate() error {
	if a.Meta.TopicTitle == "" || a.Meta.ReadingTime == "" || a.Meta.DifficultyLevel == "" {
		return errors.New("meta is missing required fields")
	}
	if a.Summary.Content == "" || a.Summary.EnglishKeywords == nil {
		return errors.New("summary is missing required fields")
	}
	if len(a.Flashcards) == 0 {
		return errors.New("flashcards are empty")
	}
	for i, f := range a.Flashcards {
		if f.FrontText == "" || f.BackText == "" || f.Type == "" {
			return fmt.Errorf("flashcard %d is missing required fields", i)
		}
	}
	if a.MindMapData.RootNode == "" || len(a.MindMapData.Branches) == 0 {
		return errors.New("mind map is missing required fields")
	}
	for i, b := range a.MindMapData.Branches {
		if b.Title == "" || b.Icon == "" || b.ColorCode == "" || b.KeyPoints == nil {
			return fmt.Errorf("mind map branch %d is missing required fields", i)
		}
	}
	for i, t := range a.SpacedRepetitionSchedule {
		if t.DayOffset < 0 {
			return fmt.Errorf("schedule entry %d has a negative day offset", i)
		}
		if t.NotificationTitle == "" || t.ActivityType == "" || t.Question == "" {
			return fmt.Errorf("schedule entry %d is missing required fields", i)
		}
	}
	if a.VisualForge != nil {
		for i, cpt := range a.VisualForge.Concepts {
			if cpt.Label == "" || cpt.Description == "" || cpt.Shape == "" || cpt.Color == "" {
				return fmt.Errorf("visual concept %d is missing required fields", i)
			}
		}
	}
	if a.ChatbotPersonaContext == "" {
		return errors.New("chatbot persona context is empty")
	}
	return nil
}
