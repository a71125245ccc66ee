package models

// Chat roles, matching the turn roles the model API expects.
const (
	RoleUserMessage  = "user"
	RoleModelMessage = "model"
)

// ChatMessage is one turn of a session's tutor conversation. Messages are
// immutable once appended; slice order is the conversation order.
type ChatMessage struct {
	Role string `json:"role"` // user|model
	Text string `json:"text"`
}

// StudySession is one study instance over one uploaded source document.
// Sessions live only in the in-memory vault for the lifetime of the process.
type StudySession struct {
	ID            string        `json:"id"`
	FileName      string        `json:"fileName"`
	PageRange     string        `json:"pageRange"`
	Asset         AcademicAsset `json:"asset"`
	Illustrations []string      `json:"illustrations"`
	ChatHistory   []ChatMessage `json:"chatHistory"`
	// Creation time in Unix milliseconds.
	Timestamp int64 `json:"timestamp"`
}
