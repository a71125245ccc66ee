package services

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/smartstudy/smart-study-backend/models"
)

var (
	ErrSessionNotFound = errors.New("study session not found")

	// ErrChatInFlight rejects a second chat send while one is still running
	// for the same session, preserving the user/model alternation.
	ErrChatInFlight = errors.New("a chat turn is already in flight for this session")
)

// SessionVault holds every study session of this process run, newest first.
// It is owned by the application and handed to handlers through the gin
// context; there is no package-level instance. Sessions are only ever
// appended to or mutated through the chat-history path.
type SessionVault struct {
	mu       sync.RWMutex
	sessions []*models.StudySession
	inFlight map[string]bool
}

func NewSessionVault() *SessionVault {
	return &SessionVault{inFlight: make(map[string]bool)}
}

// Assemble wraps a synthesized asset into a fresh session and prepends it
// to the vault. Ids are unique within a process run.
func (v *SessionVault) Assemble(fileName string, asset models.AcademicAsset) models.StudySession {
	session := models.StudySession{
		ID:            uuid.NewString(),
		FileName:      fileName,
		PageRange:     "Full Content",
		Asset:         asset,
		Illustrations: []string{},
		ChatHistory:   []models.ChatMessage{},
		Timestamp:     time.Now().UnixMilli(),
	}
	v.Insert(session)
	return session
}

// Insert prepends a prebuilt session (demo lessons) to the vault.
func (v *SessionVault) Insert(session models.StudySession) {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := session
	v.sessions = append([]*models.StudySession{&s}, v.sessions...)
}

// List returns a snapshot of the vault, newest first.
func (v *SessionVault) List() []models.StudySession {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]models.StudySession, 0, len(v.sessions))
	for _, s := range v.sessions {
		out = append(out, *s)
	}
	return out
}

// Get returns a copy of the session with the given id.
func (v *SessionVault) Get(id string) (models.StudySession, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	for _, s := range v.sessions {
		if s.ID == id {
			return *s, nil
		}
	}
	return models.StudySession{}, ErrSessionNotFound
}

// AppendMessage appends one chat turn to a session's history. History is
// append-only; this is the only mutation of a stored session.
func (v *SessionVault) AppendMessage(id string, msg models.ChatMessage) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, s := range v.sessions {
		if s.ID == id {
			s.ChatHistory = append(s.ChatHistory, msg)
			return nil
		}
	}
	return ErrSessionNotFound
}

// BeginSend marks a chat send as in flight for the session. It fails when
// another send is already running; there is no queueing.
func (v *SessionVault) BeginSend(id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	found := false
	for _, s := range v.sessions {
		if s.ID == id {
			found = true
			break
		}
	}
	if !found {
		return ErrSessionNotFound
	}
	if v.inFlight[id] {
		return ErrChatInFlight
	}
	v.inFlight[id] = true
	return nil
}

func (v *SessionVault) EndSend(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.inFlight, id)
}

// Len reports how many sessions the vault holds.
func (v *SessionVault) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.sessions)
}
