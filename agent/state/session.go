package state

import (
	"errors"
	"strings"
	"time"

	contractx "github.com/crm-online-boutique/crm-concierge/agent/contract"
)

var (
	ErrInvalidSession = errors.New("session id is empty")
	ErrInvalidAppName = errors.New("app name is empty")
	ErrInvalidUserID  = errors.New("user id is empty")
)

// Session is the unit of conversational continuity, keyed by
// (app name, user id, session id). History is append-only; a caller "clears"
// a conversation by switching to a fresh session id, never by mutation.
type Session struct {
	AppName   string `json:"app_name"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`

	Messages []contractx.Message `json:"messages,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewSession(appName, userID, sessionID string, now time.Time) *Session {
	return &Session{
		AppName:   appName,
		UserID:    userID,
		SessionID: sessionID,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
}

// Key builds the composite store key for a session identity.
func Key(appName, userID, sessionID string) string {
	return appName + "/" + userID + "/" + sessionID
}

func (s *Session) Key() string {
	return Key(s.AppName, s.UserID, s.SessionID)
}

func (s *Session) Append(msg contractx.Message, now time.Time) {
	s.Messages = append(s.Messages, msg)
	s.Touch(now)
}

func (s *Session) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// HistorySnapshot returns a copy of the message history safe to hand to an
// agent turn while the session keeps evolving.
func (s *Session) HistorySnapshot() []contractx.Message {
	if len(s.Messages) == 0 {
		return nil
	}
	out := make([]contractx.Message, len(s.Messages))
	copy(out, s.Messages)
	return out
}

func (s *Session) Validate() error {
	if strings.TrimSpace(s.AppName) == "" {
		return ErrInvalidAppName
	}
	if strings.TrimSpace(s.UserID) == "" {
		return ErrInvalidUserID
	}
	if strings.TrimSpace(s.SessionID) == "" {
		return ErrInvalidSession
	}
	return nil
}
