package core

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	// RoleUser marks a turn authored by the end user.
	RoleUser Role = "user"
	// RoleAssistant marks a turn authored by the system on behalf of the user.
	RoleAssistant Role = "assistant"
)

// Turn is one role-tagged message in a conversation's history. Role and
// Content are immutable once the turn has been appended to a ContextStore;
// ordering is append-only and owned by the store.
type Turn struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTurn creates a turn with a fresh ID and a UTC timestamp.
func NewTurn(role Role, content string) Turn {
	return Turn{
		ID:        NewID(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// TurnInput is the raw, unmoderated input of a single user turn. At least one
// of Text or Image must be present for the input to be processable.
type TurnInput struct {
	Text      string
	Image     []byte
	ImageName string
	ImageMIME string
}

// HasText reports whether the input carries a non-empty text component.
func (in TurnInput) HasText() bool { return in.Text != "" }

// HasImage reports whether the input carries image bytes.
func (in TurnInput) HasImage() bool { return len(in.Image) > 0 }

// Empty reports whether the input carries neither modality.
func (in TurnInput) Empty() bool { return !in.HasText() && !in.HasImage() }

// UserContent renders the persisted content for the user turn: the raw text,
// prefixed with an image reference when an image was attached. Image bytes
// themselves are never persisted.
func (in TurnInput) UserContent() string {
	switch {
	case in.HasImage() && in.HasText():
		return "[Image: " + in.ImageName + "] " + in.Text
	case in.HasImage():
		return "[Image: " + in.ImageName + "] Image provided."
	default:
		return in.Text
	}
}

// NewID generates a unique identifier for turns and working records.
func NewID() string { return uuid.NewString() }
