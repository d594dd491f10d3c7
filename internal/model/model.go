package model

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies who wrote a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one entry of the chat log.
type ChatMessage struct {
	ID          string
	Role        Role
	Content     string
	Suggestions []string
	Timestamp   time.Time
}

// NewChatMessage stamps a message with a fresh ID and the current time.
func NewChatMessage(role Role, content string) ChatMessage {
	return ChatMessage{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}
