/*
2019 © Postgres.ai
*/

package models

import (
	"time"
)

// Chat roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ChatTurn defines a single entry of a conversation history.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// IsKnownRole checks if the turn has one of the supported chat roles.
func (t ChatTurn) IsKnownRole() bool {
	switch t.Role {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}

	return false
}

// ChatResponse defines an assistant reply produced for a chat message.
type ChatResponse struct {
	Role        string       `json:"role"`
	Content     string       `json:"content"`
	Timestamp   time.Time    `json:"timestamp"`
	QueryResult *QueryResult `json:"queryResult,omitempty"`

	// SQL is the statement shown to the user. It keeps the COUNT form when a row query was derived from it.
	SQL string `json:"sql,omitempty"`
}

// NewChatResponse creates a new assistant reply.
func NewChatResponse(content string) *ChatResponse {
	return &ChatResponse{
		Role:      RoleAssistant,
		Content:   content,
		Timestamp: time.Now(),
	}
}
