/*
2024 © Postgres.ai
*/

// Package llm provides clients for chat-completion language models.
package llm

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"gitlab.com/postgres-ai/askdb/pkg/config"
	"gitlab.com/postgres-ai/askdb/pkg/models"
	"gitlab.com/postgres-ai/askdb/pkg/util/text"
)

// Errors returned by generators.
var (
	ErrPayloadTooLarge           = errors.New("conversation payload is too large")
	ErrUpstreamUnavailable       = errors.New("language model is unavailable")
	ErrMalformedUpstreamResponse = errors.New("malformed language model response")
)

// Generator defines the interface of a text-completion language model.
type Generator interface {
	// Generate sends a system prompt, a bounded conversation history and a user message and returns the model output.
	Generate(ctx context.Context, systemPrompt, userMessage string, history []models.ChatTurn) (string, error)
}

// Bounds defines limits applied to a conversation before it is sent.
type Bounds struct {
	MaxSystemPromptChars int
	MaxMessageChars      int
	MaxHistoryTurns      int
	MaxPayloadBytes      int
}

// BoundsFromConfig builds bounds from the LLM configuration.
func BoundsFromConfig(cfg config.LLM) Bounds {
	return Bounds{
		MaxSystemPromptChars: cfg.MaxSystemPromptChars,
		MaxMessageChars:      cfg.MaxMessageChars,
		MaxHistoryTurns:      cfg.MaxHistoryTurns,
		MaxPayloadBytes:      cfg.MaxPayloadBytes,
	}
}

// Message defines a chat-completion message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// BuildMessages assembles the system prompt, the most recent history turns and the user message
// applying the configured bounds. History keeps its chronological order.
func (b Bounds) BuildMessages(systemPrompt, userMessage string, history []models.ChatTurn) []Message {
	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, Message{Role: models.RoleSystem, Content: b.boundSystemPrompt(systemPrompt)})

	recent := history
	if b.MaxHistoryTurns >= 0 && len(recent) > b.MaxHistoryTurns {
		recent = recent[len(recent)-b.MaxHistoryTurns:]
	}

	for _, turn := range recent {
		if !turn.IsKnownRole() {
			continue
		}

		messages = append(messages, Message{Role: turn.Role, Content: b.boundMessage(turn.Content)})
	}

	messages = append(messages, Message{Role: models.RoleUser, Content: b.boundMessage(userMessage)})

	return messages
}

func (b Bounds) boundSystemPrompt(prompt string) string {
	if b.MaxSystemPromptChars <= 0 {
		return prompt
	}

	marker := fmt.Sprintf("\n\n[System prompt truncated: original size %s characters]",
		humanize.Comma(int64(len([]rune(prompt)))))

	bounded, _ := text.CutText(prompt, b.MaxSystemPromptChars, marker)

	return bounded
}

func (b Bounds) boundMessage(message string) string {
	if b.MaxMessageChars <= 0 {
		return message
	}

	bounded, _ := text.CutText(message, b.MaxMessageChars, text.Ellipsis)

	return bounded
}

// checkPayload fails when a serialized request body exceeds the configured byte limit.
func (b Bounds) checkPayload(body []byte) error {
	if b.MaxPayloadBytes > 0 && len(body) > b.MaxPayloadBytes {
		return errors.Wrapf(ErrPayloadTooLarge, "%s exceeds the limit of %s",
			humanize.Bytes(uint64(len(body))), humanize.Bytes(uint64(b.MaxPayloadBytes)))
	}

	return nil
}

// NewGenerator creates a generator for the configured backend.
func NewGenerator(cfg config.LLM) (Generator, error) {
	switch cfg.Backend {
	case BackendHTTP, "":
		return NewClient(cfg)

	case BackendLangChain:
		return NewLangChain(cfg)

	default:
		return nil, errors.Errorf("unknown language model backend given: %q", cfg.Backend)
	}
}

// Supported backends.
const (
	BackendHTTP      = "http"
	BackendLangChain = "langchain"
)
