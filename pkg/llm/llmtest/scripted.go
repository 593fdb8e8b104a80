// Package llmtest provides a scripted language model for tests.
package llmtest

import (
	"context"
	"fmt"
	"sync"

	"gitlab.com/postgres-ai/askdb/pkg/models"
)

// Call records a single generator invocation.
type Call struct {
	SystemPrompt string
	UserMessage  string
	History      []models.ChatTurn
}

// Reply defines a scripted generator answer.
type Reply struct {
	Text string
	Err  error
}

// Scripted returns scripted replies in order and records every call.
type Scripted struct {
	mu      sync.Mutex
	replies []Reply
	calls   []Call
}

// NewScripted creates a generator replying with the given texts in order.
func NewScripted(texts ...string) *Scripted {
	s := &Scripted{}

	for _, t := range texts {
		s.replies = append(s.replies, Reply{Text: t})
	}

	return s
}

// Push appends a reply to the script.
func (s *Scripted) Push(reply Reply) *Scripted {
	s.mu.Lock()
	s.replies = append(s.replies, reply)
	s.mu.Unlock()

	return s
}

// Generate implements llm.Generator.
func (s *Scripted) Generate(_ context.Context, systemPrompt, userMessage string, history []models.ChatTurn) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, Call{SystemPrompt: systemPrompt, UserMessage: userMessage, History: history})

	if len(s.replies) == 0 {
		return "", fmt.Errorf("unexpected call #%d: script exhausted", len(s.calls))
	}

	reply := s.replies[0]
	s.replies = s.replies[1:]

	return reply.Text, reply.Err
}

// Calls returns the recorded calls.
func (s *Scripted) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Call(nil), s.calls...)
}
