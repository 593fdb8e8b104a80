/*
2024 © Postgres.ai
*/

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"gitlab.com/postgres-ai/askdb/pkg/config"
	"gitlab.com/postgres-ai/askdb/pkg/models"
)

// LangChain provides a generator backed by a langchaingo model.
type LangChain struct {
	model       llms.Model
	temperature float64
	bounds      Bounds
}

// NewLangChain creates a generator using the langchaingo OpenAI provider.
func NewLangChain(cfg config.LLM) (*LangChain, error) {
	opts := []openai.Option{
		openai.WithModel(cfg.Model),
		openai.WithToken(cfg.APIKey),
	}

	if baseURL := strings.TrimSuffix(cfg.URL, "/chat/completions"); baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create a langchain model")
	}

	return NewLangChainWithModel(model, cfg.Temperature, BoundsFromConfig(cfg)), nil
}

// NewLangChainWithModel creates a generator around an existing langchaingo model.
func NewLangChainWithModel(model llms.Model, temperature float64, bounds Bounds) *LangChain {
	return &LangChain{
		model:       model,
		temperature: temperature,
		bounds:      bounds,
	}
}

// Generate sends a bounded conversation to the model and returns the text of the first choice.
func (l *LangChain) Generate(ctx context.Context, systemPrompt, userMessage string, history []models.ChatTurn) (string, error) {
	messages := l.bounds.BuildMessages(systemPrompt, userMessage, history)

	payload, err := json.Marshal(messages)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal messages")
	}

	if err := l.bounds.checkPayload(payload); err != nil {
		return "", err
	}

	content := make([]llms.MessageContent, 0, len(messages))
	for _, message := range messages {
		content = append(content, llms.TextParts(messageType(message.Role), message.Content))
	}

	response, err := l.model.GenerateContent(ctx, content, llms.WithTemperature(l.temperature))
	if err != nil {
		// fmt.Errorf keeps both the error class and the cause for errors.Is, pkg/errors wraps only one.
		return "", fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}

	if response == nil || len(response.Choices) == 0 || response.Choices[0] == nil {
		return "", errors.Wrap(ErrMalformedUpstreamResponse, "no choices given")
	}

	return response.Choices[0].Content, nil
}

func messageType(role string) llms.ChatMessageType {
	switch role {
	case models.RoleSystem:
		return llms.ChatMessageTypeSystem

	case models.RoleAssistant:
		return llms.ChatMessageTypeAI

	default:
		return llms.ChatMessageTypeHuman
	}
}
