package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"gitlab.com/postgres-ai/askdb/pkg/models"
)

type fakeModel struct {
	messages []llms.MessageContent
	response *llms.ContentResponse
	err      error
}

func (m *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	m.messages = messages
	return m.response, m.err
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func TestLangChainGenerate(t *testing.T) {
	model := &fakeModel{response: &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "GREETING"}}}}
	generator := NewLangChainWithModel(model, 0.1, Bounds{MaxMessageChars: 2000, MaxHistoryTurns: 20, MaxPayloadBytes: 1000000})

	out, err := generator.Generate(context.Background(), "system", "hello", []models.ChatTurn{
		{Role: models.RoleAssistant, Content: "previous answer"},
	})
	require.NoError(t, err)
	assert.Equal(t, "GREETING", out)

	require.Len(t, model.messages, 3)
	assert.Equal(t, llms.ChatMessageTypeSystem, model.messages[0].Role)
	assert.Equal(t, llms.ChatMessageTypeAI, model.messages[1].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, model.messages[2].Role)
}

func TestLangChainFailures(t *testing.T) {
	bounds := Bounds{MaxMessageChars: 2000, MaxHistoryTurns: 20, MaxPayloadBytes: 1000000}

	errRefused := errors.New("connection refused")

	_, err := NewLangChainWithModel(&fakeModel{err: errRefused}, 0.1, bounds).
		Generate(context.Background(), "system", "hello", nil)
	assert.True(t, errors.Is(err, ErrUpstreamUnavailable))
	assert.True(t, errors.Is(err, errRefused))

	_, err = NewLangChainWithModel(&fakeModel{response: &llms.ContentResponse{}}, 0.1, bounds).
		Generate(context.Background(), "system", "hello", nil)
	assert.True(t, errors.Is(err, ErrMalformedUpstreamResponse))

	bounds.MaxPayloadBytes = 10
	model := &fakeModel{}
	_, err = NewLangChainWithModel(model, 0.1, bounds).
		Generate(context.Background(), strings.Repeat("s", 50), "hello", nil)
	assert.True(t, errors.Is(err, ErrPayloadTooLarge))
	assert.Nil(t, model.messages)
}
