/*
2024 © Postgres.ai
*/

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"gitlab.com/postgres-ai/database-lab/v2/pkg/log"

	"gitlab.com/postgres-ai/askdb/pkg/config"
	"gitlab.com/postgres-ai/askdb/pkg/models"
	"gitlab.com/postgres-ai/askdb/pkg/util/text"
)

const errorBodyPreviewSize = 300

// Client provides a client of an OpenAI-compatible chat-completion API.
type Client struct {
	url         *url.URL
	apiKey      string
	model       string
	temperature float64
	bounds      Bounds
	client      *http.Client
}

// completionRequest represents a chat-completion request body.
type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

// completionResponse represents the part of a chat-completion response the client relies on.
type completionResponse struct {
	Choices []struct {
		Message *struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewClient creates a new chat-completion API client.
func NewClient(cfg config.LLM) (*Client, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse a language model URL")
	}

	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("invalid language model URL given: %q", cfg.URL)
	}

	c := Client{
		url:         u,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		bounds:      BoundsFromConfig(cfg),
		client: &http.Client{
			Transport: &http.Transport{Proxy: http.ProxyFromEnvironment},
			Timeout:   cfg.RequestTimeout,
		},
	}

	return &c, nil
}

// Generate sends a bounded chat-completion request and returns the text of the first completion.
func (c *Client) Generate(ctx context.Context, systemPrompt, userMessage string, history []models.ChatTurn) (string, error) {
	reqData, err := json.Marshal(completionRequest{
		Model:       c.model,
		Messages:    c.bounds.BuildMessages(systemPrompt, userMessage, history),
		Temperature: c.temperature,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal request")
	}

	if err := c.bounds.checkPayload(reqData); err != nil {
		return "", err
	}

	log.Dbg(fmt.Sprintf("LLM request: model %s, %d bytes", c.model, len(reqData)))

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url.String(), bytes.NewReader(reqData))
	if err != nil {
		return "", errors.Wrap(err, "failed to create a request")
	}

	request.Header.Set("Content-Type", "application/json")

	if c.apiKey != "" {
		request.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	response, err := c.client.Do(request)
	if err != nil {
		// fmt.Errorf keeps both the error class and the cause for errors.Is, pkg/errors wraps only one.
		return "", fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}

	defer func() { _ = response.Body.Close() }()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(response.Body, errorBodyPreviewSize))
		preview, _ := text.CutText(string(body), errorBodyPreviewSize, text.Ellipsis)

		log.Dbg(fmt.Sprintf("LLM response: %v", preview))

		return "", errors.Wrapf(ErrUpstreamUnavailable, "unsuccessful status given: %d", response.StatusCode)
	}

	return parseCompletion(response.Body)
}

func parseCompletion(body io.Reader) (string, error) {
	var completion completionResponse

	if err := json.NewDecoder(body).Decode(&completion); err != nil {
		// fmt.Errorf keeps both the error class and the cause for errors.Is, pkg/errors wraps only one.
		return "", fmt.Errorf("%w: %w", ErrMalformedUpstreamResponse, err)
	}

	if len(completion.Choices) == 0 {
		return "", errors.Wrap(ErrMalformedUpstreamResponse, "no choices given")
	}

	message := completion.Choices[0].Message
	if message == nil || message.Content == nil {
		return "", errors.Wrap(ErrMalformedUpstreamResponse, "no message content given")
	}

	return *message.Content, nil
}
