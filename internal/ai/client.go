// Package ai is the boundary to the hosted language model. One upstream call
// per turn, no retry, no streaming; any failure becomes a fixed fallback reply
// so the conversation never visibly breaks.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mypetsvoice/backend/internal/prompt"
	"mypetsvoice/backend/pkg/logger"
)

// FallbackReply is returned whenever the upstream call fails
const FallbackReply = "Oops, I spaced out for a second! Could you say that again? 🐾"

// Options configures a Client
type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	HTTPClient  *http.Client
	Logger      *logger.Logger
}

// Client calls an OpenAI-compatible chat-completions endpoint. It is a plain
// constructed dependency; nothing in this package holds global state.
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
	log         *logger.Logger
}

// NewClient creates a model gateway client
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.openai.com/v1"
	}
	if opts.Model == "" {
		opts.Model = "gpt-4o-mini"
	}
	if opts.Temperature == 0 {
		opts.Temperature = 0.8
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = 500
	}
	if opts.HTTPClient == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		opts.HTTPClient = &http.Client{Timeout: timeout}
	}
	if opts.Logger == nil {
		opts.Logger = logger.GetGlobal()
	}

	return &Client{
		apiKey:      opts.APIKey,
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		model:       opts.Model,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		httpClient:  opts.HTTPClient,
		log:         opts.Logger,
	}
}

// GenerateReply builds the persona-conditioned message sequence and asks the
// model for the pet's next line. The caller always gets a reply: generation
// failures are logged and converted to the fallback text.
func (c *Client) GenerateReply(ctx context.Context, profile prompt.PetProfile, history []prompt.Turn, userMessage string) string {
	if c.apiKey == "" {
		// No credential configured; greet instead of erroring so local
		// development works without a key
		return fmt.Sprintf("Hi! I'm %s! No OpenAI API key is configured so I can't give real AI replies, but we can still chat! 🐾", profile.Name)
	}

	messages := prompt.Build(profile, history, userMessage)

	reply, err := c.callChatCompletions(ctx, messages)
	if err != nil {
		c.log.LogError(err, "model call failed", "pet_name", profile.Name)
		return FallbackReply
	}
	return reply
}

type chatRequest struct {
	Model            string           `json:"model"`
	Messages         []prompt.Message `json:"messages"`
	Temperature      float64          `json:"temperature"`
	MaxTokens        int              `json:"max_tokens"`
	PresencePenalty  float64          `json:"presence_penalty"`
	FrequencyPenalty float64          `json:"frequency_penalty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) callChatCompletions(ctx context.Context, messages []prompt.Message) (string, error) {
	body := chatRequest{
		Model:            c.model,
		Messages:         messages,
		Temperature:      c.temperature,
		MaxTokens:        c.maxTokens,
		PresencePenalty:  0.6,
		FrequencyPenalty: 0.3,
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("model API returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode model response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in model response")
	}

	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}
