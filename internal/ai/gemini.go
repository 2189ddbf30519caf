package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	defaultModel = "gemini-2.0-flash"

	extractTemperature = 0.1
	answerTemperature  = 0.7
)

// GeminiProvider implements FieldExtractor and Answerer using Google's Gemini models.
type GeminiProvider struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
	maxTokens int32
	now       func() time.Time
}

// Option tweaks a GeminiProvider.
type Option func(*GeminiProvider)

// WithClock fixes the "today" injected into extraction prompts.
func WithClock(now func() time.Time) Option {
	return func(p *GeminiProvider) { p.now = now }
}

// WithMaxAnswerTokens caps FAQ answers.
func WithMaxAnswerTokens(n int) Option {
	return func(p *GeminiProvider) { p.maxTokens = int32(n) }
}

// NewGeminiProvider initializes a new Gemini client.
// apiKey should be provided from environment variables.
func NewGeminiProvider(ctx context.Context, apiKey string, opts ...Option) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(defaultModel)
	// Force JSON response for structured parsing.
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(extractTemperature)

	p := &GeminiProvider{
		client:    client,
		model:     model,
		modelName: defaultModel,
		maxTokens: 500,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Close cleans up the Gemini client resources.
func (p *GeminiProvider) Close() {
	p.client.Close()
}

// ExtractBookingFields asks the model for the booking field schema filled from text.
func (p *GeminiProvider) ExtractBookingFields(ctx context.Context, text string) (*BookingFields, error) {
	prompt := fmt.Sprintf("%s\n\nСообщение пользователя: %s", buildExtractPrompt(p.now()), text)

	resp, err := p.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini generation error: %w", err)
	}
	raw, err := responseText(resp)
	if err != nil {
		return nil, err
	}
	return parseBookingFields(raw)
}

// Answer runs one chat turn. The system prompt and history are attached to a
// per-call model so concurrent callers never share mutable model settings.
func (p *GeminiProvider) Answer(ctx context.Context, system string, history []Message, question string) (string, error) {
	model := p.client.GenerativeModel(p.modelName)
	model.SetTemperature(answerTemperature)
	model.SetMaxOutputTokens(p.maxTokens)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	cs := model.StartChat()
	cs.History = toContents(history)

	resp, err := cs.SendMessage(ctx, genai.Text(question))
	if err != nil {
		return "", fmt.Errorf("gemini chat error: %w", err)
	}
	answer, err := responseText(resp)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response candidates from Gemini")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String(), nil
}

func toContents(history []Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		out = append(out, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(m.Content)}})
	}
	return out
}

func parseBookingFields(raw string) (*BookingFields, error) {
	clean := cleanJSONString(raw)
	if clean == "" || clean == "null" {
		return &BookingFields{}, nil
	}
	var fields BookingFields
	if err := json.Unmarshal([]byte(clean), &fields); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w. Raw: %s", err, clean)
	}
	return &fields, nil
}

// cleanJSONString removes markdown code blocks if present (e.g. ```json ... ```)
func cleanJSONString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}
