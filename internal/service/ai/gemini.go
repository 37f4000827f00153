package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model name is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiConfig configures GeminiChatModel.
type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature *float32
	TopP        *float32
	MaxTokens   *int

	// BaseURL and HTTPClient override the transport, mostly for tests.
	BaseURL    string
	HTTPClient *http.Client
}

// GeminiChatModel adapts the Gemini API to eino's chat model interface.
type GeminiChatModel struct {
	client      *genai.Client
	model       string
	temperature *float32
	topP        *float32
	maxTokens   *int
}

var _ model.BaseChatModel = (*GeminiChatModel)(nil)

// NewGeminiChatModel creates a Gemini API client.
func NewGeminiChatModel(ctx context.Context, cfg *GeminiConfig) (*GeminiChatModel, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	name := cfg.Model
	if name == "" {
		name = DefaultGeminiModel
	}

	return &GeminiChatModel{
		client:      client,
		model:       name,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

// Generate implements model.BaseChatModel.
func (g *GeminiChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	options := model.GetCommonOptions(&model.Options{
		Model:       &g.model,
		Temperature: g.temperature,
		TopP:        g.topP,
		MaxTokens:   g.maxTokens,
	}, opts...)

	contents, system := toGeminiContents(input)
	if len(contents) == 0 {
		return nil, errors.New("no user content to send")
	}

	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: system,
		Temperature:       options.Temperature,
		TopP:              options.TopP,
	}
	if options.MaxTokens != nil {
		genCfg.MaxOutputTokens = int32(*options.MaxTokens)
	}

	resp, err := g.client.Models.GenerateContent(ctx, *options.Model, contents, genCfg)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, errors.New("generate content: empty response")
	}

	return schema.AssistantMessage(text, nil), nil
}

// Stream implements model.BaseChatModel with a single chunk holding the full answer.
func (g *GeminiChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := g.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

// toGeminiContents splits eino messages into Gemini turns and a system instruction.
func toGeminiContents(input []*schema.Message) ([]*genai.Content, *genai.Content) {
	var system *genai.Content
	contents := make([]*genai.Content, 0, len(input))

	for _, msg := range input {
		if msg == nil {
			continue
		}
		switch msg.Role {
		case schema.System:
			if system == nil {
				system = &genai.Content{}
			}
			system.Parts = append(system.Parts, &genai.Part{Text: msg.Content})
		case schema.Assistant:
			contents = append(contents, &genai.Content{
				Role:  string(genai.RoleModel),
				Parts: []*genai.Part{{Text: msg.Content}},
			})
		default:
			contents = append(contents, &genai.Content{
				Role:  string(genai.RoleUser),
				Parts: []*genai.Part{{Text: msg.Content}},
			})
		}
	}

	return contents, system
}
