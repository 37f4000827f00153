package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"

	"github.com/zhouzirui/kelly-poet/backend/internal/config"
)

// NewChatModel creates the chat model selected by cfg.Provider.
func NewChatModel(ctx context.Context, cfg config.AIConfig) (model.BaseChatModel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case config.ProviderGemini:
		gemini, err := NewGeminiChatModel(ctx, &GeminiConfig{
			APIKey:      cfg.GeminiKey(),
			Model:       cfg.GeminiModel,
			Temperature: cfg.Temperature,
			TopP:        cfg.TopP,
			MaxTokens:   cfg.MaxTokens,
		})
		if err != nil {
			return nil, err
		}
		return gemini, nil
	case config.ProviderArk:
		return ark.NewChatModel(ctx, &ark.ChatModelConfig{
			BaseURL:     cfg.BaseURL,
			Region:      cfg.Region,
			APIKey:      cfg.APIKey,
			AccessKey:   cfg.AccessKey,
			SecretKey:   cfg.SecretKey,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			TopP:        cfg.TopP,
		})
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
