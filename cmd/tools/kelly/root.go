package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/kelly-poet/backend/internal/config"
	"github.com/zhouzirui/kelly-poet/backend/internal/model/persona"
	"github.com/zhouzirui/kelly-poet/backend/internal/service/ai"
	chatService "github.com/zhouzirui/kelly-poet/backend/internal/service/chat"
	"github.com/zhouzirui/kelly-poet/backend/pkg/log"
)

var (
	debug bool
)

var rootCmd = &cobra.Command{
	Use:           "kelly",
	Short:         "Kelly, the AI Scientist Poet, in your terminal",
	Long:          `Ask Kelly about AI and get a skeptical, analytical poem back.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env is optional
		_ = godotenv.Load()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "kelly:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
}

func setupLogger(ctx context.Context) (context.Context, func()) {
	return log.NewContextWithWriter(ctx, os.Stderr, debug || config.IsDebug())
}

// newSession loads the configuration and opens a session with the default persona.
func newSession(ctx context.Context) (*chatService.Session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	svc := chatService.NewService(
		persona.NewMemoryStore(persona.Seed()),
		chatService.FactoryOf(func(ctx context.Context, p persona.Persona) (*ai.Service, error) {
			return ai.NewServiceFromConfig(ctx, cfg.AI, p)
		}),
		chatService.WithWrapWidth(cfg.Render.WrapWidth),
	)

	info, err := svc.CreateSession(ctx, persona.DefaultID)
	if err != nil {
		return nil, err
	}
	return svc.Session(info.ID)
}
