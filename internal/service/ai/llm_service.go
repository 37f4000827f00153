package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/kelly-poet/backend/internal/config"
	"github.com/zhouzirui/kelly-poet/backend/internal/model/persona"
	"github.com/zhouzirui/kelly-poet/backend/pkg/log"
)

// ErrGeneration wraps every failure of a model call. Callers only learn that
// generation failed and why, never which kind of failure it was.
var ErrGeneration = errors.New("generation failed")

// Result is the outcome of one model call: either Text or Err is set.
type Result struct {
	Text string
	Err  error
}

// OK reports whether the call produced text.
func (r Result) OK() bool {
	return r.Err == nil
}

func failed(err error) Result {
	return Result{Err: fmt.Errorf("%w: %w", ErrGeneration, err)}
}

// Service answers questions in a persona's voice with a single model call each.
type Service struct {
	persona persona.Persona
	timeout time.Duration
	chain   compose.Runnable[string, *schema.Message]
}

// NewService compiles the prompt-then-model chain for one persona. A zero timeout
// leaves the deadline to the caller's context.
func NewService(ctx context.Context, chatModel model.BaseChatModel, p persona.Persona, timeout time.Duration) (*Service, error) {
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}

	chain := compose.NewChain[string, *schema.Message]()
	chain.AppendLambda(compose.InvokableLambda(func(_ context.Context, question string) ([]*schema.Message, error) {
		return []*schema.Message{schema.UserMessage(ComposePrompt(p, question))}, nil
	}))
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{
		persona: p,
		timeout: timeout,
		chain:   runnable,
	}, nil
}

// NewServiceFromConfig builds the configured provider's chat model and wraps it in a Service.
func NewServiceFromConfig(ctx context.Context, cfg config.AIConfig, p persona.Persona) (*Service, error) {
	chatModel, err := NewChatModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewService(ctx, chatModel, p, cfg.RequestTimeout)
}

// Persona returns the persona this service speaks for.
func (s *Service) Persona() persona.Persona {
	return s.persona
}

// Generate sends the composed prompt for question and blocks until the model answers.
func (s *Service) Generate(ctx context.Context, question string) Result {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	response, err := s.chain.Invoke(ctx, question)
	if err != nil {
		return failed(err)
	}
	if response == nil || strings.TrimSpace(response.Content) == "" {
		return failed(errors.New("model returned no text"))
	}

	log.FromCtx(ctx).Debug().
		Str("persona", s.persona.ID).
		Int("length", len(response.Content)).
		Dur("elapsed", time.Since(start)).
		Msg("generated response")

	return Result{Text: response.Content}
}
