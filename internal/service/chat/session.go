package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zhouzirui/kelly-poet/backend/internal/model/chat"
	"github.com/zhouzirui/kelly-poet/backend/internal/model/persona"
	"github.com/zhouzirui/kelly-poet/backend/internal/service/ai"
	"github.com/zhouzirui/kelly-poet/backend/internal/service/render"
	"github.com/zhouzirui/kelly-poet/backend/pkg/log"
)

// Generator answers a single question.
type Generator interface {
	Generate(ctx context.Context, question string) ai.Result
}

// GeneratorFactory creates the model handle of a session on first use.
type GeneratorFactory func(ctx context.Context, p persona.Persona) (Generator, error)

// FactoryOf adapts a constructor returning a concrete generator type.
func FactoryOf[G Generator](fn func(context.Context, persona.Persona) (G, error)) GeneratorFactory {
	return func(ctx context.Context, p persona.Persona) (Generator, error) {
		g, err := fn(ctx, p)
		if err != nil {
			return nil, err
		}
		return g, nil
	}
}

// Outcome describes what Ask did with a question.
type Outcome struct {
	Turn chat.Turn `json:"turn"`
	// Ignored is set for blank questions: no model call was made and nothing was recorded.
	Ignored bool `json:"ignored"`
}

// Session owns the history and the lazily created model handle of one user.
type Session struct {
	info         chat.Session
	persona      persona.Persona
	newGenerator GeneratorFactory
	wrapWidth    int

	mu        sync.Mutex
	generator Generator
	history   History

	// unix nanoseconds of the last lookup through Service
	used atomic.Int64
}

// NewSession creates a standalone session. Registered sessions are created by Service.
func NewSession(info chat.Session, p persona.Persona, newGenerator GeneratorFactory, wrapWidth int) *Session {
	return &Session{
		info:         info,
		persona:      p,
		newGenerator: newGenerator,
		wrapWidth:    wrapWidth,
	}
}

// Info returns the session descriptor.
func (s *Session) Info() chat.Session {
	return s.info
}

// Persona returns the persona the session talks to.
func (s *Session) Persona() persona.Persona {
	return s.persona
}

// Ask sends question to the model and records the wrapped answer. Blank questions are
// ignored. On failure the error wraps ai.ErrGeneration and the history is unchanged.
// Calls on the same session run one at a time.
func (s *Session) Ask(ctx context.Context, question string) (Outcome, error) {
	if strings.TrimSpace(question) == "" {
		return Outcome{Ignored: true}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	gen, err := s.generatorLocked(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", ai.ErrGeneration, err)
	}

	result := gen.Generate(ctx, question)
	if !result.OK() {
		log.FromCtx(ctx).Warn().Err(result.Err).Str("session", s.info.ID).Msg("generation failed")
		return Outcome{}, result.Err
	}

	turn := chat.Turn{
		Question:  question,
		Answer:    render.Fill(strings.TrimSpace(result.Text), s.wrapWidth),
		CreatedAt: time.Now().UTC(),
	}
	s.history.Append(turn)

	log.FromCtx(ctx).Info().
		Str("session", s.info.ID).
		Int("turns", s.history.Len()).
		Msg("turn recorded")

	return Outcome{Turn: turn}, nil
}

func (s *Session) touch(now time.Time) {
	s.used.Store(now.UnixNano())
}

func (s *Session) lastUsed() time.Time {
	return time.Unix(0, s.used.Load())
}

func (s *Session) generatorLocked(ctx context.Context) (Generator, error) {
	if s.generator != nil {
		return s.generator, nil
	}
	if s.newGenerator == nil {
		return nil, fmt.Errorf("no model configured for session %s", s.info.ID)
	}

	gen, err := s.newGenerator(ctx, s.persona)
	if err != nil {
		return nil, fmt.Errorf("initialize model: %w", err)
	}
	s.generator = gen
	log.FromCtx(ctx).Debug().Str("session", s.info.ID).Msg("model handle initialized")
	return gen, nil
}

// Turns returns the recorded turns most recent first.
func (s *Session) Turns() []chat.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Snapshot()
}

// Len returns the number of recorded turns.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Len()
}
