package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/kelly-poet/backend/internal/model/chat"
	"github.com/zhouzirui/kelly-poet/backend/internal/model/persona"
	"github.com/zhouzirui/kelly-poet/backend/internal/service/render"
	"github.com/zhouzirui/kelly-poet/backend/pkg/log"
)

// DefaultIdleTTL is how long an unused session is kept before Sweep drops it.
const DefaultIdleTTL = 24 * time.Hour

var (
	// ErrPersonaRequired is returned when a session is requested without a persona id.
	ErrPersonaRequired = errors.New("persona id is required")
	// ErrPersonaNotFound is returned for a persona id the store does not know.
	ErrPersonaNotFound = errors.New("persona not found")
	// ErrSessionNotFound is returned for an unknown or expired session id.
	ErrSessionNotFound = errors.New("session not found")
)

// Option customizes a Service.
type Option func(*Service)

// WithWrapWidth sets the column limit answers are wrapped to.
func WithWrapWidth(width int) Option {
	return func(s *Service) {
		s.wrapWidth = width
	}
}

// WithIdleTTL sets how long a session may go unused before it expires.
func WithIdleTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.idleTTL = ttl
	}
}

// Service keeps the sessions of this process in memory. Nothing outlives the process.
type Service struct {
	personas     persona.Store
	newGenerator GeneratorFactory
	wrapWidth    int
	idleTTL      time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewService creates an empty session registry.
func NewService(personas persona.Store, newGenerator GeneratorFactory, opts ...Option) *Service {
	s := &Service{
		personas:     personas,
		newGenerator: newGenerator,
		wrapWidth:    render.Width,
		idleTTL:      DefaultIdleTTL,
		sessions:     make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession provisions an anonymous session bound to a persona.
func (s *Service) CreateSession(_ context.Context, personaID string) (chat.Session, error) {
	if personaID == "" {
		return chat.Session{}, ErrPersonaRequired
	}

	p, ok := s.personas.FindByID(personaID)
	if !ok {
		return chat.Session{}, ErrPersonaNotFound
	}

	info := chat.Session{
		ID:        uuid.NewString(),
		PersonaID: p.ID,
		CreatedAt: time.Now().UTC(),
	}

	session := NewSession(info, p, s.newGenerator, s.wrapWidth)
	session.touch(info.CreatedAt)

	s.mu.Lock()
	s.sessions[info.ID] = session
	s.mu.Unlock()

	return info, nil
}

// Session returns the live session for id and marks it as used.
func (s *Service) Session(sessionID string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	session.touch(time.Now())
	return session, nil
}

// Persona looks up a persona without starting a session.
func (s *Service) Persona(personaID string) (persona.Persona, error) {
	p, ok := s.personas.FindByID(personaID)
	if !ok {
		return persona.Persona{}, ErrPersonaNotFound
	}
	return p, nil
}

// IdleTTL reports how long an unused session is kept.
func (s *Service) IdleTTL() time.Duration {
	return s.idleTTL
}

// Len returns the number of live sessions.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep drops the sessions idle since before now minus the idle TTL and returns
// how many were removed. A non-positive TTL keeps every session.
func (s *Service) Sweep(now time.Time) int {
	if s.idleTTL <= 0 {
		return 0
	}
	cutoff := now.Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, session := range s.sessions {
		if session.lastUsed().Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) {
	logger := log.FromCtx(ctx).With().Str("component", "session_sweeper").Logger()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if removed := s.Sweep(now); removed > 0 {
				logger.Info().Int("removed", removed).Int("live", s.Len()).Msg("expired idle sessions")
			}
		}
	}
}

// GetSession retrieves a session descriptor by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return chat.Session{}, err
	}
	return session.Info(), nil
}

// Ask forwards question to the session identified by sessionID.
func (s *Service) Ask(ctx context.Context, sessionID, question string) (Outcome, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return Outcome{}, err
	}
	return session.Ask(ctx, question)
}

// LoadTranscript returns the session and its turns, most recent first.
func (s *Service) LoadTranscript(_ context.Context, sessionID string) (chat.Transcript, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return chat.Transcript{}, err
	}

	turns := session.Turns()
	if turns == nil {
		turns = []chat.Turn{}
	}
	return chat.Transcript{Session: session.Info(), Turns: turns}, nil
}
