package chat_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zhouzirui/kelly-poet/backend/internal/model/persona"
	chat "github.com/zhouzirui/kelly-poet/backend/internal/service/chat"
)

func newTestService(gen chat.Generator) *chat.Service {
	factory := func(context.Context, persona.Persona) (chat.Generator, error) {
		return gen, nil
	}
	return chat.NewService(persona.NewMemoryStore(persona.Seed()), factory)
}

func TestServiceGetSession(t *testing.T) {
	svc := newTestService(&stubGenerator{})
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, persona.DefaultID)
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	got, err := svc.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSession err: %v", err)
	}

	if got.ID != session.ID {
		t.Fatalf("unexpected session ID: got %s want %s", got.ID, session.ID)
	}
	if got.PersonaID != persona.DefaultID {
		t.Fatalf("unexpected persona ID: got %s", got.PersonaID)
	}
}

func TestServiceGetSessionNotFound(t *testing.T) {
	svc := newTestService(&stubGenerator{})
	ctx := context.Background()

	if _, err := svc.GetSession(ctx, "missing"); !errors.Is(err, chat.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestServiceCreateSessionValidatesPersona(t *testing.T) {
	svc := newTestService(&stubGenerator{})
	ctx := context.Background()

	if _, err := svc.CreateSession(ctx, ""); !errors.Is(err, chat.ErrPersonaRequired) {
		t.Fatalf("expected ErrPersonaRequired, got %v", err)
	}
	if _, err := svc.CreateSession(ctx, "socrates"); !errors.Is(err, chat.ErrPersonaNotFound) {
		t.Fatalf("expected ErrPersonaNotFound, got %v", err)
	}
}

func TestServiceSessionsAreIsolated(t *testing.T) {
	svc := newTestService(&stubGenerator{reply: "verse"})
	ctx := context.Background()

	a, err := svc.CreateSession(ctx, persona.DefaultID)
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}
	b, err := svc.CreateSession(ctx, persona.DefaultID)
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	if _, err := svc.Ask(ctx, a.ID, "only for a"); err != nil {
		t.Fatalf("Ask err: %v", err)
	}

	aTranscript, _ := svc.LoadTranscript(ctx, a.ID)
	bTranscript, _ := svc.LoadTranscript(ctx, b.ID)
	if len(aTranscript.Turns) != 1 || len(bTranscript.Turns) != 0 {
		t.Fatalf("expected 1/0 turns, got %d/%d", len(aTranscript.Turns), len(bTranscript.Turns))
	}
}

func TestServiceAskUnknownSession(t *testing.T) {
	svc := newTestService(&stubGenerator{})
	if _, err := svc.Ask(context.Background(), "missing", "hello"); !errors.Is(err, chat.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestServiceSweepDropsIdleSessions(t *testing.T) {
	svc := chat.NewService(
		persona.NewMemoryStore(persona.Seed()),
		func(context.Context, persona.Persona) (chat.Generator, error) { return &stubGenerator{}, nil },
		chat.WithIdleTTL(time.Hour),
	)
	ctx := context.Background()

	idle, err := svc.CreateSession(ctx, persona.DefaultID)
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	if removed := svc.Sweep(time.Now().Add(30 * time.Minute)); removed != 0 {
		t.Fatalf("expected nothing swept before the ttl, got %d", removed)
	}

	if removed := svc.Sweep(time.Now().Add(2 * time.Hour)); removed != 1 {
		t.Fatalf("expected 1 session swept, got %d", removed)
	}
	if _, err := svc.Session(idle.ID); !errors.Is(err, chat.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after sweep, got %v", err)
	}
	if svc.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", svc.Len())
	}
}

func TestServiceSweepKeepsRecentlyUsedSessions(t *testing.T) {
	svc := chat.NewService(
		persona.NewMemoryStore(persona.Seed()),
		func(context.Context, persona.Persona) (chat.Generator, error) { return &stubGenerator{}, nil },
		chat.WithIdleTTL(time.Hour),
	)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, persona.DefaultID)
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}
	if _, err := svc.Session(session.ID); err != nil {
		t.Fatalf("Session err: %v", err)
	}

	if removed := svc.Sweep(time.Now().Add(59 * time.Minute)); removed != 0 {
		t.Fatalf("expected used session kept, got %d removed", removed)
	}
	if svc.Len() != 1 {
		t.Fatalf("expected 1 live session, got %d", svc.Len())
	}
}

func TestServiceSweepWithoutTTLKeepsEverything(t *testing.T) {
	svc := chat.NewService(
		persona.NewMemoryStore(persona.Seed()),
		func(context.Context, persona.Persona) (chat.Generator, error) { return &stubGenerator{}, nil },
		chat.WithIdleTTL(0),
	)
	if _, err := svc.CreateSession(context.Background(), persona.DefaultID); err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	if removed := svc.Sweep(time.Now().Add(365 * 24 * time.Hour)); removed != 0 {
		t.Fatalf("expected no sweep with ttl disabled, got %d", removed)
	}
}

func TestServiceRunSweeperStopsOnCancel(t *testing.T) {
	svc := chat.NewService(
		persona.NewMemoryStore(persona.Seed()),
		func(context.Context, persona.Persona) (chat.Generator, error) { return &stubGenerator{}, nil },
		chat.WithIdleTTL(time.Nanosecond),
	)
	ctx, cancel := context.WithCancel(context.Background())
	if _, err := svc.CreateSession(ctx, persona.DefaultID); err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	done := make(chan struct{})
	go func() {
		svc.RunSweeper(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for svc.Len() != 0 {
		select {
		case <-deadline:
			t.Fatalf("sweeper did not expire the session")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("sweeper did not stop after cancel")
	}
}
