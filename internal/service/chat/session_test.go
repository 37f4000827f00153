package chat_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/zhouzirui/kelly-poet/backend/internal/model/chat"
	"github.com/zhouzirui/kelly-poet/backend/internal/model/persona"
	"github.com/zhouzirui/kelly-poet/backend/internal/service/ai"
	chat "github.com/zhouzirui/kelly-poet/backend/internal/service/chat"
	"github.com/zhouzirui/kelly-poet/backend/internal/service/render"
)

type stubGenerator struct {
	reply     string
	err       error
	calls     int
	questions []string
}

func (g *stubGenerator) Generate(_ context.Context, question string) ai.Result {
	g.calls++
	g.questions = append(g.questions, question)
	if g.err != nil {
		return ai.Result{Err: fmt.Errorf("%w: %w", ai.ErrGeneration, g.err)}
	}
	return ai.Result{Text: g.reply}
}

func newKellySession(t *testing.T, factory chat.GeneratorFactory) *chat.Session {
	t.Helper()
	p, ok := persona.NewMemoryStore(persona.Seed()).FindByID(persona.DefaultID)
	require.True(t, ok)
	return chat.NewSession(model.Session{ID: "test"}, p, factory, render.Width)
}

func fixed(gen chat.Generator) chat.GeneratorFactory {
	return func(context.Context, persona.Persona) (chat.Generator, error) {
		return gen, nil
	}
}

func TestAskRecordsWrappedAnswer(t *testing.T) {
	gen := &stubGenerator{reply: "  Claims of imminence merit scrutiny.\n"}
	session := newKellySession(t, fixed(gen))

	outcome, err := session.Ask(context.Background(), "Is AGI near?")
	require.NoError(t, err)

	assert.False(t, outcome.Ignored)
	assert.Equal(t, "Is AGI near?", outcome.Turn.Question)
	assert.Equal(t, render.Reflow("Claims of imminence merit scrutiny."), outcome.Turn.Answer)
	turns := session.Turns()
	require.Len(t, turns, 1)
	assert.Equal(t, outcome.Turn, turns[0])
}

func TestAskWrapsLongAnswers(t *testing.T) {
	long := strings.Repeat("evidence before enthusiasm ", 20)
	session := newKellySession(t, fixed(&stubGenerator{reply: long}))

	outcome, err := session.Ask(context.Background(), "Will scaling solve everything?")
	require.NoError(t, err)

	for _, line := range render.Lines(outcome.Turn.Answer) {
		assert.LessOrEqual(t, len(line), render.Width)
	}
	assert.Equal(t, strings.Fields(long), strings.Fields(outcome.Turn.Answer))
}

func TestAskIgnoresBlankQuestion(t *testing.T) {
	gen := &stubGenerator{reply: "unused"}
	session := newKellySession(t, fixed(gen))

	for _, q := range []string{"", "   ", "\n\t"} {
		outcome, err := session.Ask(context.Background(), q)
		require.NoError(t, err)
		assert.True(t, outcome.Ignored)
	}

	assert.Zero(t, gen.calls)
	assert.Zero(t, session.Len())
}

func TestAskFailureLeavesHistoryUnchanged(t *testing.T) {
	gen := &stubGenerator{reply: "first answer"}
	session := newKellySession(t, fixed(gen))

	_, err := session.Ask(context.Background(), "first")
	require.NoError(t, err)

	gen.err = errors.New("transport error")
	_, err = session.Ask(context.Background(), "second")

	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrGeneration)
	assert.Equal(t, 1, session.Len())
	assert.Equal(t, "first", session.Turns()[0].Question)
}

func TestAskCreatesModelHandleOnce(t *testing.T) {
	created := 0
	gen := &stubGenerator{reply: "ok"}
	factory := func(context.Context, persona.Persona) (chat.Generator, error) {
		created++
		return gen, nil
	}
	session := newKellySession(t, factory)

	assert.Zero(t, created)
	for i := 0; i < 3; i++ {
		_, err := session.Ask(context.Background(), fmt.Sprintf("q%d", i))
		require.NoError(t, err)
	}

	assert.Equal(t, 1, created)
	assert.Equal(t, 3, gen.calls)
	turns := session.Turns()
	require.Len(t, turns, 3)
	assert.Equal(t, "q2", turns[0].Question)
	assert.Equal(t, "q0", turns[2].Question)
}

func TestAskFactoryFailureIsGenerationError(t *testing.T) {
	factory := func(context.Context, persona.Persona) (chat.Generator, error) {
		return nil, errors.New("bad key")
	}
	session := newKellySession(t, factory)

	_, err := session.Ask(context.Background(), "hello")

	assert.ErrorIs(t, err, ai.ErrGeneration)
	assert.Zero(t, session.Len())
}

func TestFactoryOfKeepsErrorsNil(t *testing.T) {
	factory := chat.FactoryOf(func(context.Context, persona.Persona) (*stubGenerator, error) {
		return nil, errors.New("nope")
	})

	gen, err := factory(context.Background(), persona.Persona{})

	assert.Error(t, err)
	assert.Nil(t, gen)
}
