package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/kelly-poet/backend/internal/model/persona"
)

func kelly(t *testing.T) persona.Persona {
	t.Helper()
	p, ok := persona.NewMemoryStore(persona.Seed()).FindByID(persona.DefaultID)
	require.True(t, ok)
	return p
}

func TestComposePromptLayout(t *testing.T) {
	p := kelly(t)

	got := ComposePrompt(p, "Is AGI near?")

	want := p.Instructions + "\n\nUser's question: Is AGI near?\n\nKelly's poetic response:"
	assert.Equal(t, want, got)
}

func TestComposePromptKeepsQuestionVerbatim(t *testing.T) {
	p := kelly(t)
	questions := []string{
		"Is AGI near?",
		"  leading and trailing spaces  ",
		"multi\nline\nquestion",
		"{placeholders} and %s verbs",
		"ünïcödé ✨",
	}

	for _, q := range questions {
		got := ComposePrompt(p, q)
		idx := strings.Index(got, QuestionMarker)
		require.GreaterOrEqual(t, idx, 0)
		assert.True(t, strings.HasPrefix(got[idx+len(QuestionMarker):], q), "question %q not found after marker", q)
	}
}

func TestComposePromptAcceptsEmptyQuestion(t *testing.T) {
	p := kelly(t)
	got := ComposePrompt(p, "")
	assert.Contains(t, got, "User's question: \n\n")
	assert.True(t, strings.HasSuffix(got, p.ResponseCue))
}
