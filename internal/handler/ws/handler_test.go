package ws

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/kelly-poet/backend/internal/model/persona"
	"github.com/zhouzirui/kelly-poet/backend/internal/service/ai"
	chatservice "github.com/zhouzirui/kelly-poet/backend/internal/service/chat"
)

type stubGenerator struct {
	fail map[string]bool
}

func (g *stubGenerator) Generate(_ context.Context, question string) ai.Result {
	if g.fail[question] {
		return ai.Result{Err: fmt.Errorf("%w: %w", ai.ErrGeneration, errors.New("boom"))}
	}
	return ai.Result{Text: "verse about " + question}
}

func startServer(t *testing.T, gen *stubGenerator) (*httptest.Server, *chatservice.Service) {
	t.Helper()
	chatSvc := chatservice.NewService(persona.NewMemoryStore(persona.Seed()), func(context.Context, persona.Persona) (chatservice.Generator, error) {
		return gen, nil
	})
	r := chi.NewRouter()
	New(chatSvc).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, chatSvc
}

func wsURL(srv *httptest.Server, sessionID string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/" + sessionID
}

func TestWebSocketQuestionAnswer(t *testing.T) {
	srv, chatSvc := startServer(t, &stubGenerator{fail: map[string]bool{"bad": true}})
	session, err := chatSvc.CreateSession(context.Background(), persona.DefaultID)
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, session.ID), nil)
	require.NoError(t, err)
	defer conn.Close()

	exchange := func(question string) OutboundMessage {
		require.NoError(t, conn.WriteJSON(InboundMessage{Question: question}))
		var out OutboundMessage
		require.NoError(t, conn.ReadJSON(&out))
		return out
	}

	out := exchange("ethics")
	assert.Equal(t, TypeTurn, out.Type)
	require.NotNil(t, out.Turn)
	assert.Equal(t, "verse about ethics", out.Turn.Answer)

	out = exchange("   ")
	assert.Equal(t, TypeIgnored, out.Type)

	out = exchange("bad")
	assert.Equal(t, TypeError, out.Type)
	assert.Contains(t, out.Error, "boom")

	transcript, err := chatSvc.LoadTranscript(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Len(t, transcript.Turns, 1)
}

func TestWebSocketUnknownSession(t *testing.T) {
	srv, _ := startServer(t, &stubGenerator{})

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "missing"), nil)

	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
