package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zhouzirui/kelly-poet/backend/internal/model/chat"
	"github.com/zhouzirui/kelly-poet/backend/internal/model/persona"
	chatService "github.com/zhouzirui/kelly-poet/backend/internal/service/chat"
)

// Conversation is the part of a chat session the terminal client drives.
type Conversation interface {
	Ask(ctx context.Context, question string) (chatService.Outcome, error)
	Turns() []chat.Turn
	Persona() persona.Persona
}

const inputWidth = 60

type answerMsg struct {
	outcome chatService.Outcome
	err     error
}

// Model is the interactive chat screen.
type Model struct {
	ctx   context.Context
	conv  Conversation
	input textinput.Model
	spin  spinner.Model

	waiting bool
	errText string
	turns   []chat.Turn
}

// New creates the chat screen for conv. ctx bounds every model call.
func New(ctx context.Context, conv Conversation) Model {
	input := textinput.New()
	input.Placeholder = "Ask a question about AI"
	input.CharLimit = 1000
	input.Width = inputWidth
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return Model{
		ctx:   ctx,
		conv:  conv,
		input: input,
		spin:  spin,
		turns: conv.Turns(),
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.input.Width = max(1, min(inputWidth, msg.Width-4))
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		}

	case answerMsg:
		m.waiting = false
		if msg.err != nil {
			m.errText = fmt.Sprintf("An error occurred: %v", msg.err)
			return m, nil
		}
		m.errText = ""
		m.turns = m.conv.Turns()
		m.input.Reset()
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	if m.waiting {
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.waiting {
		return m, nil
	}

	question := m.input.Value()
	if strings.TrimSpace(question) == "" {
		m.input.Reset()
		return m, nil
	}

	m.waiting = true
	m.errText = ""
	return m, tea.Batch(m.spin.Tick, m.ask(question))
}

func (m Model) ask(question string) tea.Cmd {
	ctx, conv := m.ctx, m.conv
	return func() tea.Msg {
		outcome, err := conv.Ask(ctx, question)
		return answerMsg{outcome: outcome, err: err}
	}
}

func (m Model) View() string {
	p := m.conv.Persona()

	var b strings.Builder
	b.WriteString(titleStyle.Render(p.DisplayTitle()))
	b.WriteString("\n")
	b.WriteString(captionStyle.Render(p.Caption))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if m.waiting {
		fmt.Fprintf(&b, "\n%s %s is composing a poem...\n", m.spin.View(), p.Name)
	}
	if m.errText != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.errText))
		b.WriteString("\n")
	}

	for _, turn := range m.turns {
		b.WriteString("\n")
		b.WriteString(RenderTurn(p, turn))
	}

	b.WriteString("\n")
	b.WriteString(hintStyle.Render("enter to ask • esc to quit"))
	b.WriteString("\n")
	return b.String()
}

// RenderTurn formats one turn for the terminal.
func RenderTurn(p persona.Persona, turn chat.Turn) string {
	var b strings.Builder
	b.WriteString(youStyle.Render("🧍 You:"))
	b.WriteString(" ")
	b.WriteString(turn.Question)
	b.WriteString("\n")
	b.WriteString(kellyStyle.Render("🤖 " + p.Name + ":"))
	b.WriteString("\n")
	b.WriteString(answerStyle.Render(turn.Answer))
	b.WriteString("\n")
	b.WriteString(ruleStyle.Render("---"))
	b.WriteString("\n")
	return b.String()
}

// Run starts the chat screen and blocks until the user quits.
func Run(ctx context.Context, conv Conversation) error {
	_, err := tea.NewProgram(New(ctx, conv), tea.WithContext(ctx)).Run()
	return err
}
