package ai

import (
	"strings"

	"github.com/zhouzirui/kelly-poet/backend/internal/model/persona"
)

// QuestionMarker precedes the user's question in every composed prompt.
const QuestionMarker = "User's question: "

// ComposePrompt builds the single text payload sent to the model: the persona
// instructions, the question verbatim, then the persona's response cue.
func ComposePrompt(p persona.Persona, question string) string {
	var b strings.Builder
	b.Grow(len(p.Instructions) + len(question) + len(p.ResponseCue) + len(QuestionMarker) + 4)
	b.WriteString(p.Instructions)
	b.WriteString("\n\n")
	b.WriteString(QuestionMarker)
	b.WriteString(question)
	b.WriteString("\n\n")
	b.WriteString(p.ResponseCue)
	return b.String()
}
