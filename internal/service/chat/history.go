package chat

import (
	"iter"

	"github.com/zhouzirui/kelly-poet/backend/internal/model/chat"
)

// History is the append-only list of answered turns of one session.
// It is not safe for concurrent use; Session serializes access.
type History struct {
	turns []chat.Turn
}

// Append records a turn at the end of the history.
func (h *History) Append(turn chat.Turn) {
	h.turns = append(h.turns, turn)
}

// Len returns the number of recorded turns.
func (h *History) Len() int {
	return len(h.turns)
}

// Display yields the turns most recent first. The sequence can be ranged over any
// number of times and never modifies the history.
func (h *History) Display() iter.Seq[chat.Turn] {
	return func(yield func(chat.Turn) bool) {
		for i := len(h.turns) - 1; i >= 0; i-- {
			if !yield(h.turns[i]) {
				return
			}
		}
	}
}

// Snapshot returns the turns most recent first as a fresh slice.
func (h *History) Snapshot() []chat.Turn {
	out := make([]chat.Turn, 0, len(h.turns))
	for turn := range h.Display() {
		out = append(out, turn)
	}
	return out
}
