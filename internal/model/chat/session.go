package chat

import "time"

// Session identifies one visitor's conversation with a persona. Sessions live only
// as long as the process.
type Session struct {
	ID        string    `json:"id"`
	PersonaID string    `json:"personaId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Transcript is a session together with its turns, most recent first.
type Transcript struct {
	Session Session `json:"session"`
	Turns   []Turn  `json:"turns"`
}

// Latest returns the most recent turn.
func (t Transcript) Latest() (Turn, bool) {
	if len(t.Turns) == 0 {
		return Turn{}, false
	}
	return t.Turns[0], true
}
