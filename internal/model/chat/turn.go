package chat

import "time"

// Turn is one answered question. Turns are only recorded after the model produced an answer.
type Turn struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"createdAt"`
}
