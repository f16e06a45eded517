package store

import (
	"errors"
	"time"
)

var ErrSessionNotFound = errors.New("chat session not found")

// Turn is one user request and the reply it produced.
type Turn struct {
	Request  string    `json:"request"`
	Response string    `json:"response"`
	Action   string    `json:"action"`
	At       time.Time `json:"at"`
}

// Exchange is a document Q&A round kept in the sliding memory window.
// Input is what was sent to the model, including retrieved context.
type Exchange struct {
	Query   string `json:"query"`
	Input   string `json:"input"`
	Output  string `json:"output"`
	Context string `json:"context"`
}

// Refinement records the last query rewrite shown to the user.
type Refinement struct {
	Original string `json:"original"`
	Refined  string `json:"refined"`
}

// Session is the in-memory state of one chat.
type Session struct {
	ID         string      `json:"id"`
	Greeting   string      `json:"greeting"`
	Turns      []Turn      `json:"turns"`
	Memory     []Exchange  `json:"memory"`
	Refinement *Refinement `json:"refinement,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// Clone returns a deep copy safe to hand out of a repository.
func (s *Session) Clone() Session {
	c := *s
	c.Turns = append([]Turn(nil), s.Turns...)
	c.Memory = append([]Exchange(nil), s.Memory...)
	if s.Refinement != nil {
		r := *s.Refinement
		c.Refinement = &r
	}
	return c
}

// Conversation renders prior turns as "Human:"/"Bot:" lines, oldest first.
func (s *Session) Conversation() string {
	var out string
	for _, t := range s.Turns {
		out += "Human: " + t.Request + "\n"
		out += "Bot: " + t.Response + "\n"
	}
	return out
}
