package dto

import (
	"time"

	"cybot-be/pkg/complaint/intent"
)

type CreateSessionResponse struct {
	Id       string `json:"id"`
	Greeting string `json:"greeting"`
}

type SendChatRequest struct {
	ChatSessionId string `json:"chat_session_id" validate:"required,uuid"`
	Chat          string `json:"chat" validate:"required,max=4000"`
	ShowContext   bool   `json:"show_context"`
}

type RefinementDTO struct {
	Original string `json:"original"`
	Refined  string `json:"refined"`
}

type SendChatResponse struct {
	ChatSessionId string         `json:"chat_session_id"`
	Reply         string         `json:"reply"`
	Action        string         `json:"action"`
	Field         string         `json:"field,omitempty"`
	ComplaintId   string         `json:"complaint_id,omitempty"`
	Refinement    *RefinementDTO `json:"refinement,omitempty"`
	Context       string         `json:"context,omitempty"`
	Filing        *intent.Signal `json:"filing_intent,omitempty"`
	Retrieval     *intent.Signal `json:"retrieval_intent,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

type ChatTurnDTO struct {
	Request  string    `json:"request"`
	Response string    `json:"response"`
	Action   string    `json:"action"`
	At       time.Time `json:"at"`
}

type GetChatHistoryResponse struct {
	ChatSessionId string         `json:"chat_session_id"`
	Greeting      string         `json:"greeting"`
	Turns         []ChatTurnDTO  `json:"turns"`
	Refinement    *RefinementDTO `json:"refinement,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

type ComplaintDraftResponse struct {
	Active       bool      `json:"active"`
	Name         string    `json:"name,omitempty"`
	PhoneNumber  string    `json:"phone_number,omitempty"`
	Email        string    `json:"email,omitempty"`
	Details      string    `json:"complaint_details,omitempty"`
	CurrentField string    `json:"current_field,omitempty"`
	StartedAt    time.Time `json:"started_at,omitempty"`
}
