package rag

import (
	"context"
	"strings"

	"cybot-be/pkg/llm"
)

const refinerMaxTokens = 256

// Refiner rewrites a follow-up question into a standalone retrieval query.
type Refiner struct {
	llm llm.LLMProvider
}

func NewRefiner(provider llm.LLMProvider) *Refiner {
	return &Refiner{llm: provider}
}

func (r *Refiner) Refine(ctx context.Context, conversation, query string) (string, error) {
	out, err := r.llm.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: refinerSystemPrompt},
		{Role: llm.RoleUser, Content: refinerPrompt(conversation, query)},
	}, llm.WithMaxTokens(refinerMaxTokens))
	if err != nil {
		return "", err
	}

	refined := strings.TrimSpace(out)
	if refined == "" {
		return query, nil
	}
	return refined, nil
}
