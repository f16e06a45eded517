package rag

import (
	"context"
	"fmt"

	"cybot-be/internal/pkg/logger"
	"cybot-be/pkg/complaint/dialogue"
	"cybot-be/pkg/llm"
	"cybot-be/pkg/store"
)

// Memory holds the per-session window of past document exchanges.
type Memory interface {
	Window(sessionID string) []store.Exchange
	Remember(sessionID string, ex store.Exchange)
}

// Answerer answers free-form questions from indexed documents, carrying a
// short window of earlier exchanges into each prompt.
type Answerer struct {
	llm       llm.LLMProvider
	retriever *Retriever
	memory    Memory
	logger    logger.ILogger
	promptLog logger.ILogger
}

var _ dialogue.DocumentAnswerer = &Answerer{}

func NewAnswerer(provider llm.LLMProvider, retriever *Retriever, memory Memory, log, promptLog logger.ILogger) *Answerer {
	if promptLog == nil {
		promptLog = logger.NewNopLogger()
	}
	return &Answerer{
		llm:       provider,
		retriever: retriever,
		memory:    memory,
		logger:    log,
		promptLog: promptLog,
	}
}

func (a *Answerer) Answer(ctx context.Context, sessionID, query string) (dialogue.DocumentAnswer, error) {
	docContext := a.retriever.FindContext(ctx, query)
	input := answerInput(docContext, query)

	history := []llm.Message{{Role: llm.RoleSystem, Content: systemPrompt}}
	for _, ex := range a.memory.Window(sessionID) {
		history = append(history,
			llm.Message{Role: llm.RoleUser, Content: ex.Input},
			llm.Message{Role: llm.RoleAssistant, Content: ex.Output},
		)
	}
	history = append(history, llm.Message{Role: llm.RoleUser, Content: input})

	a.promptLog.Info("RAG", "Document prompt", map[string]interface{}{
		"session_id": sessionID,
		"messages":   len(history),
		"input":      input,
	})

	out, err := a.llm.Chat(ctx, history)
	if err != nil {
		return dialogue.DocumentAnswer{Context: docContext}, fmt.Errorf("generate answer: %w", err)
	}

	a.memory.Remember(sessionID, store.Exchange{
		Query:   query,
		Input:   input,
		Output:  out,
		Context: docContext,
	})
	a.logger.Info("RAG", "Document answer generated", map[string]interface{}{
		"session_id": sessionID,
		"found":      docContext != NoMatch,
	})
	return dialogue.DocumentAnswer{Text: out, Context: docContext}, nil
}
