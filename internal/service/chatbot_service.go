package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"cybot-be/internal/dto"
	"cybot-be/internal/pkg/logger"
	"cybot-be/internal/pkg/serverutils"
	"cybot-be/internal/repository/memory"
	"cybot-be/pkg/complaint/dialogue"
	"cybot-be/pkg/rag"
	"cybot-be/pkg/store"

	"github.com/google/uuid"
)

var ErrEmptyMessage = errors.New("chat message is empty")

type IChatbotService interface {
	CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error)
	SendChat(ctx context.Context, request *dto.SendChatRequest) (*dto.SendChatResponse, error)
	GetChatHistory(ctx context.Context, sessionId string) (*dto.GetChatHistoryResponse, error)
	GetDraft(ctx context.Context, sessionId string) (*dto.ComplaintDraftResponse, error)
	ResetSession(ctx context.Context, sessionId string) (*dto.CreateSessionResponse, error)
	DeleteSession(ctx context.Context, sessionId string) error
}

// QueryRefiner rewrites a follow-up message using the conversation so far.
type QueryRefiner interface {
	Refine(ctx context.Context, conversation, query string) (string, error)
}

type chatbotService struct {
	sessions     *memory.SessionRepository
	orchestrator *dialogue.Orchestrator
	refiner      QueryRefiner
	logger       logger.ILogger

	// One turn at a time per session.
	turnMu sync.Mutex
	turns  map[string]*sync.Mutex
}

// NewChatbotService wires sessions to the dialogue orchestrator. A nil
// refiner disables query refinement.
func NewChatbotService(
	sessions *memory.SessionRepository,
	orchestrator *dialogue.Orchestrator,
	refiner QueryRefiner,
	log logger.ILogger,
) IChatbotService {
	s := &chatbotService{
		sessions:     sessions,
		orchestrator: orchestrator,
		refiner:      refiner,
		logger:       log,
		turns:        make(map[string]*sync.Mutex),
	}
	sessions.OnEvicted(s.evicted)
	return s
}

// lock serializes turns of a live session. Unknown sessions get no
// mutex, so the lock table never outgrows the session cache.
func (s *chatbotService) lock(sessionId string) (func(), bool) {
	if _, ok := s.sessions.Get(sessionId); !ok {
		return nil, false
	}

	s.turnMu.Lock()
	mu, ok := s.turns[sessionId]
	if !ok {
		mu = &sync.Mutex{}
		s.turns[sessionId] = mu
	}
	s.turnMu.Unlock()

	mu.Lock()
	// Evicted while waiting; the eviction hook may have run before the
	// mutex was stored.
	if _, ok := s.sessions.Get(sessionId); !ok {
		mu.Unlock()
		s.forget(sessionId)
		return nil, false
	}
	return mu.Unlock, true
}

func (s *chatbotService) evicted(sessionId string) {
	s.forget(sessionId)
	s.orchestrator.Discard(sessionId)
}

func (s *chatbotService) forget(sessionId string) {
	s.turnMu.Lock()
	delete(s.turns, sessionId)
	s.turnMu.Unlock()
}

func sessionNotFound() error {
	return serverutils.NotFound(store.ErrSessionNotFound)
}

func (s *chatbotService) CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error) {
	session := s.sessions.Create(uuid.New().String(), dialogue.Greeting)

	s.logger.Info("CHAT", "Session created", map[string]interface{}{"session_id": session.ID})
	return &dto.CreateSessionResponse{Id: session.ID, Greeting: session.Greeting}, nil
}

func (s *chatbotService) SendChat(ctx context.Context, request *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	sid := request.ChatSessionId
	chat := strings.TrimSpace(request.Chat)
	if chat == "" {
		return nil, serverutils.BadRequest(ErrEmptyMessage)
	}

	unlock, ok := s.lock(sid)
	if !ok {
		return nil, sessionNotFound()
	}
	defer unlock()

	session, ok := s.sessions.Get(sid)
	if !ok {
		return nil, sessionNotFound()
	}

	refinement := s.refine(ctx, &session, chat)
	turn := dialogue.Turn{SessionID: sid, Utterance: chat}
	if refinement != nil {
		turn.Refined = refinement.Refined
	}

	reply, err := s.orchestrator.HandleTurn(ctx, turn)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.sessions.AppendTurn(sid, store.Turn{
		Request:  chat,
		Response: reply.Text,
		Action:   string(reply.Action),
		At:       now,
	}); err != nil {
		// Deleted while the turn was running.
		return nil, sessionNotFound()
	}

	res := &dto.SendChatResponse{
		ChatSessionId: sid,
		Reply:         reply.Text,
		Action:        string(reply.Action),
		Field:         string(reply.Field),
		ComplaintId:   reply.ComplaintID,
		Filing:        reply.Filing,
		Retrieval:     reply.Retrieval,
		CreatedAt:     now,
	}
	if refinement != nil {
		res.Refinement = &dto.RefinementDTO{Original: refinement.Original, Refined: refinement.Refined}
	}
	if request.ShowContext && reply.Action == dialogue.ActionDocument {
		res.Context = reply.Context
		if res.Context == "" {
			res.Context = rag.NoMatch
		}
	}

	s.logger.Info("CHAT", "Turn handled", map[string]interface{}{
		"session_id": sid,
		"action":     reply.Action,
		"refined":    refinement != nil,
	})
	return res, nil
}

// refine only runs once the session has history and no form is open,
// since field answers are always read verbatim.
func (s *chatbotService) refine(ctx context.Context, session *store.Session, chat string) *store.Refinement {
	if s.refiner == nil || len(session.Turns) == 0 || s.orchestrator.Filing(session.ID) {
		return nil
	}

	refined, err := s.refiner.Refine(ctx, session.Conversation(), chat)
	if err != nil {
		s.logger.Warn("CHAT", "Query refinement failed, using original query", map[string]interface{}{
			"session_id": session.ID,
			"error":      err.Error(),
		})
		return nil
	}

	ref := store.Refinement{Original: chat, Refined: refined}
	if err := s.sessions.SetRefinement(session.ID, ref); err != nil {
		return nil
	}
	return &ref
}

func (s *chatbotService) GetChatHistory(ctx context.Context, sessionId string) (*dto.GetChatHistoryResponse, error) {
	session, ok := s.sessions.Get(sessionId)
	if !ok {
		return nil, sessionNotFound()
	}

	turns := make([]dto.ChatTurnDTO, 0, len(session.Turns))
	for _, t := range session.Turns {
		turns = append(turns, dto.ChatTurnDTO{Request: t.Request, Response: t.Response, Action: t.Action, At: t.At})
	}

	res := &dto.GetChatHistoryResponse{
		ChatSessionId: session.ID,
		Greeting:      session.Greeting,
		Turns:         turns,
		CreatedAt:     session.CreatedAt,
	}
	if session.Refinement != nil {
		res.Refinement = &dto.RefinementDTO{Original: session.Refinement.Original, Refined: session.Refinement.Refined}
	}
	return res, nil
}

func (s *chatbotService) GetDraft(ctx context.Context, sessionId string) (*dto.ComplaintDraftResponse, error) {
	if _, ok := s.sessions.Get(sessionId); !ok {
		return nil, sessionNotFound()
	}

	draft, ok := s.orchestrator.Draft(sessionId)
	if !ok {
		return &dto.ComplaintDraftResponse{Active: false}, nil
	}
	return &dto.ComplaintDraftResponse{
		Active:       true,
		Name:         draft.Name,
		PhoneNumber:  draft.Phone,
		Email:        draft.Email,
		Details:      draft.Details,
		CurrentField: string(draft.CurrentField),
		StartedAt:    draft.StartedAt,
	}, nil
}

func (s *chatbotService) ResetSession(ctx context.Context, sessionId string) (*dto.CreateSessionResponse, error) {
	unlock, ok := s.lock(sessionId)
	if !ok {
		return nil, sessionNotFound()
	}
	defer unlock()

	if err := s.sessions.Reset(sessionId, rag.ResetGreeting); err != nil {
		return nil, sessionNotFound()
	}
	s.orchestrator.Discard(sessionId)

	s.logger.Info("CHAT", "Session reset", map[string]interface{}{"session_id": sessionId})
	return &dto.CreateSessionResponse{Id: sessionId, Greeting: rag.ResetGreeting}, nil
}

func (s *chatbotService) DeleteSession(ctx context.Context, sessionId string) error {
	unlock, ok := s.lock(sessionId)
	if !ok {
		return sessionNotFound()
	}
	// Delete fires the eviction hook, which drops the turn mutex and draft.
	s.sessions.Delete(sessionId)
	unlock()

	s.logger.Info("CHAT", "Session deleted", map[string]interface{}{"session_id": sessionId})
	return nil
}
