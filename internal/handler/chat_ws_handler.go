package handler

import (
	"context"
	"encoding/json"
	"errors"

	"cybot-be/internal/dto"
	"cybot-be/internal/pkg/logger"
	"cybot-be/internal/pkg/serverutils"
	"cybot-be/internal/service"
	internalWS "cybot-be/internal/websocket"
	"cybot-be/pkg/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// ChatSocketHandler serves the chat over a websocket: every inbound frame
// is one turn, every turn gets one reply frame.
type ChatSocketHandler struct {
	chatbot service.IChatbotService
	hub     *internalWS.Hub
	logger  logger.ILogger
}

func NewChatSocketHandler(chatbot service.IChatbotService, hub *internalWS.Hub, log logger.ILogger) *ChatSocketHandler {
	return &ChatSocketHandler{chatbot: chatbot, hub: hub, logger: log}
}

func (h *ChatSocketHandler) RegisterRoutes(r fiber.Router, guard fiber.Handler) {
	r.Get("/ws/chat", guard, h.ServeWs)
}

type inboundFrame struct {
	Chat        string `json:"chat"`
	ShowContext bool   `json:"show_context"`
}

// ServeWs upgrades the request; the session is named by ?session_id=.
func (h *ChatSocketHandler) ServeWs(c *fiber.Ctx) error {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, "Missing session_id"))
	}
	if _, err := h.chatbot.GetChatHistory(c.UserContext(), sessionID); err != nil {
		return err
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("WS", "Chat socket opened", map[string]interface{}{"session_id": sessionID})
		internalWS.ServeWs(h.hub, conn, sessionID, h.HandleFrame)
		h.logger.Info("WS", "Chat socket closed", map[string]interface{}{"session_id": sessionID})
	})(c)
}

// HandleFrame runs one chat turn from a raw frame and encodes the reply.
func (h *ChatSocketHandler) HandleFrame(ctx context.Context, sessionID string, payload []byte) []byte {
	var in inboundFrame
	if err := json.Unmarshal(payload, &in); err != nil {
		return frame("error", map[string]string{"message": "Invalid message"})
	}

	req := &dto.SendChatRequest{ChatSessionId: sessionID, Chat: in.Chat, ShowContext: in.ShowContext}
	if err := serverutils.ValidateRequest(req); err != nil {
		return frame("error", map[string]string{"message": err.Error()})
	}

	res, err := h.chatbot.SendChat(ctx, req)
	if err != nil {
		msg := "Failed to process message"
		if errors.Is(err, store.ErrSessionNotFound) || errors.Is(err, service.ErrEmptyMessage) {
			msg = err.Error()
		}
		h.logger.Error("WS", "Chat turn failed", map[string]interface{}{"session_id": sessionID, "error": err.Error()})
		return frame("error", map[string]string{"message": msg})
	}
	return frame("reply", res)
}

func frame(kind string, data interface{}) []byte {
	b, _ := json.Marshal(map[string]interface{}{"type": kind, "data": data})
	return b
}
