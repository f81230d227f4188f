package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/anonto42/minired/backend/internal/chat"
	"github.com/anonto42/minired/backend/internal/models"
	"github.com/anonto42/minired/backend/internal/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// ChatHandler handles HTTP and websocket requests for direct messages
type ChatHandler struct {
	chatService    *chat.Service
	userRepository repositories.UserRepository
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(chatService *chat.Service, userRepo repositories.UserRepository) *ChatHandler {
	return &ChatHandler{chatService: chatService, userRepository: userRepo}
}

// RegisterChatRoutes registers chat-related routes
func (h *ChatHandler) RegisterChatRoutes(g *echo.Group) {
	g.GET("/chats/:uid/messages", h.GetHistory)
	g.POST("/chats/:uid/messages", h.SendMessage)
	g.GET("/chats/:uid/stream", h.StreamThread)
}

// GetHistory returns the thread between the caller and another user,
// oldest message first
func (h *ChatHandler) GetHistory(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if limit <= 0 || limit > 500 {
		limit = 200
	}

	messages, err := h.chatService.History(c.Request().Context(), actor.UID, c.Param("uid"), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, messages)
}

// SendMessage appends a message to the thread with another user
func (h *ChatHandler) SendMessage(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	target := c.Param("uid")
	if target == actor.UID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot message yourself")
	}
	if _, err := h.userRepository.GetUserByUID(c.Request().Context(), target); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var req models.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	msg, err := h.chatService.Send(c.Request().Context(), actor, target, req.Text)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, msg)
}

// StreamThread upgrades to a websocket and pushes every message appended
// to the thread until the client disconnects.
func (h *ChatHandler) StreamThread(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	conn, err := wsUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// The request context outlives a hijacked connection, so a client
	// disconnect has to cancel the subscription explicitly or the change
	// stream stays open waiting for the next message.
	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	messages, err := h.chatService.Subscribe(ctx, actor.UID, c.Param("uid"))
	if err != nil {
		c.Logger().Errorf("failed to open chat stream for %s: %v", actor.UID, err)
		return nil
	}

	// Drain client frames so pings and close frames are processed
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for msg := range messages {
		payload, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return nil
		}
	}
	return nil
}
