package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"porchlight/internal/api/middleware"
	"porchlight/internal/services"
	"porchlight/internal/tasks"
	"porchlight/internal/utils/logger"
)

const notificationPreviewLength = 120

// ChatHandler serves the Firestore-backed chat and notification feature.
// Every read and write goes through the participant predicate in ChatStore,
// keyed by the verified uid, never by a caller-supplied identifier.
type ChatHandler struct {
	chats *services.ChatStore
	tasks *tasks.TaskClient
	log   *logger.Logger
}

func NewChatHandler(chats *services.ChatStore, taskClient *tasks.TaskClient) *ChatHandler {
	return &ChatHandler{
		chats: chats,
		tasks: taskClient,
		log:   logger.New("chat_handler"),
	}
}

type MessageSentRequest struct {
	ChatID string `json:"chat_id" validate:"required"`
	Text   string `json:"text" validate:"required"`
}

// History returns the message history of a chat the caller participates in.
func (h *ChatHandler) History(c echo.Context) error {
	chatID := c.Param("chatID")
	if chatID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Missing chat id"})
	}

	messages, err := h.chats.History(c.Request().Context(), chatID, middleware.GetUID(c))
	if err != nil {
		return h.chatError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"chat_id":  chatID,
		"messages": messages,
	})
}

// MessageSent stores a chat message and fans out notifications to the other
// participants in the background.
func (h *ChatHandler) MessageSent(c echo.Context) error {
	var req MessageSentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	ctx := c.Request().Context()
	uid := middleware.GetUID(c)

	msg, recipients, err := h.chats.SendMessage(ctx, req.ChatID, uid, req.Text)
	if err != nil {
		return h.chatError(c, err)
	}

	if len(recipients) > 0 {
		task := tasks.ChatNotifyTask{
			ChatID:     req.ChatID,
			MessageID:  msg.ID,
			From:       uid,
			Preview:    services.MessagePreview(msg.Text, notificationPreviewLength),
			Recipients: recipients,
		}
		if err := h.tasks.EnqueueChatNotify(ctx, task); err != nil {
			// Message is stored; notification delivery rides on the retry queue
			_ = h.log.Error("failed to enqueue chat notification", err)
		}
	}

	return c.JSON(http.StatusCreated, msg)
}

// Notifications returns the caller's unread notifications.
func (h *ChatHandler) Notifications(c echo.Context) error {
	notifications, err := h.chats.Notifications(c.Request().Context(), middleware.GetUID(c))
	if err != nil {
		return h.chatError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"notifications": notifications})
}

// MarkNotificationRead marks one of the caller's notifications as read.
func (h *ChatHandler) MarkNotificationRead(c echo.Context) error {
	notificationID := c.Param("id")
	if notificationID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Missing notification id"})
	}

	if err := h.chats.MarkNotificationRead(c.Request().Context(), middleware.GetUID(c), notificationID); err != nil {
		return h.chatError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Notification marked read"})
}

// chatError maps chat store failures to safe HTTP responses. Internal error
// objects are logged, never returned.
func (h *ChatHandler) chatError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, services.ErrChatUnavailable):
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Chat is not configured"})
	case errors.Is(err, services.ErrChatNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Chat not found"})
	case errors.Is(err, services.ErrNotParticipant):
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Not a participant of this chat"})
	case errors.Is(err, services.ErrEmptyMessage), errors.Is(err, services.ErrMessageTooLong):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		_ = h.log.Error("chat store failure", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Something went wrong"})
	}
}
