package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/line/line-bot-sdk-go/v7/linebot"

	"remindbot/internal/application/service"
	"remindbot/internal/domain/entity"
	"remindbot/internal/interfaces/command"
	"remindbot/internal/pkg/logger"
)

// LineClient is the part of the LINE client the webhook needs.
type LineClient interface {
	ParseRequest(r *http.Request) ([]*linebot.Event, error)
	SendMessages(ctx context.Context, replyToken string, messages ...linebot.SendingMessage) error
}

// LineHandler handles incoming LINE webhook events.
type LineHandler struct {
	lineClient      LineClient
	commands        *command.Handler
	reminderService service.ReminderService
	locale          string // language of unsolicited replies such as the follow greeting
	log             logger.Logger
}

// NewLineHandler creates a new LineHandler.
func NewLineHandler(
	lineClient LineClient,
	commands *command.Handler,
	reminderService service.ReminderService,
	locale string,
	log logger.Logger,
) *LineHandler {
	return &LineHandler{
		lineClient:      lineClient,
		commands:        commands,
		reminderService: reminderService,
		locale:          locale,
		log:             log,
	}
}

// HandleWebhook is the main entry point for webhook requests.
func (h *LineHandler) HandleWebhook(c echo.Context) error {
	ctx := c.Request().Context()
	events, err := h.lineClient.ParseRequest(c.Request())
	if err != nil {
		if errors.Is(err, linebot.ErrInvalidSignature) {
			h.log.Warn("Invalid LINE signature received")
			return c.String(http.StatusBadRequest, "Invalid signature")
		}
		h.log.Error("Failed to parse LINE webhook request", err)
		return c.String(http.StatusInternalServerError, "Error parsing request")
	}

	for _, event := range events {
		h.log.Debug(fmt.Sprintf("Processing event type: %s", event.Type))
		switch event.Type {
		case linebot.EventTypeMessage:
			h.handleMessageEvent(ctx, event)
		case linebot.EventTypeFollow:
			h.handleFollowEvent(ctx, event)
		case linebot.EventTypeUnfollow:
			h.handleUnfollowEvent(ctx, event)
		default:
			h.log.Debug(fmt.Sprintf("Unhandled event type: %s", event.Type))
		}
	}

	return c.String(http.StatusOK, "OK")
}

// handleFollowEvent greets a new follower with the usage text.
func (h *LineHandler) handleFollowEvent(ctx context.Context, event *linebot.Event) {
	userID := event.Source.UserID
	h.log.Info(fmt.Sprintf("User %s followed the bot.", userID))
	h.reply(ctx, event.ReplyToken, userID, command.Help(h.locale))
}

// handleUnfollowEvent drops every reminder of a user who blocked the bot.
func (h *LineHandler) handleUnfollowEvent(ctx context.Context, event *linebot.Event) {
	userID := event.Source.UserID
	h.log.Info(fmt.Sprintf("User %s unfollowed or blocked the bot.", userID))

	n, err := h.reminderService.ClearReminders(ctx, userID)
	if err != nil {
		h.log.Error(fmt.Sprintf("Failed to clear reminders of unfollowed user %s", userID), err)
		return
	}
	h.log.Info(fmt.Sprintf("Removed %d reminders of unfollowed user %s", n, userID))
}

// handleMessageEvent runs text messages through the command dispatcher.
func (h *LineHandler) handleMessageEvent(ctx context.Context, event *linebot.Event) {
	message, ok := event.Message.(*linebot.TextMessage)
	if !ok {
		h.log.Debug(fmt.Sprintf("Received non-text message from %s", event.Source.UserID))
		return
	}
	msg := commandMessage(event.Source)
	if msg.Scope == "" {
		h.log.Warn("Message event without a user id, ignoring")
		return
	}
	msg.Text = message.Text
	h.log.Debug(fmt.Sprintf("Received text message from %s: %s", msg.Scope, message.Text))

	reply, handled := h.commands.Handle(ctx, msg)
	if !handled {
		return
	}
	h.reply(ctx, event.ReplyToken, msg.Scope, reply)
}

// commandMessage maps a LINE event source to the reminder scope and
// destination. The scope is always the sender; reminders created inside a
// group or room are delivered back to that conversation.
func commandMessage(src *linebot.EventSource) command.Message {
	if src == nil {
		return command.Message{}
	}
	msg := command.Message{
		Scope:      src.UserID,
		OwnerID:    src.UserID,
		TargetID:   src.UserID,
		TargetType: entity.TargetDirect,
	}
	switch src.Type {
	case linebot.EventSourceTypeGroup:
		msg.TargetID, msg.TargetType = src.GroupID, entity.TargetGroup
	case linebot.EventSourceTypeRoom:
		msg.TargetID, msg.TargetType = src.RoomID, entity.TargetGroup
	}
	return msg
}

func (h *LineHandler) reply(ctx context.Context, replyToken, userID, text string) {
	if replyToken == "" || text == "" {
		return
	}
	if err := h.lineClient.SendMessages(ctx, replyToken, linebot.NewTextMessage(text)); err != nil {
		h.log.Error(fmt.Sprintf("Failed to send reply to user %s", userID), err)
	}
}
