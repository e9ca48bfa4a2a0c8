package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lqnhat/chatcore/internal/models"
	"github.com/lqnhat/chatcore/internal/usecase"
	"github.com/lqnhat/chatcore/pkg/util"
)

type ChatController interface {
	CreateDirectConversation(c echo.Context) error
	CreateGroupConversation(c echo.Context) error
	ListConversations(c echo.Context) error
	ListSidebar(c echo.Context) error
	GetConversation(c echo.Context) error
	MarkRead(c echo.Context) error
	SignalTyping(c echo.Context) error
	ListTyping(c echo.Context) error
	SendMessage(c echo.Context) error
	ListMessages(c echo.Context) error
	DeleteMessage(c echo.Context) error
	ToggleReaction(c echo.Context) error
}

type chatController struct {
	conversationUsecase usecase.ConversationUsecase
	messageUsecase      usecase.MessageUsecase
	typingUsecase       usecase.TypingUsecase
}

func NewChatController(
	conversationUsecase usecase.ConversationUsecase,
	messageUsecase usecase.MessageUsecase,
	typingUsecase usecase.TypingUsecase,
) ChatController {
	return &chatController{
		conversationUsecase: conversationUsecase,
		messageUsecase:      messageUsecase,
		typingUsecase:       typingUsecase,
	}
}

type CreateDirectRequest struct {
	UserA string `json:"user_a" validate:"required"`
	UserB string `json:"user_b" validate:"required"`
}

func (cc *chatController) CreateDirectConversation(c echo.Context) error {
	var req CreateDirectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	userA, err := parseObjectID(req.UserA, "user_a")
	if err != nil {
		return err
	}
	userB, err := parseObjectID(req.UserB, "user_b")
	if err != nil {
		return err
	}

	conv, err := cc.conversationUsecase.GetOrCreateDirect(c.Request().Context(), userA, userB)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, conv)
}

type CreateGroupRequest struct {
	Name      string   `json:"name" validate:"required"`
	MemberIDs []string `json:"member_ids" validate:"required,min=2"`
}

func (cc *chatController) CreateGroupConversation(c echo.Context) error {
	var req CreateGroupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	members := make([]primitive.ObjectID, 0, len(req.MemberIDs))
	for _, raw := range req.MemberIDs {
		id, err := parseObjectID(raw, "member ID")
		if err != nil {
			return err
		}
		members = append(members, id)
	}

	conv, err := cc.conversationUsecase.CreateGroup(c.Request().Context(), req.Name, members)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, conv)
}

func (cc *chatController) ListConversations(c echo.Context) error {
	userID, err := parseObjectID(c.QueryParam("user_id"), "user ID")
	if err != nil {
		return err
	}

	convs, err := cc.conversationUsecase.ListForUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, convs)
}

func (cc *chatController) ListSidebar(c echo.Context) error {
	userID, err := parseObjectID(c.QueryParam("user_id"), "user ID")
	if err != nil {
		return err
	}

	entries, err := cc.conversationUsecase.ListSidebar(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}

func (cc *chatController) GetConversation(c echo.Context) error {
	convID, err := parseObjectID(c.Param("id"), "conversation ID")
	if err != nil {
		return err
	}

	conv, err := cc.conversationUsecase.GetByID(c.Request().Context(), convID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, conv)
}

type MarkReadRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

func (cc *chatController) MarkRead(c echo.Context) error {
	convID, err := parseObjectID(c.Param("id"), "conversation ID")
	if err != nil {
		return err
	}
	var req MarkReadRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	userID, err := parseObjectID(req.UserID, "user ID")
	if err != nil {
		return err
	}

	if err := cc.conversationUsecase.MarkRead(c.Request().Context(), convID, userID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "success"})
}

type TypingRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

func (cc *chatController) SignalTyping(c echo.Context) error {
	convID, err := parseObjectID(c.Param("id"), "conversation ID")
	if err != nil {
		return err
	}
	var req TypingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	userID, err := parseObjectID(req.UserID, "user ID")
	if err != nil {
		return err
	}

	if err := cc.typingUsecase.Signal(c.Request().Context(), convID, userID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "success"})
}

func (cc *chatController) ListTyping(c echo.Context) error {
	convID, err := parseObjectID(c.Param("id"), "conversation ID")
	if err != nil {
		return err
	}

	markers, err := cc.typingUsecase.ListActive(c.Request().Context(), convID)
	if err != nil {
		return err
	}
	userIDs := util.ConvertList(markers, func(m *models.TypingMarker) string {
		return m.UserID.Hex()
	})
	return c.JSON(http.StatusOK, map[string][]string{"user_ids": userIDs})
}

type SendMessageRequest struct {
	SenderID string `json:"sender_id" validate:"required"`
	Body     string `json:"body"`
}

func (cc *chatController) SendMessage(c echo.Context) error {
	convID, err := parseObjectID(c.Param("id"), "conversation ID")
	if err != nil {
		return err
	}
	var req SendMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	senderID, err := parseObjectID(req.SenderID, "sender ID")
	if err != nil {
		return err
	}

	msg, err := cc.messageUsecase.Send(c.Request().Context(), usecase.SendMessageParams{
		ConversationID: convID,
		SenderID:       senderID,
		Body:           req.Body,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, msg)
}

func (cc *chatController) ListMessages(c echo.Context) error {
	convID, err := parseObjectID(c.Param("id"), "conversation ID")
	if err != nil {
		return err
	}

	msgs, err := cc.messageUsecase.List(c.Request().Context(), convID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, msgs)
}

type DeleteMessageRequest struct {
	RequesterID string `json:"requester_id" validate:"required"`
}

func (cc *chatController) DeleteMessage(c echo.Context) error {
	msgID, err := parseObjectID(c.Param("id"), "message ID")
	if err != nil {
		return err
	}
	var req DeleteMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	requesterID, err := parseObjectID(req.RequesterID, "requester ID")
	if err != nil {
		return err
	}

	if err := cc.messageUsecase.Delete(c.Request().Context(), msgID, requesterID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type ToggleReactionRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Emoji  string `json:"emoji" validate:"required"`
}

func (cc *chatController) ToggleReaction(c echo.Context) error {
	msgID, err := parseObjectID(c.Param("id"), "message ID")
	if err != nil {
		return err
	}
	var req ToggleReactionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	userID, err := parseObjectID(req.UserID, "user ID")
	if err != nil {
		return err
	}

	if err := cc.messageUsecase.ToggleReaction(c.Request().Context(), msgID, userID, req.Emoji); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "success"})
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
