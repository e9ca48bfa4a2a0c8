package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/lqnhat/chatcore/internal/models"
	"github.com/lqnhat/chatcore/internal/repo/events"
	"github.com/lqnhat/chatcore/internal/repo/mongodb"
	"github.com/lqnhat/chatcore/pkg/util"
)

type MessageUsecase interface {
	// Send appends unconditionally: no membership check and no server-side
	// body validation, matching the trust model of the rest of the system.
	Send(ctx context.Context, params SendMessageParams) (*models.Message, error)
	List(ctx context.Context, conversationID primitive.ObjectID) ([]*models.Message, error)
	// Delete is the one sender-gated operation: ErrPermissionDenied unless
	// the requester sent the message.
	Delete(ctx context.Context, messageID, requesterID primitive.ObjectID) error
	ToggleReaction(ctx context.Context, messageID, userID primitive.ObjectID, emoji string) error
}

type SendMessageParams struct {
	ConversationID primitive.ObjectID `json:"conversation_id" validate:"required"`
	SenderID       primitive.ObjectID `json:"sender_id" validate:"required"`
	Body           string             `json:"body"`
}

type messageUsecase struct {
	messageRepo      mongodb.MessageRepository
	conversationRepo mongodb.ConversationRepository
	broadcaster      Broadcaster
	publisher        events.Publisher
	log              *zap.SugaredLogger
}

func NewMessageUsecase(
	messageRepo mongodb.MessageRepository,
	conversationRepo mongodb.ConversationRepository,
	broadcaster Broadcaster,
	publisher events.Publisher,
	log *zap.SugaredLogger,
) MessageUsecase {
	return &messageUsecase{
		messageRepo:      messageRepo,
		conversationRepo: conversationRepo,
		broadcaster:      broadcaster,
		publisher:        publisher,
		log:              log.Named("messages"),
	}
}

func (uc *messageUsecase) Send(ctx context.Context, params SendMessageParams) (*models.Message, error) {
	message := &models.Message{
		ConversationID: params.ConversationID,
		SenderID:       params.SenderID,
		Body:           params.Body,
	}
	if err := uc.messageRepo.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}

	go uc.postProcess(ctx, message, func(conv *models.Conversation) {
		uc.broadcaster.MessageNew(conv, message)
		uc.broadcaster.ConversationUpdated(conv)
	}, uc.publisher.MessageSent)

	return message, nil
}

func (uc *messageUsecase) List(ctx context.Context, conversationID primitive.ObjectID) ([]*models.Message, error) {
	return uc.messageRepo.ListByConversation(ctx, conversationID)
}

func (uc *messageUsecase) Delete(ctx context.Context, messageID, requesterID primitive.ObjectID) error {
	message, err := uc.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if message.SenderID != requesterID {
		return fmt.Errorf("%w: only the sender may delete a message", models.ErrPermissionDenied)
	}

	if err := uc.messageRepo.SoftDelete(ctx, messageID); err != nil {
		return err
	}
	message.IsDeleted = true
	message.Body = ""

	go uc.postProcess(ctx, message, func(conv *models.Conversation) {
		uc.broadcaster.MessageDeleted(conv, message)
		uc.broadcaster.ConversationUpdated(conv)
	}, uc.publisher.MessageDeleted)

	return nil
}

func (uc *messageUsecase) ToggleReaction(ctx context.Context, messageID, userID primitive.ObjectID, emoji string) error {
	if _, err := uc.messageRepo.ToggleReaction(ctx, messageID, userID, emoji); err != nil {
		return err
	}

	message, err := uc.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	go uc.postProcess(ctx, message, func(conv *models.Conversation) {
		uc.broadcaster.MessageReaction(conv, message)
	}, nil)

	return nil
}

// postProcess runs the post-commit fanout detached from the request.
// Messages may target conversations that no longer resolve; the write
// stands and only the fanout is skipped.
func (uc *messageUsecase) postProcess(
	ctx context.Context,
	message *models.Message,
	broadcast func(conv *models.Conversation),
	publish func(ctx context.Context, message *models.Message),
) {
	ctx, cancel := util.NewTimeoutContext(ctx, 10*time.Second)
	defer cancel()

	conv, err := uc.conversationRepo.GetByID(ctx, message.ConversationID)
	switch {
	case errors.Is(err, models.ErrNotFound):
		uc.log.Warnw("skipping fanout for orphan message",
			"message_id", message.ID.Hex(),
			"conversation_id", message.ConversationID.Hex())
	case err != nil:
		uc.log.Errorw("load conversation for fanout", "error", err)
	default:
		broadcast(conv)
	}

	if publish != nil {
		publish(ctx, message)
	}
}
