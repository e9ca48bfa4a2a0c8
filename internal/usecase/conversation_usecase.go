package usecase

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lqnhat/chatcore/internal/models"
	"github.com/lqnhat/chatcore/internal/repo/mongodb"
)

type ConversationUsecase interface {
	// GetOrCreateDirect is symmetric in its arguments and always converges
	// on a single conversation per pair.
	GetOrCreateDirect(ctx context.Context, userA, userB primitive.ObjectID) (*models.Conversation, error)
	// CreateGroup requires at least 2 members (creator included by the
	// caller) and never dedups: equal name and member set still create a
	// fresh group.
	CreateGroup(ctx context.Context, name string, memberIDs []primitive.ObjectID) (*models.Conversation, error)
	MarkRead(ctx context.Context, conversationID, userID primitive.ObjectID) error
	ListForUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Conversation, error)
	ListSidebar(ctx context.Context, userID primitive.ObjectID) ([]*models.SidebarConversation, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Conversation, error)
}

type conversationUsecase struct {
	conversationRepo mongodb.ConversationRepository
	messageRepo      mongodb.MessageRepository
	broadcaster      Broadcaster
	now              func() time.Time
}

func NewConversationUsecase(
	conversationRepo mongodb.ConversationRepository,
	messageRepo mongodb.MessageRepository,
	broadcaster Broadcaster,
) ConversationUsecase {
	return &conversationUsecase{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		broadcaster:      broadcaster,
		now:              time.Now,
	}
}

func (uc *conversationUsecase) GetOrCreateDirect(ctx context.Context, userA, userB primitive.ObjectID) (*models.Conversation, error) {
	if userA == userB {
		return nil, fmt.Errorf("%w: direct conversation needs two distinct members", models.ErrInvalidArgument)
	}
	return uc.conversationRepo.GetOrCreateDirect(ctx, userA, userB)
}

func (uc *conversationUsecase) CreateGroup(ctx context.Context, name string, memberIDs []primitive.ObjectID) (*models.Conversation, error) {
	if len(memberIDs) < 2 {
		return nil, fmt.Errorf("%w: group must have at least 2 members", models.ErrInvalidArgument)
	}

	conv := &models.Conversation{
		Name:    name,
		Members: memberIDs,
	}
	if err := uc.conversationRepo.CreateGroup(ctx, conv); err != nil {
		return nil, err
	}
	uc.broadcaster.ConversationUpdated(conv)
	return conv, nil
}

func (uc *conversationUsecase) MarkRead(ctx context.Context, conversationID, userID primitive.ObjectID) error {
	at := uc.now()
	if err := uc.conversationRepo.SetLastRead(ctx, conversationID, userID, at); err != nil {
		return err
	}

	conv, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	uc.broadcaster.ConversationUpdated(conv)
	return nil
}

func (uc *conversationUsecase) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Conversation, error) {
	return uc.conversationRepo.ListByMember(ctx, userID)
}

// ListSidebar recomputes the projection on every call. No cache: message
// volume per conversation is the bound, which is small here.
func (uc *conversationUsecase) ListSidebar(ctx context.Context, userID primitive.ObjectID) ([]*models.SidebarConversation, error) {
	conversations, err := uc.conversationRepo.ListByMember(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]*models.SidebarConversation, 0, len(conversations))
	for _, conv := range conversations {
		lastMessage, err := uc.messageRepo.GetLatest(ctx, conv.ID)
		if err != nil {
			return nil, fmt.Errorf("latest message for %s: %w", conv.ID.Hex(), err)
		}
		unread, err := uc.messageRepo.CountUnread(ctx, conv.ID, userID, conv.LastReadAt(userID))
		if err != nil {
			return nil, fmt.Errorf("unread count for %s: %w", conv.ID.Hex(), err)
		}

		result = append(result, &models.SidebarConversation{
			Conversation: *conv,
			LastMessage:  lastMessage,
			UnreadCount:  unread,
		})
	}
	return result, nil
}

func (uc *conversationUsecase) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Conversation, error) {
	return uc.conversationRepo.GetByID(ctx, id)
}
