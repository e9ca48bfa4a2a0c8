package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lqnhat/chatcore/internal/models"
	"github.com/lqnhat/chatcore/internal/repo/mongodb"
)

type TypingUsecase interface {
	// Signal refreshes the caller's typing marker for the typing window.
	Signal(ctx context.Context, conversationID, userID primitive.ObjectID) error
	ListActive(ctx context.Context, conversationID primitive.ObjectID) ([]*models.TypingMarker, error)
}

type typingUsecase struct {
	typingRepo       mongodb.TypingRepository
	conversationRepo mongodb.ConversationRepository
	broadcaster      Broadcaster
	now              func() time.Time
}

func NewTypingUsecase(
	typingRepo mongodb.TypingRepository,
	conversationRepo mongodb.ConversationRepository,
	broadcaster Broadcaster,
) TypingUsecase {
	return &typingUsecase{
		typingRepo:       typingRepo,
		conversationRepo: conversationRepo,
		broadcaster:      broadcaster,
		now:              time.Now,
	}
}

func (uc *typingUsecase) Signal(ctx context.Context, conversationID, userID primitive.ObjectID) error {
	expiresAt := uc.now().Add(models.TypingWindow)
	if err := uc.typingRepo.Upsert(ctx, conversationID, userID, expiresAt); err != nil {
		return fmt.Errorf("signal typing: %w", err)
	}

	conv, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		// The marker is already stored; a vanished conversation only
		// costs the fanout.
		if errors.Is(err, models.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("load conversation for typing fanout: %w", err)
	}
	uc.broadcaster.Typing(conv, userID)
	return nil
}

func (uc *typingUsecase) ListActive(ctx context.Context, conversationID primitive.ObjectID) ([]*models.TypingMarker, error) {
	return uc.typingRepo.ListActive(ctx, conversationID, uc.now())
}
