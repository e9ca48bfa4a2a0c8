package usecase

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lqnhat/chatcore/internal/models"
	"github.com/lqnhat/chatcore/internal/repo/mongodb"
)

type PresenceUsecase interface {
	Heartbeat(ctx context.Context, userID primitive.ObjectID) error
	// ListOnline returns users whose last heartbeat falls inside the
	// presence window. Full scan per call; fine at this scale.
	ListOnline(ctx context.Context) ([]*models.Presence, error)
}

type presenceUsecase struct {
	presenceRepo mongodb.PresenceRepository
	broadcaster  Broadcaster
	now          func() time.Time
}

func NewPresenceUsecase(presenceRepo mongodb.PresenceRepository, broadcaster Broadcaster) PresenceUsecase {
	return &presenceUsecase{
		presenceRepo: presenceRepo,
		broadcaster:  broadcaster,
		now:          time.Now,
	}
}

func (uc *presenceUsecase) Heartbeat(ctx context.Context, userID primitive.ObjectID) error {
	at := uc.now()
	if err := uc.presenceRepo.Upsert(ctx, userID, at); err != nil {
		return fmt.Errorf("heartbeat: %w", err)
	}
	uc.broadcaster.PresenceChanged(&models.Presence{UserID: userID, LastSeenAt: at})
	return nil
}

func (uc *presenceUsecase) ListOnline(ctx context.Context) ([]*models.Presence, error) {
	cutoff := uc.now().Add(-models.PresenceWindow)
	return uc.presenceRepo.ListSince(ctx, cutoff)
}
