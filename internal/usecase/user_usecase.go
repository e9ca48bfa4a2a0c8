package usecase

import (
	"context"
	"fmt"

	"github.com/lqnhat/chatcore/internal/models"
	"github.com/lqnhat/chatcore/internal/repo/mongodb"
)

type UserUsecase interface {
	// Sync registers the identity-provider account locally. Idempotent:
	// repeated calls for the same external ID return the original record
	// without touching its profile fields.
	Sync(ctx context.Context, params SyncUserParams) (*models.User, error)
	FindByExternalID(ctx context.Context, externalID string) (*models.User, error)
	Search(ctx context.Context, query string) ([]*models.User, error)
}

type SyncUserParams struct {
	ExternalID string `json:"external_id" validate:"required"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	AvatarURL  string `json:"avatar_url"`
}

type userUsecase struct {
	userRepo mongodb.UserRepository
}

func NewUserUsecase(userRepo mongodb.UserRepository) UserUsecase {
	return &userUsecase{
		userRepo: userRepo,
	}
}

func (uc *userUsecase) Sync(ctx context.Context, params SyncUserParams) (*models.User, error) {
	user := &models.User{
		ExternalID: params.ExternalID,
		Name:       params.Name,
		Email:      params.Email,
		AvatarURL:  params.AvatarURL,
	}
	stored, err := uc.userRepo.Sync(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("sync user: %w", err)
	}
	return stored, nil
}

func (uc *userUsecase) FindByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	return uc.userRepo.GetByExternalID(ctx, externalID)
}

func (uc *userUsecase) Search(ctx context.Context, query string) ([]*models.User, error) {
	return uc.userRepo.Search(ctx, query)
}
