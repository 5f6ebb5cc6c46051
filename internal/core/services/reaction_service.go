package services

import (
	"context"
	"fmt"
	"time"

	"github.com/vncsmyrnk/sketchbook/internal/core/domain"
	"github.com/vncsmyrnk/sketchbook/internal/core/ports"
)

type reactionService struct {
	postRepo     ports.PostRepository
	reactionRepo ports.ReactionRepository
}

func NewReactionService(postRepo ports.PostRepository, reactionRepo ports.ReactionRepository) ports.ReactionService {
	return &reactionService{
		postRepo:     postRepo,
		reactionRepo: reactionRepo,
	}
}

func (s *reactionService) Toggle(ctx context.Context, input ports.ReactionInput) (*domain.ReactionResult, error) {
	if input.Type == "" {
		input.Type = domain.ReactionLike
	}
	if !input.Type.Valid() {
		return nil, fmt.Errorf("%w: unsupported reaction type %q", domain.ErrInvalidInput, input.Type)
	}

	if _, err := s.postRepo.GetByID(ctx, input.PostID); err != nil {
		return nil, err
	}

	reaction := domain.Reaction{
		PostID:    input.PostID,
		UserID:    input.UserID,
		Type:      input.Type,
		CreatedAt: time.Now().UTC(),
	}

	var result *domain.ReactionResult
	err := retryConflicts(ctx, func() error {
		r, err := s.reactionRepo.Toggle(ctx, reaction)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
