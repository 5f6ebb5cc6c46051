package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/sketchbook/internal/core/domain"
)

type ReactionRepository interface {
	// Toggle inserts the reaction if absent or deletes it if present, moving
	// the post's reactions count with an atomic increment or decrement.
	Toggle(ctx context.Context, reaction domain.Reaction) (*domain.ReactionResult, error)
	UserReactions(ctx context.Context, userID uuid.UUID, reactionType domain.ReactionType, postIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

type ReactionInput struct {
	PostID uuid.UUID
	UserID uuid.UUID
	Type   domain.ReactionType
}

type ReactionService interface {
	Toggle(ctx context.Context, input ReactionInput) (*domain.ReactionResult, error)
}
