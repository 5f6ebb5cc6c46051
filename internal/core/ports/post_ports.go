package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/sketchbook/internal/core/domain"
)

type PostRepository interface {
	// Save stores the post with its poll options and bumps the sketchbook's
	// posts count in one transaction.
	Save(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error)
	ListBySketchbooks(ctx context.Context, sketchbookIDs []uuid.UUID, limit int) ([]*domain.Post, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	IncrementViews(ctx context.Context, id uuid.UUID) (int64, error)
	Engagement(ctx context.Context, sketchbookID uuid.UUID) ([]domain.PostEngagement, error)
}
