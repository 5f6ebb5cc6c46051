package ports

import (
	"context"

	"github.com/google/uuid"
)

type ReconcileRepository interface {
	ListPostIDs(ctx context.Context) ([]uuid.UUID, error)
	ListSketchbookIDs(ctx context.Context) ([]uuid.UUID, error)
	RecountPost(ctx context.Context, postID uuid.UUID) error
	RecountSketchbook(ctx context.Context, sketchbookID uuid.UUID) error
}

type ReconcileService interface {
	ReconcileAll(ctx context.Context) error
}
