package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/sketchbook/internal/core/domain"
)

// MembershipRepository mutations are atomic per (sketchbookID, userID) and
// keep the sketchbook's members count in step with transitions into and out
// of the active state.
type MembershipRepository interface {
	Get(ctx context.Context, sketchbookID, userID uuid.UUID) (*domain.Membership, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Membership, error)
	Activate(ctx context.Context, sketchbookID, userID uuid.UUID, source domain.JoinSource, now time.Time) (*domain.Membership, error)
	Request(ctx context.Context, sketchbookID, userID uuid.UUID, now time.Time) (*domain.Membership, error)
	Revoke(ctx context.Context, sketchbookID, userID uuid.UUID) (*domain.Membership, error)
}

type JoinInput struct {
	SketchbookID uuid.UUID
	CallerID     uuid.UUID
	UserID       uuid.UUID
	Source       domain.JoinSource
}

type MembershipService interface {
	CheckMembership(ctx context.Context, sketchbookID, userID uuid.UUID) (*domain.Membership, error)
	ListMemberships(ctx context.Context, userID uuid.UUID) ([]*domain.Membership, error)
	Join(ctx context.Context, sketchbookID, userID uuid.UUID, source domain.JoinSource) (*domain.Membership, error)
	RequestAccess(ctx context.Context, sketchbookID, userID uuid.UUID) (*domain.Membership, error)
	Revoke(ctx context.Context, sketchbookID, userID uuid.UUID) (*domain.Membership, error)
}
