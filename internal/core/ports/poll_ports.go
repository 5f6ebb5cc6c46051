package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/sketchbook/internal/core/domain"
)

type PollRepository interface {
	// CastVote records the vote for (PostID, UserID) and moves the option
	// counters atomically: a new vote increments, a changed vote decrements
	// the old option and increments the new one, a repeated vote is a no-op.
	CastVote(ctx context.Context, vote domain.PollVote) error
	GetUserVote(ctx context.Context, postID, userID uuid.UUID) (*domain.PollVote, error)
	UserVotes(ctx context.Context, userID uuid.UUID, postIDs []uuid.UUID) (map[uuid.UUID]uuid.UUID, error)
}

type VoteInput struct {
	PostID   uuid.UUID
	OptionID uuid.UUID
	UserID   uuid.UUID
}

type PollService interface {
	CastVote(ctx context.Context, input VoteInput) (*domain.PollResult, error)
	GetResults(ctx context.Context, postID, viewerID uuid.UUID) (*domain.PollResult, error)
}
