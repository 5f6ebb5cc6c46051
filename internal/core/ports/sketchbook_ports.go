package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/sketchbook/internal/core/domain"
)

type SketchbookRepository interface {
	// GetOrCreate returns the brand's stored sketchbook, inserting sb when the
	// brand has none yet.
	GetOrCreate(ctx context.Context, sb *domain.Sketchbook) (*domain.Sketchbook, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Sketchbook, error)
	GetByBrand(ctx context.Context, brandID uuid.UUID) (*domain.Sketchbook, error)
	UpdateSettings(ctx context.Context, id uuid.UUID, input UpdateSettingsInput) (*domain.Sketchbook, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Sketchbook, error)
	Follow(ctx context.Context, follow domain.Follow) error
	Unfollow(ctx context.Context, userID, brandID uuid.UUID) error
}

type UpdateSettingsInput struct {
	Title        *string          `json:"title" validate:"omitempty,min=1,max=120"`
	Description  *string          `json:"description" validate:"omitempty,max=2000"`
	IsPublic     *bool            `json:"is_public"`
	RuleKind     *domain.RuleKind `json:"membership_rule" validate:"omitempty,oneof=free inviteOnly minSpend"`
	MinSpend     *float64         `json:"min_spend_amount" validate:"omitempty,gte=0"`
	WindowMonths *int             `json:"min_spend_window_months" validate:"omitempty,gte=1,lte=36"`
}

type CreatePostInput struct {
	Type         domain.PostType   `json:"type" validate:"required,oneof=update poll event drop"`
	Title        string            `json:"title" validate:"required,max=200"`
	Body         *string           `json:"body" validate:"omitempty,max=10000"`
	Media        []string          `json:"media" validate:"max=20,dive,required,url"`
	Tags         []string          `json:"tags" validate:"max=20,dive,required,max=40"`
	Visibility   domain.Visibility `json:"visibility" validate:"omitempty,oneof=public membersOnly"`
	PollQuestion *string           `json:"poll_question" validate:"omitempty,max=300"`
	PollOptions  []string          `json:"poll_options" validate:"max=10,dive,max=100"`
	PollClosesAt *time.Time        `json:"poll_closes_at"`
}

type SketchbookService interface {
	GetSketchbook(ctx context.Context, brandID uuid.UUID) (*domain.Sketchbook, error)
	GetSketchbookView(ctx context.Context, brandID, viewerID uuid.UUID, limit int) (*domain.SketchbookView, error)
	UpdateSettings(ctx context.Context, callerID, brandID uuid.UUID, input UpdateSettingsInput) (*domain.Sketchbook, error)

	CheckMembership(ctx context.Context, callerID, sketchbookID, userID uuid.UUID) (*domain.Membership, error)
	Join(ctx context.Context, input JoinInput) (*domain.Membership, error)
	RequestAccess(ctx context.Context, sketchbookID, userID uuid.UUID) (*domain.Membership, error)
	Revoke(ctx context.Context, callerID, sketchbookID, userID uuid.UUID) (*domain.Membership, error)

	Follow(ctx context.Context, userID, brandID uuid.UUID) error
	Unfollow(ctx context.Context, userID, brandID uuid.UUID) error
	GetCommunityFeed(ctx context.Context, userID uuid.UUID, limit int) ([]domain.FeedItem, error)

	CreatePost(ctx context.Context, callerID, brandID uuid.UUID, input CreatePostInput) (*domain.Post, error)
	DeletePost(ctx context.Context, callerID, postID uuid.UUID) error
	RecordView(ctx context.Context, postID, viewerID uuid.UUID) (int64, error)

	AddReaction(ctx context.Context, input ReactionInput) (*domain.ReactionResult, error)
	VoteInPoll(ctx context.Context, input VoteInput) (*domain.PollResult, error)
	GetPollResults(ctx context.Context, postID, viewerID uuid.UUID) (*domain.PollResult, error)

	CheckSpendEligibility(ctx context.Context, userID, brandID uuid.UUID) (*domain.SpendEligibility, error)
	UnlockFromSpend(ctx context.Context, userID, sketchbookID uuid.UUID) (bool, error)

	GetAnalytics(ctx context.Context, callerID, brandID uuid.UUID) (*domain.Analytics, error)
}
