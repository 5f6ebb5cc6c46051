package domain

import (
	"time"

	"github.com/google/uuid"
)

type ReactionType string

const ReactionLike ReactionType = "like"

func (t ReactionType) Valid() bool {
	return t == ReactionLike
}

type Reaction struct {
	PostID    uuid.UUID    `json:"post_id"`
	UserID    uuid.UUID    `json:"user_id"`
	Type      ReactionType `json:"type"`
	CreatedAt time.Time    `json:"created_at"`
}

type ReactionResult struct {
	Reacted  bool  `json:"reacted"`
	NewCount int64 `json:"new_count"`
}
