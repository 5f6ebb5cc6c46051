package domain

import (
	"time"

	"github.com/google/uuid"
)

type PollOption struct {
	ID       uuid.UUID `json:"id"`
	PostID   uuid.UUID `json:"post_id"`
	Label    string    `json:"label"`
	Votes    int64     `json:"votes"`
	Position int       `json:"position"`
}

type PollVote struct {
	PostID   uuid.UUID `json:"post_id"`
	UserID   uuid.UUID `json:"user_id"`
	OptionID uuid.UUID `json:"option_id"`
	CastAt   time.Time `json:"cast_at"`
}

type PollOptionResult struct {
	PollOption
	Percentage float64 `json:"percentage"`
}

type PollResult struct {
	PostID            uuid.UUID          `json:"post_id"`
	Question          string             `json:"question,omitempty"`
	Options           []PollOptionResult `json:"options"`
	TotalVotes        int64              `json:"total_votes"`
	UserVotedOptionID *uuid.UUID         `json:"user_voted_option_id,omitempty"`
	ClosesAt          *time.Time         `json:"closes_at,omitempty"`
	IsClosed          bool               `json:"is_closed"`
}

// Percentage never divides by zero: an empty poll reports 0 for every option.
func Percentage(votes, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(votes) / float64(total) * 100
}

func NewPollResult(post *Post, userOptionID *uuid.UUID, now time.Time) *PollResult {
	var total int64
	for _, opt := range post.PollOptions {
		total += opt.Votes
	}

	result := &PollResult{
		PostID:            post.ID,
		Options:           make([]PollOptionResult, 0, len(post.PollOptions)),
		TotalVotes:        total,
		UserVotedOptionID: userOptionID,
		ClosesAt:          post.PollClosesAt,
		IsClosed:          post.PollClosed(now),
	}
	if post.PollQuestion != nil {
		result.Question = *post.PollQuestion
	}
	for _, opt := range post.PollOptions {
		result.Options = append(result.Options, PollOptionResult{
			PollOption: opt,
			Percentage: Percentage(opt.Votes, total),
		})
	}
	return result
}
