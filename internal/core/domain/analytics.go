package domain

import "github.com/google/uuid"

type PostEngagement struct {
	PostID         uuid.UUID `json:"post_id"`
	Title          string    `json:"title"`
	Type           PostType  `json:"type"`
	ViewsCount     int64     `json:"views_count"`
	ReactionsCount int64     `json:"reactions_count"`
	CommentsCount  int64     `json:"comments_count"`
	PollVotes      int64     `json:"poll_votes"`
	EngagementRate float64   `json:"engagement_rate"`
}

type Analytics struct {
	SketchbookID   uuid.UUID        `json:"sketchbook_id"`
	BrandID        uuid.UUID        `json:"brand_id"`
	MembersCount   int64            `json:"members_count"`
	PostsCount     int64            `json:"posts_count"`
	TotalViews     int64            `json:"total_views"`
	TotalReactions int64            `json:"total_reactions"`
	TotalComments  int64            `json:"total_comments"`
	TotalPollVotes int64            `json:"total_poll_votes"`
	EngagementRate float64          `json:"engagement_rate"`
	Posts          []PostEngagement `json:"posts"`
}

// EngagementRate is interactions per view, in percent.
func EngagementRate(reactions, comments, votes, views int64) float64 {
	if views <= 0 {
		return 0
	}
	return float64(reactions+comments+votes) / float64(views) * 100
}
