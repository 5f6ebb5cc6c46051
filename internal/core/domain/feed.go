package domain

import "github.com/google/uuid"

// FeedItem is a post as resolved for one viewer. Locked items carry a teaser
// instead of the full post.
type FeedItem struct {
	Post               *Post      `json:"post"`
	Locked             bool       `json:"locked"`
	SketchbookTitle    string     `json:"sketchbook_title,omitempty"`
	BrandID            uuid.UUID  `json:"brand_id"`
	ViewerReacted      bool       `json:"viewer_reacted"`
	ViewerVoteOptionID *uuid.UUID `json:"viewer_vote_option_id,omitempty"`
}

type SketchbookView struct {
	Sketchbook       *Sketchbook `json:"sketchbook"`
	AccessPolicy     string      `json:"access_policy"`
	Membership       *Membership `json:"membership,omitempty"`
	IsOwner          bool        `json:"is_owner"`
	FeedVisible      bool        `json:"feed_visible"`
	JoinCTA          string      `json:"join_cta,omitempty"`
	LockedPostsCount int         `json:"locked_posts_count"`
	Posts            []FeedItem  `json:"posts"`
}
