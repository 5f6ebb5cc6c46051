package domain

import (
	"time"

	"github.com/google/uuid"
)

type PostType string

const (
	PostUpdate PostType = "update"
	PostPoll   PostType = "poll"
	PostEvent  PostType = "event"
	PostDrop   PostType = "drop"
)

type Visibility string

const (
	VisibilityPublic      Visibility = "public"
	VisibilityMembersOnly Visibility = "membersOnly"
)

type Post struct {
	ID             uuid.UUID    `json:"id"`
	SketchbookID   uuid.UUID    `json:"sketchbook_id"`
	AuthorID       uuid.UUID    `json:"author_id"`
	Type           PostType     `json:"type"`
	Title          string       `json:"title"`
	Body           *string      `json:"body,omitempty"`
	Media          []string     `json:"media"`
	Tags           []string     `json:"tags,omitempty"`
	Visibility     Visibility   `json:"visibility"`
	PollQuestion   *string      `json:"poll_question,omitempty"`
	PollOptions    []PollOption `json:"poll_options,omitempty"`
	PollClosesAt   *time.Time   `json:"poll_closes_at,omitempty"`
	ReactionsCount int64        `json:"reactions_count"`
	CommentsCount  int64        `json:"comments_count"`
	ViewsCount     int64        `json:"views_count"`
	CreatedAt      time.Time    `json:"created_at"`
	DeletedAt      *time.Time   `json:"-"`
}

func (p *Post) IsPoll() bool {
	return p.Type == PostPoll && len(p.PollOptions) > 0
}

// PollClosed reports whether the poll stopped accepting votes at or before now.
func (p *Post) PollClosed(now time.Time) bool {
	return p.PollClosesAt != nil && !now.Before(*p.PollClosesAt)
}

func (p *Post) HasOption(optionID uuid.UUID) bool {
	for _, opt := range p.PollOptions {
		if opt.ID == optionID {
			return true
		}
	}
	return false
}

// Teaser strips everything a viewer without access must not see.
func (p *Post) Teaser() *Post {
	return &Post{
		ID:             p.ID,
		SketchbookID:   p.SketchbookID,
		AuthorID:       p.AuthorID,
		Type:           p.Type,
		Title:          p.Title,
		Media:          []string{},
		Visibility:     p.Visibility,
		ReactionsCount: p.ReactionsCount,
		CommentsCount:  p.CommentsCount,
		ViewsCount:     p.ViewsCount,
		CreatedAt:      p.CreatedAt,
	}
}
