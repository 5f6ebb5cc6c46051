package domain

import (
	"time"

	"github.com/google/uuid"
)

type RuleKind string

const (
	RuleFree       RuleKind = "free"
	RuleInviteOnly RuleKind = "inviteOnly"
	RuleMinSpend   RuleKind = "minSpend"
)

// DefaultSpendWindowMonths is used when a minSpend rule does not set its own window.
const DefaultSpendWindowMonths = 6

func (k RuleKind) Valid() bool {
	switch k {
	case RuleFree, RuleInviteOnly, RuleMinSpend:
		return true
	}
	return false
}

type MembershipRule struct {
	Kind         RuleKind `json:"kind"`
	MinSpend     float64  `json:"min_spend,omitempty"`
	WindowMonths int      `json:"window_months,omitempty"`
}

// SpendWindow returns the look-back window for spend rules, in months.
func (r MembershipRule) SpendWindow() int {
	if r.WindowMonths <= 0 {
		return DefaultSpendWindowMonths
	}
	return r.WindowMonths
}

type Sketchbook struct {
	ID             uuid.UUID      `json:"id"`
	BrandID        uuid.UUID      `json:"brand_id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	IsPublic       bool           `json:"is_public"`
	MembershipRule MembershipRule `json:"membership_rule"`
	MembersCount   int64          `json:"members_count"`
	PostsCount     int64          `json:"posts_count"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

const (
	AccessPublicRead  = "publicRead"
	AccessMembersOnly = "membersOnly"
)

// AccessPolicy is the display label derived from IsPublic.
func (s *Sketchbook) AccessPolicy() string {
	if s.IsPublic {
		return AccessPublicRead
	}
	return AccessMembersOnly
}

// IsOwner reports whether callerID holds brand privileges on the sketchbook.
func (s *Sketchbook) IsOwner(callerID uuid.UUID) bool {
	return IsOwner(s.BrandID, callerID)
}

func IsOwner(brandID, callerID uuid.UUID) bool {
	return callerID != uuid.Nil && brandID == callerID
}

// NewDefaultSketchbook is what a brand gets the first time its sketchbook is requested.
func NewDefaultSketchbook(brandID uuid.UUID, now time.Time) *Sketchbook {
	return &Sketchbook{
		ID:             uuid.New(),
		BrandID:        brandID,
		Title:          "Studio Updates",
		Description:    "Welcome to our creative workspace",
		IsPublic:       true,
		MembershipRule: MembershipRule{Kind: RuleFree},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

type Follow struct {
	FollowerID uuid.UUID `json:"follower_id"`
	BrandID    uuid.UUID `json:"brand_id"`
	CreatedAt  time.Time `json:"created_at"`
}
