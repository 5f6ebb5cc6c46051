package domain

import (
	"time"

	"github.com/google/uuid"
)

type MembershipStatus string

const (
	MembershipPending MembershipStatus = "pending"
	MembershipActive  MembershipStatus = "active"
	MembershipRevoked MembershipStatus = "revoked"
)

type JoinSource string

const (
	JoinFree   JoinSource = "free"
	JoinInvite JoinSource = "invite"
	JoinSpend  JoinSource = "spend"
)

func (s JoinSource) Valid() bool {
	switch s {
	case JoinFree, JoinInvite, JoinSpend:
		return true
	}
	return false
}

type Membership struct {
	ID           uuid.UUID        `json:"id"`
	SketchbookID uuid.UUID        `json:"sketchbook_id"`
	UserID       uuid.UUID        `json:"user_id"`
	Status       MembershipStatus `json:"status"`
	JoinSource   JoinSource       `json:"join_source"`
	JoinedAt     time.Time        `json:"joined_at"`
}

// IsActive is nil-safe so callers can pass a lookup result straight through.
func (m *Membership) IsActive() bool {
	return m != nil && m.Status == MembershipActive
}

// ApplyJoin resolves a join against the current row for the key (nil when
// none exists). It returns the row to persist and whether it became active.
// An active row is returned untouched so repeated joins keep the original
// joinedAt.
func ApplyJoin(existing *Membership, sketchbookID, userID uuid.UUID, source JoinSource, now time.Time) (*Membership, bool) {
	if existing == nil {
		return &Membership{
			ID:           uuid.New(),
			SketchbookID: sketchbookID,
			UserID:       userID,
			Status:       MembershipActive,
			JoinSource:   source,
			JoinedAt:     now,
		}, true
	}
	if existing.Status == MembershipActive {
		return existing, false
	}
	next := *existing
	next.Status = MembershipActive
	next.JoinSource = source
	next.JoinedAt = now
	return &next, true
}

// ApplyRequest records an access request. Existing rows other than revoked
// ones are returned as they are.
func ApplyRequest(existing *Membership, sketchbookID, userID uuid.UUID, now time.Time) (*Membership, bool) {
	if existing != nil && existing.Status != MembershipRevoked {
		return existing, false
	}
	if existing != nil {
		next := *existing
		next.Status = MembershipPending
		next.JoinSource = JoinInvite
		next.JoinedAt = now
		return &next, true
	}
	return &Membership{
		ID:           uuid.New(),
		SketchbookID: sketchbookID,
		UserID:       userID,
		Status:       MembershipPending,
		JoinSource:   JoinInvite,
		JoinedAt:     now,
	}, true
}

// ApplyRevoke returns the revoked row and whether an active membership ended.
func ApplyRevoke(existing *Membership) (*Membership, bool) {
	next := *existing
	next.Status = MembershipRevoked
	return &next, existing.Status == MembershipActive
}
