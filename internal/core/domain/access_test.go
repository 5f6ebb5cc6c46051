package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCanView(t *testing.T) {
	sb := &Sketchbook{IsPublic: false}
	public := &Post{Visibility: VisibilityPublic}
	membersOnly := &Post{Visibility: VisibilityMembersOnly}
	active := &Membership{Status: MembershipActive}
	revoked := &Membership{Status: MembershipRevoked}
	pending := &Membership{Status: MembershipPending}

	assert.True(t, CanView(sb, public, nil), "public posts ignore membership")
	assert.True(t, CanView(sb, membersOnly, active))
	assert.False(t, CanView(sb, membersOnly, nil))
	assert.False(t, CanView(sb, membersOnly, revoked))
	assert.False(t, CanView(sb, membersOnly, pending))
}

func TestFeedVisible(t *testing.T) {
	assert.True(t, FeedVisible(&Sketchbook{IsPublic: true}, nil))
	assert.False(t, FeedVisible(&Sketchbook{IsPublic: false}, nil))
	assert.True(t, FeedVisible(&Sketchbook{IsPublic: false}, &Membership{Status: MembershipActive}))
}

func TestJoinCallToActionText(t *testing.T) {
	assert.Equal(t, "Join for Free", JoinCallToActionText(MembershipRule{Kind: RuleFree}))
	assert.Equal(t, "Request Access", JoinCallToActionText(MembershipRule{Kind: RuleInviteOnly}))
	assert.Equal(t, "Unlock Sketchbook", JoinCallToActionText(MembershipRule{Kind: RuleMinSpend, MinSpend: 50}))
}

func TestLockedPostsCount(t *testing.T) {
	sb := &Sketchbook{IsPublic: true}
	posts := []*Post{
		{Visibility: VisibilityPublic},
		{Visibility: VisibilityMembersOnly},
		{Visibility: VisibilityMembersOnly},
	}

	assert.Equal(t, 2, LockedPostsCount(sb, posts, nil))
	assert.Equal(t, 0, LockedPostsCount(sb, posts, &Membership{Status: MembershipActive}))
}

func TestIsOwner(t *testing.T) {
	brand := uuid.New()
	assert.True(t, IsOwner(brand, brand))
	assert.False(t, IsOwner(brand, uuid.New()))
	assert.False(t, IsOwner(uuid.Nil, uuid.Nil))
}
