package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/sketchbook/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/sketchbook/internal/core/domain"
	"github.com/vncsmyrnk/sketchbook/internal/core/ports"
	"github.com/vncsmyrnk/sketchbook/internal/validation"
)

type harness struct {
	store   *memory.Store
	service ports.SketchbookService
	brandID uuid.UUID
	sb      *domain.Sketchbook
}

func newHarness(t *testing.T, cache ports.SpendCache) *harness {
	t.Helper()

	store := memory.NewStore()
	sketchbooks := memory.NewSketchbookRepository(store)
	posts := memory.NewPostRepository(store)
	polls := memory.NewPollRepository(store)
	reactions := memory.NewReactionRepository(store)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	memberships := NewMembershipService(memory.NewMembershipRepository(store))
	svc := NewSketchbookService(SketchbookDeps{
		Sketchbooks:    sketchbooks,
		Posts:          posts,
		Polls:          polls,
		Reactions:      reactions,
		Memberships:    memberships,
		PollEngine:     NewPollService(posts, polls),
		ReactionLedger: NewReactionService(posts, reactions),
		Spend:          NewSpendService(memory.NewSpendLedger(store), cache, memberships, logger),
		Validator:      validation.New(),
	})

	brandID := uuid.New()
	sb, err := svc.GetSketchbook(context.Background(), brandID)
	require.NoError(t, err)

	return &harness{store: store, service: svc, brandID: brandID, sb: sb}
}

func (h *harness) configure(t *testing.T, input ports.UpdateSettingsInput) *domain.Sketchbook {
	t.Helper()
	sb, err := h.service.UpdateSettings(context.Background(), h.brandID, h.brandID, input)
	require.NoError(t, err)
	h.sb = sb
	return sb
}

func (h *harness) createPoll(t *testing.T, labels ...string) *domain.Post {
	t.Helper()
	post, err := h.service.CreatePost(context.Background(), h.brandID, h.brandID, ports.CreatePostInput{
		Type:        domain.PostPoll,
		Title:       "Next colorway",
		PollOptions: labels,
	})
	require.NoError(t, err)
	return post
}

func ptr[T any](v T) *T { return &v }

func TestGetSketchbookCreatesDefaultOnce(t *testing.T) {
	h := newHarness(t, nil)

	again, err := h.service.GetSketchbook(context.Background(), h.brandID)
	require.NoError(t, err)

	assert.Equal(t, h.sb.ID, again.ID)
	assert.Equal(t, "Studio Updates", again.Title)
	assert.True(t, again.IsPublic)
	assert.Equal(t, domain.RuleFree, again.MembershipRule.Kind)
}

func TestUpdateSettingsRequiresOwner(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	_, err := h.service.UpdateSettings(ctx, uuid.New(), h.brandID, ports.UpdateSettingsInput{Title: ptr("Mine now")})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = h.service.UpdateSettings(ctx, h.brandID, h.brandID, ports.UpdateSettingsInput{RuleKind: ptr(domain.RuleMinSpend)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "minSpend needs an amount")

	sb := h.configure(t, ports.UpdateSettingsInput{Title: ptr("Workshop"), IsPublic: ptr(false)})
	assert.Equal(t, "Workshop", sb.Title)
	assert.False(t, sb.IsPublic)
}

func TestJoinIsIdempotent(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	user := uuid.New()

	first, err := h.service.Join(ctx, ports.JoinInput{SketchbookID: h.sb.ID, CallerID: user})
	require.NoError(t, err)
	second, err := h.service.Join(ctx, ports.JoinInput{SketchbookID: h.sb.ID, CallerID: user})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.JoinedAt, second.JoinedAt)

	sb, err := h.service.GetSketchbook(ctx, h.brandID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), sb.MembersCount)
}

func TestJoinRules(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	user, stranger := uuid.New(), uuid.New()

	_, err := h.service.Join(ctx, ports.JoinInput{SketchbookID: h.sb.ID, CallerID: stranger, UserID: user})
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "free joins are self-service only")

	_, err = h.service.Join(ctx, ports.JoinInput{SketchbookID: h.sb.ID, CallerID: user, Source: domain.JoinSpend})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = h.service.Join(ctx, ports.JoinInput{SketchbookID: uuid.New(), CallerID: user})
	assert.ErrorIs(t, err, domain.ErrSketchbookNotFound)

	h.configure(t, ports.UpdateSettingsInput{RuleKind: ptr(domain.RuleInviteOnly)})

	_, err = h.service.Join(ctx, ports.JoinInput{SketchbookID: h.sb.ID, CallerID: user})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	pending, err := h.service.RequestAccess(ctx, h.sb.ID, user)
	require.NoError(t, err)
	assert.Equal(t, domain.MembershipPending, pending.Status)

	invited, err := h.service.Join(ctx, ports.JoinInput{SketchbookID: h.sb.ID, CallerID: h.brandID, UserID: user, Source: domain.JoinInvite})
	require.NoError(t, err)
	assert.Equal(t, domain.MembershipActive, invited.Status)
	assert.Equal(t, domain.JoinInvite, invited.JoinSource)
	assert.Equal(t, pending.ID, invited.ID)
}

func TestRevoke(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	user := uuid.New()

	_, err := h.service.Join(ctx, ports.JoinInput{SketchbookID: h.sb.ID, CallerID: user})
	require.NoError(t, err)

	_, err = h.service.Revoke(ctx, uuid.New(), h.sb.ID, user)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	revoked, err := h.service.Revoke(ctx, h.brandID, h.sb.ID, user)
	require.NoError(t, err)
	assert.Equal(t, domain.MembershipRevoked, revoked.Status)

	_, err = h.service.Revoke(ctx, user, h.sb.ID, uuid.Nil)
	require.NoError(t, err, "revoking twice is a no-op")

	sb, err := h.service.GetSketchbook(ctx, h.brandID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), sb.MembersCount)

	_, err = h.service.Revoke(ctx, uuid.New(), h.sb.ID, uuid.Nil)
	assert.ErrorIs(t, err, domain.ErrMembershipNotFound)
}

func TestCreatePostValidation(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	cases := []struct {
		name  string
		input ports.CreatePostInput
	}{
		{"poll with one option", ports.CreatePostInput{Type: domain.PostPoll, Title: "t", PollOptions: []string{"only"}}},
		{"poll with blank options", ports.CreatePostInput{Type: domain.PostPoll, Title: "t", PollOptions: []string{"a", "  "}}},
		{"poll closing in the past", ports.CreatePostInput{Type: domain.PostPoll, Title: "t", PollOptions: []string{"a", "b"}, PollClosesAt: ptr(time.Now().Add(-time.Minute))}},
		{"update with options", ports.CreatePostInput{Type: domain.PostUpdate, Title: "t", PollOptions: []string{"a", "b"}}},
		{"unknown type", ports.CreatePostInput{Type: "story", Title: "t"}},
		{"missing title", ports.CreatePostInput{Type: domain.PostUpdate}},
		{"bad media url", ports.CreatePostInput{Type: domain.PostUpdate, Title: "t", Media: []string{"not a url"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.service.CreatePost(ctx, h.brandID, h.brandID, tc.input)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	_, err := h.service.CreatePost(ctx, uuid.New(), h.brandID, ports.CreatePostInput{Type: domain.PostUpdate, Title: "t"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestCreatePollDefaults(t *testing.T) {
	h := newHarness(t, nil)

	post := h.createPoll(t, "Sage", " Clay ")
	require.NotNil(t, post.PollQuestion)
	assert.Equal(t, "Next colorway", *post.PollQuestion)
	assert.Equal(t, domain.VisibilityPublic, post.Visibility)
	require.Len(t, post.PollOptions, 2)
	assert.Equal(t, "Clay", post.PollOptions[1].Label)
	assert.Equal(t, 1, post.PollOptions[1].Position)
}

func TestVoteChange(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	post := h.createPoll(t, "A", "B")
	a, b := post.PollOptions[0].ID, post.PollOptions[1].ID
	user := uuid.New()

	result, err := h.service.VoteInPoll(ctx, ports.VoteInput{PostID: post.ID, OptionID: a, UserID: user})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.TotalVotes)

	result, err = h.service.VoteInPoll(ctx, ports.VoteInput{PostID: post.ID, OptionID: a, UserID: user})
	require.NoError(t, err, "voting for the same option again is a no-op")
	assert.Equal(t, int64(1), result.TotalVotes)

	result, err = h.service.VoteInPoll(ctx, ports.VoteInput{PostID: post.ID, OptionID: b, UserID: user})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.TotalVotes)
	assert.Equal(t, int64(0), result.Options[0].Votes)
	assert.Equal(t, int64(1), result.Options[1].Votes)
	assert.Equal(t, &b, result.UserVotedOptionID)

	_, err = h.service.VoteInPoll(ctx, ports.VoteInput{PostID: post.ID, OptionID: uuid.New(), UserID: user})
	assert.ErrorIs(t, err, domain.ErrInvalidOption)

	_, err = h.service.VoteInPoll(ctx, ports.VoteInput{PostID: uuid.New(), OptionID: a, UserID: user})
	assert.ErrorIs(t, err, domain.ErrPollNotFound)
}

func TestVoteTallyScenario(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	post := h.createPoll(t, "A", "B")
	a, b := post.PollOptions[0].ID, post.PollOptions[1].ID

	for i := 0; i < 10; i++ {
		_, err := h.service.VoteInPoll(ctx, ports.VoteInput{PostID: post.ID, OptionID: a, UserID: uuid.New()})
		require.NoError(t, err)
	}
	for i := 0; i < 5; i++ {
		_, err := h.service.VoteInPoll(ctx, ports.VoteInput{PostID: post.ID, OptionID: b, UserID: uuid.New()})
		require.NoError(t, err)
	}

	result, err := h.service.VoteInPoll(ctx, ports.VoteInput{PostID: post.ID, OptionID: a, UserID: uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, int64(16), result.TotalVotes)
	assert.Equal(t, int64(11), result.Options[0].Votes)
	assert.Equal(t, int64(5), result.Options[1].Votes)
	assert.Equal(t, 68.75, result.Options[0].Percentage)
}

func TestConcurrentVotesKeepCountersConsistent(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	post := h.createPoll(t, "A", "B")
	a, b := post.PollOptions[0].ID, post.PollOptions[1].ID

	const voters = 40
	var wg sync.WaitGroup
	for i := 0; i < voters; i++ {
		user := uuid.New()
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, opt := range []uuid.UUID{a, b, a} {
				_, err := h.service.VoteInPoll(ctx, ports.VoteInput{PostID: post.ID, OptionID: opt, UserID: user})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	result, err := h.service.GetPollResults(ctx, post.ID, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, int64(voters), result.TotalVotes)
	assert.Equal(t, int64(voters), result.Options[0].Votes)
	assert.Equal(t, int64(0), result.Options[1].Votes)
}

func TestMembersOnlyPollNeedsMembership(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	post, err := h.service.CreatePost(ctx, h.brandID, h.brandID, ports.CreatePostInput{
		Type:        domain.PostPoll,
		Title:       "Members pick",
		Visibility:  domain.VisibilityMembersOnly,
		PollOptions: []string{"A", "B"},
	})
	require.NoError(t, err)
	user := uuid.New()

	_, err = h.service.VoteInPoll(ctx, ports.VoteInput{PostID: post.ID, OptionID: post.PollOptions[0].ID, UserID: user})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = h.service.Join(ctx, ports.JoinInput{SketchbookID: h.sb.ID, CallerID: user})
	require.NoError(t, err)

	_, err = h.service.VoteInPoll(ctx, ports.VoteInput{PostID: post.ID, OptionID: post.PollOptions[0].ID, UserID: user})
	assert.NoError(t, err)
}

func TestReactionToggleRoundTrip(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	post := h.createPoll(t, "A", "B")
	user := uuid.New()

	on, err := h.service.AddReaction(ctx, ports.ReactionInput{PostID: post.ID, UserID: user})
	require.NoError(t, err)
	assert.True(t, on.Reacted)
	assert.Equal(t, int64(1), on.NewCount)

	off, err := h.service.AddReaction(ctx, ports.ReactionInput{PostID: post.ID, UserID: user})
	require.NoError(t, err)
	assert.False(t, off.Reacted)
	assert.Equal(t, int64(0), off.NewCount)

	_, err = h.service.AddReaction(ctx, ports.ReactionInput{PostID: post.ID, UserID: user, Type: "love"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSketchbookViewForPrivateSketchbook(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	h.configure(t, ports.UpdateSettingsInput{IsPublic: ptr(false)})
	h.createPoll(t, "A", "B")
	viewer := uuid.New()

	view, err := h.service.GetSketchbookView(ctx, h.brandID, viewer, 0)
	require.NoError(t, err)
	assert.False(t, view.FeedVisible)
	assert.Empty(t, view.Posts)
	assert.Equal(t, "Join for Free", view.JoinCTA)
	assert.Equal(t, domain.AccessMembersOnly, view.AccessPolicy)

	owner, err := h.service.GetSketchbookView(ctx, h.brandID, h.brandID, 0)
	require.NoError(t, err)
	assert.True(t, owner.IsOwner)
	assert.Len(t, owner.Posts, 1)
	assert.Empty(t, owner.JoinCTA)
}

func TestCommunityFeedTeasers(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	viewer := uuid.New()

	_, err := h.service.CreatePost(ctx, h.brandID, h.brandID, ports.CreatePostInput{Type: domain.PostUpdate, Title: "Open", Body: ptr("hello")})
	require.NoError(t, err)
	_, err = h.service.CreatePost(ctx, h.brandID, h.brandID, ports.CreatePostInput{Type: domain.PostDrop, Title: "Secret", Body: ptr("drop code"), Visibility: domain.VisibilityMembersOnly})
	require.NoError(t, err)

	items, err := h.service.GetCommunityFeed(ctx, viewer, 10)
	require.NoError(t, err)
	assert.Empty(t, items, "nothing followed yet")

	require.NoError(t, h.service.Follow(ctx, viewer, h.brandID))
	items, err = h.service.GetCommunityFeed(ctx, viewer, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)

	locked := 0
	for _, item := range items {
		if item.Locked {
			locked++
			assert.Nil(t, item.Post.Body)
			assert.Equal(t, "Secret", item.Post.Title)
		}
	}
	assert.Equal(t, 1, locked)

	require.NoError(t, h.service.Unfollow(ctx, viewer, h.brandID))
	items, err = h.service.GetCommunityFeed(ctx, viewer, 10)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDeletePostAndViews(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	post := h.createPoll(t, "A", "B")

	views, err := h.service.RecordView(ctx, post.ID, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), views)

	assert.ErrorIs(t, h.service.DeletePost(ctx, uuid.New(), post.ID), domain.ErrUnauthorized)
	require.NoError(t, h.service.DeletePost(ctx, h.brandID, post.ID))

	_, err = h.service.RecordView(ctx, post.ID, uuid.Nil)
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
	_, err = h.service.GetPollResults(ctx, post.ID, uuid.Nil)
	assert.ErrorIs(t, err, domain.ErrPollNotFound)
}

func TestAnalytics(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	post := h.createPoll(t, "A", "B")

	for i := 0; i < 4; i++ {
		_, err := h.service.RecordView(ctx, post.ID, uuid.Nil)
		require.NoError(t, err)
	}
	_, err := h.service.AddReaction(ctx, ports.ReactionInput{PostID: post.ID, UserID: uuid.New()})
	require.NoError(t, err)
	_, err = h.service.VoteInPoll(ctx, ports.VoteInput{PostID: post.ID, OptionID: post.PollOptions[0].ID, UserID: uuid.New()})
	require.NoError(t, err)

	_, err = h.service.GetAnalytics(ctx, uuid.New(), h.brandID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	a, err := h.service.GetAnalytics(ctx, h.brandID, h.brandID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.PostsCount)
	assert.Equal(t, int64(4), a.TotalViews)
	assert.Equal(t, int64(1), a.TotalReactions)
	assert.Equal(t, int64(1), a.TotalPollVotes)
	assert.Equal(t, 50.0, a.EngagementRate)
}

type fakeSpendCache struct {
	getErr error
	values map[string]float64
	sets   atomic.Int32
	mu     sync.Mutex
}

func (c *fakeSpendCache) key(userID, brandID uuid.UUID) string {
	return userID.String() + brandID.String()
}

func (c *fakeSpendCache) GetSpend(ctx context.Context, userID, brandID uuid.UUID, windowMonths int) (float64, bool, error) {
	if c.getErr != nil {
		return 0, false, c.getErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[c.key(userID, brandID)]
	return v, ok, nil
}

func (c *fakeSpendCache) SetSpend(ctx context.Context, userID, brandID uuid.UUID, windowMonths int, amount float64) error {
	c.sets.Add(1)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.values == nil {
		c.values = map[string]float64{}
	}
	c.values[c.key(userID, brandID)] = amount
	return nil
}

func TestUnlockFromSpend(t *testing.T) {
	cache := &fakeSpendCache{}
	h := newHarness(t, cache)
	ctx := context.Background()
	h.configure(t, ports.UpdateSettingsInput{RuleKind: ptr(domain.RuleMinSpend), MinSpend: ptr(100.0), IsPublic: ptr(false)})
	user := uuid.New()

	h.store.RecordPurchase(user, h.brandID, 60, time.Now().Add(-24*time.Hour))
	h.store.RecordPurchase(user, h.brandID, 500, time.Now().AddDate(-1, 0, 0))

	e, err := h.service.CheckSpendEligibility(ctx, user, h.brandID)
	require.NoError(t, err)
	assert.False(t, e.Eligible)
	assert.Equal(t, 60.0, e.SpentAmount)
	assert.InDelta(t, 60.0, e.ProgressPercentage, 0.001)

	unlocked, err := h.service.UnlockFromSpend(ctx, user, h.sb.ID)
	require.NoError(t, err)
	assert.False(t, unlocked)
	m, err := h.service.CheckMembership(ctx, user, h.sb.ID, user)
	require.NoError(t, err)
	assert.Nil(t, m, "an ineligible unlock creates nothing")

	h.store.RecordPurchase(user, h.brandID, 50, time.Now())

	e, err = h.service.CheckSpendEligibility(ctx, user, h.brandID)
	require.NoError(t, err)
	assert.Equal(t, 60.0, e.SpentAmount, "eligibility reads the cached total")

	unlocked, err = h.service.UnlockFromSpend(ctx, user, h.sb.ID)
	require.NoError(t, err)
	assert.True(t, unlocked, "unlocking reads the ledger directly")

	m, err = h.service.CheckMembership(ctx, user, h.sb.ID, user)
	require.NoError(t, err)
	assert.Equal(t, domain.JoinSpend, m.JoinSource)
	assert.True(t, m.IsActive())
}

func TestSpendCacheFailureFallsBackToLedger(t *testing.T) {
	cache := &fakeSpendCache{getErr: errors.New("connection refused")}
	h := newHarness(t, cache)
	h.configure(t, ports.UpdateSettingsInput{RuleKind: ptr(domain.RuleMinSpend), MinSpend: ptr(40.0)})
	user := uuid.New()
	h.store.RecordPurchase(user, h.brandID, 45, time.Now())

	e, err := h.service.CheckSpendEligibility(context.Background(), user, h.brandID)
	require.NoError(t, err)
	assert.True(t, e.Eligible)
	assert.Equal(t, int32(1), cache.sets.Load())
}

func TestSpendEligibilityNeedsSpendRule(t *testing.T) {
	h := newHarness(t, nil)

	_, err := h.service.CheckSpendEligibility(context.Background(), uuid.New(), h.brandID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = h.service.UnlockFromSpend(context.Background(), uuid.New(), h.sb.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRetryConflicts(t *testing.T) {
	ctx := context.Background()

	t.Run("retries until success", func(t *testing.T) {
		calls := 0
		err := retryConflicts(ctx, func() error {
			calls++
			if calls < 3 {
				return domain.ErrConflictRetryable
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after the retry budget", func(t *testing.T) {
		calls := 0
		err := retryConflicts(ctx, func() error {
			calls++
			return domain.ErrConflictRetryable
		})
		assert.ErrorIs(t, err, domain.ErrConflictRetryable)
		assert.Equal(t, maxConflictRetries+1, calls)
	})

	t.Run("other errors are permanent", func(t *testing.T) {
		calls := 0
		err := retryConflicts(ctx, func() error {
			calls++
			return domain.ErrPollClosed
		})
		assert.ErrorIs(t, err, domain.ErrPollClosed)
		assert.Equal(t, 1, calls)
	})
}

func TestReconcileAll(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	post := h.createPoll(t, "A", "B")
	user := uuid.New()

	_, err := h.service.VoteInPoll(ctx, ports.VoteInput{PostID: post.ID, OptionID: post.PollOptions[0].ID, UserID: user})
	require.NoError(t, err)
	_, err = h.service.Join(ctx, ports.JoinInput{SketchbookID: h.sb.ID, CallerID: user})
	require.NoError(t, err)

	require.NoError(t, NewReconcileService(memory.NewReconcileRepository(h.store)).ReconcileAll(ctx))

	result, err := h.service.GetPollResults(ctx, post.ID, user)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.TotalVotes)
	sb, err := h.service.GetSketchbook(ctx, h.brandID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), sb.MembersCount)
	assert.Equal(t, int64(1), sb.PostsCount)
}

func TestConcurrentReactionsKeepCount(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	post := h.createPoll(t, "A", "B")

	const users = 30
	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		user := uuid.New()
		wg.Add(1)
		go func() {
			defer wg.Done()
			for round := 0; round < 3; round++ {
				_, err := h.service.AddReaction(ctx, ports.ReactionInput{PostID: post.ID, UserID: user})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	a, err := h.service.GetAnalytics(ctx, h.brandID, h.brandID)
	require.NoError(t, err)
	assert.Equal(t, int64(users), a.TotalReactions)
}

func TestConcurrentTogglesFromOneUser(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	post := h.createPoll(t, "A", "B")
	user := uuid.New()

	const toggles = 7
	var wg sync.WaitGroup
	for i := 0; i < toggles; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.service.AddReaction(ctx, ports.ReactionInput{PostID: post.ID, UserID: user})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	require.NoError(t, h.service.Follow(ctx, user, h.brandID))
	items, err := h.service.GetCommunityFeed(ctx, user, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].ViewerReacted, "an odd number of toggles leaves the reaction on")
	assert.Equal(t, int64(1), items[0].Post.ReactionsCount)
}

func TestRecordViewNeedsAccess(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	post, err := h.service.CreatePost(ctx, h.brandID, h.brandID, ports.CreatePostInput{
		Type:       domain.PostDrop,
		Title:      "Members preview",
		Visibility: domain.VisibilityMembersOnly,
	})
	require.NoError(t, err)
	user := uuid.New()

	_, err = h.service.RecordView(ctx, post.ID, uuid.Nil)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = h.service.RecordView(ctx, post.ID, user)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = h.service.Join(ctx, ports.JoinInput{SketchbookID: h.sb.ID, CallerID: user})
	require.NoError(t, err)

	views, err := h.service.RecordView(ctx, post.ID, user)
	require.NoError(t, err)
	assert.Equal(t, int64(1), views)

	views, err = h.service.RecordView(ctx, post.ID, h.brandID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), views)
}

func TestCheckMembershipOfOthersNeedsOwner(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	member, stranger := uuid.New(), uuid.New()

	_, err := h.service.Join(ctx, ports.JoinInput{SketchbookID: h.sb.ID, CallerID: member})
	require.NoError(t, err)

	_, err = h.service.CheckMembership(ctx, stranger, h.sb.ID, member)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = h.service.CheckMembership(ctx, uuid.Nil, h.sb.ID, member)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	m, err := h.service.CheckMembership(ctx, h.brandID, h.sb.ID, member)
	require.NoError(t, err)
	assert.True(t, m.IsActive())

	m, err = h.service.CheckMembership(ctx, member, h.sb.ID, uuid.Nil)
	require.NoError(t, err)
	assert.True(t, m.IsActive())

	m, err = h.service.CheckMembership(ctx, uuid.Nil, h.sb.ID, uuid.Nil)
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestCommunityFeedUsesMemberships(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	h.configure(t, ports.UpdateSettingsInput{IsPublic: ptr(false)})
	_, err := h.service.CreatePost(ctx, h.brandID, h.brandID, ports.CreatePostInput{
		Type:       domain.PostUpdate,
		Title:      "Members note",
		Body:       ptr("for members"),
		Visibility: domain.VisibilityMembersOnly,
	})
	require.NoError(t, err)

	member := uuid.New()
	_, err = h.service.Join(ctx, ports.JoinInput{SketchbookID: h.sb.ID, CallerID: member})
	require.NoError(t, err)

	items, err := h.service.GetCommunityFeed(ctx, member, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.False(t, items[0].Locked)
	require.NotNil(t, items[0].Post.Body)
	assert.Equal(t, "for members", *items[0].Post.Body)

	_, err = h.service.Revoke(ctx, member, h.sb.ID, uuid.Nil)
	require.NoError(t, err)
	items, err = h.service.GetCommunityFeed(ctx, member, 10)
	require.NoError(t, err)
	assert.Empty(t, items, "revoked members lose the private feed")
}
