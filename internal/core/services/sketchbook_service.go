package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/sketchbook/internal/core/domain"
	"github.com/vncsmyrnk/sketchbook/internal/core/ports"
	"github.com/vncsmyrnk/sketchbook/internal/validation"
)

const (
	defaultFeedLimit = 20
	maxFeedLimit     = 100
	minPollOptions   = 2
)

// SketchbookDeps groups what the facade composes.
type SketchbookDeps struct {
	Sketchbooks    ports.SketchbookRepository
	Posts          ports.PostRepository
	Polls          ports.PollRepository
	Reactions      ports.ReactionRepository
	Memberships    ports.MembershipService
	PollEngine     ports.PollService
	ReactionLedger ports.ReactionService
	Spend          ports.SpendService
	Validator      *validation.Validator
}

type sketchbookService struct {
	deps SketchbookDeps
}

// NewSketchbookService returns the facade used by the transport layer. It
// holds no business rules of its own beyond the brand capability checks.
func NewSketchbookService(deps SketchbookDeps) ports.SketchbookService {
	return &sketchbookService{
		deps: deps,
	}
}

func (s *sketchbookService) GetSketchbook(ctx context.Context, brandID uuid.UUID) (*domain.Sketchbook, error) {
	if brandID == uuid.Nil {
		return nil, fmt.Errorf("%w: brand id is required", domain.ErrInvalidInput)
	}
	return s.deps.Sketchbooks.GetOrCreate(ctx, domain.NewDefaultSketchbook(brandID, time.Now().UTC()))
}

func (s *sketchbookService) GetSketchbookView(ctx context.Context, brandID, viewerID uuid.UUID, limit int) (*domain.SketchbookView, error) {
	sb, err := s.GetSketchbook(ctx, brandID)
	if err != nil {
		return nil, err
	}

	membership, err := s.deps.Memberships.CheckMembership(ctx, sb.ID, viewerID)
	if err != nil {
		return nil, err
	}

	posts, err := s.deps.Posts.ListBySketchbooks(ctx, []uuid.UUID{sb.ID}, clampLimit(limit))
	if err != nil {
		return nil, err
	}

	owner := sb.IsOwner(viewerID)
	view := &domain.SketchbookView{
		Sketchbook:   sb,
		AccessPolicy: sb.AccessPolicy(),
		Membership:   membership,
		IsOwner:      owner,
		FeedVisible:  owner || domain.FeedVisible(sb, membership),
		Posts:        []domain.FeedItem{},
	}
	if !owner {
		view.LockedPostsCount = domain.LockedPostsCount(sb, posts, membership)
		if !membership.IsActive() {
			view.JoinCTA = domain.JoinCallToActionText(sb.MembershipRule)
		}
	}
	if view.FeedVisible {
		access := map[uuid.UUID]sketchbookAccess{sb.ID: {sb: sb, membership: membership}}
		view.Posts, err = s.resolveFeed(ctx, viewerID, posts, access)
		if err != nil {
			return nil, err
		}
	}
	return view, nil
}

func (s *sketchbookService) UpdateSettings(ctx context.Context, callerID, brandID uuid.UUID, input ports.UpdateSettingsInput) (*domain.Sketchbook, error) {
	if !domain.IsOwner(brandID, callerID) {
		return nil, domain.ErrUnauthorized
	}
	if err := s.deps.Validator.Validate(input); err != nil {
		return nil, err
	}

	sb, err := s.GetSketchbook(ctx, brandID)
	if err != nil {
		return nil, err
	}

	kind := sb.MembershipRule.Kind
	if input.RuleKind != nil {
		kind = *input.RuleKind
	}
	minSpend := sb.MembershipRule.MinSpend
	if input.MinSpend != nil {
		minSpend = *input.MinSpend
	}
	if kind == domain.RuleMinSpend && minSpend <= 0 {
		return nil, fmt.Errorf("%w: a minSpend rule needs a positive min_spend_amount", domain.ErrInvalidInput)
	}

	return s.deps.Sketchbooks.UpdateSettings(ctx, sb.ID, input)
}

// CheckMembership answers for the caller, or for anyone when the caller owns
// the sketchbook.
func (s *sketchbookService) CheckMembership(ctx context.Context, callerID, sketchbookID, userID uuid.UUID) (*domain.Membership, error) {
	if userID == uuid.Nil {
		userID = callerID
	}
	if userID != callerID {
		sb, err := s.deps.Sketchbooks.GetByID(ctx, sketchbookID)
		if err != nil {
			return nil, err
		}
		if !sb.IsOwner(callerID) {
			return nil, domain.ErrUnauthorized
		}
	}
	return s.deps.Memberships.CheckMembership(ctx, sketchbookID, userID)
}

// Join enforces who may create which kind of membership: anyone may join a
// free sketchbook themselves, only the brand hands out invites, and spend
// memberships only come from UnlockFromSpend.
func (s *sketchbookService) Join(ctx context.Context, input ports.JoinInput) (*domain.Membership, error) {
	if input.CallerID == uuid.Nil {
		return nil, domain.ErrUnauthorized
	}
	if input.UserID == uuid.Nil {
		input.UserID = input.CallerID
	}
	if input.Source == "" {
		input.Source = domain.JoinFree
	}

	sb, err := s.deps.Sketchbooks.GetByID(ctx, input.SketchbookID)
	if err != nil {
		return nil, err
	}

	switch input.Source {
	case domain.JoinFree:
		if sb.MembershipRule.Kind != domain.RuleFree || input.UserID != input.CallerID {
			return nil, domain.ErrUnauthorized
		}
	case domain.JoinInvite:
		if !sb.IsOwner(input.CallerID) {
			return nil, domain.ErrUnauthorized
		}
	case domain.JoinSpend:
		return nil, fmt.Errorf("%w: spend memberships are created by unlocking", domain.ErrInvalidInput)
	default:
		return nil, fmt.Errorf("%w: unknown join source %q", domain.ErrInvalidInput, input.Source)
	}

	return s.deps.Memberships.Join(ctx, sb.ID, input.UserID, input.Source)
}

func (s *sketchbookService) RequestAccess(ctx context.Context, sketchbookID, userID uuid.UUID) (*domain.Membership, error) {
	sb, err := s.deps.Sketchbooks.GetByID(ctx, sketchbookID)
	if err != nil {
		return nil, err
	}
	if sb.MembershipRule.Kind != domain.RuleInviteOnly {
		return nil, fmt.Errorf("%w: sketchbook does not take access requests", domain.ErrInvalidInput)
	}
	return s.deps.Memberships.RequestAccess(ctx, sb.ID, userID)
}

// Revoke lets members leave and brands remove members.
func (s *sketchbookService) Revoke(ctx context.Context, callerID, sketchbookID, userID uuid.UUID) (*domain.Membership, error) {
	if userID == uuid.Nil {
		userID = callerID
	}
	sb, err := s.deps.Sketchbooks.GetByID(ctx, sketchbookID)
	if err != nil {
		return nil, err
	}
	if callerID == uuid.Nil || (callerID != userID && !sb.IsOwner(callerID)) {
		return nil, domain.ErrUnauthorized
	}
	return s.deps.Memberships.Revoke(ctx, sb.ID, userID)
}

func (s *sketchbookService) Follow(ctx context.Context, userID, brandID uuid.UUID) error {
	if _, err := s.GetSketchbook(ctx, brandID); err != nil {
		return err
	}
	return s.deps.Sketchbooks.Follow(ctx, domain.Follow{
		FollowerID: userID,
		BrandID:    brandID,
		CreatedAt:  time.Now().UTC(),
	})
}

func (s *sketchbookService) Unfollow(ctx context.Context, userID, brandID uuid.UUID) error {
	return s.deps.Sketchbooks.Unfollow(ctx, userID, brandID)
}

// GetCommunityFeed aggregates posts from every sketchbook the user follows or
// belongs to, resolving each post against that sketchbook's membership.
func (s *sketchbookService) GetCommunityFeed(ctx context.Context, userID uuid.UUID, limit int) ([]domain.FeedItem, error) {
	sketchbooks, err := s.deps.Sketchbooks.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(sketchbooks) == 0 {
		return []domain.FeedItem{}, nil
	}

	memberships, err := s.deps.Memberships.ListMemberships(ctx, userID)
	if err != nil {
		return nil, err
	}
	bySketchbook := make(map[uuid.UUID]*domain.Membership, len(memberships))
	for _, m := range memberships {
		bySketchbook[m.SketchbookID] = m
	}

	access := make(map[uuid.UUID]sketchbookAccess, len(sketchbooks))
	ids := make([]uuid.UUID, 0, len(sketchbooks))
	for _, sb := range sketchbooks {
		membership := bySketchbook[sb.ID]
		if !sb.IsOwner(userID) && !domain.FeedVisible(sb, membership) {
			continue
		}
		access[sb.ID] = sketchbookAccess{sb: sb, membership: membership}
		ids = append(ids, sb.ID)
	}
	if len(ids) == 0 {
		return []domain.FeedItem{}, nil
	}

	posts, err := s.deps.Posts.ListBySketchbooks(ctx, ids, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	return s.resolveFeed(ctx, userID, posts, access)
}

func (s *sketchbookService) CreatePost(ctx context.Context, callerID, brandID uuid.UUID, input ports.CreatePostInput) (*domain.Post, error) {
	if !domain.IsOwner(brandID, callerID) {
		return nil, domain.ErrUnauthorized
	}
	if err := s.deps.Validator.Validate(input); err != nil {
		return nil, err
	}

	sb, err := s.GetSketchbook(ctx, brandID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	post := &domain.Post{
		ID:           uuid.New(),
		SketchbookID: sb.ID,
		AuthorID:     callerID,
		Type:         input.Type,
		Title:        strings.TrimSpace(input.Title),
		Body:         input.Body,
		Media:        input.Media,
		Tags:         input.Tags,
		Visibility:   input.Visibility,
		CreatedAt:    now,
	}
	if post.Visibility == "" {
		post.Visibility = domain.VisibilityPublic
	}
	if post.Media == nil {
		post.Media = []string{}
	}

	if input.Type == domain.PostPoll {
		if err := buildPoll(post, input, now); err != nil {
			return nil, err
		}
	} else if len(input.PollOptions) > 0 || input.PollClosesAt != nil {
		return nil, fmt.Errorf("%w: only poll posts take poll options", domain.ErrInvalidInput)
	}

	if err := s.deps.Posts.Save(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func buildPoll(post *domain.Post, input ports.CreatePostInput, now time.Time) error {
	for _, label := range input.PollOptions {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		post.PollOptions = append(post.PollOptions, domain.PollOption{
			ID:       uuid.New(),
			PostID:   post.ID,
			Label:    label,
			Position: len(post.PollOptions),
		})
	}
	if len(post.PollOptions) < minPollOptions {
		return fmt.Errorf("%w: at least two valid options are required", domain.ErrInvalidInput)
	}

	if input.PollClosesAt != nil {
		if !input.PollClosesAt.After(now) {
			return fmt.Errorf("%w: poll_closes_at must be in the future", domain.ErrInvalidInput)
		}
		closesAt := input.PollClosesAt.UTC()
		post.PollClosesAt = &closesAt
	}

	question := post.Title
	if input.PollQuestion != nil && strings.TrimSpace(*input.PollQuestion) != "" {
		question = strings.TrimSpace(*input.PollQuestion)
	}
	post.PollQuestion = &question
	return nil
}

func (s *sketchbookService) DeletePost(ctx context.Context, callerID, postID uuid.UUID) error {
	post, err := s.deps.Posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	sb, err := s.deps.Sketchbooks.GetByID(ctx, post.SketchbookID)
	if err != nil {
		return err
	}
	if !sb.IsOwner(callerID) {
		return domain.ErrUnauthorized
	}
	return s.deps.Posts.SoftDelete(ctx, postID)
}

// RecordView counts only views of content the viewer can see.
func (s *sketchbookService) RecordView(ctx context.Context, postID, viewerID uuid.UUID) (int64, error) {
	if err := s.authorizePost(ctx, postID, viewerID); err != nil {
		return 0, err
	}
	return s.deps.Posts.IncrementViews(ctx, postID)
}

func (s *sketchbookService) AddReaction(ctx context.Context, input ports.ReactionInput) (*domain.ReactionResult, error) {
	if err := s.authorizePost(ctx, input.PostID, input.UserID); err != nil {
		return nil, err
	}
	return s.deps.ReactionLedger.Toggle(ctx, input)
}

func (s *sketchbookService) VoteInPoll(ctx context.Context, input ports.VoteInput) (*domain.PollResult, error) {
	if err := s.authorizePost(ctx, input.PostID, input.UserID); err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			return nil, domain.ErrPollNotFound
		}
		return nil, err
	}
	return s.deps.PollEngine.CastVote(ctx, input)
}

func (s *sketchbookService) GetPollResults(ctx context.Context, postID, viewerID uuid.UUID) (*domain.PollResult, error) {
	if err := s.authorizePost(ctx, postID, viewerID); err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			return nil, domain.ErrPollNotFound
		}
		return nil, err
	}
	return s.deps.PollEngine.GetResults(ctx, postID, viewerID)
}

func (s *sketchbookService) CheckSpendEligibility(ctx context.Context, userID, brandID uuid.UUID) (*domain.SpendEligibility, error) {
	sb, err := s.GetSketchbook(ctx, brandID)
	if err != nil {
		return nil, err
	}
	rule := sb.MembershipRule
	if rule.Kind != domain.RuleMinSpend {
		return nil, fmt.Errorf("%w: sketchbook has no spend requirement", domain.ErrInvalidInput)
	}
	return s.deps.Spend.CheckEligibility(ctx, userID, brandID, rule.MinSpend, rule.SpendWindow())
}

func (s *sketchbookService) UnlockFromSpend(ctx context.Context, userID, sketchbookID uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, domain.ErrUnauthorized
	}
	sb, err := s.deps.Sketchbooks.GetByID(ctx, sketchbookID)
	if err != nil {
		return false, err
	}
	return s.deps.Spend.UnlockFromSpend(ctx, userID, sb)
}

func (s *sketchbookService) GetAnalytics(ctx context.Context, callerID, brandID uuid.UUID) (*domain.Analytics, error) {
	if !domain.IsOwner(brandID, callerID) {
		return nil, domain.ErrUnauthorized
	}
	sb, err := s.GetSketchbook(ctx, brandID)
	if err != nil {
		return nil, err
	}

	posts, err := s.deps.Posts.Engagement(ctx, sb.ID)
	if err != nil {
		return nil, err
	}

	a := &domain.Analytics{
		SketchbookID: sb.ID,
		BrandID:      sb.BrandID,
		MembersCount: sb.MembersCount,
		PostsCount:   sb.PostsCount,
		Posts:        posts,
	}
	for i := range a.Posts {
		p := &a.Posts[i]
		p.EngagementRate = domain.EngagementRate(p.ReactionsCount, p.CommentsCount, p.PollVotes, p.ViewsCount)
		a.TotalViews += p.ViewsCount
		a.TotalReactions += p.ReactionsCount
		a.TotalComments += p.CommentsCount
		a.TotalPollVotes += p.PollVotes
	}
	a.EngagementRate = domain.EngagementRate(a.TotalReactions, a.TotalComments, a.TotalPollVotes, a.TotalViews)
	return a, nil
}

type sketchbookAccess struct {
	sb         *domain.Sketchbook
	membership *domain.Membership
}

func (a sketchbookAccess) canView(post *domain.Post, viewerID uuid.UUID) bool {
	return a.sb.IsOwner(viewerID) || domain.CanView(a.sb, post, a.membership)
}

// authorizePost rejects engagement with content the user cannot see.
func (s *sketchbookService) authorizePost(ctx context.Context, postID, userID uuid.UUID) error {
	post, err := s.deps.Posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	sb, err := s.deps.Sketchbooks.GetByID(ctx, post.SketchbookID)
	if err != nil {
		return err
	}
	membership, err := s.deps.Memberships.CheckMembership(ctx, sb.ID, userID)
	if err != nil {
		return err
	}
	if !(sketchbookAccess{sb: sb, membership: membership}).canView(post, userID) {
		return domain.ErrUnauthorized
	}
	return nil
}

// resolveFeed turns posts into feed items for one viewer: locked posts become
// teasers and visible ones carry the viewer's own vote and reaction.
func (s *sketchbookService) resolveFeed(ctx context.Context, viewerID uuid.UUID, posts []*domain.Post, access map[uuid.UUID]sketchbookAccess) ([]domain.FeedItem, error) {
	items := make([]domain.FeedItem, 0, len(posts))
	var visibleIDs, pollIDs []uuid.UUID

	for _, post := range posts {
		a, ok := access[post.SketchbookID]
		if !ok {
			continue
		}
		item := domain.FeedItem{
			Post:            post,
			SketchbookTitle: a.sb.Title,
			BrandID:         a.sb.BrandID,
		}
		if a.canView(post, viewerID) {
			visibleIDs = append(visibleIDs, post.ID)
			if post.IsPoll() {
				pollIDs = append(pollIDs, post.ID)
			}
		} else {
			item.Post = post.Teaser()
			item.Locked = true
		}
		items = append(items, item)
	}

	if viewerID == uuid.Nil || len(visibleIDs) == 0 {
		return items, nil
	}

	reacted, err := s.deps.Reactions.UserReactions(ctx, viewerID, domain.ReactionLike, visibleIDs)
	if err != nil {
		return nil, err
	}
	votes := map[uuid.UUID]uuid.UUID{}
	if len(pollIDs) > 0 {
		votes, err = s.deps.Polls.UserVotes(ctx, viewerID, pollIDs)
		if err != nil {
			return nil, err
		}
	}

	for i := range items {
		if items[i].Locked {
			continue
		}
		id := items[i].Post.ID
		items[i].ViewerReacted = reacted[id]
		if optionID, ok := votes[id]; ok {
			items[i].ViewerVoteOptionID = &optionID
		}
	}
	return items, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultFeedLimit
	}
	if limit > maxFeedLimit {
		return maxFeedLimit
	}
	return limit
}
