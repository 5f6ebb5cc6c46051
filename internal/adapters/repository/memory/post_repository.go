package memory

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/sketchbook/internal/core/domain"
	"github.com/vncsmyrnk/sketchbook/internal/core/ports"
)

type postRepository struct {
	store *Store
}

func NewPostRepository(store *Store) ports.PostRepository {
	return &postRepository{store: store}
}

func (r *postRepository) Save(ctx context.Context, post *domain.Post) error {
	sb, ok := r.store.sketchbookRow(post.SketchbookID)
	if !ok {
		return domain.ErrSketchbookNotFound
	}

	row := &postRow{
		post:    *post,
		options: make(map[uuid.UUID]*atomic.Int64, len(post.PollOptions)),
	}
	row.post.PollOptions = append([]domain.PollOption(nil), post.PollOptions...)
	for _, opt := range post.PollOptions {
		c := &atomic.Int64{}
		c.Store(opt.Votes)
		row.options[opt.ID] = c
	}
	row.reactions.Store(post.ReactionsCount)
	row.views.Store(post.ViewsCount)

	r.store.mu.Lock()
	r.store.posts[post.ID] = row
	r.store.mu.Unlock()

	sb.posts.Add(1)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	row, ok := r.store.posts[id]
	if !ok || row.deleted.Load() {
		return nil, domain.ErrPostNotFound
	}
	return row.snapshot(), nil
}

func (r *postRepository) ListBySketchbooks(ctx context.Context, sketchbookIDs []uuid.UUID, limit int) ([]*domain.Post, error) {
	wanted := make(map[uuid.UUID]struct{}, len(sketchbookIDs))
	for _, id := range sketchbookIDs {
		wanted[id] = struct{}{}
	}

	r.store.mu.RLock()
	posts := []*domain.Post{}
	for _, row := range r.store.posts {
		if row.deleted.Load() {
			continue
		}
		if _, ok := wanted[row.post.SketchbookID]; ok {
			posts = append(posts, row.snapshot())
		}
	}
	r.store.mu.RUnlock()

	sortPostsNewestFirst(posts)
	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func (r *postRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	unlock := r.store.keys.lock(lockKey("post", id))
	defer unlock()

	row, ok := r.store.postRow(id)
	if !ok {
		return domain.ErrPostNotFound
	}

	now := time.Now().UTC()
	r.store.mu.Lock()
	row.post.DeletedAt = &now
	r.store.mu.Unlock()
	row.deleted.Store(true)

	if sb, ok := r.store.sketchbookRow(row.post.SketchbookID); ok {
		decrementFloor(&sb.posts)
	}
	return nil
}

func (r *postRepository) IncrementViews(ctx context.Context, id uuid.UUID) (int64, error) {
	row, ok := r.store.postRow(id)
	if !ok {
		return 0, domain.ErrPostNotFound
	}
	return row.views.Add(1), nil
}

func (r *postRepository) Engagement(ctx context.Context, sketchbookID uuid.UUID) ([]domain.PostEngagement, error) {
	posts, err := r.ListBySketchbooks(ctx, []uuid.UUID{sketchbookID}, 0)
	if err != nil {
		return nil, err
	}

	result := make([]domain.PostEngagement, 0, len(posts))
	for _, p := range posts {
		var votes int64
		for _, opt := range p.PollOptions {
			votes += opt.Votes
		}
		result = append(result, domain.PostEngagement{
			PostID:         p.ID,
			Title:          p.Title,
			Type:           p.Type,
			ViewsCount:     p.ViewsCount,
			ReactionsCount: p.ReactionsCount,
			CommentsCount:  p.CommentsCount,
			PollVotes:      votes,
		})
	}
	return result, nil
}
