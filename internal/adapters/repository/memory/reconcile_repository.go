package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/sketchbook/internal/core/domain"
	"github.com/vncsmyrnk/sketchbook/internal/core/ports"
)

type reconcileRepository struct {
	store *Store
}

func NewReconcileRepository(store *Store) ports.ReconcileRepository {
	return &reconcileRepository{store: store}
}

func (r *reconcileRepository) ListPostIDs(ctx context.Context) ([]uuid.UUID, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	ids := make([]uuid.UUID, 0, len(r.store.posts))
	for id, row := range r.store.posts {
		if !row.deleted.Load() {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *reconcileRepository) ListSketchbookIDs(ctx context.Context) ([]uuid.UUID, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	ids := make([]uuid.UUID, 0, len(r.store.sketchbooks))
	for id := range r.store.sketchbooks {
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *reconcileRepository) RecountPost(ctx context.Context, postID uuid.UUID) error {
	row, ok := r.store.postRow(postID)
	if !ok {
		return domain.ErrPostNotFound
	}

	r.store.mu.RLock()
	votes := make(map[uuid.UUID]int64, len(row.options))
	for key, v := range r.store.votes {
		if key.a == postID {
			votes[v.OptionID]++
		}
	}
	var reactions int64
	for key := range r.store.reactions {
		if key.postID == postID {
			reactions++
		}
	}
	r.store.mu.RUnlock()

	for optionID, counter := range row.options {
		counter.Store(votes[optionID])
	}
	row.reactions.Store(reactions)
	return nil
}

func (r *reconcileRepository) RecountSketchbook(ctx context.Context, sketchbookID uuid.UUID) error {
	row, ok := r.store.sketchbookRow(sketchbookID)
	if !ok {
		return domain.ErrSketchbookNotFound
	}

	r.store.mu.RLock()
	var members, posts int64
	for key, m := range r.store.memberships {
		if key.a == sketchbookID && m.Status == domain.MembershipActive {
			members++
		}
	}
	for _, p := range r.store.posts {
		if p.post.SketchbookID == sketchbookID && !p.deleted.Load() {
			posts++
		}
	}
	r.store.mu.RUnlock()

	row.members.Store(members)
	row.posts.Store(posts)
	return nil
}
