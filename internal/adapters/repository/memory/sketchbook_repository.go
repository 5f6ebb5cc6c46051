package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/sketchbook/internal/core/domain"
	"github.com/vncsmyrnk/sketchbook/internal/core/ports"
)

type sketchbookRepository struct {
	store *Store
}

func NewSketchbookRepository(store *Store) ports.SketchbookRepository {
	return &sketchbookRepository{store: store}
}

func (r *sketchbookRepository) GetOrCreate(ctx context.Context, sb *domain.Sketchbook) (*domain.Sketchbook, error) {
	unlock := r.store.keys.lock(lockKey("brand", sb.BrandID))
	defer unlock()

	if existing, err := r.GetByBrand(ctx, sb.BrandID); err == nil {
		return existing, nil
	}

	row := &sketchbookRow{sb: *sb}
	row.members.Store(sb.MembersCount)
	row.posts.Store(sb.PostsCount)

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.sketchbooks[sb.ID] = row
	r.store.byBrand[sb.BrandID] = sb.ID

	return row.snapshot(), nil
}

func (r *sketchbookRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Sketchbook, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	row, ok := r.store.sketchbooks[id]
	if !ok {
		return nil, domain.ErrSketchbookNotFound
	}
	return row.snapshot(), nil
}

func (r *sketchbookRepository) GetByBrand(ctx context.Context, brandID uuid.UUID) (*domain.Sketchbook, error) {
	r.store.mu.RLock()
	id, ok := r.store.byBrand[brandID]
	r.store.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSketchbookNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *sketchbookRepository) UpdateSettings(ctx context.Context, id uuid.UUID, input ports.UpdateSettingsInput) (*domain.Sketchbook, error) {
	row, ok := r.store.sketchbookRow(id)
	if !ok {
		return nil, domain.ErrSketchbookNotFound
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	sb := &row.sb
	if input.Title != nil {
		sb.Title = *input.Title
	}
	if input.Description != nil {
		sb.Description = *input.Description
	}
	if input.IsPublic != nil {
		sb.IsPublic = *input.IsPublic
	}
	if input.RuleKind != nil {
		sb.MembershipRule.Kind = *input.RuleKind
	}
	if input.MinSpend != nil {
		sb.MembershipRule.MinSpend = *input.MinSpend
	}
	if input.WindowMonths != nil {
		sb.MembershipRule.WindowMonths = *input.WindowMonths
	}
	sb.UpdatedAt = time.Now().UTC()

	return row.snapshot(), nil
}

func (r *sketchbookRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Sketchbook, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []*domain.Sketchbook
	for id, row := range r.store.sketchbooks {
		_, follows := r.store.follows[pairKey{userID, row.sb.BrandID}]
		m, member := r.store.memberships[pairKey{id, userID}]
		if follows || (member && m.Status == domain.MembershipActive) {
			result = append(result, row.snapshot())
		}
	}
	return result, nil
}

func (r *sketchbookRepository) Follow(ctx context.Context, follow domain.Follow) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := pairKey{follow.FollowerID, follow.BrandID}
	if _, ok := r.store.follows[key]; !ok {
		r.store.follows[key] = follow
	}
	return nil
}

func (r *sketchbookRepository) Unfollow(ctx context.Context, userID, brandID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	delete(r.store.follows, pairKey{userID, brandID})
	return nil
}
