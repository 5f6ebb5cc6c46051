package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/sketchbook/internal/core/domain"
	"github.com/vncsmyrnk/sketchbook/internal/core/ports"
)

type membershipRepository struct {
	store *Store
}

func NewMembershipRepository(store *Store) ports.MembershipRepository {
	return &membershipRepository{store: store}
}

func (r *membershipRepository) Get(ctx context.Context, sketchbookID, userID uuid.UUID) (*domain.Membership, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	m, ok := r.store.memberships[pairKey{sketchbookID, userID}]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *membershipRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Membership, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []*domain.Membership
	for key, m := range r.store.memberships {
		if key.b == userID {
			m := m
			result = append(result, &m)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].JoinedAt.After(result[j].JoinedAt)
	})
	return result, nil
}

func (r *membershipRepository) Activate(ctx context.Context, sketchbookID, userID uuid.UUID, source domain.JoinSource, now time.Time) (*domain.Membership, error) {
	unlock := r.store.keys.lock(lockKey("membership", sketchbookID, userID))
	defer unlock()

	row, ok := r.store.sketchbookRow(sketchbookID)
	if !ok {
		return nil, domain.ErrSketchbookNotFound
	}

	existing, _ := r.Get(ctx, sketchbookID, userID)
	next, activated := domain.ApplyJoin(existing, sketchbookID, userID, source, now)
	if !activated {
		return next, nil
	}

	r.put(*next)
	row.members.Add(1)
	return next, nil
}

func (r *membershipRepository) Request(ctx context.Context, sketchbookID, userID uuid.UUID, now time.Time) (*domain.Membership, error) {
	unlock := r.store.keys.lock(lockKey("membership", sketchbookID, userID))
	defer unlock()

	if _, ok := r.store.sketchbookRow(sketchbookID); !ok {
		return nil, domain.ErrSketchbookNotFound
	}

	existing, _ := r.Get(ctx, sketchbookID, userID)
	next, changed := domain.ApplyRequest(existing, sketchbookID, userID, now)
	if changed {
		r.put(*next)
	}
	return next, nil
}

func (r *membershipRepository) Revoke(ctx context.Context, sketchbookID, userID uuid.UUID) (*domain.Membership, error) {
	unlock := r.store.keys.lock(lockKey("membership", sketchbookID, userID))
	defer unlock()

	existing, _ := r.Get(ctx, sketchbookID, userID)
	if existing == nil {
		return nil, domain.ErrMembershipNotFound
	}

	next, deactivated := domain.ApplyRevoke(existing)
	r.put(*next)
	if deactivated {
		if row, ok := r.store.sketchbookRow(sketchbookID); ok {
			decrementFloor(&row.members)
		}
	}
	return next, nil
}

func (r *membershipRepository) put(m domain.Membership) {
	r.store.mu.Lock()
	r.store.memberships[pairKey{m.SketchbookID, m.UserID}] = m
	r.store.mu.Unlock()
}
