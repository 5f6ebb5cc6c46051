package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/sketchbook/internal/core/domain"
	"github.com/vncsmyrnk/sketchbook/internal/core/ports"
)

type pollRepository struct {
	store *Store
}

func NewPollRepository(store *Store) ports.PollRepository {
	return &pollRepository{store: store}
}

func (r *pollRepository) CastVote(ctx context.Context, vote domain.PollVote) error {
	unlock := r.store.keys.lock(lockKey("vote", vote.PostID, vote.UserID))
	defer unlock()

	row, ok := r.store.postRow(vote.PostID)
	if !ok || len(row.options) == 0 {
		return domain.ErrPollNotFound
	}
	next, ok := row.options[vote.OptionID]
	if !ok {
		return domain.ErrInvalidOption
	}

	key := pairKey{vote.PostID, vote.UserID}
	r.store.mu.RLock()
	existing, voted := r.store.votes[key]
	r.store.mu.RUnlock()

	if voted && existing.OptionID == vote.OptionID {
		return nil
	}

	r.store.mu.Lock()
	r.store.votes[key] = vote
	r.store.mu.Unlock()

	if voted {
		if prev, ok := row.options[existing.OptionID]; ok {
			decrementFloor(prev)
		}
	}
	next.Add(1)
	return nil
}

func (r *pollRepository) GetUserVote(ctx context.Context, postID, userID uuid.UUID) (*domain.PollVote, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	v, ok := r.store.votes[pairKey{postID, userID}]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (r *pollRepository) UserVotes(ctx context.Context, userID uuid.UUID, postIDs []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make(map[uuid.UUID]uuid.UUID)
	for _, postID := range postIDs {
		if v, ok := r.store.votes[pairKey{postID, userID}]; ok {
			result[postID] = v.OptionID
		}
	}
	return result, nil
}
