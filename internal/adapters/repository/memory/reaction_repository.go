package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/sketchbook/internal/core/domain"
	"github.com/vncsmyrnk/sketchbook/internal/core/ports"
)

type reactionRepository struct {
	store *Store
}

func NewReactionRepository(store *Store) ports.ReactionRepository {
	return &reactionRepository{store: store}
}

func (r *reactionRepository) Toggle(ctx context.Context, reaction domain.Reaction) (*domain.ReactionResult, error) {
	unlock := r.store.keys.lock(lockKey("reaction:"+string(reaction.Type), reaction.PostID, reaction.UserID))
	defer unlock()

	row, ok := r.store.postRow(reaction.PostID)
	if !ok {
		return nil, domain.ErrPostNotFound
	}

	key := reactionKey{reaction.PostID, reaction.UserID, reaction.Type}
	r.store.mu.Lock()
	_, exists := r.store.reactions[key]
	if exists {
		delete(r.store.reactions, key)
	} else {
		r.store.reactions[key] = reaction
	}
	r.store.mu.Unlock()

	if exists {
		return &domain.ReactionResult{Reacted: false, NewCount: decrementFloor(&row.reactions)}, nil
	}
	return &domain.ReactionResult{Reacted: true, NewCount: row.reactions.Add(1)}, nil
}

func (r *reactionRepository) UserReactions(ctx context.Context, userID uuid.UUID, reactionType domain.ReactionType, postIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make(map[uuid.UUID]bool)
	for _, postID := range postIDs {
		if _, ok := r.store.reactions[reactionKey{postID, userID, reactionType}]; ok {
			result[postID] = true
		}
	}
	return result, nil
}
