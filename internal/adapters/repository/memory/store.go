// Package memory is an in-process implementation of the repository ports.
// Mutations serialize per aggregate key (membership, vote, reaction) and
// shared counters are atomics, so writers on different keys never wait on
// each other.
package memory

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/sketchbook/internal/core/domain"
)

type pairKey struct {
	a, b uuid.UUID
}

type reactionKey struct {
	postID uuid.UUID
	userID uuid.UUID
	kind   domain.ReactionType
}

type sketchbookRow struct {
	sb      domain.Sketchbook
	members atomic.Int64
	posts   atomic.Int64
}

type postRow struct {
	post      domain.Post
	options   map[uuid.UUID]*atomic.Int64
	reactions atomic.Int64
	views     atomic.Int64
	deleted   atomic.Bool
}

type purchase struct {
	buyerID     uuid.UUID
	sellerID    uuid.UUID
	amount      float64
	completedAt time.Time
}

// Store holds every table. mu guards the maps themselves; business
// read-check-write sequences take a key lock first.
type Store struct {
	mu          sync.RWMutex
	sketchbooks map[uuid.UUID]*sketchbookRow
	byBrand     map[uuid.UUID]uuid.UUID
	follows     map[pairKey]domain.Follow
	memberships map[pairKey]domain.Membership
	posts       map[uuid.UUID]*postRow
	votes       map[pairKey]domain.PollVote
	reactions   map[reactionKey]domain.Reaction
	purchases   []purchase

	keys keyLocks
}

func NewStore() *Store {
	return &Store{
		sketchbooks: make(map[uuid.UUID]*sketchbookRow),
		byBrand:     make(map[uuid.UUID]uuid.UUID),
		follows:     make(map[pairKey]domain.Follow),
		memberships: make(map[pairKey]domain.Membership),
		posts:       make(map[uuid.UUID]*postRow),
		votes:       make(map[pairKey]domain.PollVote),
		reactions:   make(map[reactionKey]domain.Reaction),
	}
}

// RecordPurchase adds a completed order to the ledger. Used for local runs
// and tests where no order database exists.
func (s *Store) RecordPurchase(buyerID, sellerID uuid.UUID, amount float64, completedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purchases = append(s.purchases, purchase{
		buyerID:     buyerID,
		sellerID:    sellerID,
		amount:      amount,
		completedAt: completedAt,
	})
}

func (s *Store) sketchbookRow(id uuid.UUID) (*sketchbookRow, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.sketchbooks[id]
	return row, ok
}

func (s *Store) postRow(id uuid.UUID) (*postRow, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.posts[id]
	if !ok || row.deleted.Load() {
		return nil, false
	}
	return row, true
}

// snapshot copies the row; callers hold Store.mu.
func (row *sketchbookRow) snapshot() *domain.Sketchbook {
	sb := row.sb
	sb.MembersCount = row.members.Load()
	sb.PostsCount = row.posts.Load()
	return &sb
}

func (row *postRow) snapshot() *domain.Post {
	p := row.post
	p.ReactionsCount = row.reactions.Load()
	p.ViewsCount = row.views.Load()
	if len(row.post.PollOptions) > 0 {
		p.PollOptions = make([]domain.PollOption, len(row.post.PollOptions))
		for i, opt := range row.post.PollOptions {
			opt.Votes = row.options[opt.ID].Load()
			p.PollOptions[i] = opt
		}
	}
	p.Media = append([]string{}, row.post.Media...)
	p.Tags = append([]string(nil), row.post.Tags...)
	return &p
}

func sortPostsNewestFirst(posts []*domain.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}

// decrementFloor lowers the counter by one without going below zero.
func decrementFloor(c *atomic.Int64) int64 {
	for {
		cur := c.Load()
		if cur <= 0 {
			return 0
		}
		if c.CompareAndSwap(cur, cur-1) {
			return cur - 1
		}
	}
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// keyLocks hands out one mutex per key and forgets it once nobody holds it.
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

func (k *keyLocks) lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyLock)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func lockKey(kind string, ids ...uuid.UUID) string {
	key := kind
	for _, id := range ids {
		key += ":" + id.String()
	}
	return key
}
