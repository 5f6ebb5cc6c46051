// Package app wires repositories and services for the binaries and for
// end-to-end tests.
package app

import (
	"database/sql"
	"log/slog"

	"github.com/vncsmyrnk/sketchbook/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/sketchbook/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/sketchbook/internal/core/ports"
	"github.com/vncsmyrnk/sketchbook/internal/core/services"
	"github.com/vncsmyrnk/sketchbook/internal/validation"
)

type Repositories struct {
	Sketchbooks ports.SketchbookRepository
	Memberships ports.MembershipRepository
	Posts       ports.PostRepository
	Polls       ports.PollRepository
	Reactions   ports.ReactionRepository
	Ledger      ports.SpendLedger
	Reconcile   ports.ReconcileRepository
}

func PostgresRepositories(db *sql.DB) Repositories {
	return Repositories{
		Sketchbooks: postgres.NewSketchbookRepository(db),
		Memberships: postgres.NewMembershipRepository(db),
		Posts:       postgres.NewPostRepository(db),
		Polls:       postgres.NewPollRepository(db),
		Reactions:   postgres.NewReactionRepository(db),
		Ledger:      postgres.NewSpendLedger(db),
		Reconcile:   postgres.NewReconcileRepository(db),
	}
}

func MemoryRepositories(store *memory.Store) Repositories {
	return Repositories{
		Sketchbooks: memory.NewSketchbookRepository(store),
		Memberships: memory.NewMembershipRepository(store),
		Posts:       memory.NewPostRepository(store),
		Polls:       memory.NewPollRepository(store),
		Reactions:   memory.NewReactionRepository(store),
		Ledger:      memory.NewSpendLedger(store),
		Reconcile:   memory.NewReconcileRepository(store),
	}
}

type Services struct {
	Sketchbooks ports.SketchbookService
	Reconcile   ports.ReconcileService
}

// NewServices builds the service graph. cache may be nil.
func NewServices(repos Repositories, cache ports.SpendCache, logger *slog.Logger) Services {
	memberships := services.NewMembershipService(repos.Memberships)

	return Services{
		Sketchbooks: services.NewSketchbookService(services.SketchbookDeps{
			Sketchbooks:    repos.Sketchbooks,
			Posts:          repos.Posts,
			Polls:          repos.Polls,
			Reactions:      repos.Reactions,
			Memberships:    memberships,
			PollEngine:     services.NewPollService(repos.Posts, repos.Polls),
			ReactionLedger: services.NewReactionService(repos.Posts, repos.Reactions),
			Spend:          services.NewSpendService(repos.Ledger, cache, memberships, logger),
			Validator:      validation.New(),
		}),
		Reconcile: services.NewReconcileService(repos.Reconcile),
	}
}
