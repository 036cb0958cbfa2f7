package board

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"tablero/internal/metrics"
	"tablero/internal/models"
	"tablero/internal/storage/sqlite"
)

// State holds every persisted collection of the board. Task and sprint
// collections are partitioned by company id; creators and the selection are
// global. ActiveSprints maps a company id to the id of its single active
// sprint, or holds no entry when none is active.
type State struct {
	Companies     []models.Company
	Creators      []models.Creator
	AppState      models.AppState
	Tasks         map[string][]models.Task
	Sprints       map[string][]models.Sprint
	ActiveSprints map[string]string
}

// Board owns the in-memory state and serializes every mutating intent behind
// a single writer lock. Operations mutate state first and then persist the
// collections they touched; a persistence failure is reported to the caller
// but never rolls back the in-memory mutation.
type Board struct {
	mu     sync.RWMutex
	state  State
	store  *sqlite.Store
	logger *slog.Logger

	now   func() time.Time
	newID func() string
}

// New loads all persisted collections and returns a ready board.
func New(ctx context.Context, store *sqlite.Store, logger *slog.Logger) (*Board, error) {
	if logger == nil {
		logger = slog.Default()
	}

	b := &Board{
		store:  store,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}

	var err error
	if b.state.Companies, err = store.LoadCompanies(ctx); err != nil {
		return nil, err
	}
	if b.state.Creators, err = store.LoadCreators(ctx); err != nil {
		return nil, err
	}
	if b.state.AppState, err = store.LoadAppState(ctx); err != nil {
		return nil, err
	}
	if b.state.Tasks, err = store.LoadTasks(ctx); err != nil {
		return nil, err
	}
	if b.state.Sprints, err = store.LoadSprints(ctx); err != nil {
		return nil, err
	}
	if b.state.ActiveSprints, err = store.LoadActiveSprints(ctx); err != nil {
		return nil, err
	}

	logger.Info("board state loaded",
		slog.Int("companies", len(b.state.Companies)),
		slog.Int("creators", len(b.state.Creators)))
	return b, nil
}

// persistTasks writes the full task mapping for every company.
func (b *Board) persistTasks(ctx context.Context) error {
	if err := b.store.SaveTasks(ctx, b.state.Tasks); err != nil {
		metrics.IncPersistFailure(sqlite.KeyTasks)
		b.logger.Error("persist tasks failed", slog.String("error", err.Error()))
		return err
	}
	return nil
}

// persistSprints writes both the sprint mapping and the active pointer map;
// the two keys are written independently, not as one transaction.
func (b *Board) persistSprints(ctx context.Context) error {
	if err := b.store.SaveSprints(ctx, b.state.Sprints); err != nil {
		metrics.IncPersistFailure(sqlite.KeySprints)
		b.logger.Error("persist sprints failed", slog.String("error", err.Error()))
		return err
	}
	if err := b.store.SaveActiveSprints(ctx, b.state.ActiveSprints); err != nil {
		metrics.IncPersistFailure(sqlite.KeyActiveSprints)
		b.logger.Error("persist active sprints failed", slog.String("error", err.Error()))
		return err
	}
	return nil
}

func (b *Board) persistCompanies(ctx context.Context) error {
	if err := b.store.SaveCompanies(ctx, b.state.Companies); err != nil {
		metrics.IncPersistFailure(sqlite.KeyCompanies)
		b.logger.Error("persist companies failed", slog.String("error", err.Error()))
		return err
	}
	return nil
}

func (b *Board) persistCreators(ctx context.Context) error {
	if err := b.store.SaveCreators(ctx, b.state.Creators); err != nil {
		metrics.IncPersistFailure(sqlite.KeyCreators)
		b.logger.Error("persist creators failed", slog.String("error", err.Error()))
		return err
	}
	return nil
}

func (b *Board) persistAppState(ctx context.Context) error {
	if err := b.store.SaveAppState(ctx, b.state.AppState); err != nil {
		metrics.IncPersistFailure(sqlite.KeyAppState)
		b.logger.Error("persist app state failed", slog.String("error", err.Error()))
		return err
	}
	return nil
}
