package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"tablero/internal/metrics"
	"tablero/internal/models"
)

// Collection keys. Each key holds one whole JSON-serialized collection and is
// written independently of the others (last writer wins, no partial update).
const (
	KeyCompanies     = "companies"
	KeyAppState      = "app_state"
	KeyCreators      = "creators"
	KeyTasks         = "tasks"
	KeySprints       = "sprints"
	KeyActiveSprints = "active_sprints"
)

// Store persists whole board collections as JSON payloads keyed by logical
// domain, the moral equivalent of a browser localStorage area.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open initializes the SQLite store and runs the required migrations.
func Open(dbPath string, logger *slog.Logger) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("empty database path")
	}

	if logger == nil {
		logger = slog.Default()
	}

	if err := ensureDir(dbPath); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	s := &Store{db: conn, logger: logger}
	if err := s.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return s, nil
}

// Close releases the database resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (s *Store) migrate() error {
	stmt := `CREATE TABLE IF NOT EXISTS collections (
        key TEXT PRIMARY KEY,
        payload TEXT NOT NULL,
        updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
    );`
	if _, err := s.db.Exec(stmt); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// save serializes value and replaces the payload stored under key.
func (s *Store) save(ctx context.Context, key string, value any) error {
	start := time.Now()
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO collections(key, payload, updated_at)
        VALUES(?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = CURRENT_TIMESTAMP`,
		key, string(payload))
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}

	metrics.ObservePersist(key, time.Since(start))
	s.logger.Debug("collection saved", slog.String("key", key), slog.Int("bytes", len(payload)))
	return nil
}

// load reads the payload stored under key into dest. A missing key leaves
// dest untouched so callers keep their zero-value collection.
func (s *Store) load(ctx context.Context, key string, dest any) error {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM collections WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(payload), dest); err != nil {
		return fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return nil
}

// SaveCompanies persists the full company list.
func (s *Store) SaveCompanies(ctx context.Context, companies []models.Company) error {
	return s.save(ctx, KeyCompanies, companies)
}

// LoadCompanies returns the persisted company list, empty when absent.
func (s *Store) LoadCompanies(ctx context.Context) ([]models.Company, error) {
	companies := []models.Company{}
	if err := s.load(ctx, KeyCompanies, &companies); err != nil {
		return nil, err
	}
	return companies, nil
}

// SaveAppState persists the current company/creator selection.
func (s *Store) SaveAppState(ctx context.Context, state models.AppState) error {
	return s.save(ctx, KeyAppState, state)
}

// LoadAppState returns the persisted selection, zero when absent.
func (s *Store) LoadAppState(ctx context.Context) (models.AppState, error) {
	var state models.AppState
	if err := s.load(ctx, KeyAppState, &state); err != nil {
		return models.AppState{}, err
	}
	return state, nil
}

// SaveCreators persists the global creator list.
func (s *Store) SaveCreators(ctx context.Context, creators []models.Creator) error {
	return s.save(ctx, KeyCreators, creators)
}

// LoadCreators returns the persisted creator list, empty when absent.
func (s *Store) LoadCreators(ctx context.Context) ([]models.Creator, error) {
	creators := []models.Creator{}
	if err := s.load(ctx, KeyCreators, &creators); err != nil {
		return nil, err
	}
	return creators, nil
}

// SaveTasks persists every company's task collection in one write.
func (s *Store) SaveTasks(ctx context.Context, tasks map[string][]models.Task) error {
	return s.save(ctx, KeyTasks, tasks)
}

// LoadTasks returns the persisted company-to-tasks mapping, empty when absent.
func (s *Store) LoadTasks(ctx context.Context) (map[string][]models.Task, error) {
	tasks := map[string][]models.Task{}
	if err := s.load(ctx, KeyTasks, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// SaveSprints persists every company's sprint collection in one write.
func (s *Store) SaveSprints(ctx context.Context, sprints map[string][]models.Sprint) error {
	return s.save(ctx, KeySprints, sprints)
}

// LoadSprints returns the persisted company-to-sprints mapping, empty when absent.
func (s *Store) LoadSprints(ctx context.Context) (map[string][]models.Sprint, error) {
	sprints := map[string][]models.Sprint{}
	if err := s.load(ctx, KeySprints, &sprints); err != nil {
		return nil, err
	}
	return sprints, nil
}

// SaveActiveSprints persists the company-to-active-sprint-id pointer map.
func (s *Store) SaveActiveSprints(ctx context.Context, active map[string]string) error {
	return s.save(ctx, KeyActiveSprints, active)
}

// LoadActiveSprints returns the persisted pointer map, empty when absent.
func (s *Store) LoadActiveSprints(ctx context.Context) (map[string]string, error) {
	active := map[string]string{}
	if err := s.load(ctx, KeyActiveSprints, &active); err != nil {
		return nil, err
	}
	return active, nil
}
