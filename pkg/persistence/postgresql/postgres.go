// Package postgresql provides PostgreSQL persistence for recordings,
// actions and archive snapshots.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	// Registers the postgres driver with database/sql.
	_ "github.com/lib/pq"

	"github.com/recapd/recapd/pkg/persistence"
	"github.com/recapd/recapd/pkg/persistence/sqlbase"
)

// Persistence implements persistence.Persistence on PostgreSQL.
type Persistence struct {
	db     *sql.DB
	logger *slog.Logger

	recordings *RecordingRepository
	actions    *ActionRepository
	archive    *ArchiveRepository
}

// NewPersistence connects to PostgreSQL and runs pending migrations.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	p := &Persistence{
		db:     database,
		logger: logger,
	}
	p.recordings = &RecordingRepository{db: database}
	p.actions = &ActionRepository{db: database}
	p.archive = &ArchiveRepository{db: database}

	return p, nil
}

func (p *Persistence) Recordings() persistence.RecordingRepository {
	return p.recordings
}

func (p *Persistence) Actions() persistence.ActionRepository {
	return p.actions
}

func (p *Persistence) Archive() persistence.ArchiveRepository {
	return p.archive
}

// ChangeSeq reads the change sequence counter. Bumped by triggers in the
// repositories on every write.
func (p *Persistence) ChangeSeq(ctx context.Context) (uint64, error) {
	var seq uint64

	err := p.db.QueryRowContext(ctx, "SELECT seq FROM change_seq WHERE id = 1").Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("failed to read change sequence: %w", err)
	}

	return seq, nil
}

// HealthCheck pings the database.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// bumpSeq advances the change sequence inside the caller's statement flow.
func bumpSeq(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, "UPDATE change_seq SET seq = seq + 1 WHERE id = 1")
	if err != nil {
		return fmt.Errorf("failed to bump change sequence: %w", err)
	}

	return nil
}
