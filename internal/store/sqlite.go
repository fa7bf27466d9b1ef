package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// SQLiteDB implements the DB interface using SQLite
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB creates a new SQLite database connection
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: SQLite serializes writers, and ":memory:" databases
	// are per connection.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Ping checks the connection.
func (s *SQLiteDB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate applies the embedded migrations that have not run yet.
func (s *SQLiteDB) Migrate() error {
	migrations, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("migration files: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, s.db, migrations)
	if err != nil {
		return fmt.Errorf("migration provider: %w", err)
	}
	if _, err := provider.Up(context.Background()); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// execer is the part of *sql.DB and *sql.Tx the inserts need.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Prepare(query string) (*sql.Stmt, error)
}

// SaveRun saves a run, assigning an ID when it has none.
func (s *SQLiteDB) SaveRun(run *Run) error {
	return insertRun(s.db, run)
}

// SaveTables saves the per-table species of a run in one transaction.
func (s *SQLiteDB) SaveTables(runID string, tables []TableRecord) error {
	if len(tables) == 0 {
		return nil
	}
	return s.inTx(func(tx *sql.Tx) error {
		return insertTables(tx, runID, tables)
	})
}

// SaveRecord saves a run and its tables in one transaction, so a failed
// table insert leaves no run behind. Each table's RunID is set to the run's.
func (s *SQLiteDB) SaveRecord(run *Run, tables []TableRecord) error {
	return s.inTx(func(tx *sql.Tx) error {
		if err := insertRun(tx, run); err != nil {
			return err
		}
		for i := range tables {
			tables[i].RunID = run.ID
		}
		return insertTables(tx, run.ID, tables)
	})
}

func (s *SQLiteDB) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func insertRun(db execer, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	query := `INSERT INTO runs (
		id, title, generation, seed_input, seed, allow_legendaries, randomize_wild,
		table_count, slots_randomized, input_sha256, output_sha256, engine_version
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := db.Exec(query,
		run.ID, run.Title, run.Generation, run.SeedInput, run.Seed,
		boolInt(run.AllowLegendaries), boolInt(run.RandomizeWild),
		run.TableCount, run.SlotsRandomized, run.InputSHA256, run.OutputSHA256,
		run.EngineVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

func insertTables(db execer, runID string, tables []TableRecord) error {
	stmt, err := db.Prepare(`INSERT INTO run_tables (run_id, table_index, name, category, byte_offset, species)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range tables {
		species, err := json.Marshal(t.Species)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(runID, t.Index, t.Name, t.Category, t.Offset, string(species)); err != nil {
			return fmt.Errorf("failed to save table %d: %w", t.Index, err)
		}
	}
	return nil
}

// GetRun retrieves a run by ID
func (s *SQLiteDB) GetRun(id string) (*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = ?`

	run, err := scanRun(s.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// GetTables retrieves the table records of a run in table order.
func (s *SQLiteDB) GetTables(runID string) ([]TableRecord, error) {
	rows, err := s.db.Query(`SELECT run_id, table_index, name, category, byte_offset, species
		FROM run_tables WHERE run_id = ? ORDER BY table_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	var tables []TableRecord
	for rows.Next() {
		var t TableRecord
		var species string
		if err := rows.Scan(&t.RunID, &t.Index, &t.Name, &t.Category, &t.Offset, &species); err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		if err := json.Unmarshal([]byte(species), &t.Species); err != nil {
			return nil, fmt.Errorf("table %d species: %w", t.Index, err)
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// ListRuns retrieves runs with pagination and filtering
func (s *SQLiteDB) ListRuns(query RunsQuery) (*RunsList, error) {
	whereClause := ""
	args := []interface{}{}

	if query.Generation != "" {
		whereClause = "WHERE generation = ?"
		args = append(args, query.Generation)
	}

	var totalCount int
	err := s.db.QueryRow("SELECT COUNT(*) FROM runs "+whereClause, args...).Scan(&totalCount)
	if err != nil {
		return nil, fmt.Errorf("failed to get total count: %w", err)
	}

	if query.PerPage <= 0 {
		query.PerPage = 50
	}
	if query.Page <= 0 {
		query.Page = 1
	}

	totalPages := (totalCount + query.PerPage - 1) / query.PerPage
	offset := (query.Page - 1) * query.PerPage

	mainQuery := `SELECT ` + runColumns + ` FROM runs ` + whereClause + `
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?`
	args = append(args, query.PerPage, offset)

	rows, err := s.db.Query(mainQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return &RunsList{
		Runs:       runs,
		TotalCount: totalCount,
		Page:       query.Page,
		PerPage:    query.PerPage,
		TotalPages: totalPages,
	}, nil
}

const runColumns = `id, title, generation, seed_input, seed, allow_legendaries, randomize_wild,
		table_count, slots_randomized, input_sha256, output_sha256, engine_version, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var allow, wild int
	var createdAt sql.NullTime
	err := row.Scan(
		&run.ID, &run.Title, &run.Generation, &run.SeedInput, &run.Seed, &allow, &wild,
		&run.TableCount, &run.SlotsRandomized, &run.InputSHA256, &run.OutputSHA256,
		&run.EngineVersion, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	run.AllowLegendaries = allow == 1
	run.RandomizeWild = wild == 1
	if createdAt.Valid {
		run.CreatedAt = createdAt.Time
	}
	return &run, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
