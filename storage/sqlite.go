package storage

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"avito_harvester/models"
)

// SQLiteStore holds operational state: run accounting, structured run
// logs and the operator command queue.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS harvest_runs (
		id INTEGER PRIMARY KEY,
		filter TEXT,
		mode TEXT,
		started_at DATETIME,
		finished_at DATETIME,
		status TEXT,
		links_found INTEGER DEFAULT 0,
		listings_saved INTEGER DEFAULT 0,
		skipped INTEGER DEFAULT 0,
		errors_count INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS harvest_logs (
		id INTEGER PRIMARY KEY,
		run_id INTEGER,
		timestamp DATETIME,
		level TEXT,
		message TEXT,
		filter TEXT
	);

	CREATE TABLE IF NOT EXISTS commands (
		id INTEGER PRIMARY KEY,
		command TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		processed_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_commands_pending ON commands(processed_at) WHERE processed_at IS NULL;
	CREATE INDEX IF NOT EXISTS idx_logs_run ON harvest_logs(run_id, timestamp);
	CREATE INDEX IF NOT EXISTS idx_runs_status ON harvest_runs(status, started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) CreateRun(run *models.HarvestRun) (int64, error) {
	result, err := s.db.Exec(`
		INSERT INTO harvest_runs (filter, mode, started_at, status, links_found, listings_saved, skipped, errors_count)
		VALUES (?, ?, ?, ?, 0, 0, 0, 0)`,
		run.Filter, run.Mode, run.StartedAt, run.Status)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (s *SQLiteStore) UpdateRun(run *models.HarvestRun) error {
	_, err := s.db.Exec(`
		UPDATE harvest_runs SET finished_at = ?, status = ?, links_found = ?,
			listings_saved = ?, skipped = ?, errors_count = ?
		WHERE id = ?`,
		run.FinishedAt, run.Status, run.LinksFound,
		run.ListingsSaved, run.Skipped, run.ErrorsCount, run.ID)
	return err
}

func (s *SQLiteStore) GetRecentRuns(limit int) ([]models.HarvestRun, error) {
	rows, err := s.db.Query(`
		SELECT id, filter, mode, started_at, finished_at, status,
			links_found, listings_saved, skipped, errors_count
		FROM harvest_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.HarvestRun
	for rows.Next() {
		var run models.HarvestRun
		if err := rows.Scan(&run.ID, &run.Filter, &run.Mode, &run.StartedAt, &run.FinishedAt,
			&run.Status, &run.LinksFound, &run.ListingsSaved, &run.Skipped, &run.ErrorsCount); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) Log(runID *int64, level models.LogLevel, message, filter string) error {
	_, err := s.db.Exec(`
		INSERT INTO harvest_logs (run_id, timestamp, level, message, filter)
		VALUES (?, ?, ?, ?, ?)`,
		runID, time.Now(), level, message, filter)
	return err
}

func (s *SQLiteStore) EnqueueCommand(cmd models.CommandType) error {
	_, err := s.db.Exec(`INSERT INTO commands (command) VALUES (?)`, cmd)
	return err
}

func (s *SQLiteStore) GetPendingCommands() ([]models.Command, error) {
	rows, err := s.db.Query(`
		SELECT id, command, created_at, processed_at
		FROM commands WHERE processed_at IS NULL ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cmds []models.Command
	for rows.Next() {
		var cmd models.Command
		if err := rows.Scan(&cmd.ID, &cmd.Command, &cmd.CreatedAt, &cmd.ProcessedAt); err != nil {
			return nil, err
		}
		cmds = append(cmds, cmd)
	}
	return cmds, rows.Err()
}

func (s *SQLiteStore) MarkCommandProcessed(id int64) error {
	_, err := s.db.Exec(`UPDATE commands SET processed_at = ? WHERE id = ?`, time.Now(), id)
	return err
}
