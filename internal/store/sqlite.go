package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/amishk599/jobscout/internal/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS jobs (
	id              TEXT PRIMARY KEY,
	title           TEXT NOT NULL,
	company         TEXT NOT NULL,
	location        TEXT NOT NULL DEFAULT '',
	remote          INTEGER NOT NULL DEFAULT 0,
	description     TEXT NOT NULL DEFAULT '',
	required_skills TEXT NOT NULL DEFAULT '[]',
	source          TEXT NOT NULL,
	source_url      TEXT NOT NULL DEFAULT '',
	match_score     REAL NOT NULL DEFAULT 0,
	match_tier      TEXT NOT NULL DEFAULT 'low',
	posted_date     TEXT NOT NULL DEFAULT '',
	discovered_at   TEXT NOT NULL,
	archived        INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_jobs_tier ON jobs (match_tier, match_score);
CREATE TABLE IF NOT EXISTS discovery_runs (
	id           TEXT PRIMARY KEY,
	started_at   TEXT NOT NULL,
	completed_at TEXT,
	jobs_found   INTEGER NOT NULL DEFAULT 0,
	jobs_new     INTEGER NOT NULL DEFAULT 0,
	source       TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL,
	error        TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS profile (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	data       TEXT NOT NULL,
	updated_at TEXT NOT NULL
);`

const jobColumns = `id, title, company, location, remote, description, required_skills,
	source, source_url, match_score, match_tier, posted_date, discovered_at, archived`

// SQLiteStore persists jobs, runs and the profile in a local SQLite file.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the schema exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// One writer avoids SQLITE_BUSY between the scheduler and CLI reads.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// KnownJobIDs returns the IDs of every stored job, archived included.
func (s *SQLiteStore) KnownJobIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM jobs")
	if err != nil {
		return nil, fmt.Errorf("listing job ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning job id: %w", err)
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// KnownTitleCompanies returns "title company" for every stored job.
func (s *SQLiteStore) KnownTitleCompanies(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT title, company FROM jobs")
	if err != nil {
		return nil, fmt.Errorf("listing job titles: %w", err)
	}
	defer rows.Close()

	var pairs []string
	for rows.Next() {
		var title, company string
		if err := rows.Scan(&title, &company); err != nil {
			return nil, fmt.Errorf("scanning job title: %w", err)
		}
		pairs = append(pairs, title+" "+company)
	}
	return pairs, rows.Err()
}

// InsertJob writes job if its ID is not already stored.
func (s *SQLiteStore) InsertJob(ctx context.Context, job model.NormalizedJob) (bool, error) {
	skills, err := encodeSkills(job.RequiredSkills)
	if err != nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO jobs (`+jobColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.Title, job.Company, job.Location, job.Remote, job.Description, skills,
		job.Source, job.SourceURL, job.MatchScore, string(job.MatchTier), job.PostedDate,
		formatTime(job.DiscoveredAt), job.Archived,
	)
	if err != nil {
		return false, fmt.Errorf("inserting job %s: %w", job.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("inserting job %s: %w", job.ID, err)
	}
	return n == 1, nil
}

// GetJob returns the job with the given ID or model.ErrNotFound.
func (s *SQLiteStore) GetJob(ctx context.Context, id string) (model.NormalizedJob, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+jobColumns+" FROM jobs WHERE id = ?", id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.NormalizedJob{}, fmt.Errorf("job %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return model.NormalizedJob{}, fmt.Errorf("loading job %s: %w", id, err)
	}
	return job, nil
}

// ListJobs returns jobs ordered by score, best first.
func (s *SQLiteStore) ListJobs(ctx context.Context, q model.JobQuery) ([]model.NormalizedJob, error) {
	var (
		where []string
		args  []any
	)
	if q.Tier != "" {
		where = append(where, "match_tier = ?")
		args = append(args, string(q.Tier))
	}
	if !q.IncludeArchived {
		where = append(where, "archived = 0")
	}

	query := "SELECT " + jobColumns + " FROM jobs"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY match_score DESC, discovered_at DESC, id"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()

	var jobs []model.NormalizedJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// ArchiveJob hides a job from default listings. Archived jobs still count
// as known for deduplication.
func (s *SQLiteStore) ArchiveJob(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE jobs SET archived = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("archiving job %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("job %s: %w", id, model.ErrNotFound)
	}
	return nil
}

// CreateRun records a new run.
func (s *SQLiteStore) CreateRun(ctx context.Context, run model.DiscoveryRun) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO discovery_runs
		(id, started_at, jobs_found, jobs_new, source, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, formatTime(run.StartedAt), run.JobsFound, run.JobsNew, run.Source, string(run.Status), run.Error,
	)
	if err != nil {
		return fmt.Errorf("creating run %s: %w", run.ID, err)
	}
	return nil
}

// FinishRun moves a running run to its terminal state exactly once.
func (s *SQLiteStore) FinishRun(ctx context.Context, run model.DiscoveryRun) error {
	if err := checkTerminal(run); err != nil {
		return err
	}
	completed := s.now()
	if run.CompletedAt != nil {
		completed = *run.CompletedAt
	}

	res, err := s.db.ExecContext(ctx, `UPDATE discovery_runs
		SET completed_at = ?, jobs_found = ?, jobs_new = ?, status = ?, error = ?
		WHERE id = ? AND status = ?`,
		formatTime(completed), run.JobsFound, run.JobsNew, string(run.Status), run.Error,
		run.ID, string(model.RunRunning),
	)
	if err != nil {
		return fmt.Errorf("finishing run %s: %w", run.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return nil
	}

	var exists int
	err = s.db.QueryRowContext(ctx, "SELECT 1 FROM discovery_runs WHERE id = ?", run.ID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("run %s: %w", run.ID, model.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("checking run %s: %w", run.ID, err)
	}
	return fmt.Errorf("run %s: %w", run.ID, model.ErrRunFinalized)
}

// ListRuns returns the most recent runs first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]model.DiscoveryRun, error) {
	query := `SELECT id, started_at, completed_at, jobs_found, jobs_new, source, status, error
		FROM discovery_runs ORDER BY started_at DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []model.DiscoveryRun
	for rows.Next() {
		var (
			run       model.DiscoveryRun
			started   string
			completed sql.NullString
			status    string
		)
		if err := rows.Scan(&run.ID, &started, &completed, &run.JobsFound, &run.JobsNew, &run.Source, &status, &run.Error); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		run.Status = model.RunStatus(status)
		if run.StartedAt, err = parseTime(started); err != nil {
			return nil, err
		}
		if completed.Valid {
			t, err := parseTime(completed.String)
			if err != nil {
				return nil, err
			}
			run.CompletedAt = &t
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// PruneRuns deletes finished runs that started before olderThan ago.
func (s *SQLiteStore) PruneRuns(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := formatTime(s.now().Add(-olderThan))
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM discovery_runs WHERE started_at < ? AND status != ?", cutoff, string(model.RunRunning))
	if err != nil {
		return 0, fmt.Errorf("pruning runs older than %v: %w", olderThan, err)
	}
	return res.RowsAffected()
}

// LoadProfile returns the saved profile or model.ErrNotFound.
func (s *SQLiteStore) LoadProfile(ctx context.Context) (*model.UserProfile, error) {
	var data string
	err := s.db.QueryRowContext(ctx, "SELECT data FROM profile WHERE id = 1").Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile: %w", model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	var p model.UserProfile
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("decoding profile: %w", err)
	}
	return &p, nil
}

// SaveProfile replaces the stored profile.
func (s *SQLiteStore) SaveProfile(ctx context.Context, p *model.UserProfile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO profile (id, data, updated_at) VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		string(data), formatTime(s.now()))
	if err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(r rowScanner) (model.NormalizedJob, error) {
	var (
		job        model.NormalizedJob
		skills     string
		tier       string
		discovered string
	)
	err := r.Scan(&job.ID, &job.Title, &job.Company, &job.Location, &job.Remote, &job.Description, &skills,
		&job.Source, &job.SourceURL, &job.MatchScore, &tier, &job.PostedDate, &discovered, &job.Archived)
	if err != nil {
		return model.NormalizedJob{}, err
	}
	job.MatchTier = model.MatchTier(tier)
	if job.RequiredSkills, err = decodeSkills(skills); err != nil {
		return model.NormalizedJob{}, err
	}
	if job.DiscoveredAt, err = parseTime(discovered); err != nil {
		return model.NormalizedJob{}, err
	}
	return job, nil
}
