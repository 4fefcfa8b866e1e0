package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amishk599/jobscout/internal/model"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS jobs (
	id              TEXT PRIMARY KEY,
	title           TEXT NOT NULL,
	company         TEXT NOT NULL,
	location        TEXT NOT NULL DEFAULT '',
	remote          BOOLEAN NOT NULL DEFAULT FALSE,
	description     TEXT NOT NULL DEFAULT '',
	required_skills JSONB NOT NULL DEFAULT '[]',
	source          TEXT NOT NULL,
	source_url      TEXT NOT NULL DEFAULT '',
	match_score     DOUBLE PRECISION NOT NULL DEFAULT 0,
	match_tier      TEXT NOT NULL DEFAULT 'low',
	posted_date     TEXT NOT NULL DEFAULT '',
	discovered_at   TIMESTAMPTZ NOT NULL,
	archived        BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS idx_jobs_tier ON jobs (match_tier, match_score);
CREATE TABLE IF NOT EXISTS discovery_runs (
	id           TEXT PRIMARY KEY,
	started_at   TIMESTAMPTZ NOT NULL,
	completed_at TIMESTAMPTZ,
	jobs_found   INTEGER NOT NULL DEFAULT 0,
	jobs_new     INTEGER NOT NULL DEFAULT 0,
	source       TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL,
	error        TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS profile (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	data       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);`

// PostgresStore is the shared-database variant of SQLiteStore.
type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPostgresStore connects to databaseURL, verifies the connection and
// ensures the schema exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}
	cfg.MaxConns = 4

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &PostgresStore{pool: pool, now: time.Now}, nil
}

func (s *PostgresStore) KnownJobIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.pool.Query(ctx, "SELECT id FROM jobs")
	if err != nil {
		return nil, fmt.Errorf("listing job ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning job ids: %w", err)
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

func (s *PostgresStore) KnownTitleCompanies(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, "SELECT title || ' ' || company FROM jobs")
	if err != nil {
		return nil, fmt.Errorf("listing job titles: %w", err)
	}
	pairs, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning job titles: %w", err)
	}
	return pairs, nil
}

func (s *PostgresStore) InsertJob(ctx context.Context, job model.NormalizedJob) (bool, error) {
	skills, err := encodeSkills(job.RequiredSkills)
	if err != nil {
		return false, err
	}
	tag, err := s.pool.Exec(ctx, `INSERT INTO jobs (`+jobColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO NOTHING`,
		job.ID, job.Title, job.Company, job.Location, job.Remote, job.Description, skills,
		job.Source, job.SourceURL, job.MatchScore, string(job.MatchTier), job.PostedDate,
		job.DiscoveredAt.UTC(), job.Archived,
	)
	if err != nil {
		return false, fmt.Errorf("inserting job %s: %w", job.ID, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PostgresStore) GetJob(ctx context.Context, id string) (model.NormalizedJob, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+jobColumns+" FROM jobs WHERE id = $1", id)
	job, err := scanPgJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.NormalizedJob{}, fmt.Errorf("job %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return model.NormalizedJob{}, fmt.Errorf("loading job %s: %w", id, err)
	}
	return job, nil
}

func (s *PostgresStore) ListJobs(ctx context.Context, q model.JobQuery) ([]model.NormalizedJob, error) {
	var (
		where []string
		args  []any
	)
	if q.Tier != "" {
		args = append(args, string(q.Tier))
		where = append(where, fmt.Sprintf("match_tier = $%d", len(args)))
	}
	if !q.IncludeArchived {
		where = append(where, "NOT archived")
	}

	query := "SELECT " + jobColumns + " FROM jobs"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY match_score DESC, discovered_at DESC, id"
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()

	var jobs []model.NormalizedJob
	for rows.Next() {
		job, err := scanPgJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (s *PostgresStore) ArchiveJob(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "UPDATE jobs SET archived = TRUE WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("archiving job %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job %s: %w", id, model.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, run model.DiscoveryRun) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO discovery_runs
		(id, started_at, jobs_found, jobs_new, source, status, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		run.ID, run.StartedAt.UTC(), run.JobsFound, run.JobsNew, run.Source, string(run.Status), run.Error,
	)
	if err != nil {
		return fmt.Errorf("creating run %s: %w", run.ID, err)
	}
	return nil
}

func (s *PostgresStore) FinishRun(ctx context.Context, run model.DiscoveryRun) error {
	if err := checkTerminal(run); err != nil {
		return err
	}
	completed := s.now()
	if run.CompletedAt != nil {
		completed = *run.CompletedAt
	}

	tag, err := s.pool.Exec(ctx, `UPDATE discovery_runs
		SET completed_at = $1, jobs_found = $2, jobs_new = $3, status = $4, error = $5
		WHERE id = $6 AND status = $7`,
		completed.UTC(), run.JobsFound, run.JobsNew, string(run.Status), run.Error,
		run.ID, string(model.RunRunning),
	)
	if err != nil {
		return fmt.Errorf("finishing run %s: %w", run.ID, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	err = s.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM discovery_runs WHERE id = $1)", run.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking run %s: %w", run.ID, err)
	}
	if !exists {
		return fmt.Errorf("run %s: %w", run.ID, model.ErrNotFound)
	}
	return fmt.Errorf("run %s: %w", run.ID, model.ErrRunFinalized)
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]model.DiscoveryRun, error) {
	query := `SELECT id, started_at, completed_at, jobs_found, jobs_new, source, status, error
		FROM discovery_runs ORDER BY started_at DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []model.DiscoveryRun
	for rows.Next() {
		var (
			run    model.DiscoveryRun
			status string
		)
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.CompletedAt, &run.JobsFound, &run.JobsNew, &run.Source, &status, &run.Error); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		run.Status = model.RunStatus(status)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// PruneRuns deletes finished runs that started before olderThan ago.
func (s *PostgresStore) PruneRuns(ctx context.Context, olderThan time.Duration) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM discovery_runs WHERE started_at < $1 AND status <> $2",
		s.now().Add(-olderThan).UTC(), string(model.RunRunning))
	if err != nil {
		return 0, fmt.Errorf("pruning runs older than %v: %w", olderThan, err)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) LoadProfile(ctx context.Context) (*model.UserProfile, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, "SELECT data FROM profile WHERE id = 1").Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("profile: %w", model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	var p model.UserProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding profile: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) SaveProfile(ctx context.Context, p *model.UserProfile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}
	_, err = s.pool.Exec(ctx, `INSERT INTO profile (id, data, updated_at) VALUES (1, $1::jsonb, $2)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		string(data), s.now().UTC())
	if err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanPgJob(r pgx.Row) (model.NormalizedJob, error) {
	var (
		job    model.NormalizedJob
		skills []byte
		tier   string
	)
	err := r.Scan(&job.ID, &job.Title, &job.Company, &job.Location, &job.Remote, &job.Description, &skills,
		&job.Source, &job.SourceURL, &job.MatchScore, &tier, &job.PostedDate, &job.DiscoveredAt, &job.Archived)
	if err != nil {
		return model.NormalizedJob{}, err
	}
	job.MatchTier = model.MatchTier(tier)
	if job.RequiredSkills, err = decodeSkills(string(skills)); err != nil {
		return model.NormalizedJob{}, err
	}
	return job, nil
}
