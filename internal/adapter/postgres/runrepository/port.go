// Package runrepository stores test runs in PostgreSQL.
package runrepository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gitlab.com/equivcheck-2025.net/internal/core/ports/primary"
	"gitlab.com/equivcheck-2025.net/internal/core/ports/secondary"
	"gitlab.com/equivcheck-2025.net/internal/domain"
	"gitlab.com/equivcheck-2025.net/internal/static/errs"
	querybuilder "gitlab.com/equivcheck-2025.net/internal/utils"
)

const schema = "public"

var _ secondary.RunRepository = (*RunRepository)(nil)

// RunRepository implements the RunRepository interface with PostgreSQL
type RunRepository struct {
	db     *sqlx.DB
	logger primary.Logger
}

// NewRunRepository creates a new PostgreSQL run repository
func NewRunRepository(db *sqlx.DB, logger primary.Logger) *RunRepository {
	return &RunRepository{
		db:     db,
		logger: logger,
	}
}

func columns() []string {
	t := domain.GetRunTable()
	return []string{
		t.ID, t.Contract, t.Candidate, t.Status, t.Override, t.Report,
		t.Error, t.CreatedAt, t.StartedAt, t.CompletedAt,
	}
}

// SaveRun upserts a run
func (r *RunRepository) SaveRun(ctx context.Context, run *domain.RunRecord) error {
	overrideJSON, err := marshalNullable(run.Override)
	if err != nil {
		r.logger.Error("Failed to marshal run override", "runId", run.ID, "error", err)
		return fmt.Errorf("failed to marshal run override: %w", err)
	}
	reportJSON, err := marshalNullable(run.Report)
	if err != nil {
		r.logger.Error("Failed to marshal run report", "runId", run.ID, "error", err)
		return fmt.Errorf("failed to marshal run report: %w", err)
	}

	t := domain.GetRunTable()
	query, args := querybuilder.NewQueryBuilder(schema).
		Insert(columns()...).
		Into(t.TableName()).
		Values(
			run.ID,
			run.Contract,
			run.Candidate,
			run.Status,
			overrideJSON,
			reportJSON,
			run.Error,
			run.CreatedAt,
			run.StartedAt,
			run.CompletedAt,
		).
		OnConflict(t.ID).
		SetExclude(t.Status, t.Override, t.Report, t.Error, t.StartedAt, t.CompletedAt).
		Build()

	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		r.logger.Error("Failed to save run", "runId", run.ID, "error", err)
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID
func (r *RunRepository) GetRun(ctx context.Context, runID uuid.UUID) (*domain.RunRecord, error) {
	query := `
		SELECT id, contract, candidate, status, override, report,
			   error, created_at, started_at, completed_at
		FROM runs
		WHERE id = $1
	`

	run, err := scanRun(r.db.QueryRowContext(ctx, query, runID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get run", "runId", runID, "error", err)
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns retrieves runs matching the filter, newest first
func (r *RunRepository) ListRuns(ctx context.Context, filter domain.RunFilter) ([]*domain.RunRecord, error) {
	query, args := listQuery(filter)
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		r.logger.Error("Failed to list runs", "error", err)
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

func listQuery(filter domain.RunFilter) (string, []interface{}) {
	t := domain.GetRunTable()
	qb := querybuilder.NewQueryBuilder(schema).
		Select(columns()...).
		From(t.TableName())
	if filter.Contract != "" {
		qb = qb.Where(t.Contract+" = ?", filter.Contract)
	}
	if len(filter.Statuses) > 0 {
		qb = qb.AndGroup(func(g querybuilder.QueryBuilder) {
			for _, s := range filter.Statuses {
				g.Or(t.Status+" = ?", s)
			}
		})
	}
	return qb.OrderBy(t.CreatedAt, false).Limit(filter.Limit).Build()
}

// ClaimPendingRuns moves the oldest pending runs to RUNNING inside one transaction.
func (r *RunRepository) ClaimPendingRuns(ctx context.Context, limit int) ([]*domain.RunRecord, error) {
	query := `
		SELECT id, contract, candidate, status, override, report,
			   error, created_at, started_at, completed_at
		FROM runs
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2
		FOR UPDATE SKIP LOCKED
	`

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		r.logger.Error("Failed to begin transaction", "error", err)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, query, domain.RunStatusPending, limit)
	if err != nil {
		r.logger.Error("Failed to select pending runs", "error", err)
		return nil, fmt.Errorf("failed to select pending runs: %w", err)
	}
	runs, err := r.collect(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	for _, run := range runs {
		_, err := tx.ExecContext(ctx,
			`UPDATE runs SET status = $1, started_at = $2 WHERE id = $3`,
			domain.RunStatusRunning, now, run.ID)
		if err != nil {
			r.logger.Error("Failed to claim run", "runId", run.ID, "error", err)
			return nil, fmt.Errorf("failed to claim run: %w", err)
		}
		run.Status = domain.RunStatusRunning
		run.StartedAt = &now
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit transaction", "error", err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return runs, nil
}

// UpdateRunStatus updates a run's status
func (r *RunRepository) UpdateRunStatus(ctx context.Context, runID uuid.UUID, status domain.RunStatus) error {
	t := domain.GetRunTable()
	query, args := querybuilder.NewQueryBuilder(schema).
		Update(t.TableName(), querybuilder.UpdateData{t.Status: status}).
		Where(t.ID+" = ?", runID).
		Build()

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		r.logger.Error("Failed to update run status", "runId", runID, "error", err)
		return fmt.Errorf("failed to update run status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("Error checking rows affected", "error", err)
		return fmt.Errorf("error checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", errs.ErrRunNotFound, runID)
	}
	return nil
}

// EnsureTableExists creates the runs table when missing
func (r *RunRepository) EnsureTableExists(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS runs (
			id UUID PRIMARY KEY,
			contract VARCHAR(128) NOT NULL,
			candidate VARCHAR(128) NOT NULL,
			status VARCHAR(32) NOT NULL,
			override JSONB,
			report JSONB,
			error TEXT,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL,
			started_at TIMESTAMP WITH TIME ZONE,
			completed_at TIMESTAMP WITH TIME ZONE
		);
		CREATE INDEX IF NOT EXISTS runs_status_created_idx ON runs (status, created_at);
	`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		r.logger.Error("Failed to create runs table", "error", err)
		return fmt.Errorf("failed to create runs table: %w", err)
	}
	return nil
}

func (r *RunRepository) collect(rows *sql.Rows) ([]*domain.RunRecord, error) {
	runs := make([]*domain.RunRecord, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			r.logger.Error("Failed to scan run row", "error", err)
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating run rows", "error", err)
		return nil, fmt.Errorf("error iterating run rows: %w", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*domain.RunRecord, error) {
	var run domain.RunRecord
	var overrideJSON, reportJSON []byte
	var runErr sql.NullString
	var startedAt, completedAt sql.NullTime

	err := row.Scan(
		&run.ID,
		&run.Contract,
		&run.Candidate,
		&run.Status,
		&overrideJSON,
		&reportJSON,
		&runErr,
		&run.CreatedAt,
		&startedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	if runErr.Valid {
		run.Error = &runErr.String
	}
	if startedAt.Valid {
		run.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}
	if len(overrideJSON) > 0 {
		if err := json.Unmarshal(overrideJSON, &run.Override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal run override: %w", err)
		}
	}
	if len(reportJSON) > 0 {
		if err := json.Unmarshal(reportJSON, &run.Report); err != nil {
			return nil, fmt.Errorf("failed to unmarshal run report: %w", err)
		}
	}
	return &run, nil
}

// marshalNullable maps a nil pointer to SQL NULL and anything else to JSON text.
func marshalNullable[T any](v *T) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}
