package overriderepository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"gitlab.com/equivcheck-2025.net/internal/core/ports/primary"
	"gitlab.com/equivcheck-2025.net/internal/core/ports/secondary"
	"gitlab.com/equivcheck-2025.net/internal/domain"
	querybuilder "gitlab.com/equivcheck-2025.net/internal/utils"
)

var _ secondary.ContractOverrideRepository = (*OverrideRepository)(nil)

// OverrideRepository keeps per-contract run overrides in PostgreSQL
type OverrideRepository struct {
	db     *sqlx.DB
	logger primary.Logger
}

func NewOverrideRepository(db *sqlx.DB, logger primary.Logger) *OverrideRepository {
	return &OverrideRepository{
		db:     db,
		logger: logger,
	}
}

// GetOverride retrieves the override stored for a contract
func (r *OverrideRepository) GetOverride(ctx context.Context, contract string) (*domain.ContractOverride, error) {
	query := `
		SELECT contract, override, active, created_at, updated_at
		FROM contract_overrides
		WHERE contract = $1
	`

	o, err := scanOverride(r.db.QueryRowContext(ctx, query, contract))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get contract override", "contract", contract, "error", err)
		return nil, fmt.Errorf("failed to get contract override: %w", err)
	}
	return o, nil
}

// GetActiveOverrides retrieves all active overrides
func (r *OverrideRepository) GetActiveOverrides(ctx context.Context) ([]*domain.ContractOverride, error) {
	query := `
		SELECT contract, override, active, created_at, updated_at
		FROM contract_overrides
		WHERE active = true
		ORDER BY contract
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to get active overrides", "error", err)
		return nil, fmt.Errorf("failed to get active overrides: %w", err)
	}
	defer rows.Close()

	overrides := make([]*domain.ContractOverride, 0)
	for rows.Next() {
		o, err := scanOverride(rows)
		if err != nil {
			r.logger.Error("Failed to scan contract override", "error", err)
			return nil, fmt.Errorf("failed to scan contract override: %w", err)
		}
		overrides = append(overrides, o)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating contract overrides", "error", err)
		return nil, fmt.Errorf("error iterating contract overrides: %w", err)
	}
	return overrides, nil
}

// SaveOverride upserts a contract override
func (r *OverrideRepository) SaveOverride(ctx context.Context, o *domain.ContractOverride) error {
	if o.Contract == "" {
		return fmt.Errorf("contract name cannot be empty")
	}

	payload, err := json.Marshal(o.Override)
	if err != nil {
		return fmt.Errorf("failed to marshal override: %w", err)
	}

	now := time.Now()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now

	query, args := querybuilder.NewQueryBuilder("public").
		Insert("contract", "override", "active", "created_at", "updated_at").
		Into("contract_overrides").
		Values(o.Contract, string(payload), o.Active, o.CreatedAt, o.UpdatedAt).
		OnConflict("contract").
		SetExclude("override", "active", "updated_at").
		Build()

	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		r.logger.Error("Failed to save contract override", "contract", o.Contract, "error", err)
		return fmt.Errorf("failed to save contract override: %w", err)
	}

	r.logger.Info("Saved contract override", "contract", o.Contract, "active", o.Active)
	return nil
}

// DeleteOverride removes a contract override. Missing rows are not an error.
func (r *OverrideRepository) DeleteOverride(ctx context.Context, contract string) error {
	query, args := querybuilder.NewQueryBuilder("public").
		Delete("contract_overrides").
		Where("contract = ?", contract).
		Build()

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		r.logger.Error("Failed to delete contract override", "contract", contract, "error", err)
		return fmt.Errorf("failed to delete contract override: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		r.logger.Warn("Contract override not found for deletion", "contract", contract)
		return nil
	}

	r.logger.Info("Deleted contract override", "contract", contract)
	return nil
}

// EnsureTableExists creates the contract_overrides table when missing
func (r *OverrideRepository) EnsureTableExists(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS contract_overrides (
			contract VARCHAR(128) PRIMARY KEY,
			override JSONB NOT NULL,
			active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL,
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL
		)
	`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		r.logger.Error("Failed to create contract_overrides table", "error", err)
		return fmt.Errorf("failed to create contract_overrides table: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOverride(row scanner) (*domain.ContractOverride, error) {
	var o domain.ContractOverride
	var payload []byte
	if err := row.Scan(&o.Contract, &payload, &o.Active, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(payload, &o.Override); err != nil {
		return nil, fmt.Errorf("failed to unmarshal override: %w", err)
	}
	return &o, nil
}
