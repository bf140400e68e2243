package runstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"gitlab.com/equivcheck-2025.net/internal/core/ports/primary"
	"gitlab.com/equivcheck-2025.net/internal/core/ports/secondary"
	"gitlab.com/equivcheck-2025.net/internal/domain"
	"gitlab.com/equivcheck-2025.net/internal/static/errs"
)

const (
	runPrefix      = "run/"
	statusPrefix   = "status/"
	overridePrefix = "override/"
	seedPrefix     = "seed/"

	statusTTL = 24 * time.Hour
)

var (
	_ secondary.RunRepository              = (*Store)(nil)
	_ secondary.ContractOverrideRepository = (*Store)(nil)
	_ secondary.RunStatusCache             = (*Store)(nil)
)

// Store serves every storage port from one BadgerDB.
type Store struct {
	db     *badger.DB
	logger primary.Logger
}

func NewStore(db *badger.DB, logger primary.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger,
	}
}

func runKey(id uuid.UUID) []byte {
	return []byte(runPrefix + id.String())
}

func (s *Store) SaveRun(ctx context.Context, run *domain.RunRecord) error {
	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(runKey(run.ID), payload)
	})
	if err != nil {
		s.logger.Error("Failed to save run", "runId", run.ID, "error", err)
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

func (s *Store) GetRun(ctx context.Context, runID uuid.UUID) (*domain.RunRecord, error) {
	var run *domain.RunRecord
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		run, err = getRun(txn, runID)
		return err
	})
	if err != nil {
		s.logger.Error("Failed to get run", "runId", runID, "error", err)
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

func (s *Store) ListRuns(ctx context.Context, filter domain.RunFilter) ([]*domain.RunRecord, error) {
	var runs []*domain.RunRecord
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		runs, err = scanRuns(txn, func(r *domain.RunRecord) bool {
			if filter.Contract != "" && r.Contract != filter.Contract {
				return false
			}
			return filter.HasStatus(r.Status)
		})
		return err
	})
	if err != nil {
		s.logger.Error("Failed to list runs", "error", err)
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].CreatedAt.After(runs[j].CreatedAt) })
	if filter.Limit > 0 && len(runs) > filter.Limit {
		runs = runs[:filter.Limit]
	}
	return runs, nil
}

func (s *Store) ClaimPendingRuns(ctx context.Context, limit int) ([]*domain.RunRecord, error) {
	var claimed []*domain.RunRecord
	err := s.db.Update(func(txn *badger.Txn) error {
		pending, err := scanRuns(txn, func(r *domain.RunRecord) bool {
			return r.Status == domain.RunStatusPending
		})
		if err != nil {
			return err
		}
		sort.Slice(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })
		if limit > 0 && len(pending) > limit {
			pending = pending[:limit]
		}

		now := time.Now()
		for _, run := range pending {
			run.Status = domain.RunStatusRunning
			run.StartedAt = &now
			if err := putRun(txn, run); err != nil {
				return err
			}
		}
		claimed = pending
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to claim pending runs", "error", err)
		return nil, fmt.Errorf("failed to claim pending runs: %w", err)
	}
	return claimed, nil
}

func (s *Store) UpdateRunStatus(ctx context.Context, runID uuid.UUID, status domain.RunStatus) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		run, err := getRun(txn, runID)
		if err != nil {
			return err
		}
		if run == nil {
			return fmt.Errorf("%w: %s", errs.ErrRunNotFound, runID)
		}
		run.Status = status
		return putRun(txn, run)
	})
	if err != nil {
		s.logger.Error("Failed to update run status", "runId", runID, "error", err)
		return fmt.Errorf("failed to update run status: %w", err)
	}
	return nil
}

func (s *Store) GetOverride(ctx context.Context, contract string) (*domain.ContractOverride, error) {
	var out *domain.ContractOverride
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(overridePrefix + contract))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			out = &domain.ContractOverride{}
			return json.Unmarshal(val, out)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get contract override: %w", err)
	}
	return out, nil
}

func (s *Store) GetActiveOverrides(ctx context.Context) ([]*domain.ContractOverride, error) {
	overrides := make([]*domain.ContractOverride, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		return eachValue(txn, overridePrefix, func(_ string, val []byte) error {
			var o domain.ContractOverride
			if err := json.Unmarshal(val, &o); err != nil {
				return err
			}
			if o.Active {
				overrides = append(overrides, &o)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get active overrides: %w", err)
	}
	return overrides, nil
}

func (s *Store) SaveOverride(ctx context.Context, o *domain.ContractOverride) error {
	if o.Contract == "" {
		return fmt.Errorf("contract name cannot be empty")
	}
	now := time.Now()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now

	payload, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("failed to marshal override: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(overridePrefix+o.Contract), payload)
	})
	if err != nil {
		s.logger.Error("Failed to save contract override", "contract", o.Contract, "error", err)
		return fmt.Errorf("failed to save contract override: %w", err)
	}
	return nil
}

func (s *Store) DeleteOverride(ctx context.Context, contract string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(overridePrefix + contract))
	})
	if err != nil {
		return fmt.Errorf("failed to delete contract override: %w", err)
	}
	return nil
}

func (s *Store) SetStatus(ctx context.Context, runID uuid.UUID, status domain.RunStatus) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(statusPrefix+runID.String()), []byte(status)).WithTTL(statusTTL)
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("failed to cache run status: %w", err)
	}
	return nil
}

func (s *Store) GetStatus(ctx context.Context, runID uuid.UUID) (domain.RunStatus, bool, error) {
	var status domain.RunStatus
	var found bool
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(statusPrefix + runID.String()))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			status, found = domain.RunStatus(val), true
			return nil
		})
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to get cached run status: %w", err)
	}
	return status, found, nil
}

func (s *Store) RecordFailingSeed(ctx context.Context, contract string, seed int64) error {
	key := seedPrefix + contract + "/" + strconv.FormatInt(seed, 10)
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), nil)
	})
	if err != nil {
		return fmt.Errorf("failed to record failing seed: %w", err)
	}
	return nil
}

func (s *Store) FailingSeeds(ctx context.Context, contract string) ([]int64, error) {
	prefix := seedPrefix + contract + "/"
	seeds := make([]int64, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		return eachValue(txn, prefix, func(key string, _ []byte) error {
			seed, err := strconv.ParseInt(strings.TrimPrefix(key, prefix), 10, 64)
			if err != nil {
				return nil
			}
			seeds = append(seeds, seed)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get failing seeds: %w", err)
	}
	sort.Slice(seeds, func(i, j int) bool { return seeds[i] < seeds[j] })
	return seeds, nil
}

func getRun(txn *badger.Txn, runID uuid.UUID) (*domain.RunRecord, error) {
	item, err := txn.Get(runKey(runID))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var run domain.RunRecord
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &run)
	}); err != nil {
		return nil, err
	}
	return &run, nil
}

func putRun(txn *badger.Txn, run *domain.RunRecord) error {
	payload, err := json.Marshal(run)
	if err != nil {
		return err
	}
	return txn.Set(runKey(run.ID), payload)
}

func scanRuns(txn *badger.Txn, keep func(*domain.RunRecord) bool) ([]*domain.RunRecord, error) {
	runs := make([]*domain.RunRecord, 0)
	err := eachValue(txn, runPrefix, func(_ string, val []byte) error {
		var run domain.RunRecord
		if err := json.Unmarshal(val, &run); err != nil {
			return err
		}
		if keep(&run) {
			runs = append(runs, &run)
		}
		return nil
	})
	return runs, err
}

// eachValue visits every key under prefix. The iterator is closed before
// returning so the caller may write in the same transaction.
func eachValue(txn *badger.Txn, prefix string, fn func(key string, val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
		item := it.Item()
		key := string(item.Key())
		if err := item.Value(func(val []byte) error {
			return fn(key, val)
		}); err != nil {
			return err
		}
	}
	return nil
}
