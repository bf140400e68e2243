package runstatus

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"gitlab.com/equivcheck-2025.net/internal/core/ports/primary"
	"gitlab.com/equivcheck-2025.net/internal/core/ports/secondary"
	"gitlab.com/equivcheck-2025.net/internal/domain"
)

const (
	runStatusPrefix   = "run:status:"
	failingSeedPrefix = "contract:failing-seeds:"
	statusExpiration  = 24 * time.Hour
)

var _ secondary.RunStatusCache = (*StatusCache)(nil)

// StatusCache implements the RunStatusCache interface with Redis
type StatusCache struct {
	redisClient *redis.Client
	logger      primary.Logger
}

// NewStatusCache creates a new Redis run status cache
func NewStatusCache(redisClient *redis.Client, logger primary.Logger) *StatusCache {
	return &StatusCache{
		redisClient: redisClient,
		logger:      logger,
	}
}

// SetStatus stores a run's status with expiration
func (c *StatusCache) SetStatus(ctx context.Context, runID uuid.UUID, status domain.RunStatus) error {
	key := runStatusPrefix + runID.String()
	if err := c.redisClient.Set(ctx, key, string(status), statusExpiration).Err(); err != nil {
		c.logger.Error("Failed to cache run status", "runId", runID, "error", err)
		return fmt.Errorf("failed to cache run status: %w", err)
	}
	return nil
}

// GetStatus reads a run's cached status
func (c *StatusCache) GetStatus(ctx context.Context, runID uuid.UUID) (domain.RunStatus, bool, error) {
	key := runStatusPrefix + runID.String()
	status, err := c.redisClient.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		c.logger.Error("Failed to get cached run status", "runId", runID, "error", err)
		return "", false, fmt.Errorf("failed to get cached run status: %w", err)
	}
	return domain.RunStatus(status), true, nil
}

// RecordFailingSeed adds a seed to the contract's failing seed set
func (c *StatusCache) RecordFailingSeed(ctx context.Context, contract string, seed int64) error {
	key := failingSeedPrefix + contract
	if err := c.redisClient.SAdd(ctx, key, strconv.FormatInt(seed, 10)).Err(); err != nil {
		c.logger.Error("Failed to record failing seed", "contract", contract, "error", err)
		return fmt.Errorf("failed to record failing seed: %w", err)
	}
	return nil
}

// FailingSeeds lists the recorded failing seeds of a contract in ascending order
func (c *StatusCache) FailingSeeds(ctx context.Context, contract string) ([]int64, error) {
	key := failingSeedPrefix + contract
	members, err := c.redisClient.SMembers(ctx, key).Result()
	if err != nil {
		c.logger.Error("Failed to get failing seeds", "contract", contract, "error", err)
		return nil, fmt.Errorf("failed to get failing seeds: %w", err)
	}

	seeds := make([]int64, 0, len(members))
	for _, m := range members {
		seed, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			// Foreign member, clean it up.
			c.logger.Warn("Removing malformed failing seed", "contract", contract, "value", m)
			c.redisClient.SRem(ctx, key, m)
			continue
		}
		seeds = append(seeds, seed)
	}
	sort.Slice(seeds, func(i, j int) bool { return seeds[i] < seeds[j] })
	return seeds, nil
}
