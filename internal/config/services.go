package config

import "time"

// EngineCfg drives the background run executor.
type EngineCfg struct {
	ClaimPendingRunsInterval time.Duration `validate:"gt=0"`
	ClaimBatchSize           int           `validate:"gt=0"`
	Workers                  int           `validate:"gt=0"`
}

func NewEngineCfg() *EngineCfg {
	return &EngineCfg{
		ClaimPendingRunsInterval: getEnvSeconds("CLAIM_PENDING_RUNS_INTERVAL_SEC", 5),
		ClaimBatchSize:           getEnvInt("CLAIM_BATCH_SIZE", 8),
		Workers:                  getEnvInt("RUN_WORKERS", 2),
	}
}
