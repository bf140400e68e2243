package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
)

type AppConfig struct {
	DebugMode      bool
	EngineCfg      *EngineCfg      `validate:"required"`
	RunDefaults    *RunDefaults    `validate:"required"`
	RedisConfig    *RedisConfig    `validate:"required"`
	PostgresConfig *PostgresConfig `validate:"required"`
	JwtConfig      *JwtConfig      `validate:"required"`
	HTTPConfig     *HTTPConfig     `validate:"required"`
	BadgerConfig   *BadgerConfig   `validate:"required"`
	OverridesFile  string
}

func NewSystemConfig() *AppConfig {
	return &AppConfig{
		DebugMode:      os.Getenv("DEBUG_MODE") == "true",
		EngineCfg:      NewEngineCfg(),
		RunDefaults:    NewRunDefaults(),
		RedisConfig:    NewRedisConfig(),
		PostgresConfig: NewPostgresConfig(),
		JwtConfig:      NewJwtConfig(),
		HTTPConfig:     NewHTTPConfig(),
		BadgerConfig:   NewBadgerConfig(),
		OverridesFile:  os.Getenv("EQ_OVERRIDES_FILE"),
	}
}

// Validate checks every section. Run defaults are checked separately by the
// resolver, which owns their cross-field rules.
func (c *AppConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
