package config

type RedisConfig struct {
	DB       int    `validate:"gte=0"`
	Url      string `validate:"required"`
	Password string
	Enabled  bool
}

func NewRedisConfig() *RedisConfig {
	return &RedisConfig{
		DB:       getEnvInt("REDIS_DB", 0),
		Url:      getEnv("REDIS_URL", "localhost:6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		Enabled:  getEnv("REDIS_ENABLED", "true") == "true",
	}
}
