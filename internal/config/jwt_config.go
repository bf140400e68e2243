package config

import "os"

type JwtConfig struct {
	Secret string
	Method string `validate:"oneof=HS256 HS384 HS512"`
}

func NewJwtConfig() *JwtConfig {
	return &JwtConfig{
		Secret: os.Getenv("JWT_SECRET"),
		Method: getEnv("JWT_METHOD", "HS256"),
	}
}

// AuthEnabled reports whether the API requires bearer tokens.
func (c *JwtConfig) AuthEnabled() bool {
	return c.Secret != ""
}
