package config

type HTTPConfig struct {
	Port        string `validate:"required,numeric"`
	ServiceName string
}

func NewHTTPConfig() *HTTPConfig {
	return &HTTPConfig{
		Port:        getEnv("PORT", "8080"),
		ServiceName: getEnv("SERVICE_NAME", "equivcheck"),
	}
}

type BadgerConfig struct {
	Path string `validate:"required"`
}

func NewBadgerConfig() *BadgerConfig {
	return &BadgerConfig{
		Path: getEnv("EQ_STORE_PATH", ".equivcheck/store"),
	}
}
