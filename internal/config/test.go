package config

import "github.com/caarlos0/env/v11"

// TestConfig points the database tests at a disposable Postgres. Each test
// applies the migrations into a throwaway schema there, so the DSN's default
// schema is never touched.
type TestConfig struct {
	TestPostgresDSN string `env:"TEST_POSTGRES_DSN,required,notEmpty"`
}

func LoadTest() (TestConfig, error) {
	var cfg TestConfig
	err := env.Parse(&cfg)
	return cfg, err
}
