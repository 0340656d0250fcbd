package config

import "github.com/caarlos0/env/v11"

type BotConfig struct {
	ServerURL   string `env:"SERVER_URL" envDefault:"http://localhost:8080"`
	Token       string `env:"BOT_TOKEN" envDefault:""`
	TableID     string `env:"TABLE_ID" envDefault:""`
	PollEveryMs int    `env:"POLL_EVERY_MS" envDefault:"500"`
	BuyIn       int64  `env:"BUY_IN" envDefault:"1000"`
}

func LoadBot() (BotConfig, error) {
	var cfg BotConfig
	err := env.Parse(&cfg)
	return cfg, err
}
