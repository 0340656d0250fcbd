package config

import "github.com/caarlos0/env/v11"

// TableConfig carries the table service knobs: turn expiry, bot autoplay
// budgets and default chip amounts.
type TableConfig struct {
	TurnTimeoutSecs int `env:"TURN_TIMEOUT_SECS" envDefault:"30"`

	// BotSteps caps synchronous bot autoplay per request. BotOnlySteps is the
	// relaxed ceiling used when every seat is a bot, so bot tables still make
	// progress across whole hands.
	BotSteps     int `env:"BOT_STEPS" envDefault:"32"`
	BotOnlySteps int `env:"BOT_ONLY_STEPS" envDefault:"256"`

	DefaultBuyIn      int64 `env:"DEFAULT_BUY_IN" envDefault:"1000"`
	DefaultSmallBlind int64 `env:"DEFAULT_SMALL_BLIND" envDefault:"5"`
	DefaultBigBlind   int64 `env:"DEFAULT_BIG_BLIND" envDefault:"10"`
}

func LoadTable() (TableConfig, error) {
	var cfg TableConfig
	err := env.Parse(&cfg)
	return cfg, err
}
