package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"card-room/internal/config"
)

var dest io.Writer = os.Stdout

// Writer returns the destination configured by Init, so the HTTP request
// logger can share it with the global logger.
func Writer() io.Writer { return dest }

// Init configures the global zerolog logger. When cfg.File is set, output
// goes to a size-capped file instead of stdout. The returned func closes
// that file; call it on shutdown.
func Init(cfg config.LogConfig) func() {
	level := zerolog.InfoLevel
	if v := strings.TrimSpace(cfg.Level); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}

	dest = os.Stdout
	closeFn := func() {}
	if cfg.File != "" {
		if w, err := newSizeLimitedWriter(cfg.File, cfg.MaxMB); err == nil {
			dest = w
			closeFn = func() { _ = w.Close() }
		}
	}
	output := dest
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(output).With().Timestamp().Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger
	return closeFn
}
