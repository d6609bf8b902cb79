package logx

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Debug        bool   `split_words:"true" default:"false"`
	PrettyFormat bool   `split_words:"true" default:"false"`
	Level        string `split_words:"true"`
}

var DefaultConfig = Config{}

func (c Config) level() zerolog.Level {
	if lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(c.Level))); err == nil && c.Level != "" {
		return lvl
	}
	if c.Debug {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}

// New builds a logger writing to w. PrettyFormat wraps w in a console writer.
func New(w io.Writer, conf Config) zerolog.Logger {
	if conf.PrettyFormat {
		w = zerolog.ConsoleWriter{Out: w}
	}
	return zerolog.New(w).
		Level(conf.level()).
		With().
		Timestamp().
		Caller().
		Stack().
		Logger()
}

// Init replaces the global logger. Logs go to stderr so the chat loop keeps
// stdout to itself.
func Init(opts ...Config) {
	conf := DefaultConfig
	if len(opts) > 0 {
		conf = opts[0]
	}
	log.Logger = New(os.Stderr, conf)
}

// Component returns the global logger tagged with a component name.
func Component(name string) zerolog.Logger {
	return log.Logger.With().Str("component", name).Logger()
}
