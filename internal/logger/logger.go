// Package logger writes the news service's structured logs through zerolog.
package logger

import (
	"io"
	"os"
	"strings"

	"go-news-app/internal/config"

	"github.com/rs/zerolog"
)

// Logger is what the handlers, services and background jobs log through.
// Error and Fatal attach err under the "error" key.
type Logger interface {
	Info(msg string)
	Warn(msg string)
	Error(err error, msg string)
	Fatal(err error, msg string)
	// With returns a child that adds fields to every entry, such as an
	// article_id or the editor subject.
	With(fields map[string]interface{}) Logger
}

type zerologLogger struct {
	logger zerolog.Logger
}

// New builds a Logger from cfg. Entries go to out[0] when given, else
// stdout. Format "console" is human readable; anything else is JSON. An
// unknown level falls back to info and is reported as the first entry.
func New(cfg config.LogConfig, out ...io.Writer) Logger {
	var dst io.Writer = os.Stdout
	if len(out) > 0 && out[0] != nil {
		dst = out[0]
	}
	if strings.EqualFold(cfg.Format, "console") {
		dst = zerolog.ConsoleWriter{Out: dst, NoColor: dst != os.Stdout}
	}

	level, badLevel := parseLevel(cfg.Level)
	zl := zerolog.New(dst).Level(level).With().Timestamp().Logger()
	if badLevel {
		zl.WithLevel(zerolog.WarnLevel).Str("level_config", cfg.Level).Msg("unknown log level, using info")
	}
	return &zerologLogger{logger: zl}
}

// parseLevel maps a configured level name to zerolog. Empty means info.
func parseLevel(name string) (zerolog.Level, bool) {
	if name == "" {
		return zerolog.InfoLevel, false
	}
	level, err := zerolog.ParseLevel(strings.ToLower(name))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel, true
	}
	return level, false
}

// Nop returns a Logger that drops every entry. Tests use it.
func Nop() Logger {
	return &zerologLogger{logger: zerolog.Nop()}
}

func (l *zerologLogger) Info(msg string) { l.logger.Info().Msg(msg) }

func (l *zerologLogger) Warn(msg string) { l.logger.Warn().Msg(msg) }

func (l *zerologLogger) Error(err error, msg string) { l.logger.Error().Err(err).Msg(msg) }

// Fatal logs and exits the process.
func (l *zerologLogger) Fatal(err error, msg string) { l.logger.Fatal().Err(err).Msg(msg) }

func (l *zerologLogger) With(fields map[string]interface{}) Logger {
	return &zerologLogger{logger: l.logger.With().Fields(fields).Logger()}
}
