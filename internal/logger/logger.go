// Package logger owns the process-wide zerolog logger. Components take a
// child from WithComponent once at construction time.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Config struct {
	Level  string `mapstructure:"LOG_LEVEL"`
	Debug  bool   `mapstructure:"LOG_DEBUG"`
	Output string `mapstructure:"LOG_OUTPUT"`
	Format string `mapstructure:"LOG_FORMAT"`
}

var (
	mu   sync.RWMutex
	root = zerolog.New(os.Stdout).With().Timestamp().Logger()
)

// Init replaces the process-wide logger. On error the previous one stays.
func Init(cfg Config) error {
	w, err := writer(cfg)
	if err != nil {
		return err
	}
	l, err := build(cfg, w)
	if err != nil {
		return err
	}

	mu.Lock()
	root = l
	mu.Unlock()
	zerolog.DefaultContextLogger = &l
	return nil
}

func build(cfg Config, w io.Writer) (zerolog.Logger, error) {
	level, err := level(cfg)
	if err != nil {
		return zerolog.Logger{}, err
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

func level(cfg Config) (zerolog.Level, error) {
	if cfg.Debug {
		return zerolog.DebugLevel, nil
	}
	if strings.TrimSpace(cfg.Level) == "" {
		return zerolog.InfoLevel, nil
	}
	l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("log level: %w", err)
	}
	return l, nil
}

// writer picks the sink from LOG_OUTPUT (stdout, stderr) and LOG_FORMAT (json, console).
func writer(cfg Config) (io.Writer, error) {
	var out io.Writer
	switch strings.ToLower(cfg.Output) {
	case "", "stdout":
		out = os.Stdout
	case "stderr":
		out = os.Stderr
	default:
		return nil, fmt.Errorf("unknown log output %q", cfg.Output)
	}

	switch strings.ToLower(cfg.Format) {
	case "", "json":
		return out, nil
	case "console":
		return zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}, nil
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
}

func GetLogger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root
}

// Fatal logs through the process-wide logger and exits.
func Fatal() *zerolog.Event {
	l := GetLogger()
	return l.Fatal()
}

func WithComponent(component string) zerolog.Logger {
	return GetLogger().With().Str("component", component).Logger()
}
