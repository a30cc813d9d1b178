package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Dallionking/casper-risk-oracle/internal/config"
)

// Options tweaks where log lines go.
type Options struct {
	// Verbose forces debug level regardless of the configured level.
	Verbose bool
	// Quiet keeps stderr clean for full-screen programs. Lines still reach
	// the log file when one is configured; otherwise they are discarded.
	Quiet bool
}

// Logger is a logrus logger plus the file writer backing it, if any.
type Logger struct {
	*logrus.Logger
	closer io.Closer
}

// New builds a logger from the log section of the config.
func New(cfg config.LogConfig, opts Options) *Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	if opts.Verbose {
		level = logrus.DebugLevel
	}
	l.SetLevel(level)

	out := &Logger{Logger: l}

	var file io.Writer
	if cfg.File != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    orDefault(cfg.MaxSizeMB, 10),
			MaxBackups: orDefault(cfg.MaxBackups, 3),
			MaxAge:     orDefault(cfg.MaxAgeDays, 14),
		}
		file = lj
		out.closer = lj
	}

	switch {
	case opts.Quiet && file != nil:
		l.SetOutput(file)
	case opts.Quiet:
		l.SetOutput(io.Discard)
	case file != nil:
		l.SetOutput(io.MultiWriter(os.Stderr, file))
	default:
		l.SetOutput(os.Stderr)
	}

	return out
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &Logger{Logger: l}
}

// Module returns an entry tagged with the module name.
func (l *Logger) Module(name string) *logrus.Entry {
	return l.WithField("module", name)
}

// Close releases the rotating log file, if any.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	err := l.closer.Close()
	l.closer = nil
	return err
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
