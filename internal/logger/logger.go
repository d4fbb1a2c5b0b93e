package logger

import (
	"io"
	"os"

	"github.com/ccmarris/b1td-country-ip-blocking/internal/config"
	"github.com/rs/zerolog"
)

// Logger — тонкая обёртка над zerolog с методами в стиле "msg, key, value, ...".
type Logger struct {
	zl zerolog.Logger
}

func New(cfg *config.Logger) *Logger {
	return NewWithWriter(os.Stderr, cfg)
}

func NewWithWriter(w io.Writer, cfg *config.Logger) *Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	zl := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return &Logger{zl: zl}
}

func (l *Logger) Debug(msg string, kv ...any) { l.emit(l.zl.Debug(), msg, kv) }
func (l *Logger) Info(msg string, kv ...any)  { l.emit(l.zl.Info(), msg, kv) }
func (l *Logger) Warn(msg string, kv ...any)  { l.emit(l.zl.Warn(), msg, kv) }
func (l *Logger) Error(msg string, kv ...any) { l.emit(l.zl.Error(), msg, kv) }

func (l *Logger) emit(e *zerolog.Event, msg string, kv []any) {
	e.Fields(kv).Msg(msg)
}
