package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultMaxSizeMB  = 50
	defaultMaxBackups = 5
	defaultMaxAgeDays = 30
)

// Options дополнительные параметры ротации файла логов
type Options struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Logger логгер с printf-подобным API поверх slog
// Пишет одновременно в stdout и в файл с ротацией
type Logger struct {
	slog *slog.Logger
	file io.Closer
}

// New создает логгер, пишущий в stdout и в файл (если путь не пустой)
func New(file string, level string) (*Logger, error) {
	return NewWithOptions(file, level, Options{})
}

// NewWithOptions создает логгер с параметрами ротации
func NewWithOptions(file string, level string, opts Options) (*Logger, error) {
	writers := []io.Writer{os.Stdout}

	var closer io.Closer
	if file != "" {
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}

		rotator := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    valueOr(opts.MaxSizeMB, defaultMaxSizeMB),
			MaxBackups: valueOr(opts.MaxBackups, defaultMaxBackups),
			MaxAge:     valueOr(opts.MaxAgeDays, defaultMaxAgeDays),
			Compress:   opts.Compress,
		}
		writers = append(writers, rotator)
		closer = rotator
	}

	handler := slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level: parseLevel(level),
	})

	return &Logger{
		slog: slog.New(handler),
		file: closer,
	}, nil
}

// NewNop создает логгер, который ничего не пишет (для тестов)
func NewNop() *Logger {
	return &Logger{slog: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// Debug пишет отладочное сообщение
func (l *Logger) Debug(format string, v ...interface{}) {
	l.slog.Debug(fmt.Sprintf(format, v...))
}

// Info пишет информационное сообщение
func (l *Logger) Info(format string, v ...interface{}) {
	l.slog.Info(fmt.Sprintf(format, v...))
}

// Warn пишет предупреждение
func (l *Logger) Warn(format string, v ...interface{}) {
	l.slog.Warn(fmt.Sprintf(format, v...))
}

// Error пишет ошибку
func (l *Logger) Error(format string, v ...interface{}) {
	l.slog.Error(fmt.Sprintf(format, v...))
}

// Fatal пишет ошибку и завершает процесс
func (l *Logger) Fatal(format string, v ...interface{}) {
	l.slog.Error(fmt.Sprintf(format, v...))
	_ = l.Close()
	os.Exit(1)
}

// Close закрывает файл логов
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func valueOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
