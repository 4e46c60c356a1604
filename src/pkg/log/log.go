// Package log provides structured logging for commands, errors and general information.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"treescape/local-app/src/pkg/model"
)

// Fields carries structured key/value pairs attached to a log entry.
type Fields map[string]any

// Message represents a message to be logged
type Message struct {
	Level   Level
	Content string
	Fields  Fields
	Context context.Context
}

// Logger represents a logging instance that can write to command, error, and info log files
type Logger struct {
	commandLogger *slog.Logger
	errorLogger   *slog.Logger
	infoLogger    *slog.Logger
	files         []*os.File
	logChan       chan Message
	done          chan struct{}
	wg            sync.WaitGroup
	level         Level
}

// NewLogger creates a new Logger instance writing to the log files named by
// the configuration. Messages above the given level are dropped.
func NewLogger(cfg *model.Config, level Level) (*Logger, error) {
	// Create log directory if it doesn't exist
	if err := os.MkdirAll(cfg.LogFolder, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	var files []*os.File
	open := func(name string) (*os.File, error) {
		f, err := os.OpenFile(filepath.Join(cfg.LogFolder, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			for _, prev := range files {
				prev.Close()
			}
			return nil, fmt.Errorf("failed to open log file %s: %w", name, err)
		}
		files = append(files, f)
		return f, nil
	}

	commandFile, err := open(cfg.CommandLog)
	if err != nil {
		return nil, err
	}
	errorFile, err := open(cfg.ErrorLog)
	if err != nil {
		return nil, err
	}
	infoFile, err := open(cfg.InfoLog)
	if err != nil {
		return nil, err
	}

	logger := newLogger(commandFile, errorFile, infoFile, level)
	logger.files = files
	return logger, nil
}

// NewDiscard creates a Logger that drops every message. Used by tests and
// tools that need a Logger collaborator without log files.
func NewDiscard() *Logger {
	return newLogger(io.Discard, io.Discard, io.Discard, LevelError)
}

func newLogger(commandW, errorW, infoW io.Writer, level Level) *Logger {
	logger := &Logger{
		commandLogger: slog.New(slog.NewJSONHandler(commandW, &slog.HandlerOptions{Level: slog.LevelInfo})),
		errorLogger:   slog.New(slog.NewJSONHandler(errorW, &slog.HandlerOptions{Level: slog.LevelWarn})),
		infoLogger:    slog.New(slog.NewJSONHandler(infoW, &slog.HandlerOptions{Level: slog.LevelDebug})),
		logChan:       make(chan Message, 100),
		done:          make(chan struct{}),
		level:         level,
	}
	logger.wg.Add(1)
	go logger.processLogs()
	return logger
}

// processLogs handles incoming log messages
func (l *Logger) processLogs() {
	defer l.wg.Done()
	for {
		select {
		case msg := <-l.logChan:
			l.write(msg)
		case <-l.done:
			// Drain what is already queued before stopping.
			for {
				select {
				case msg := <-l.logChan:
					l.write(msg)
				default:
					return
				}
			}
		}
	}
}

func (l *Logger) write(msg Message) {
	ctx := msg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	switch msg.Level {
	case LevelCommand:
		l.commandLogger.LogAttrs(ctx, slog.LevelInfo, msg.Content, attrs(msg.Fields)...)
	case LevelError, LevelWarn:
		l.errorLogger.LogAttrs(ctx, msg.Level.toSlogLevel(), msg.Content, attrs(msg.Fields)...)
	default:
		l.infoLogger.LogAttrs(ctx, msg.Level.toSlogLevel(), msg.Content, attrs(msg.Fields)...)
	}
}

func attrs(fields Fields) []slog.Attr {
	out := make([]slog.Attr, 0, len(fields))
	for k, v := range fields {
		out = append(out, slog.Any(k, v))
	}
	return out
}

func (l *Logger) log(ctx context.Context, level Level, msg string, fields Fields) {
	if level > l.level && level != LevelCommand && level != LevelError {
		return
	}
	select {
	case l.logChan <- Message{Level: level, Content: msg, Fields: fields, Context: ctx}:
	case <-l.done:
	}
}

// Command logs an executed command to the command log file.
func (l *Logger) Command(ctx context.Context, msg string, fields Fields) {
	l.log(ctx, LevelCommand, msg, fields)
}

// Error logs an error to the error log file.
func (l *Logger) Error(ctx context.Context, msg string, fields Fields) {
	l.log(ctx, LevelError, msg, fields)
}

// Warn logs a warning to the error log file.
func (l *Logger) Warn(ctx context.Context, msg string, fields Fields) {
	l.log(ctx, LevelWarn, msg, fields)
}

// Info logs general information to the info log file.
func (l *Logger) Info(ctx context.Context, msg string, fields Fields) {
	l.log(ctx, LevelInfo, msg, fields)
}

// Debug logs debug details to the info log file.
func (l *Logger) Debug(ctx context.Context, msg string, fields Fields) {
	l.log(ctx, LevelDebug, msg, fields)
}

// Close stops the logging goroutine and closes all log files
func (l *Logger) Close() error {
	close(l.done)
	l.wg.Wait() // Wait for the logging goroutine to finish

	for _, f := range l.files {
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to close log file: %w", err)
		}
	}
	return nil
}
