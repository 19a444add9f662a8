// Package logging builds the structured loggers used throughout the
// claim pipeline. Grounded on theRebelliousNerd-codenerd's CLI logger
// setup (cmd/nerd/main.go: zap.NewProductionConfig, an atomic debug
// level toggle, logger.Sync() at shutdown), generalized into a
// constructor so every stage process builds its own logger instead of
// relying on package-level state.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production-profile zap logger, switched to debug level
// when verbose is set, matching the teacher's PersistentPreRunE wiring.
func New(stage string, verbose bool) (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	return logger.Sugar().With("stage", stage), nil
}

// DocumentLog buffers the log lines produced while processing one
// document so the caller can flush them into the Document Record's
// log_text column (spec.md §3: "per-document log text"). It wraps the
// stage logger's core with a small in-memory zapcore.Core tee rather
// than writing to a file per document.
type DocumentLog struct {
	core *bufferCore
	*zap.SugaredLogger
}

// NewDocumentLog returns a logger scoped to one document whose entries
// are both forwarded to base and retained for Flush.
func NewDocumentLog(base *zap.SugaredLogger, recordID int64) *DocumentLog {
	buf := &bufferCore{level: zapcore.DebugLevel}
	tee := zapcore.NewTee(base.Desugar().Core(), buf)
	scoped := zap.New(tee).Sugar().With("doc_id", recordID)
	return &DocumentLog{core: buf, SugaredLogger: scoped}
}

// Flush returns the accumulated log text and clears the buffer.
func (d *DocumentLog) Flush() string {
	return d.core.flush()
}

type bufferCore struct {
	level   zapcore.Level
	entries []string
}

func (b *bufferCore) Enabled(level zapcore.Level) bool { return level >= b.level }

func (b *bufferCore) With(fields []zapcore.Field) zapcore.Core { return b }

func (b *bufferCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if b.Enabled(entry.Level) {
		return checked.AddCore(entry, b)
	}
	return checked
}

func (b *bufferCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	line := entry.Time.Format("2006-01-02T15:04:05.000Z07:00") + " " + entry.Level.String() + " " + entry.Message
	for _, f := range fields {
		line += " " + f.Key + "=" + fieldString(f)
	}
	b.entries = append(b.entries, line)
	return nil
}

func (b *bufferCore) Sync() error { return nil }

func (b *bufferCore) flush() string {
	out := ""
	for i, line := range b.entries {
		if i > 0 {
			out += "\n"
		}
		out += line
	}
	b.entries = nil
	return out
}

func fieldString(f zapcore.Field) string {
	enc := zapcore.NewMapObjectEncoder()
	f.AddTo(enc)
	return fmt.Sprintf("%v", enc.Fields[f.Key])
}
