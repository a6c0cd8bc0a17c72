package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/storyforge/core/command"
	"github.com/dmitrymomot/storyforge/core/logger"
)

// Sink receives the live command list and terminal alerts.
type Sink interface {
	BroadcastCommandList(ctx context.Context, snapshots []command.Snapshot) error
	Notify(ctx context.Context, alert command.Alert) error
}

type fanout []Sink

// Fanout delivers every call to all sinks. Each sink is called even when an
// earlier one fails; the errors are joined.
func Fanout(sinks ...Sink) Sink {
	out := make(fanout, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (f fanout) BroadcastCommandList(ctx context.Context, snapshots []command.Snapshot) error {
	var errs []error
	for _, s := range f {
		if err := s.BroadcastCommandList(ctx, snapshots); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanout) Notify(ctx context.Context, alert command.Alert) error {
	var errs []error
	for _, s := range f {
		if err := s.Notify(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogSink writes alerts and list sizes to a logger.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a sink that logs through log.
func NewLogSink(log *slog.Logger) *LogSink {
	if log == nil {
		log = slog.Default()
	}
	return &LogSink{logger: log}
}

func (s *LogSink) BroadcastCommandList(ctx context.Context, snapshots []command.Snapshot) error {
	s.logger.DebugContext(ctx, "command list updated",
		logger.Component("notify"),
		logger.Count("commands", len(snapshots)))
	return nil
}

func (s *LogSink) Notify(ctx context.Context, alert command.Alert) error {
	level := slog.LevelInfo
	if alert.Level == command.LevelError {
		level = slog.LevelWarn
	}
	s.logger.Log(ctx, level, "command notification",
		logger.Component("notify"),
		slog.String("title", alert.Title),
		slog.String("message", alert.Message),
		slog.String("level", string(alert.Level)))
	return nil
}
