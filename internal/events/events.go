// Package events delivers Todo change notifications to the configured sinks.
package events

import (
	"context"
	"errors"

	"todo-http-demo/internal/models"
	"todo-http-demo/pkg/logger"
)

// Sink receives change events.
type Sink interface {
	Name() string
	Publish(ctx context.Context, evt models.TodoEvent) error
	Close() error
}

// Pinger is implemented by sinks that can report their reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Recorder observes the outcome of each delivery; err is nil on success.
type Recorder func(sink string, err error)

// Fanout publishes every event to all sinks. Delivery failures are logged and
// recorded, never returned, so a broken sink cannot fail an HTTP request.
type Fanout struct {
	sinks  []Sink
	record Recorder
}

// NewFanout returns a Fanout over the given sinks. Nil sinks are skipped.
func NewFanout(record Recorder, sinks ...Sink) *Fanout {
	f := &Fanout{record: record}
	for _, s := range sinks {
		if s != nil {
			f.sinks = append(f.sinks, s)
		}
	}
	return f
}

// Sinks returns the names of the active sinks.
func (f *Fanout) Sinks() []string {
	names := make([]string, 0, len(f.sinks))
	for _, s := range f.sinks {
		names = append(names, s.Name())
	}
	return names
}

// Publish delivers evt to every sink.
func (f *Fanout) Publish(ctx context.Context, evt models.TodoEvent) {
	for _, s := range f.sinks {
		err := s.Publish(ctx, evt)
		if err != nil {
			logger.Warn(ctx, "Event publish failed", "sink", s.Name(), "type", evt.Type, "id", evt.ID, "error", err)
		}
		if f.record != nil {
			f.record(s.Name(), err)
		}
	}
}

// Ping checks every sink that supports it and joins the failures.
func (f *Fanout) Ping(ctx context.Context) error {
	var errs []error
	for _, s := range f.sinks {
		if p, ok := s.(Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				errs = append(errs, errors.New(s.Name()+": "+err.Error()))
			}
		}
	}
	return errors.Join(errs...)
}

// Close closes all sinks.
func (f *Fanout) Close() error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
