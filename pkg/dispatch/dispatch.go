// Package dispatch provides in-process ports.ActionDispatcher implementations.
package dispatch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/ports"
)

var (
	_ ports.ActionDispatcher = (*Logger)(nil)
	_ ports.ActionDispatcher = (*Recorder)(nil)
)

// Logger writes every action to a structured log. It is the default when no
// outbox is configured.
type Logger struct {
	logger *slog.Logger
}

// NewLogger creates a Logger dispatcher.
func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger}
}

func (l *Logger) Dispatch(ctx context.Context, req domain.ActionRequest) error {
	l.logger.InfoContext(ctx, "Action dispatched",
		"type", req.Type,
		"user_id", req.UserID,
		"payload", req.Payload,
	)
	return nil
}

// Recorder keeps dispatched actions in memory.
type Recorder struct {
	mu      sync.Mutex
	actions []domain.ActionRequest
	// Err, when set, is returned by Dispatch after recording.
	Err error
}

func (r *Recorder) Dispatch(ctx context.Context, req domain.ActionRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, req)
	return r.Err
}

// Actions returns a copy of the recorded actions.
func (r *Recorder) Actions() []domain.ActionRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.ActionRequest(nil), r.actions...)
}

// OfType returns the recorded actions of type t.
func (r *Recorder) OfType(t string) []domain.ActionRequest {
	var out []domain.ActionRequest
	for _, a := range r.Actions() {
		if a.Type == t {
			out = append(out, a)
		}
	}
	return out
}

// Fanout sends every action to all dispatchers and returns the first error.
type Fanout []ports.ActionDispatcher

func (f Fanout) Dispatch(ctx context.Context, req domain.ActionRequest) error {
	var first error
	for _, d := range f {
		if err := d.Dispatch(ctx, req); err != nil && first == nil {
			first = err
		}
	}
	return first
}
