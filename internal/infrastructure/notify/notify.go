// Package notify delivers the end-of-run acknowledgement to the invoking system.
package notify

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"service-discounts/internal/logging"
)

// LogNotifier writes each acknowledgement to the log.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, status string, result map[string]any) {
	logging.Info("caller notified", zap.String("status", status), zap.Any("result", result))
}

// Notification is one recorded acknowledgement.
type Notification struct {
	Status string
	Result map[string]any
}

// Recorder keeps every acknowledgement it receives.
type Recorder struct {
	mu   sync.Mutex
	sent []Notification
}

func (r *Recorder) Notify(_ context.Context, status string, result map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, Notification{Status: status, Result: result})
}

// Sent returns the acknowledgements received so far.
func (r *Recorder) Sent() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.sent))
	copy(out, r.sent)
	return out
}

// Last returns the latest acknowledgement.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sent) == 0 {
		return Notification{}, false
	}
	return r.sent[len(r.sent)-1], true
}
