package memory

import (
	"context"
	"sync"

	"service-discounts/internal/domain"
)

// ResultSink keeps the lines pushed per order.
type ResultSink struct {
	mu     sync.Mutex
	pushed map[int64][]domain.LineItem
	// Err, when set, is returned by every push.
	Err error
}

func NewResultSink() *ResultSink {
	return &ResultSink{pushed: map[int64][]domain.LineItem{}}
}

func (r *ResultSink) PushResults(_ context.Context, orderID int64, lines []domain.LineItem) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.LineItem, len(lines))
	copy(out, lines)
	r.pushed[orderID] = out
	return nil
}

// Pushed returns the lines last pushed for an order.
func (r *ResultSink) Pushed(orderID int64) ([]domain.LineItem, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines, ok := r.pushed[orderID]
	return lines, ok
}
