package memory

import (
	"context"
	"sync"

	appoutbox "homestay/internal/app/outbox"
)

// Outbox keeps event records in memory until they are flushed. Tests use
// Records to assert on what a command emitted.
type Outbox struct {
	mu      sync.Mutex
	pending []appoutbox.EventRecord
	flushed []appoutbox.EventRecord
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Add(_ context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending = append(o.pending, record)
	return nil
}

func (o *Outbox) Flush(context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.flushed = append(o.flushed, o.pending...)
	o.pending = nil
	return nil
}

// Records returns everything added so far, flushed or not.
func (o *Outbox) Records() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]appoutbox.EventRecord, 0, len(o.flushed)+len(o.pending))
	out = append(out, o.flushed...)
	out = append(out, o.pending...)
	return out
}

var _ appoutbox.Outbox = (*Outbox)(nil)
