package optsim

import (
	"errors"
	"sync"
)

// HitSink receives digitized events in event order.
type HitSink interface {
	WriteEvent(record *EventRecord) error
	Close() error
}

// MemorySink keeps every record in memory.
type MemorySink struct {
	mu      sync.Mutex
	Records []*EventRecord
	closed  bool
}

func (m *MemorySink) WriteEvent(record *EventRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errors.New("optsim: write to closed memory sink")
	}
	m.Records = append(m.Records, record)
	return nil
}

func (m *MemorySink) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// MultiSink writes every record to all its sinks.
type MultiSink []HitSink

func (s MultiSink) WriteEvent(record *EventRecord) error {
	for _, sink := range s {
		if err := sink.WriteEvent(record); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink and joins their errors.
func (s MultiSink) Close() error {
	var errs []error
	for _, sink := range s {
		errs = append(errs, sink.Close())
	}
	return errors.Join(errs...)
}
