package requestlog

import (
	"strings"
	"sync"
)

// DefaultCapacity is the number of records a History keeps by default.
const DefaultCapacity = 100

// History is a bounded FIFO of records. When full, recording evicts the
// oldest record. Order is the order Record calls complete.
type History struct {
	mu       sync.RWMutex
	records  []*Record
	capacity int
}

// NewHistory creates a History holding up to capacity records.
// Non-positive capacity means DefaultCapacity.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &History{
		records:  make([]*Record, 0, capacity),
		capacity: capacity,
	}
}

// Capacity returns the maximum number of records kept.
func (h *History) Capacity() int {
	return h.capacity
}

// Record appends rec, evicting the oldest record beyond capacity.
func (h *History) Record(rec *Record) {
	if rec == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	// FIFO eviction: remove oldest if at capacity
	if len(h.records) >= h.capacity {
		copy(h.records, h.records[1:])
		h.records = h.records[:len(h.records)-1]
	}
	h.records = append(h.records, rec)
}

// OnRequest implements Listener.
func (h *History) OnRequest(rec *Record) {
	h.Record(rec)
}

// All returns a snapshot, newest first.
func (h *History) All() []*Record {
	return h.List(nil)
}

// List returns records matching filter, newest first. A nil filter matches all.
func (h *History) List(filter *Filter) []*Record {
	h.mu.RLock()
	defer h.mu.RUnlock()

	result := make([]*Record, 0, len(h.records))
	for i := len(h.records) - 1; i >= 0; i-- {
		rec := h.records[i]
		if filter != nil && !filter.matches(rec) {
			continue
		}
		result = append(result, rec)
		if filter != nil && filter.Limit > 0 && len(result) == filter.Limit {
			break
		}
	}
	return result
}

// Get returns the record with id, or nil.
func (h *History) Get(id string) *Record {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, rec := range h.records {
		if rec.ID == id {
			return rec
		}
	}
	return nil
}

// Len returns the number of records held.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}

// Clear removes all records.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	clear(h.records)
	h.records = h.records[:0]
}

// Filter narrows History.List. Zero fields match everything.
type Filter struct {
	// Method matches case-insensitively.
	Method string

	// PathPrefix matches the start of the request path.
	PathPrefix string

	// EndpointID matches the answering endpoint.
	EndpointID string

	// Status matches the response status.
	Status int

	// Unmatched selects only requests no endpoint answered.
	Unmatched bool

	// Limit caps the result size.
	Limit int
}

func (f *Filter) matches(rec *Record) bool {
	if f.Method != "" && !strings.EqualFold(rec.Method, f.Method) {
		return false
	}
	if f.PathPrefix != "" && !strings.HasPrefix(rec.Path, f.PathPrefix) {
		return false
	}
	if f.EndpointID != "" && rec.EndpointID != f.EndpointID {
		return false
	}
	if f.Status != 0 && rec.Status != f.Status {
		return false
	}
	if f.Unmatched && rec.Matched() {
		return false
	}
	return true
}
