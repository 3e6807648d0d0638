package requestlog

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(id string) *Record {
	return &Record{ID: id, Method: "GET", Path: "/" + id, Status: 200}
}

func ids(records []*Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

// ============================================================================
// History
// ============================================================================

func TestHistory_NewestFirst(t *testing.T) {
	h := NewHistory(10)
	h.Record(rec("a"))
	h.Record(rec("b"))
	h.Record(rec("c"))

	assert.Equal(t, []string{"c", "b", "a"}, ids(h.All()))
	assert.Equal(t, 3, h.Len())
}

func TestHistory_EvictsOldest(t *testing.T) {
	h := NewHistory(DefaultCapacity)
	for i := 0; i < 101; i++ {
		h.Record(rec(fmt.Sprintf("r%d", i)))
	}

	all := h.All()
	require.Len(t, all, 100)
	assert.Equal(t, "r100", all[0].ID)
	assert.Equal(t, "r1", all[len(all)-1].ID)
	assert.Nil(t, h.Get("r0"), "first record evicted")
}

func TestHistory_DefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultCapacity, NewHistory(0).Capacity())
	assert.Equal(t, DefaultCapacity, NewHistory(-3).Capacity())
}

func TestHistory_SnapshotIsolation(t *testing.T) {
	h := NewHistory(5)
	h.Record(rec("a"))
	snap := h.All()
	h.Record(rec("b"))

	assert.Len(t, snap, 1)
	assert.Len(t, h.All(), 2)
}

func TestHistory_Clear(t *testing.T) {
	h := NewHistory(5)
	h.Record(rec("a"))
	h.Clear()

	assert.Zero(t, h.Len())
	assert.Empty(t, h.All())

	h.Record(rec("b"))
	assert.Equal(t, []string{"b"}, ids(h.All()))
}

func TestHistory_IgnoresNil(t *testing.T) {
	h := NewHistory(5)
	h.Record(nil)
	assert.Zero(t, h.Len())
}

func TestHistory_IsListener(t *testing.T) {
	var l Listener = NewHistory(5)
	l.OnRequest(rec("x"))
	assert.Equal(t, 1, l.(*History).Len())
}

func TestHistory_ConcurrentRecord(t *testing.T) {
	h := NewHistory(DefaultCapacity)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h.Record(rec(fmt.Sprintf("r%d", i)))
			_ = h.All()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, h.Len())
}

func TestHistory_List(t *testing.T) {
	h := NewHistory(10)
	h.Record(&Record{ID: "1", Method: "GET", Path: "/api/users", Status: 200, EndpointID: "e1"})
	h.Record(&Record{ID: "2", Method: "POST", Path: "/api/users", Status: 201, EndpointID: "e2"})
	h.Record(&Record{ID: "3", Method: "GET", Path: "/missing", Status: 404})
	h.Record(&Record{ID: "4", Method: "get", Path: "/api/items", Status: 200, EndpointID: "e3"})

	tests := []struct {
		name   string
		filter *Filter
		want   []string
	}{
		{"nil", nil, []string{"4", "3", "2", "1"}},
		{"method", &Filter{Method: "GET"}, []string{"4", "3", "1"}},
		{"prefix", &Filter{PathPrefix: "/api/"}, []string{"4", "2", "1"}},
		{"endpoint", &Filter{EndpointID: "e2"}, []string{"2"}},
		{"status", &Filter{Status: 404}, []string{"3"}},
		{"unmatched", &Filter{Unmatched: true}, []string{"3"}},
		{"limit", &Filter{Limit: 2}, []string{"4", "3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(h.List(tt.filter)))
		})
	}
}

// ============================================================================
// Listener
// ============================================================================

func TestListenerFunc(t *testing.T) {
	var got *Record
	var l Listener = ListenerFunc(func(r *Record) { got = r })
	r := rec("z")
	l.OnRequest(r)
	assert.Same(t, r, got)
	assert.True(t, (&Record{EndpointID: "e"}).Matched())
	assert.False(t, r.Matched())
}
