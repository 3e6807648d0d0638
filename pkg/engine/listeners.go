package engine

import (
	"slices"

	"github.com/getmockd/mockhost/pkg/requestlog"
)

// ListenerID identifies a registered request listener.
type ListenerID uint64

type listenerEntry struct {
	id       ListenerID
	listener requestlog.Listener
}

// AddRequestListener registers l to receive every request record.
// Listeners are called in registration order on the handling goroutine.
func (s *Server) AddRequestListener(l requestlog.Listener) ListenerID {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	s.nextListenerID++
	id := s.nextListenerID
	s.listeners = append(s.listeners, listenerEntry{id: id, listener: l})
	return id
}

// RemoveRequestListener unregisters the listener. It reports false when id
// is unknown.
func (s *Server) RemoveRequestListener(id ListenerID) bool {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	idx := slices.IndexFunc(s.listeners, func(e listenerEntry) bool { return e.id == id })
	if idx < 0 {
		return false
	}
	s.listeners = slices.Delete(s.listeners, idx, idx+1)
	return true
}

// emit fans rec out to every listener. A panicking listener is logged and
// does not stop the others.
func (s *Server) emit(rec *requestlog.Record) {
	s.listenersMu.RLock()
	entries := slices.Clone(s.listeners)
	s.listenersMu.RUnlock()

	for _, e := range entries {
		s.notify(e, rec)
	}
}

func (s *Server) notify(e listenerEntry, rec *requestlog.Record) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("request listener panicked", "listener", e.id, "panic", r)
		}
	}()
	e.listener.OnRequest(rec)
}
