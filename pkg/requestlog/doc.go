// Package requestlog captures handled mock requests for user inspection.
//
// It is distinct from operational logging (which uses log/slog). The dispatch
// engine builds one Record per handled request and pushes it to every
// registered Listener; History is the bounded in-memory Listener that keeps
// the most recent records.
//
//	history := requestlog.NewHistory(requestlog.DefaultCapacity)
//	id := server.AddRequestListener(history)
//	defer server.RemoveRequestListener(id)
//
//	for _, rec := range history.All() { // newest first
//	    fmt.Println(rec.Method, rec.Path, rec.Status)
//	}
//
// This is a leaf package with no internal dependencies.
package requestlog
