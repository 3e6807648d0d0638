// Package engine is the mock HTTP dispatch server.
//
// A Server serves one scope at a time. Start binds the configured address and
// installs two routes:
//
//   - /images/ serves files from the scope's image directory (GET only)
//   - every other path is dispatched to the first enabled endpoint whose
//     method and exact path match the request
//
// Endpoints are re-read from the EndpointLister on every request, so edits take
// effect without a restart. Configuration changes do not: the caller stops and
// starts the server with the new config.
//
// Each handled request (except CORS preflights) is turned into a
// requestlog.Record and pushed to the registered listeners when request
// logging is enabled for the running config.
package engine
