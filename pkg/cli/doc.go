// Package cli implements the mockhost command-line interface.
//
// Commands:
//
//	mockhost serve                 start the mock server for a scope
//	mockhost endpoint add|list|get|delete|enable|disable
//	mockhost config show|set
//	mockhost addresses             list URLs the server is reachable at
//	mockhost version
//
// Global flags select the data directory, scope, storage backend and
// document format. MOCKHOST_* environment variables (optionally loaded from a
// dotenv file with --env-file) override the stored server config at start.
package cli
