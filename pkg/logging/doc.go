// Package logging configures the operational loggers used across mockhost.
//
// It is a thin layer over log/slog. Request history shown to users lives in
// package requestlog; this package is for developer-facing diagnostics only.
//
//	log := logging.New(logging.Config{
//	    Level:  logging.ParseLevel("debug"),
//	    Format: logging.FormatJSON,
//	})
//	log.Info("server started", "port", 8080)
//
// Components accept a *slog.Logger through a WithLogger option and fall back
// to Nop when none is given.
package logging
