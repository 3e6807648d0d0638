package store

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/getmockd/mockhost/pkg/logging"
)

type settings struct {
	format Format
	log    *slog.Logger
	now    func() time.Time
	newID  func() string
}

// Option configures an EndpointStore or ConfigStore.
type Option func(*settings)

// WithFormat selects the document encoding. Defaults to JSON.
func WithFormat(f Format) Option {
	return func(s *settings) {
		if f != "" {
			s.format = f
		}
	}
}

// WithLogger sets the logger used to report degraded reads.
func WithLogger(log *slog.Logger) Option {
	return func(s *settings) {
		s.log = logging.OrNop(log)
	}
}

// WithClock overrides time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides the identifier generator for new endpoints.
func WithIDGenerator(gen func() string) Option {
	return func(s *settings) {
		if gen != nil {
			s.newID = gen
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{
		format: FormatJSON,
		log:    logging.Nop(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
