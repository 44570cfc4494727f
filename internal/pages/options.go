package pages

import (
	"context"
	"log/slog"
	"time"

	"github.com/kuitang/flightsearch-e2e/internal/obs"
)

// DefaultMaxPages bounds how many times the calendar pages before giving up.
const DefaultMaxPages = 24

type options struct {
	ctx      context.Context
	now      func() time.Time
	maxPages int
}

// Option configures page objects.
type Option func(*options)

// WithContext attaches correlation fields used in page-object logs.
func WithContext(ctx context.Context) Option {
	return func(o *options) { o.ctx = ctx }
}

// WithClock sets the source of "today" for offset dates.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithMaxPages bounds calendar month paging. Non-positive values keep the default.
func WithMaxPages(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxPages = n
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		ctx:      context.Background(),
		now:      time.Now,
		maxPages: DefaultMaxPages,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) logger() *slog.Logger {
	return obs.From(o.ctx).With("pkg", "pages")
}
