// Package feed turns external edit streams into pulse events.
//
// A Source runs on its own goroutine and hands every decoded event to an
// emit callback. Callers usually point emit at field.Loop.Post or at a Hub
// that fans one upstream connection out to many viewers.
package feed

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
)

// Event is one feed item. Magnitude is the signed size of the change.
type Event struct {
	Magnitude float64
	Wiki      string // origin, when the source knows it
	Title     string
}

// Source is a blocking event producer.
type Source interface {
	// Run delivers events to emit until ctx is cancelled or the source fails
	// for good. Cancellation is not an error: Run then returns nil.
	Run(ctx context.Context, emit func(Event)) error
}

// Options are the knobs shared by all source constructors.
type Options struct {
	URL       string  // endpoint, empty = source default
	Rate      float64 // events per second for generated feeds
	Seed      int64
	UserAgent string
	Logger    *log.Logger
}

// Log returns the configured logger or one that discards everything.
func (o Options) Log() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.New(io.Discard)
}

// Reconnect delays grow from MinBackoff to MaxBackoff.
const (
	MinBackoff = time.Second
	MaxBackoff = 60 * time.Second
)

// ErrClosed is reported when the server ends a stream cleanly.
var ErrClosed = errors.New("stream closed by server")

// NewBackoff returns the reconnect policy of the network sources. Delays
// double from MinBackoff up to MaxBackoff and retries never give up.
func NewBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = MinBackoff
	b.MaxInterval = MaxBackoff
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// Retry calls connect until ctx ends, waiting on b between attempts.
// connect should Reset b once a connection is established. A nil return
// from connect means the peer hung up and is retried like any other
// failure; wrap an error in backoff.Permanent to stop for good.
// Cancellation is not an error: Retry then returns nil.
func Retry(ctx context.Context, b backoff.BackOff, logger *log.Logger, connect func() error) error {
	op := func() error {
		err := connect()
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		if err == nil {
			return ErrClosed
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn("connection lost", "err", err, "retry", wait)
	}
	err := backoff.RetryNotify(op, backoff.WithContext(b, ctx), notify)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// Canceled reports whether err only says that ctx ended.
func Canceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
