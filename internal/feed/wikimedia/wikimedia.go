// Package wikimedia streams edits from the Wikimedia EventStreams
// recentchange feed (Server-Sent Events).
package wikimedia

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
	"github.com/r3labs/sse/v2"

	"github.com/vovakirdan/pulsefield/internal/feed"
	"github.com/vovakirdan/pulsefield/internal/registry"
)

// DefaultURL is the public recentchange stream.
const DefaultURL = "https://stream.wikimedia.org/v2/stream/recentchange"

const defaultUserAgent = "pulsefield/1.0 (https://github.com/vovakirdan/pulsefield)"

// Largest single SSE event accepted; recentchange messages are a few KB.
const maxEvent = 1 << 20

func init() {
	registry.Register("wikimedia", "Wikimedia recent changes (live)", func(opts feed.Options) (feed.Source, error) {
		return New(opts), nil
	})
}

// Source reads the recentchange stream and reconnects with backoff.
type Source struct {
	url       string
	userAgent string
	client    *sse.Client
	logger    *log.Logger
	backoff   func() backoff.BackOff
}

// New creates a source. An empty opts.URL selects DefaultURL.
func New(opts feed.Options) *Source {
	s := &Source{
		url:       opts.URL,
		userAgent: opts.UserAgent,
		logger:    opts.Log(),
		backoff:   func() backoff.BackOff { return feed.NewBackoff() },
	}
	if s.url == "" {
		s.url = DefaultURL
	}
	if s.userAgent == "" {
		s.userAgent = defaultUserAgent
	}

	s.client = sse.NewClient(s.url, sse.ClientMaxBufferSize(maxEvent))
	s.client.Connection = &http.Client{}
	s.client.Headers["User-Agent"] = s.userAgent
	// One attempt per subscribe; feed.Retry owns the reconnect policy.
	s.client.ReconnectStrategy = &backoff.StopBackOff{}
	return s
}

// Run implements feed.Source. The client keeps the last event id, so a
// reconnect resumes the stream where it broke off.
func (s *Source) Run(ctx context.Context, emit func(feed.Event)) error {
	b := s.backoff()
	return feed.Retry(ctx, b, s.logger, func() error {
		s.logger.Info("connecting", "url", s.url)
		connected := false
		err := s.client.SubscribeRawWithContext(ctx, func(msg *sse.Event) {
			if !connected {
				connected = true
				b.Reset()
				s.logger.Info("connected", "url", s.url)
			}
			s.dispatch(msg.Data, emit)
		})
		if err != nil {
			return fmt.Errorf("wikimedia: %w", err)
		}
		return nil
	})
}

func (s *Source) dispatch(data []byte, emit func(feed.Event)) {
	if len(data) == 0 {
		return
	}
	ev, ok := feed.ParseRecentChange(data)
	if !ok {
		s.logger.Debug("skipping message", "bytes", len(data))
		return
	}
	emit(ev)
}
