// Package wsfeed reads pulse events from a websocket endpoint. Each text
// message is either {"magnitude": n} or a Wikimedia recentchange object.
package wsfeed

import (
	"context"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/pulsefield/internal/feed"
	"github.com/vovakirdan/pulsefield/internal/registry"
)

func init() {
	registry.Register("websocket", "Websocket JSON feed (--url)", func(opts feed.Options) (feed.Source, error) {
		return New(opts)
	})
}

// Source dials a websocket endpoint and reconnects with backoff.
type Source struct {
	url     string
	dialer  *websocket.Dialer
	logger  *log.Logger
	backoff func() backoff.BackOff
}

// New creates a source. opts.URL is required.
func New(opts feed.Options) (*Source, error) {
	if opts.URL == "" {
		return nil, errors.New("wsfeed: url is required")
	}
	return &Source{
		url:     opts.URL,
		dialer:  websocket.DefaultDialer,
		logger:  opts.Log(),
		backoff: func() backoff.BackOff { return feed.NewBackoff() },
	}, nil
}

// Run implements feed.Source.
func (s *Source) Run(ctx context.Context, emit func(feed.Event)) error {
	b := s.backoff()
	return feed.Retry(ctx, b, s.logger, func() error {
		s.logger.Info("connecting", "url", s.url)
		return s.stream(ctx, emit, b)
	})
}

func (s *Source) stream(ctx context.Context, emit func(feed.Event), b backoff.BackOff) error {
	conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("wsfeed: dial: %w", err)
	}
	defer conn.Close()
	b.Reset()
	s.logger.Info("connected", "url", s.url)

	// ReadMessage does not watch ctx; closing the conn unblocks it.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			conn.Close()
		case <-stop:
		}
	}()

	for {
		kind, msg, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("wsfeed: read: %w", err)
		}
		if kind != websocket.TextMessage {
			continue
		}
		ev, ok := feed.ParseMessage(msg)
		if !ok {
			s.logger.Debug("skipping message", "bytes", len(msg))
			continue
		}
		emit(ev)
	}
}
