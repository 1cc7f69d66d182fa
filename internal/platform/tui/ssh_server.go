package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/pulsefield/internal/config"
	"github.com/vovakirdan/pulsefield/internal/core"
	"github.com/vovakirdan/pulsefield/internal/feed"
	"github.com/vovakirdan/pulsefield/internal/storage"
)

// Events buffered per viewer before the oldest are dropped.
const sessionBuffer = 256

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23235").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.pulsefield/host_key.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// TickRate is the host frame rate for every session.
	TickRate int

	Config config.Config
	Preset string
	Source string
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23235",
		IdleTimeout: 30 * time.Minute,
		TickRate:    60,
		Config:      config.DefaultConfig(),
		Preset:      string(config.PresetClassic),
	}
}

// SSHServer serves one independent field per SSH session. All sessions
// share a single upstream feed through a Hub.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	store  *storage.Store
	hub    *feed.Hub
	source feed.Source
	logger *log.Logger

	mu       sync.Mutex
	sessions map[ssh.Session]*viewerSession
}

// viewerSession is the per-connection state kept outside the Bubble Tea model.
type viewerSession struct {
	model Model
	sub   *feed.Subscription
}

// NewSSHServer creates a new SSH server. store may be nil.
func NewSSHServer(cfg SSHServerConfig, src feed.Source, store *storage.Store, logger *log.Logger) (*SSHServer, error) {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "pulsefield-ssh",
		})
	}

	srv := &SSHServer{
		config:   cfg,
		store:    store,
		hub:      feed.NewHub(),
		source:   src,
		logger:   logger,
		sessions: make(map[ssh.Session]*viewerSession),
	}

	// Resolve host key path
	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("tui: cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".pulsefield", "host_key")
	}

	// Ensure host key directory exists
	hostKeyDir := filepath.Dir(hostKeyPath)
	if mkdirErr := os.MkdirAll(hostKeyDir, 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("tui: cannot create host key directory: %w", mkdirErr)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.sessionMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		return nil, fmt.Errorf("tui: cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a viewer for each SSH session and subscribes it to the hub.
func (s *SSHServer) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sess.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sess.User())
		return nil, nil
	}

	model, err := NewModel(Options{
		Config: s.config.Config,
		Preset: s.config.Preset,
		Source: s.config.Source,
		Runtime: core.RuntimeConfig{
			ScreenW:  pty.Window.Width,
			ScreenH:  pty.Window.Height,
			TickRate: s.config.TickRate,
			Seed:     time.Now().UnixNano(),
		},
		Logger:   s.logger.With("user", sess.User()),
		Renderer: bubbletea.MakeRenderer(sess),
		Mode:     "ssh",
		Viewer:   sess.User(),
	})
	if err != nil {
		s.logger.Error("cannot create field", "user", sess.User(), "error", err)
		return nil, nil
	}

	sub := s.hub.Subscribe(sessionBuffer)
	go feed.Pump(sess.Context(), sub, model.Emit)

	s.mu.Lock()
	s.sessions[sess] = &viewerSession{model: model, sub: sub}
	s.mu.Unlock()

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// sessionMiddleware logs SSH sessions and stores their summaries on exit.
func (s *SSHServer) sessionMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		s.logger.Info("session started",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
		)
		next(sess)

		s.mu.Lock()
		vs := s.sessions[sess]
		delete(s.sessions, sess)
		s.mu.Unlock()

		if vs != nil {
			s.hub.Unsubscribe(vs.sub)
			summary := vs.model.Summary()
			if s.store != nil {
				if _, err := s.store.SaveSession(summary); err != nil {
					s.logger.Warn("could not save session", "error", err)
				}
			}
			s.logger.Info("session ended",
				"user", sess.User(),
				"remote", sess.RemoteAddr().String(),
				"duration", summary.Duration.Round(time.Second),
				"pulses", summary.Pulses,
				"dropped", vs.sub.Dropped(),
				"viewers", s.ViewerCount(),
			)
			return
		}
		s.logger.Info("session ended",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
		)
	}
}

// ViewerCount returns the number of connected viewers.
func (s *SSHServer) ViewerCount() int {
	return s.hub.Count()
}

// ListenAndServe starts the feed and the SSH server and blocks until
// SIGINT/SIGTERM.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address, "source", s.config.Source)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := s.hub.Run(ctx, s.source); err != nil && !feed.Canceled(err) {
			s.logger.Error("feed stopped", "error", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-done:
	case err := <-serveErr:
		cancel()
		return fmt.Errorf("tui: ssh server: %w", err)
	}
	s.logger.Info("shutting down...", "viewers", s.ViewerCount(), "events", s.hub.Published())
	cancel()
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}
