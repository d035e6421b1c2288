package simulator

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/sonoffctl/internal/logging"
)

// ShutdownTimeout bounds a graceful shutdown
const ShutdownTimeout = 5 * time.Second

// Config holds the simulator server configuration
type Config struct {
	Host      string
	Port      int
	Advertise bool // Register the device over mDNS
}

// Server serves one Simulator over HTTP
type Server struct {
	config     *Config
	sim        *Simulator
	httpServer *http.Server
	listener   net.Listener
	advertiser *Advertiser
}

// NewServer creates a server for sim
func NewServer(config *Config, sim *Simulator) *Server {
	return &Server{
		config: config,
		sim:    sim,
		httpServer: &http.Server{
			Handler:           sim,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Listen binds the listening socket and, when enabled, advertises the device.
// The chosen port is available from Addr afterwards.
func (s *Server) Listen() error {
	addr := net.JoinHostPort(s.config.Host, fmt.Sprint(s.config.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	if s.config.Advertise {
		port := listener.Addr().(*net.TCPAddr).Port
		adv, err := s.sim.Advertise(port)
		if err != nil {
			_ = listener.Close()
			return err
		}
		s.advertiser = adv
	}

	logging.Info("Simulator listening",
		zap.String("addr", listener.Addr().String()),
		zap.String("kind", string(s.sim.Kind())),
		zap.String("device_id", s.sim.DeviceID()),
	)
	return nil
}

// Addr returns the bound address, or nil before Listen
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve handles requests until the listener is closed
func (s *Server) Serve() error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("simulator server failed: %w", err)
	}
	return nil
}

// Start listens, serves and blocks until SIGINT/SIGTERM or a server error
func (s *Server) Start() error {
	if err := s.Listen(); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Serve()
	}()

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping simulator...")
		ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return s.Shutdown(ctx)
	case err := <-errChan:
		s.advertiser.Shutdown()
		return err
	}
}

// Shutdown withdraws the mDNS record and stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.advertiser.Shutdown()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down simulator: %w", err)
	}
	logging.Info("Simulator stopped", zap.Int("requests_served", len(s.sim.Requests())))
	return nil
}
