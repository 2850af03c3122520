package websocket

import (
	"time"

	"go.uber.org/zap"
)

// StaleClientSweeper closes connections that have not sent anything for
// the idle timeout, so abandoned sessions release their capture devices
// and video assets.
type StaleClientSweeper struct {
	hub         *Hub
	idleTimeout time.Duration
	logger      *zap.Logger
	stopChan    chan struct{}
}

// NewStaleClientSweeper creates a sweeper for the given hub.
func NewStaleClientSweeper(hub *Hub, idleTimeout time.Duration, logger *zap.Logger) *StaleClientSweeper {
	return &StaleClientSweeper{
		hub:         hub,
		idleTimeout: idleTimeout,
		logger:      logger,
		stopChan:    make(chan struct{}),
	}
}

// Start begins the background sweep process
func (s *StaleClientSweeper) Start() {
	go s.sweepLoop()
	s.logger.Info("Stale client sweeper started", zap.Duration("idleTimeout", s.idleTimeout))
}

// Stop gracefully stops the sweeper
func (s *StaleClientSweeper) Stop() {
	close(s.stopChan)
	s.logger.Info("Stale client sweeper stopped")
}

func (s *StaleClientSweeper) sweepLoop() {
	ticker := time.NewTicker(s.idleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.runSweep()
		}
	}
}

// runSweep closes every client whose last activity is past the timeout.
// Closing the connection makes the client's read pump unwind and run
// its own cleanup.
func (s *StaleClientSweeper) runSweep() {
	deadline := time.Now().Add(-s.idleTimeout)

	s.hub.mu.RLock()
	var stale []*Client
	for _, client := range s.hub.clients {
		if client.idleSince().Before(deadline) {
			stale = append(stale, client)
		}
	}
	s.hub.mu.RUnlock()

	for _, client := range stale {
		s.logger.Info("Closing stale client", zap.String("clientID", client.clientID))
		client.conn.Close()
	}
}
