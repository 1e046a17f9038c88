package observe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/pthm-cable/critters/game"
)

// Publisher sends a frame to the hub at most once per interval of
// simulated time.
type Publisher struct {
	hub      *Hub
	interval float64
	last     float64
	started  bool
}

// NewPublisher creates a publisher for hub.
func NewPublisher(hub *Hub, interval float64) *Publisher {
	return &Publisher{hub: hub, interval: interval}
}

// After is called once the simulation has finished a tick.
func (p *Publisher) After(sim *game.Simulation) {
	now := sim.SimTime()
	if p.started && now >= p.last && now-p.last < p.interval {
		return
	}
	p.started = true
	p.last = now
	p.hub.Publish(NewFrame(sim))
}

// Serve listens on addr and serves the hub at /ws until ctx is cancelled.
func Serve(ctx context.Context, addr string, hub *Hub) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("observe: listen %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("observer listening", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("observe: serve: %w", err)
	}
	return nil
}
