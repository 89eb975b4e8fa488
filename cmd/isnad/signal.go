package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/isnad-dev/isnad/internal/config"
	"github.com/isnad-dev/isnad/internal/signaling/server"
	"github.com/isnad-dev/isnad/internal/telemetry"
)

// Run starts the WebRTC signaling relay: a WebSocket rendezvous point that
// never inspects the SDP blobs it forwards and keeps them only in memory,
// for the lifetime of their session. A process interrupt
// stops the accept loop and lets in-flight connections drain, per spec §5.
// Host/port/TTL merge .isnad/config.toml (if present under Root) under
// whatever the CLI flags leave unset.
func (c *SignalCmd) Run() error {
	root, err := filepath.Abs(c.Root)
	if err != nil {
		return fmt.Errorf("resolve root: %w", err)
	}
	cfg, err := config.LoadWorkspace(root)
	if err != nil {
		return err
	}
	host := mergeStr(c.Host, cfg.Signaling.Host)
	port := mergeInt(c.Port, cfg.Signaling.Port)
	ttlSeconds := mergeInt(c.TTLSeconds, cfg.Signaling.TTLSeconds)
	ttl := time.Duration(ttlSeconds) * time.Second

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracer := telemetry.Noop()
	if cfg.Telemetry.Enabled {
		tp, err := telemetry.Setup(ctx, true, cfg.Telemetry.Endpoint)
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}
		tracer = telemetry.FromProvider(tp)
	}

	srv := server.New(ttl, tracer)
	go srv.RunSweep(ctx)

	addr := server.Addr(host, port)
	httpSrv := &http.Server{Addr: addr, Handler: srv.Handler()}

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("Signaling relay listening on %s\n", addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	}
}
