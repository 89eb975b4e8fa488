package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/isnad-dev/isnad/internal/config"
	"github.com/isnad-dev/isnad/internal/httpboard"
)

// Run serves the derived board UI. This writes control directives only;
// the ledger is never edited by this command. A process interrupt drains
// in-flight requests before exiting, per spec §5. Host/port/author/via
// merge .isnad/config.toml (if present) under whatever the CLI flags
// leave unset.
func (c *ServeCmd) Run() error {
	root, err := filepath.Abs(c.Root)
	if err != nil {
		return fmt.Errorf("resolve root: %w", err)
	}
	if err := httpboard.EnsureScaffolded(root); err != nil {
		return err
	}

	cfg, err := config.LoadWorkspace(root)
	if err != nil {
		return err
	}
	host := mergeStr(c.Host, cfg.Server.Host)
	port := mergeInt(c.Port, cfg.Server.Port)
	author := mergeStr(c.Author, cfg.Board.Author)
	via := mergeStr(c.Via, cfg.Board.Via)

	srv := httpboard.New(root, author, via, c.Operator)
	addr := fmt.Sprintf("%s:%d", host, port)
	url := fmt.Sprintf("http://%s/", addr)

	fmt.Printf("Serving %s\n", url)
	fmt.Println("Derived UI: writes control directives only; does not edit the ledger.")

	if !c.NoOpen && !cfg.Server.NoOpen {
		if err := openBrowser(url); err != nil {
			fmt.Printf("warning: failed to open browser: %v\n", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpSrv := &http.Server{Addr: addr, Handler: srv.Handler()}
	errCh := make(chan error, 1)
	go func() {
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

// openBrowser launches the platform's default browser. Best-effort: a
// failure here never aborts the server.
func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
