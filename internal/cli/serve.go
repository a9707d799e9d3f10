package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cipherstudio-cli/internal/preview"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the live preview bundle over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(app, false)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.close()

			listenAddr := strings.TrimSpace(addr)
			if listenAddr == "" {
				listenAddr = s.cfg.Preview.Addr
			}
			srv, err := preview.NewServer(s.project, preview.ServerConfig{
				Addr:   listenAddr,
				Logger: s.logger,
				// Other cipherstudio processes (CLI, TUI) write the same storage.
				Reload: true,
			})
			if err != nil {
				return writeErr(cmd, err)
			}

			_ = writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"addr":      srv.Addr(),
					"projectId": s.project.ProjectID(),
					"backend":   s.cfg.Backend,
					"dataDir":   s.cfg.DataDir,
					"startedAt": time.Now().UTC().Format(time.RFC3339Nano),
				},
				"_hints": []string{
					"open http://" + srv.Addr(),
					"GET /api/files for the bundle",
				},
			})
			fmt.Fprintf(cmd.ErrOrStderr(), "CipherStudio preview running at http://%s (project=%s)\n", srv.Addr(), s.project.ProjectID())

			ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := srv.ListenAndServe(ctx); err != nil {
				s.logger.Error("preview server stopped", zap.Error(err))
				return writeErr(cmd, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Bind address (default: preview.addr from config)")
	return cmd
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
