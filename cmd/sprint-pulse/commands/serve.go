package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"sprint-pulse/internal/api"
	"sprint-pulse/internal/watch"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var (
		addr      string
		open      bool
		withWatch bool
		taskLists []string
		schedule  string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the reports as a JSON HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = cfg.HTTPAddr
			}
			ctx, stop := signalContext()
			defer stop()

			if withWatch {
				if len(taskLists) == 0 {
					taskLists = cfg.Watch.TaskLists
				}
				if schedule == "" {
					schedule = cfg.Watch.Schedule
				}
				w, err := watch.New(reports, taskLists, schedule, cfg.Watch.Location)
				if err != nil {
					return err
				}
				w.Start()
				defer w.Stop()
			}

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", addr, err)
			}
			srv := &http.Server{
				Handler:           api.NewRouter(reports, verbose),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Serve(ln)
			}()
			log.Info().Str("addr", ln.Addr().String()).Msg("HTTP API listening")

			if open {
				url := dashboardURL(ln.Addr().String())
				if err := browser.OpenURL(url); err != nil {
					log.Warn().Err(err).Str("url", url).Msg("Failed to open browser")
				}
			}

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			log.Info().Msg("Shutting down HTTP API")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default HTTP_ADDR)")
	cmd.Flags().BoolVar(&open, "open", false, "open the API in the default browser")
	cmd.Flags().BoolVar(&withWatch, "watch", false, "run the scheduled capacity risk watch")
	cmd.Flags().StringSliceVar(&taskLists, "task-list", nil, "task list ids to watch (default WATCH_TASK_LISTS)")
	cmd.Flags().StringVar(&schedule, "schedule", "", "cron schedule for the watch (default WATCH_CRON, then weekdays 09:00)")
	return cmd
}

// dashboardURL points at the task list index on a listener address, using localhost for
// wildcard hosts.
func dashboardURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr + "/api/task_lists"
	}
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port) + "/api/task_lists"
}
