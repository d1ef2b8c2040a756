package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"github.com/Avaneesh16/Travel-Genie/plugin/ai/aitime"
	apiv1 "github.com/Avaneesh16/Travel-Genie/server/router/api/v1"
)

const (
	shutdownTimeout = 10 * time.Second
	pruneInterval   = 10 * time.Minute
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat and calendar API over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := loadProfile()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, p)
			if err != nil {
				return err
			}
			defer a.Close()

			e := echo.New()
			e.HideBanner = true
			e.HidePort = true
			service := apiv1.NewAPIV1Service(p, a.assistant, a.materializer, a.preferences, aitime.NewService(p.Timezone))
			service.Register(e)
			go pruneLimiter(ctx, service)

			addr := fmt.Sprintf("%s:%d", p.Addr, p.Port)
			go func() {
				slog.Info("travelgenie started", "addr", addr, "version", p.Version, "backend", p.CalendarBackend, "timezone", p.Timezone)
				if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
					slog.Error("server stopped", "error", err)
					stop()
				}
			}()

			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			slog.Info("shutting down")
			return e.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().String("addr", "", "address of server")
	cmd.Flags().Int("port", 8081, "port of server")
	return cmd
}

func pruneLimiter(ctx context.Context, service *apiv1.APIV1Service) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := service.Limiter().Prune(now); n > 0 {
				slog.Debug("pruned idle rate limiters", "count", n)
			}
		}
	}
}
