package main

import (
	"context"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kadai-ai/kadai/internal/httpapi"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// newServeCmd is the supplemented long-running mode: the core exposed
// over HTTP so other local processes (the browser driver, a voice
// front-end running as its own process, a dashboard) can submit
// utterances without linking this module directly. Grounded on
// cmd/relay/main.go's gin+otelgin server lifecycle.
func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the task dispatcher behind an HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.shutdown(cmd.Context())

			if a.cfg.IsProduction() {
				gin.SetMode(gin.ReleaseMode)
			}

			router := gin.New()
			if a.cfg.OTel.Enabled() {
				router.Use(otelgin.Middleware(a.cfg.OTel.ServiceName))
			}
			router.Use(httpapi.Recovery())
			router.Use(httpapi.Logger())

			httpapi.SetupRoutes(router, a.dispatch, httpapi.Config{
				IsProduction: a.cfg.IsProduction(),
				ServiceName:  a.cfg.OTel.ServiceName,
			})

			server := &http.Server{Addr: ":" + port, Handler: router}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			go func() {
				slog.Info("http server starting", "port", port)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					slog.Error("http server error", "error", err)
				}
			}()

			<-ctx.Done()
			slog.Info("shutting down...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				slog.Error("http server shutdown error", "error", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&port, "port", "8080", "HTTP listen port")
	return cmd
}
