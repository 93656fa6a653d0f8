package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/district-lens/internal/district"
	"github.com/sells-group/district-lens/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard data server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}
		opts, err := districtOptions(cfg)
		if err != nil {
			return err
		}

		loader := district.NewLoader(opts)
		path := cfg.ShapefilePath()

		// Warm the memo. A failure is reported to clients per request, and
		// failed loads are not memoized.
		if _, err := loader.Load(path); err != nil {
			zap.L().Warn("initial shapefile load failed", zap.String("path", path), zap.Error(err))
		}

		api := server.New(loader, server.Config{
			ShapefilePath: path,
			CORSOrigins:   cfg.Server.CORSOrigins,
			ExportRPS:     cfg.Server.ExportRPS,
			ExportBurst:   cfg.Server.ExportBurst,
			CacheEntries:  cfg.Server.CacheEntries,
			CacheTTL:      cfg.Server.CacheTTL(),
		})

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           api.Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", cfg.Server.Port), zap.String("shapefile", path))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
