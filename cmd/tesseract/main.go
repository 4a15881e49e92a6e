// Command tesseract runs the message broker server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dlworhd/meier/internal/config"
	"github.com/dlworhd/meier/internal/handler"
	"github.com/dlworhd/meier/internal/logging"
	"github.com/dlworhd/meier/internal/metrics"
	"github.com/dlworhd/meier/internal/server"
	"github.com/dlworhd/meier/internal/storage"
)

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tesseract",
		Short: "An in-memory message broker over a length-prefixed JSON TCP protocol",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a config file (default: search ./tesseract.yaml, /etc/tesseract)")
	root.AddCommand(newServeCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the broker server until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, err := logging.New(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer log.Sync()

	compression, _ := storage.ParseCompressionKind(cfg.Storage.Compression)

	var recorder metrics.Recorder = metrics.Noop{}
	var metricsSrv *server.MetricsServer
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		prom := metrics.NewProm(reg)
		recorder = prom
		metricsSrv = server.NewMetricsServer(cfg.Metrics.Addr, reg)
		go func() {
			log.Info("metrics server listening", zap.String("addr", cfg.Metrics.Addr))
			if err := metricsSrv.Run(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server exited", zap.Error(err))
			}
		}()
	}

	tm := storage.NewTopicManager(
		cfg.Storage.MaxTopics, cfg.Storage.MaxMessages, cfg.Storage.MaxBytes,
		compression, log, recorder,
	)
	handlers := handler.New(tm, log, recorder)
	srv := server.New(cfg.Server.BindAddr, cfg.Server.MaxFrameLength, cfg.Server.MaxConnections, handlers, log, recorder)

	errCh := make(chan error, 1)
	go func() {
		log.Info("broker listening", zap.String("addr", cfg.Server.BindAddr))
		errCh <- srv.Run()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server exited: %w", err)
		}
		return nil
	case sig := <-sigCh:
		log.Info("received signal, shutting down", zap.String("signal", sig.String()))
		srv.Close()
		if metricsSrv != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			metricsSrv.Shutdown(shutdownCtx, log)
		}
		<-errCh
		return nil
	}
}
