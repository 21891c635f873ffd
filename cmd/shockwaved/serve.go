package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shockwave-http/shockwave/pkg/shockwave/buffer"
	"github.com/shockwave-http/shockwave/pkg/shockwave/compress"
	"github.com/shockwave-http/shockwave/pkg/shockwave/http11"
	"github.com/shockwave-http/shockwave/pkg/shockwave/logging"
	"github.com/shockwave-http/shockwave/pkg/shockwave/metrics"
	"github.com/shockwave-http/shockwave/pkg/shockwave/routing"
	"github.com/shockwave-http/shockwave/pkg/shockwave/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the shockwave HTTP engine",
	RunE:  runServe,
}

func init() {
	flags := serveCmd.Flags()
	flags.String("addr", ":8080", "address to listen on")
	flags.Duration("read-timeout", 60*time.Second, "maximum duration for reading a request")
	flags.Duration("write-timeout", 60*time.Second, "maximum duration for writing a response")
	flags.Duration("idle-timeout", 120*time.Second, "maximum idle time for a keep-alive connection")
	flags.Int("max-keepalive-requests", 0, "maximum requests per keep-alive connection (0 = unlimited)")
	flags.String("metrics-addr", ":9090", "address the /metrics endpoint listens on")

	for _, name := range []string{"addr", "read-timeout", "write-timeout", "idle-timeout", "max-keepalive-requests", "metrics-addr"} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logging.New(viper.GetString("log-level"))

	router := routing.New()
	router.Get("/healthz", func(req *http11.Request, rw *http11.ResponseWriter) error {
		// Flush is left to the connection driver, which always flushes
		// once the handler returns; calling it here would lock in the
		// body before the compression middleware below gets a chance to
		// rewrite it.
		rw.WriteHeader(http.StatusOK)
		rw.WriteString("ok")
		return nil
	})

	compressedRouter := compress.Middleware(router.ServeHTTP)

	handler := metrics.Instrument(func(w *http11.ResponseWriter, r *http11.Request) {
		if err := compressedRouter(r, w); err != nil {
			log.WithError(err).Error("request handling failed")
		}
	})

	cfg := server.DefaultConfig()
	cfg.Addr = viper.GetString("addr")
	cfg.ReadTimeout = viper.GetDuration("read-timeout")
	cfg.WriteTimeout = viper.GetDuration("write-timeout")
	cfg.IdleTimeout = viper.GetDuration("idle-timeout")
	cfg.MaxKeepAliveRequests = viper.GetInt("max-keepalive-requests")
	cfg.Handler = handler

	srv := server.NewServer(cfg)

	registry := prometheus.NewRegistry()
	registry.MustRegister(metrics.NewStatsCollector(srv.Stats()))
	registry.MustRegister(buffer.NewStatsCollector())
	registry.MustRegister(prometheus.NewGoCollector())

	metricsAddr := viper.GetString("metrics-addr")
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	metricsSrv := &http.Server{Addr: metricsAddr, Handler: metricsMux}

	go func() {
		log.WithField("addr", metricsAddr).Info("metrics listening")
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("metrics server failed")
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Addr).Info("shockwave listening")
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-sigCh:
		log.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.WithError(err).Error("graceful shutdown failed")
		}
		_ = metricsSrv.Shutdown(ctx)
	}

	return nil
}
