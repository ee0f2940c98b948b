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
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/geange/nfasim/internal/cache"
	"github.com/geange/nfasim/internal/config"
	"github.com/geange/nfasim/internal/server"
)

var (
	listenAddr string
	redisAddr  string
	cacheTTL   time.Duration
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve simulations over HTTP",
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		if flags.Changed("listen") {
			cfg.Server.ListenAddr = listenAddr
		}
		if flags.Changed("redis-addr") {
			cfg.Server.RedisAddr = redisAddr
		}
		if flags.Changed("cache-ttl") {
			cfg.Server.CacheTTL = cacheTTL
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := serve(ctx, cfg.Server); err != nil {
			logrus.Fatalf("Server stopped: %v", err)
		}
	},
}

// newStore picks Redis when an address is configured and an in-process map otherwise.
func newStore(ctx context.Context, sc config.ServerConfig) (cache.Store, func() error, error) {
	if sc.RedisAddr == "" {
		logrus.Info("No Redis address configured, caching results in memory")
		return cache.NewMemory(), func() error { return nil }, nil
	}

	store := cache.NewRedis(sc.RedisAddr, sc.RedisPassword, sc.RedisDB,
		cache.WithPrefix(sc.RedisPrefix), cache.WithTTL(sc.CacheTTL))
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		store.Close()
		return nil, nil, err
	}
	logrus.WithField("addr", sc.RedisAddr).Info("Caching results in Redis")
	return store, store.Close, nil
}

// serve runs the HTTP server until ctx is cancelled, then drains it.
func serve(ctx context.Context, sc config.ServerConfig) error {
	store, closeStore, err := newStore(ctx, sc)
	if err != nil {
		return err
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s := server.New(reg, reg,
		server.WithCache(store),
		server.WithMaxInputRunes(sc.MaxInputRunes),
	)
	srv := &http.Server{
		Addr:              sc.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("Listening on %s", sc.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logrus.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", config.DefaultListenAddr, "Address to listen on")
	serveCmd.Flags().StringVar(&redisAddr, "redis-addr", "", "Redis address for the result cache (default: in-memory cache)")
	serveCmd.Flags().DurationVar(&cacheTTL, "cache-ttl", time.Hour, "Lifetime of cached results in Redis")

	rootCmd.AddCommand(serveCmd)
}
