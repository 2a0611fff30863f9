package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theirongolddev/emicalc/internal/config"
	"github.com/theirongolddev/emicalc/internal/ratelimit"
	"github.com/theirongolddev/emicalc/internal/server"
	"github.com/theirongolddev/emicalc/internal/store"
)

var (
	flagServeAddr         string
	flagServeEventsBuffer int
	flagServeRateLimit    int
	flagServeRedis        string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API with SSE and Prometheus endpoints",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "", "HTTP listen address (default from config)")
	serveCmd.Flags().IntVar(&flagServeEventsBuffer, "events-buffer", 0, "Max in-memory events retained (default from config)")
	serveCmd.Flags().IntVar(&flagServeRateLimit, "rate-limit", -1, "Requests per client per window, 0 disables (default from config)")
	serveCmd.Flags().StringVar(&flagServeRedis, "redis", "", "Redis address for a shared rate limit (default from config or EMICALC_REDIS_ADDR)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	logger := rt.logger
	defer func() { _ = logger.Sync() }()

	sc := rt.cfg.Server
	if flagServeAddr != "" {
		sc.Addr = flagServeAddr
	}
	if flagServeEventsBuffer > 0 {
		sc.EventsBuffer = flagServeEventsBuffer
	}
	if flagServeRateLimit >= 0 {
		sc.RateLimit = flagServeRateLimit
	}
	redisAddr := config.GetRedisAddr(rt.cfg)
	if flagServeRedis != "" {
		redisAddr = flagServeRedis
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	limiter, stop, err := buildLimiter(ctx, logger, sc, redisAddr)
	if err != nil {
		return err
	}
	defer stop()

	cfg := server.Config{
		Addr:          sc.Addr,
		EventsBuffer:  sc.EventsBuffer,
		DefaultScheme: config.NormalizeSchemeName(rt.cfg.General.Scheme),
		Engine:        rt.engine,
		Catalog:       rt.catalog,
		Limiter:       limiter,
		Logger:        logger,
	}

	if rt.historyEnabled() {
		h, err := store.Open(store.DefaultPath())
		if err != nil {
			logger.Warn("history disabled", zap.Error(err))
		} else {
			defer func() { _ = h.Close() }()
			cfg.History = h
		}
	}

	svc := server.New(cfg)

	fmt.Printf("  emicalc API listening on http://%s\n", sc.Addr)
	fmt.Printf("  Try: curl -s http://%s/v1/emi -d '{\"property_price\":9000000,\"down_payment_percent\":20,\"tenure_years\":20}'\n", sc.Addr)

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// buildLimiter picks the Redis limiter when an address is configured and the
// in-process one otherwise. A rate of 0 disables limiting.
func buildLimiter(ctx context.Context, logger *zap.Logger, sc config.ServerConfig, redisAddr string) (ratelimit.Limiter, func(), error) {
	noop := func() {}
	if sc.RateLimit <= 0 {
		logger.Info("rate limiting disabled")
		return nil, noop, nil
	}
	window := time.Duration(sc.RateWindowSec) * time.Second

	if redisAddr != "" {
		dialCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		client, err := ratelimit.Dial(dialCtx, redisAddr)
		if err != nil {
			return nil, noop, fmt.Errorf("redis rate limiter: %w", err)
		}
		logger.Info("rate limiting via redis",
			zap.String("addr", redisAddr), zap.Int("limit", sc.RateLimit), zap.Duration("window", window))
		return ratelimit.NewRedis(client, sc.RateLimit, window), func() { _ = client.Close() }, nil
	}

	mem := ratelimit.NewMemory(sc.RateLimit, window)
	logger.Info("rate limiting in process", zap.Int("limit", sc.RateLimit), zap.Duration("window", window))
	return mem, mem.Stop, nil
}
