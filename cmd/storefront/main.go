package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	radix "github.com/mediocregopher/radix/v3"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/events"
	"storefront/internal/http/handlers"
	applog "storefront/internal/log"
	"storefront/internal/repos"
)

func main() {
	config.LoadDotEnv()

	app := &cli.App{
		Name:   "storefront",
		Usage:  "catalog, cart and checkout API",
		Flags:  config.Flags(),
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		applog.L().Fatal("storefront.exit", zap.Error(err))
	}
}

func run(c *cli.Context) error {
	cfg := config.FromCLI(c)

	flush, err := applog.Setup(applog.Options{JSON: cfg.LogJSON, Debug: cfg.LogDebug, File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer flush()
	log := applog.L()

	db, err := repos.OpenDBWithLockTimeout(cfg.DBDSN, cfg.LockTimeout)
	if err != nil {
		return err
	}
	defer db.Close()

	var cache *auth.TokenCache
	if cfg.RedisAddr != "" {
		pool, err := radix.NewPool("tcp", cfg.RedisAddr, 10)
		if err != nil {
			log.Warn("redis.connect.fail", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			defer pool.Close()
			cache = auth.NewTokenCache(pool, cfg.TokenCacheTTL)
			log.Info("redis.token_cache.on", zap.String("addr", cfg.RedisAddr))
		}
	}

	var pub events.Publisher = events.Nop{}
	if cfg.AMQPURL != "" {
		p, err := events.DialAMQP(cfg.AMQPURL, cfg.OrderQueue)
		if err != nil {
			log.Warn("amqp.connect.fail", zap.Error(err))
		} else {
			pub = p
			log.Info("amqp.order_events.on", zap.String("queue", cfg.OrderQueue))
		}
	}
	defer pub.Close()

	deps := handlers.NewDeps(db, cfg, cache, pub)
	srv := handlers.NewApp(cfg, deps)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Info("http.listen", zap.String("port", cfg.Port))
		errc <- srv.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("http.drain")
	deps.Ready.Store(false)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.ShutdownWithContext(shutdownCtx)
}
