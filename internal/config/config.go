package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

type Config struct {
	Port     string
	DBDSN    string
	LogFile  string
	LogJSON  bool
	LogDebug bool

	JWTSecret string
	TokenTTL  time.Duration

	// CheckoutTimeout bounds a whole checkout attempt, LockTimeout the wait on
	// the store write lock inside it.
	CheckoutTimeout time.Duration
	LockTimeout     time.Duration

	RedisAddr     string
	TokenCacheTTL time.Duration

	AMQPURL    string
	OrderQueue string

	// RateLimit is requests per minute per client, LoginLimit attempts per
	// LoginWindow on POST /token. Zero disables either limiter.
	RateLimit   int
	LoginLimit  int
	LoginWindow time.Duration
}

// Default returns the settings used when no flag or env var overrides them.
func Default() Config {
	return Config{
		Port:            "8080",
		DBDSN:           "storefront.db",
		LogFile:         "",
		JWTSecret:       "storefront-dev-secret",
		TokenTTL:        24 * time.Hour,
		CheckoutTimeout: 10 * time.Second,
		LockTimeout:     5 * time.Second,
		TokenCacheTTL:   10 * time.Minute,
		OrderQueue:      "orders.placed",
		RateLimit:       120,
		LoginLimit:      5,
		LoginWindow:     10 * time.Minute,
	}
}

// LoadDotEnv reads .env into the process environment if the file exists.
func LoadDotEnv() {
	_ = godotenv.Load()
}

func Flags() []cli.Flag {
	d := Default()
	return []cli.Flag{
		&cli.StringFlag{Name: "port", Value: d.Port, EnvVars: []string{"PORT"}, Usage: "port to listen on"},
		&cli.StringFlag{Name: "db-dsn", Value: d.DBDSN, EnvVars: []string{"DB_DSN"}, Usage: "sqlite database file"},
		&cli.StringFlag{Name: "log-file", Value: d.LogFile, EnvVars: []string{"LOG_FILE"}, Usage: "also append logs to this file"},
		&cli.BoolFlag{Name: "log-json", EnvVars: []string{"LOG_JSON"}, Usage: "log in JSON format"},
		&cli.BoolFlag{Name: "log-debug", EnvVars: []string{"LOG_DEBUG"}, Usage: "log debug messages"},
		&cli.StringFlag{Name: "jwt-secret", Value: d.JWTSecret, EnvVars: []string{"JWT_SECRET"}, Usage: "HS256 signing key for session and guest cart tokens"},
		&cli.DurationFlag{Name: "token-ttl", Value: d.TokenTTL, EnvVars: []string{"TOKEN_TTL"}, Usage: "session token lifetime"},
		&cli.DurationFlag{Name: "checkout-timeout", Value: d.CheckoutTimeout, EnvVars: []string{"CHECKOUT_TIMEOUT"}, Usage: "upper bound for one checkout attempt"},
		&cli.DurationFlag{Name: "lock-timeout", Value: d.LockTimeout, EnvVars: []string{"LOCK_TIMEOUT"}, Usage: "max wait for the store write lock"},
		&cli.StringFlag{Name: "redis-addr", EnvVars: []string{"REDIS_ADDR"}, Usage: "redis address for the token cache (empty disables)"},
		&cli.DurationFlag{Name: "token-cache-ttl", Value: d.TokenCacheTTL, EnvVars: []string{"TOKEN_CACHE_TTL"}, Usage: "how long verified claims stay cached"},
		&cli.StringFlag{Name: "amqp-url", EnvVars: []string{"AMQP_URL"}, Usage: "rabbitmq url for order events (empty disables)"},
		&cli.StringFlag{Name: "order-queue", Value: d.OrderQueue, EnvVars: []string{"ORDER_QUEUE"}, Usage: "queue receiving order placed events"},
		&cli.IntFlag{Name: "rate-limit", Value: d.RateLimit, EnvVars: []string{"RATE_LIMIT"}, Usage: "requests per minute per client, 0 disables"},
		&cli.IntFlag{Name: "login-limit", Value: d.LoginLimit, EnvVars: []string{"LOGIN_LIMIT"}, Usage: "login attempts per window per client, 0 disables"},
		&cli.DurationFlag{Name: "login-window", Value: d.LoginWindow, EnvVars: []string{"LOGIN_WINDOW"}, Usage: "login throttle window"},
	}
}

func FromCLI(c *cli.Context) Config {
	return Config{
		Port:            c.String("port"),
		DBDSN:           c.String("db-dsn"),
		LogFile:         c.String("log-file"),
		LogJSON:         c.Bool("log-json"),
		LogDebug:        c.Bool("log-debug"),
		JWTSecret:       c.String("jwt-secret"),
		TokenTTL:        c.Duration("token-ttl"),
		CheckoutTimeout: c.Duration("checkout-timeout"),
		LockTimeout:     c.Duration("lock-timeout"),
		RedisAddr:       c.String("redis-addr"),
		TokenCacheTTL:   c.Duration("token-cache-ttl"),
		AMQPURL:         c.String("amqp-url"),
		OrderQueue:      c.String("order-queue"),
		RateLimit:       c.Int("rate-limit"),
		LoginLimit:      c.Int("login-limit"),
		LoginWindow:     c.Duration("login-window"),
	}
}
