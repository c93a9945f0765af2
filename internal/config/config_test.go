package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func parse(t *testing.T, args ...string) Config {
	t.Helper()
	var got Config
	app := &cli.App{
		Flags:  Flags(),
		Action: func(c *cli.Context) error { got = FromCLI(c); return nil },
	}
	require.NoError(t, app.Run(append([]string{"storefront"}, args...)))
	return got
}

func TestDefaults(t *testing.T) {
	got := parse(t)
	d := Default()
	assert.Equal(t, d.Port, got.Port)
	assert.Equal(t, d.CheckoutTimeout, got.CheckoutTimeout)
	assert.Equal(t, d.LoginLimit, got.LoginLimit)
	assert.Empty(t, got.RedisAddr)
}

func TestEnvAndFlags(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CHECKOUT_TIMEOUT", "3s")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	got := parse(t, "--login-limit", "2")
	assert.Equal(t, "9090", got.Port)
	assert.Equal(t, 3*time.Second, got.CheckoutTimeout)
	assert.Equal(t, "localhost:6379", got.RedisAddr)
	assert.Equal(t, 2, got.LoginLimit)

	got = parse(t, "--port", "7000")
	assert.Equal(t, "7000", got.Port, "flag beats env")
}
