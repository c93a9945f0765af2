package services_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/services"
)

var reOrderNumber = regexp.MustCompile(`^[0-9]{14}-[0-9A-F]{12}$`)

func TestOrderNumbers_UniqueAndWellFormed(t *testing.T) {
	g := services.NewOrderNumbers()
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		n := g.Candidate()
		require.Regexp(t, reOrderNumber, n)
		_, dup := seen[n]
		require.False(t, dup, "duplicate order number %s", n)
		seen[n] = struct{}{}
	}
}

func TestOrderNumbers_PrefixNeverGoesBackwards(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	times := []time.Time{base, base.Add(-time.Hour), base.Add(2 * time.Second)}
	i := 0
	g := services.NewOrderNumbers()
	g.Now = func() time.Time { ts := times[i]; i++; return ts }

	a, b, c := g.Candidate(), g.Candidate(), g.Candidate()
	assert.Equal(t, "20250301120000", a[:14])
	assert.Equal(t, "20250301120000", b[:14], "clock went back, prefix must not")
	assert.Equal(t, "20250301120002", c[:14])
}

func TestOrderNumbers_RetriesThenExhausts(t *testing.T) {
	g := services.NewOrderNumbers()
	g.Suffix = func() string { return "ABCDEF012345" }

	calls := 0
	_, err := g.Next(context.Background(), func(context.Context, string) (bool, error) {
		calls++
		return true, nil
	})
	require.ErrorIs(t, err, services.ErrOrderNumberExhausted)
	assert.Equal(t, 5, calls)
	assert.Equal(t, services.KindOrderNumberExhausted, services.KindOf(err))

	calls = 0
	n, err := g.Next(context.Background(), func(context.Context, string) (bool, error) {
		calls++
		return calls < 3, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Regexp(t, reOrderNumber, n)
}
