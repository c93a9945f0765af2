package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	orderNumberLayout   = "20060102150405"
	orderNumberSuffix   = 12
	maxOrderNumberTries = 5
)

// OrderNumbers builds order numbers of the form <UTC timestamp>-<random hex>.
// The timestamp prefix never goes backwards within a process, even if the
// wall clock does.
type OrderNumbers struct {
	Now    func() time.Time
	Suffix func() string

	mu   sync.Mutex
	last time.Time
}

func NewOrderNumbers() *OrderNumbers {
	return &OrderNumbers{Now: time.Now, Suffix: randomSuffix}
}

func randomSuffix() string {
	u := uuid.New()
	return strings.ToUpper(strings.ReplaceAll(u.String(), "-", "")[:orderNumberSuffix])
}

func (g *OrderNumbers) prefix() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.Now().UTC().Truncate(time.Second)
	if now.Before(g.last) {
		now = g.last
	}
	g.last = now
	return now.Format(orderNumberLayout)
}

// Candidate returns one order number without checking uniqueness.
func (g *OrderNumbers) Candidate() string {
	return g.prefix() + "-" + g.Suffix()
}

// Next returns a number that exists reports as unused, regenerating on
// collision up to maxOrderNumberTries times.
func (g *OrderNumbers) Next(ctx context.Context, exists func(context.Context, string) (bool, error)) (string, error) {
	for i := 0; i < maxOrderNumberTries; i++ {
		n := g.Candidate()
		taken, err := exists(ctx, n)
		if err != nil {
			return "", err
		}
		if !taken {
			return n, nil
		}
	}
	return "", ErrOrderNumberExhausted
}
