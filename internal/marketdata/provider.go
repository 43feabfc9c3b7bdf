// Package marketdata supplies current mortgage rates to the calculator. The
// rate leaves this package as a plain percentage; nothing here is visible to
// the amortization engine.
package marketdata

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/mortgage-calc/pkg/constants"
	"github.com/iwvelando/mortgage-calc/pkg/mathutil"
)

// ErrNoQuote is returned when a provider has no rate to offer.
var ErrNoQuote = errors.New("no rate quote available")

// Quote is a single observed mortgage rate.
type Quote struct {
	Type   string    `json:"type"`
	Rate   float64   `json:"rate"` // percent, e.g. 6.5
	Source string    `json:"source"`
	Date   time.Time `json:"date"`
}

// Provider returns the current market rate.
type Provider interface {
	CurrentRate(ctx context.Context) (Quote, error)
}

// RefreshingProvider is a Provider whose quote can be fetched ahead of
// demand.
type RefreshingProvider interface {
	Provider
	Refresh(ctx context.Context) (Quote, error)
}

// StaticProvider always returns the configured rate.
type StaticProvider struct {
	quote Quote
	now   func() time.Time
}

// NewStaticProvider returns a provider serving a fixed rate. An empty rate
// type defaults to the 30-year product.
func NewStaticProvider(rate float64, rateType, source string) (*StaticProvider, error) {
	if rate < 0 || rate >= constants.MaxAnnualRatePercent {
		return nil, fmt.Errorf("static rate %v out of range", rate)
	}
	if rateType == "" {
		rateType = constants.DefaultRateType
	}
	if source == "" {
		source = constants.MarketSourceStatic
	}
	return &StaticProvider{
		quote: Quote{Type: rateType, Rate: rate, Source: source},
		now:   time.Now,
	}, nil
}

// CurrentRate implements Provider.
func (p *StaticProvider) CurrentRate(ctx context.Context) (Quote, error) {
	if err := ctx.Err(); err != nil {
		return Quote{}, err
	}
	q := p.quote
	q.Date = p.now()
	return q, nil
}

// AverageRates returns the mean rate per rate type. Types are compared
// case-insensitively and keyed in lower case.
func AverageRates(quotes []Quote) map[string]float64 {
	byType := make(map[string][]float64)
	for _, q := range quotes {
		rateType := strings.ToLower(strings.TrimSpace(q.Type))
		byType[rateType] = append(byType[rateType], q.Rate)
	}

	averages := make(map[string]float64, len(byType))
	for rateType, rates := range byType {
		averages[rateType] = mathutil.Mean(rates)
	}
	return averages
}
