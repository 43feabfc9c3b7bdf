// Package calculator is the computation boundary shared by the CLI and the
// HTTP API. It resolves market rates, validates requests into engine
// parameters and runs the amortization engine.
package calculator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iwvelando/mortgage-calc/internal/marketdata"
	"github.com/iwvelando/mortgage-calc/pkg/amortization"
	"github.com/iwvelando/mortgage-calc/pkg/datetime"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrRateUnavailable wraps provider failures when a request relies on the
// market rate.
var ErrRateUnavailable = errors.New("market rate unavailable")

// ErrInvalidRequest marks requests rejected before reaching the engine.
var ErrInvalidRequest = errors.New("invalid request")

// LoanRequest describes a new loan. A nil AnnualRate uses the market rate.
type LoanRequest struct {
	Principal    float64
	AnnualRate   *float64
	TermMonths   int
	ExtraPayment float64
}

// CurrentLoan describes an existing mortgage. The remaining term comes from
// RemainingMonths, or from MaturityDate (YYYY-MM-DD) when RemainingMonths is
// zero. A zero Payment is derived from the balance, rate and remaining term.
type CurrentLoan struct {
	Balance         float64
	AnnualRate      float64
	Payment         float64
	RemainingMonths int
	MaturityDate    string
}

// Scenario is a refinance offer. A nil AnnualRate uses the market rate.
type Scenario struct {
	Name                  string
	AnnualRate            *float64
	TermMonths            int
	ClosingCosts          float64
	BuydownPoints         float64
	PointCostPercent      float64
	RateReductionPerPoint float64
}

// RefinanceRequest compares a current loan against refinance scenarios.
type RefinanceRequest struct {
	Current   CurrentLoan
	Scenarios []Scenario
}

// Calculator runs loan computations.
type Calculator struct {
	logger   *zap.Logger
	provider marketdata.Provider
	now      func() time.Time
}

// New returns a calculator. The provider may be nil when every request
// carries its own rate.
func New(logger *zap.Logger, provider marketdata.Provider) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{
		logger:   logger,
		provider: provider,
		now:      time.Now,
	}
}

// Schedule builds the amortization schedule of a new loan.
func (c *Calculator) Schedule(ctx context.Context, req LoanRequest) (amortization.Result, error) {
	op := "calculator.Schedule"

	rate, err := c.resolveRate(ctx, req.AnnualRate)
	if err != nil {
		return amortization.Result{}, err
	}

	params, err := amortization.NewLoanParameters(req.Principal, rate, req.TermMonths, req.ExtraPayment)
	if err != nil {
		return amortization.Result{}, err
	}

	result, err := amortization.BuildSchedule(params)
	if err != nil {
		c.logger.Warn("schedule failed",
			zap.String("op", op),
			zap.Float64("principal", req.Principal),
			zap.Float64("rate", rate),
			zap.Int("term", req.TermMonths),
			zap.Error(err),
		)
		return amortization.Result{}, err
	}

	c.logger.Debug("schedule computed",
		zap.String("op", op),
		zap.Float64("monthlyPayment", result.MonthlyPayment),
		zap.Int("periods", result.PayoffPeriods),
		zap.Float64("totalInterest", result.TotalInterest),
	)
	return result, nil
}

// CurrentLoanParameters converts the current loan into engine parameters
// with its contractual payment fixed.
func (c *Calculator) CurrentLoanParameters(current CurrentLoan) (amortization.LoanParameters, error) {
	remaining := current.RemainingMonths
	if remaining == 0 && current.MaturityDate != "" {
		months, err := datetime.MonthsUntil(current.MaturityDate, c.now())
		if err != nil {
			return amortization.LoanParameters{}, fmt.Errorf("%w: maturity date %q: %v", ErrInvalidRequest, current.MaturityDate, err)
		}
		remaining = months
	}

	params, err := amortization.NewLoanParameters(current.Balance, current.AnnualRate, remaining, 0)
	if err != nil {
		return amortization.LoanParameters{}, fmt.Errorf("current loan: %w", err)
	}
	if current.Payment > 0 {
		params, err = params.WithPayment(current.Payment)
		if err != nil {
			return amortization.LoanParameters{}, fmt.Errorf("current loan: %w", err)
		}
	}
	return params, nil
}

// Refinance analyzes every scenario against the current loan. Scenarios are
// independent and run concurrently; results keep the input order.
func (c *Calculator) Refinance(ctx context.Context, req RefinanceRequest) ([]amortization.RefinanceAnalysis, error) {
	op := "calculator.Refinance"
	start := time.Now()

	if len(req.Scenarios) == 0 {
		return nil, fmt.Errorf("%w: no refinance scenarios given", ErrInvalidRequest)
	}

	current, err := c.CurrentLoanParameters(req.Current)
	if err != nil {
		return nil, err
	}

	options, err := c.resolveScenarios(ctx, req.Scenarios)
	if err != nil {
		return nil, err
	}

	analyses := make([]amortization.RefinanceAnalysis, len(options))
	g, gctx := errgroup.WithContext(ctx)
	for i := range options {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			analysis, err := amortization.AnalyzeRefinance(current, options[i])
			if err != nil {
				return fmt.Errorf("scenario %q: %w", options[i].DisplayName(), err)
			}
			analyses[i] = analysis
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		c.logger.Warn("refinance analysis failed", zap.String("op", op), zap.Error(err))
		return nil, err
	}

	c.logger.Info("refinance analyzed",
		zap.String("op", op),
		zap.Int("scenarios", len(analyses)),
		zap.Duration("duration", time.Since(start)),
	)
	return analyses, nil
}

// Timing analyzes the market using the provider's current quote.
func (c *Calculator) Timing(ctx context.Context, forecasts []marketdata.Forecast) (marketdata.Timing, error) {
	quote, err := c.Quote(ctx)
	if err != nil {
		return marketdata.Timing{}, err
	}
	return marketdata.AnalyzeTiming([]marketdata.Quote{quote}, forecasts), nil
}

// Quote returns the provider's current rate.
func (c *Calculator) Quote(ctx context.Context) (marketdata.Quote, error) {
	if c.provider == nil {
		return marketdata.Quote{}, fmt.Errorf("%w: no provider configured", ErrRateUnavailable)
	}
	quote, err := c.provider.CurrentRate(ctx)
	if err != nil {
		c.logger.Error("market rate lookup failed",
			zap.String("op", "calculator.Quote"),
			zap.Error(err),
		)
		return marketdata.Quote{}, fmt.Errorf("%w: %v", ErrRateUnavailable, err)
	}
	return quote, nil
}

func (c *Calculator) resolveRate(ctx context.Context, rate *float64) (float64, error) {
	if rate != nil {
		return *rate, nil
	}
	quote, err := c.Quote(ctx)
	if err != nil {
		return 0, err
	}
	c.logger.Debug("using market rate",
		zap.String("op", "calculator.resolveRate"),
		zap.String("source", quote.Source),
		zap.Float64("rate", quote.Rate),
	)
	return quote.Rate, nil
}

// resolveScenarios fetches the market rate at most once for all scenarios
// that omit a rate.
func (c *Calculator) resolveScenarios(ctx context.Context, scenarios []Scenario) ([]amortization.RefinanceOption, error) {
	var market *float64
	options := make([]amortization.RefinanceOption, 0, len(scenarios))
	for _, s := range scenarios {
		rate := s.AnnualRate
		if rate == nil {
			if market == nil {
				resolved, err := c.resolveRate(ctx, nil)
				if err != nil {
					return nil, err
				}
				market = &resolved
			}
			rate = market
		}
		options = append(options, amortization.RefinanceOption{
			Name:                  s.Name,
			AnnualRate:            *rate,
			TermMonths:            s.TermMonths,
			ClosingCosts:          s.ClosingCosts,
			BuydownPoints:         s.BuydownPoints,
			PointCostPercent:      s.PointCostPercent,
			RateReductionPerPoint: s.RateReductionPerPoint,
		})
	}
	return options, nil
}
