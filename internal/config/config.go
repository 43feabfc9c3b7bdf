// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/mortgage-calc/internal/calculator"
	"github.com/iwvelando/mortgage-calc/internal/marketdata"
	"github.com/iwvelando/mortgage-calc/pkg/constants"
	"github.com/iwvelando/mortgage-calc/pkg/validation"
	"github.com/spf13/viper"
)

// DateTimeLayout is the format of loan start dates and is also the output
// date format.
const DateTimeLayout = constants.DateTimeLayout

// Configuration holds all configuration for mortgage-calc.
type Configuration struct {
	Loan       Loan
	Refinance  Refinance
	MarketData marketdata.Config `yaml:"marketData,omitempty"`
	Logging    LoggingConfig     `yaml:"logging,omitempty"`
	Output     OutputConfig      `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// Loan is a new loan to amortize. A nil InterestRate uses the market rate.
type Loan struct {
	Principal    float64
	InterestRate *float64
	Term         int // months
	ExtraPayment float64
	StartDate    string
}

// Refinance holds the current mortgage and the offers to compare it with.
type Refinance struct {
	Current   CurrentMortgage
	Scenarios []Scenario
	Forecasts []marketdata.Forecast
}

// CurrentMortgage is the loan being refinanced.
type CurrentMortgage struct {
	Balance       float64
	InterestRate  float64
	Payment       float64
	RemainingTerm int // months
	MaturityDate  string
}

// Scenario is one refinance offer. A nil InterestRate uses the market rate.
type Scenario struct {
	Name                  string
	InterestRate          *float64
	Term                  int // months
	ClosingCosts          float64
	BuydownPoints         float64
	PointCost             float64 // percent of balance per point
	RateReductionPerPoint float64
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. Keys may be overridden by MORTGAGE_ prefixed
// environment variables, e.g. MORTGAGE_LOAN_PRINCIPAL.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads a YAML configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %s", err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}

// LoanRequest converts the configured loan into a calculator request.
func (c *Configuration) LoanRequest() calculator.LoanRequest {
	return calculator.LoanRequest{
		Principal:    c.Loan.Principal,
		AnnualRate:   c.Loan.InterestRate,
		TermMonths:   c.Loan.Term,
		ExtraPayment: c.Loan.ExtraPayment,
	}
}

// RefinanceRequest converts the configured refinance section into a
// calculator request.
func (c *Configuration) RefinanceRequest() calculator.RefinanceRequest {
	req := calculator.RefinanceRequest{
		Current: calculator.CurrentLoan{
			Balance:         c.Refinance.Current.Balance,
			AnnualRate:      c.Refinance.Current.InterestRate,
			Payment:         c.Refinance.Current.Payment,
			RemainingMonths: c.Refinance.Current.RemainingTerm,
			MaturityDate:    c.Refinance.Current.MaturityDate,
		},
	}
	for _, s := range c.Refinance.Scenarios {
		req.Scenarios = append(req.Scenarios, calculator.Scenario{
			Name:                  s.Name,
			AnnualRate:            s.InterestRate,
			TermMonths:            s.Term,
			ClosingCosts:          s.ClosingCosts,
			BuydownPoints:         s.BuydownPoints,
			PointCostPercent:      s.PointCost,
			RateReductionPerPoint: s.RateReductionPerPoint,
		})
	}
	return req
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if c.Loan.Principal > 0 {
		warnings = append(warnings, validation.ValidateRateScale("loan", c.Loan.InterestRate)...)
		warnings = append(warnings, validation.ValidateStartDate("loan", c.Loan.StartDate)...)
		if c.Loan.InterestRate == nil && !c.MarketData.Enabled() {
			warnings = append(warnings, "Loan has no interest rate and no market data source is configured")
		}
	}

	current := c.Refinance.Current
	if current.Balance > 0 {
		rate := current.InterestRate
		warnings = append(warnings, validation.ValidateRateScale("current mortgage", &rate)...)
		if current.RemainingTerm == 0 && current.MaturityDate == "" {
			warnings = append(warnings, "Current mortgage has neither a remaining term nor a maturity date")
		}
		if current.RemainingTerm > 0 && current.MaturityDate != "" {
			warnings = append(warnings, "Current mortgage sets both remainingTerm and maturityDate; remainingTerm wins")
		}
	}

	for _, s := range c.Refinance.Scenarios {
		name := s.Name
		if name == "" {
			name = "unnamed scenario"
		}
		warnings = append(warnings, validation.ValidateRateScale(name, s.InterestRate)...)
		if s.InterestRate == nil && !c.MarketData.Enabled() {
			warnings = append(warnings, fmt.Sprintf("Scenario '%s' has no interest rate and no market data source is configured", name))
		}
		if s.ClosingCosts == 0 && s.BuydownPoints == 0 {
			warnings = append(warnings, fmt.Sprintf("Scenario '%s' has no closing costs; breakeven is immediate", name))
		}
	}

	return warnings
}
