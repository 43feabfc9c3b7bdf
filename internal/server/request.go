package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/iwvelando/mortgage-calc/internal/calculator"
	"github.com/iwvelando/mortgage-calc/internal/marketdata"
	"github.com/iwvelando/mortgage-calc/pkg/format"
)

// amount is a currency value given as a JSON number or a user-entered
// string such as "$300,000".
type amount float64

func (a *amount) UnmarshalJSON(data []byte) error {
	v, err := decodeNumber(data, format.ParseCurrency)
	if err != nil {
		return fmt.Errorf("invalid amount %s: %w", data, err)
	}
	*a = amount(v)
	return nil
}

// rate is an annual percentage given as a JSON number or a string such as
// "6.5%".
type rate float64

func (r *rate) UnmarshalJSON(data []byte) error {
	v, err := decodeNumber(data, format.ParsePercent)
	if err != nil {
		return fmt.Errorf("invalid rate %s: %w", data, err)
	}
	*r = rate(v)
	return nil
}

func decodeNumber(data []byte, parse func(string) (float64, error)) (float64, error) {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return 0, nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0, err
		}
		return parse(s)
	}
	return strconv.ParseFloat(string(data), 64)
}

func ratePtr(r *rate) *float64 {
	if r == nil {
		return nil
	}
	v := float64(*r)
	return &v
}

type scheduleRequest struct {
	Principal    amount `json:"principal"`
	AnnualRate   *rate  `json:"annualRate"`
	TermMonths   int    `json:"termMonths"`
	ExtraPayment amount `json:"extraPayment"`
	StartMonth   string `json:"startMonth"`
}

func (s scheduleRequest) loanRequest() calculator.LoanRequest {
	return calculator.LoanRequest{
		Principal:    float64(s.Principal),
		AnnualRate:   ratePtr(s.AnnualRate),
		TermMonths:   s.TermMonths,
		ExtraPayment: float64(s.ExtraPayment),
	}
}

type currentLoanRequest struct {
	Balance         amount `json:"balance"`
	AnnualRate      rate   `json:"annualRate"`
	Payment         amount `json:"payment"`
	RemainingMonths int    `json:"remainingMonths"`
	MaturityDate    string `json:"maturityDate"`
}

type scenarioRequest struct {
	Name                  string  `json:"name"`
	AnnualRate            *rate   `json:"annualRate"`
	TermMonths            int     `json:"termMonths"`
	ClosingCosts          amount  `json:"closingCosts"`
	BuydownPoints         float64 `json:"buydownPoints"`
	PointCostPercent      rate    `json:"pointCostPercent"`
	RateReductionPerPoint rate    `json:"rateReductionPerPoint"`
}

type refinanceRequest struct {
	Current       currentLoanRequest    `json:"current"`
	Scenarios     []scenarioRequest     `json:"scenarios"`
	Forecasts     []marketdata.Forecast `json:"forecasts"`
	IncludeTiming bool                  `json:"includeTiming"`
}

func (r refinanceRequest) calculatorRequest() calculator.RefinanceRequest {
	req := calculator.RefinanceRequest{
		Current: calculator.CurrentLoan{
			Balance:         float64(r.Current.Balance),
			AnnualRate:      float64(r.Current.AnnualRate),
			Payment:         float64(r.Current.Payment),
			RemainingMonths: r.Current.RemainingMonths,
			MaturityDate:    r.Current.MaturityDate,
		},
		Scenarios: make([]calculator.Scenario, 0, len(r.Scenarios)),
	}
	for _, s := range r.Scenarios {
		req.Scenarios = append(req.Scenarios, calculator.Scenario{
			Name:                  s.Name,
			AnnualRate:            ratePtr(s.AnnualRate),
			TermMonths:            s.TermMonths,
			ClosingCosts:          float64(s.ClosingCosts),
			BuydownPoints:         s.BuydownPoints,
			PointCostPercent:      float64(s.PointCostPercent),
			RateReductionPerPoint: float64(s.RateReductionPerPoint),
		})
	}
	return req
}
