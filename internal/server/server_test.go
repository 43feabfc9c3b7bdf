package server

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/iwvelando/mortgage-calc/internal/calculator"
	"github.com/iwvelando/mortgage-calc/internal/marketdata"
	"github.com/iwvelando/mortgage-calc/pkg/output"
	"github.com/iwvelando/mortgage-calc/pkg/testutil"
	"go.uber.org/zap"
)

type failingProvider struct{}

func (failingProvider) CurrentRate(context.Context) (marketdata.Quote, error) {
	return marketdata.Quote{}, errors.New("feed offline")
}

func newTestHandler(t *testing.T, provider marketdata.Provider) http.Handler {
	t.Helper()
	return NewHandler(zap.NewNop(), calculator.New(zap.NewNop(), provider), 0, "1.2.3", nil)
}

func staticProvider(t *testing.T, rate float64) marketdata.Provider {
	t.Helper()
	provider, err := marketdata.NewStaticProvider(rate, "30-year fixed", "test")
	if err != nil {
		t.Fatalf("NewStaticProvider() error = %v", err)
	}
	return provider
}

func do(handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestHandleScheduleSuccess(t *testing.T) {
	handler := newTestHandler(t, nil)

	rr := do(handler, http.MethodPost, "/api/schedule",
		`{"principal": "$300,000", "annualRate": "6.5%", "termMonths": 360, "startMonth": "2025-01"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp output.ScheduleReport
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.MonthlyPayment != 1896.20 {
		t.Errorf("monthlyPayment = %.2f, expected 1896.20", resp.MonthlyPayment)
	}
	if resp.PayoffPeriods != 360 || len(resp.Payments) != 360 {
		t.Errorf("expected 360 payments, got %d (%d rows)", resp.PayoffPeriods, len(resp.Payments))
	}
	if last := testutil.FindPayment(resp, 360); last == nil || last.Date != "2054-12" || last.Balance != 0 {
		t.Errorf("unexpected final payment %+v", last)
	}
}

func TestHandleScheduleUsesMarketRate(t *testing.T) {
	handler := newTestHandler(t, staticProvider(t, 6.5))

	rr := do(handler, http.MethodPost, "/api/schedule", `{"principal": 300000, "termMonths": 360}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp output.ScheduleReport
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.MonthlyPayment != 1896.20 {
		t.Errorf("monthlyPayment = %.2f, expected 1896.20", resp.MonthlyPayment)
	}
}

func TestHandleScheduleErrors(t *testing.T) {
	tests := []struct {
		name     string
		provider marketdata.Provider
		body     string
		status   int
	}{
		{"malformed JSON", nil, `{"principal":`, http.StatusBadRequest},
		{"unparseable amount", nil, `{"principal": "lots", "annualRate": 6, "termMonths": 12}`, http.StatusBadRequest},
		{"negative principal", nil, `{"principal": -1, "annualRate": 6, "termMonths": 12}`, http.StatusBadRequest},
		{"zero term", nil, `{"principal": 1000, "annualRate": 6, "termMonths": 0}`, http.StatusBadRequest},
		{"term past one hundred years", nil, `{"principal": 1000, "annualRate": 6, "termMonths": 1201}`, http.StatusBadRequest},
		{"enormous term", nil, `{"principal": 1000, "annualRate": 6, "termMonths": 1125899906842624}`, http.StatusBadRequest},
		{"bad start month", nil, `{"principal": 1000, "annualRate": 6, "termMonths": 12, "startMonth": "May"}`, http.StatusBadRequest},
		{"provider failure", failingProvider{}, `{"principal": 1000, "termMonths": 12}`, http.StatusBadGateway},
		{"no provider", nil, `{"principal": 1000, "termMonths": 12}`, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(newTestHandler(t, tt.provider), http.MethodPost, "/api/schedule", tt.body)
			if rr.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, rr.Code, rr.Body.String())
			}
			var resp map[string]string
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil || resp["error"] == "" {
				t.Errorf("expected JSON error body, got %q", rr.Body.String())
			}
		})
	}
}

func TestHandleScheduleRequestTooLarge(t *testing.T) {
	handler := NewHandler(zap.NewNop(), nil, 64, "", nil)
	body := `{"principal": 300000, "annualRate": 6.5, "termMonths": 360, "startMonth": "` + strings.Repeat("x", 128) + `"}`

	rr := do(handler, http.MethodPost, "/api/schedule", body)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestHandleScheduleExport(t *testing.T) {
	handler := newTestHandler(t, nil)

	rr := do(handler, http.MethodPost, "/api/schedule/export",
		`{"principal": 1200, "annualRate": 0, "termMonths": 12}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q, expected text/csv", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("Content-Disposition = %q, expected attachment", cd)
	}

	records, err := csv.NewReader(rr.Body).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(records) != 13 {
		t.Fatalf("expected header plus 12 rows, got %d", len(records))
	}
	if records[0][0] != "period" || records[12][0] != "12" {
		t.Errorf("unexpected CSV layout: %v ... %v", records[0], records[12])
	}
}

func TestHandleRefinance(t *testing.T) {
	handler := newTestHandler(t, staticProvider(t, 6.8))

	body := `{
		"current": {"balance": "$280,833.22", "annualRate": "6.5%", "payment": 1896.20, "remainingMonths": 300},
		"scenarios": [
			{"annualRate": 5.5, "termMonths": 360, "closingCosts": "$3,000", "buydownPoints": 1},
			{"name": "Market", "termMonths": 360, "closingCosts": 3000}
		],
		"forecasts": [{"source": "a", "direction": "down"}, {"source": "b", "direction": "down"}]
	}`

	rr := do(handler, http.MethodPost, "/api/refinance", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp output.RefinanceReport
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Scenarios) != 2 {
		t.Fatalf("expected 2 scenarios, got %d", len(resp.Scenarios))
	}

	first := resp.Scenarios[0]
	if first.Name != "Refi: 5.250% rate, 30yr term" {
		t.Errorf("unexpected name %q", first.Name)
	}
	if first.NewPayment != 1550.77 || first.BreakevenMonths != 17 {
		t.Errorf("unexpected analysis: payment %.2f, breakeven %d", first.NewPayment, first.BreakevenMonths)
	}
	if first.CombinedRecommendation == "" {
		t.Error("expected combined recommendation with timing")
	}

	market := testutil.FindScenario(resp, "Market")
	if market == nil || market.NewRate != 6.8 {
		t.Errorf("expected market rate scenario at 6.8%%, got %+v", market)
	}
	if resp.Timing == nil || resp.Timing.Consensus != marketdata.ConsensusFalling {
		t.Errorf("expected falling consensus timing, got %+v", resp.Timing)
	}
}

func TestHandleRefinanceErrors(t *testing.T) {
	tests := []struct {
		name     string
		provider marketdata.Provider
		body     string
		status   int
	}{
		{
			"no scenarios", nil,
			`{"current": {"balance": 200000, "annualRate": 6, "remainingMonths": 300}}`,
			http.StatusBadRequest,
		},
		{
			"bad maturity date", nil,
			`{"current": {"balance": 200000, "annualRate": 6, "maturityDate": "soon"}, "scenarios": [{"annualRate": 5, "termMonths": 360}]}`,
			http.StatusBadRequest,
		},
		{
			"payment below interest", nil,
			`{"current": {"balance": 200000, "annualRate": 6, "payment": 100, "remainingMonths": 300}, "scenarios": [{"annualRate": 5, "termMonths": 360}]}`,
			http.StatusUnprocessableEntity,
		},
		{
			"timing without provider", nil,
			`{"current": {"balance": 200000, "annualRate": 6, "remainingMonths": 300}, "scenarios": [{"annualRate": 5, "termMonths": 360}], "includeTiming": true}`,
			http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(newTestHandler(t, tt.provider), http.MethodPost, "/api/refinance", tt.body)
			if rr.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestHandleRate(t *testing.T) {
	rr := do(newTestHandler(t, staticProvider(t, 6.25)), http.MethodGet, "/api/rate", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var quote marketdata.Quote
	if err := json.Unmarshal(rr.Body.Bytes(), &quote); err != nil {
		t.Fatalf("failed to decode quote: %v", err)
	}
	if quote.Rate != 6.25 || quote.Source != "test" {
		t.Errorf("unexpected quote %+v", quote)
	}

	rr = do(newTestHandler(t, failingProvider{}), http.MethodGet, "/api/rate", "")
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", rr.Code)
	}
}

func TestHandleVersion(t *testing.T) {
	rr := do(newTestHandler(t, nil), http.MethodGet, "/api/version", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var payload map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode version response: %v", err)
	}
	if payload["version"] != "1.2.3" {
		t.Fatalf("expected version 1.2.3, got %q", payload["version"])
	}

	rr = do(NewHandler(nil, nil, 0, "  ", nil), http.MethodGet, "/api/version", "")
	if !strings.Contains(rr.Body.String(), `"dev"`) {
		t.Errorf("expected dev version fallback, got %s", rr.Body.String())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	rr := do(newTestHandler(t, nil), http.MethodGet, "/api/schedule", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rr.Code)
	}
}

func TestCORS(t *testing.T) {
	handler := NewHandler(zap.NewNop(), nil, 0, "", []string{"https://example.com"})

	tests := []struct {
		origin  string
		allowed bool
	}{
		{"https://example.com", true},
		{"https://evil.example", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
		req.Header.Set("Origin", tt.origin)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		got := rr.Header().Get("Access-Control-Allow-Origin")
		if tt.allowed && got != tt.origin {
			t.Errorf("origin %s: expected allow header, got %q", tt.origin, got)
		}
		if !tt.allowed && got != "" {
			t.Errorf("origin %s: expected no allow header, got %q", tt.origin, got)
		}
	}
}
