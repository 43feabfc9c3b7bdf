package amortization

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/iwvelando/mortgage-calc/pkg/mathutil"
)

func mustParams(t *testing.T, principal, rate float64, term int, extra float64) LoanParameters {
	t.Helper()
	params, err := NewLoanParameters(principal, rate, term, extra)
	if err != nil {
		t.Fatalf("NewLoanParameters() error = %v", err)
	}
	return params
}

func TestComputeMonthlyPayment(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		rate      float64
		term      int
		expected  float64
		tolerance float64
	}{
		{"thirty year at 6.5%", 300000, 6.5, 360, 1896.20, 0.01},
		{"thirty year at 4.5%", 175000, 4.5, 360, 886.70, 0.01},
		{"fifteen year at 6%", 200000, 6.0, 180, 1687.71, 0.01},
		{"single period", 1000, 12.0, 1, 1010.00, 0.000001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeMonthlyPayment(tt.principal, tt.rate, tt.term)
			if err != nil {
				t.Fatalf("ComputeMonthlyPayment() error = %v", err)
			}
			if math.Abs(got-tt.expected) > tt.tolerance {
				t.Errorf("ComputeMonthlyPayment() = %.4f, expected %.2f", got, tt.expected)
			}
		})
	}
}

func TestComputeMonthlyPaymentZeroRate(t *testing.T) {
	got, err := ComputeMonthlyPayment(10000, 0, 12)
	if err != nil {
		t.Fatalf("ComputeMonthlyPayment() error = %v", err)
	}
	if got != 10000.0/12 {
		t.Errorf("ComputeMonthlyPayment() = %v, expected exactly %v", got, 10000.0/12)
	}
	if mathutil.Round(got) != 833.33 {
		t.Errorf("rounded payment = %.2f, expected 833.33", mathutil.Round(got))
	}
}

func TestComputeMonthlyPaymentInvalid(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		rate      float64
		term      int
		field     string
	}{
		{"zero principal", 0, 6.5, 360, "principal"},
		{"negative principal", -1, 6.5, 360, "principal"},
		{"zero term", 300000, 6.5, 0, "term"},
		{"negative rate", 300000, -1, 360, "annual rate"},
		{"NaN rate", 300000, math.NaN(), 360, "annual rate"},
		{"term past one hundred years", 300000, 6.5, 1201, "term"},
		{"enormous term", 300000, 6.5, 1 << 50, "term"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeMonthlyPayment(tt.principal, tt.rate, tt.term)
			if !errors.Is(err, ErrInvalidParameter) {
				t.Fatalf("expected ErrInvalidParameter, got %v", err)
			}
			var paramErr *InvalidParameterError
			if !errors.As(err, &paramErr) {
				t.Fatalf("expected *InvalidParameterError, got %T", err)
			}
			if paramErr.Field != tt.field {
				t.Errorf("Field = %q, expected %q", paramErr.Field, tt.field)
			}
		})
	}
}

func TestNewLoanParametersValidation(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		rate      float64
		term      int
		extra     float64
		wantErr   bool
	}{
		{"valid", 300000, 6.5, 360, 0, false},
		{"valid with extra", 300000, 6.5, 360, 200, false},
		{"zero rate", 10000, 0, 12, 0, false},
		{"zero principal", 0, 6.5, 360, 0, true},
		{"negative principal", -100, 6.5, 360, 0, true},
		{"infinite principal", math.Inf(1), 6.5, 360, 0, true},
		{"negative rate", 300000, -0.5, 360, 0, true},
		{"rate at 100%", 300000, 100, 360, 0, true},
		{"zero term", 300000, 6.5, 0, 0, true},
		{"negative term", 300000, 6.5, -12, 0, true},
		{"longest term", 300000, 6.5, 1200, 0, false},
		{"term past one hundred years", 300000, 6.5, 1201, 0, true},
		{"enormous term", 300000, 6.5, 1 << 50, 0, true},
		{"negative extra", 300000, 6.5, 360, -50, true},
		{"NaN extra", 300000, 6.5, 360, math.NaN(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := NewLoanParameters(tt.principal, tt.rate, tt.term, tt.extra)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidParameter) {
					t.Fatalf("expected ErrInvalidParameter, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewLoanParameters() error = %v", err)
			}
			if params.AnnualRate() != tt.rate/100 {
				t.Errorf("AnnualRate() = %v, expected %v", params.AnnualRate(), tt.rate/100)
			}
			if params.TermMonths() != tt.term {
				t.Errorf("TermMonths() = %d, expected %d", params.TermMonths(), tt.term)
			}
		})
	}
}

func TestComputeMonthlyPaymentMatchesSchedule(t *testing.T) {
	for cents := 1; cents <= 2000; cents++ {
		rate := float64(cents) / 100
		payment, err := ComputeMonthlyPayment(300000, rate, 360)
		if err != nil {
			t.Fatalf("ComputeMonthlyPayment(%v) error = %v", rate, err)
		}
		result, err := BuildSchedule(mustParams(t, 300000, rate, 360, 0))
		if err != nil {
			t.Fatalf("BuildSchedule(%v) error = %v", rate, err)
		}
		if payment != result.MonthlyPayment {
			t.Fatalf("rate %v: ComputeMonthlyPayment() = %v, schedule payment = %v", rate, payment, result.MonthlyPayment)
		}
	}
}

func TestWithPayment(t *testing.T) {
	params := mustParams(t, 300000, 6.5, 360, 0)
	derived := params.MonthlyPayment()

	fixed, err := params.WithPayment(2000)
	if err != nil {
		t.Fatalf("WithPayment() error = %v", err)
	}
	if fixed.MonthlyPayment() != 2000 {
		t.Errorf("MonthlyPayment() = %v, expected 2000", fixed.MonthlyPayment())
	}
	if params.MonthlyPayment() != derived {
		t.Error("WithPayment modified the receiver")
	}

	if _, err := params.WithPayment(0); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter for zero payment, got %v", err)
	}
}

func TestBuildScheduleThirtyYear(t *testing.T) {
	result, err := BuildSchedule(mustParams(t, 300000, 6.5, 360, 0))
	if err != nil {
		t.Fatalf("BuildSchedule() error = %v", err)
	}

	if math.Abs(result.MonthlyPayment-1896.20) > 0.01 {
		t.Errorf("MonthlyPayment = %.4f, expected 1896.20", result.MonthlyPayment)
	}
	if len(result.Schedule) != 360 || result.PayoffPeriods != 360 {
		t.Errorf("schedule length = %d (PayoffPeriods %d), expected 360", len(result.Schedule), result.PayoffPeriods)
	}
	if math.Abs(result.TotalInterest-382633.47) > 1 {
		t.Errorf("TotalInterest = %.2f, expected about 382633.47", result.TotalInterest)
	}
	if math.Abs(result.TotalPaid-(300000+result.TotalInterest)) > 0.01 {
		t.Errorf("TotalPaid = %.2f, expected principal plus interest %.2f", result.TotalPaid, 300000+result.TotalInterest)
	}

	first := result.Schedule[0]
	if math.Abs(first.Interest-1625.00) > 0.001 {
		t.Errorf("first interest = %.4f, expected 1625.00", first.Interest)
	}
	if math.Abs(first.Principal-271.20) > 0.01 {
		t.Errorf("first principal = %.4f, expected 271.20", first.Principal)
	}

	final := result.Schedule[len(result.Schedule)-1]
	if final.RemainingBalance != 0 {
		t.Errorf("final balance = %v, expected 0", final.RemainingBalance)
	}
	if math.Abs(final.Payment-(final.Principal+final.Interest)) > 1e-9 {
		t.Errorf("final payment %.4f does not equal principal %.4f plus interest %.4f",
			final.Payment, final.Principal, final.Interest)
	}
}

func TestBuildScheduleZeroRate(t *testing.T) {
	result, err := BuildSchedule(mustParams(t, 10000, 0, 12, 0))
	if err != nil {
		t.Fatalf("BuildSchedule() error = %v", err)
	}

	if mathutil.Round(result.MonthlyPayment) != 833.33 {
		t.Errorf("MonthlyPayment = %.2f, expected 833.33", result.MonthlyPayment)
	}
	if result.TotalInterest != 0 {
		t.Errorf("TotalInterest = %v, expected 0", result.TotalInterest)
	}
	if len(result.Schedule) != 12 {
		t.Errorf("schedule length = %d, expected 12", len(result.Schedule))
	}
	if math.Abs(result.TotalPaid-10000) > 0.01 {
		t.Errorf("TotalPaid = %.2f, expected 10000.00", result.TotalPaid)
	}
}

func TestBuildScheduleExtraPayment(t *testing.T) {
	base, err := BuildSchedule(mustParams(t, 300000, 6.5, 360, 0))
	if err != nil {
		t.Fatalf("BuildSchedule() error = %v", err)
	}
	extra, err := BuildSchedule(mustParams(t, 300000, 6.5, 360, 200))
	if err != nil {
		t.Fatalf("BuildSchedule() error = %v", err)
	}

	if extra.PayoffPeriods != 277 {
		t.Errorf("PayoffPeriods = %d, expected 277", extra.PayoffPeriods)
	}
	if extra.PayoffPeriods >= base.PayoffPeriods {
		t.Errorf("extra payments did not shorten the loan: %d >= %d", extra.PayoffPeriods, base.PayoffPeriods)
	}
	if extra.TotalInterest >= base.TotalInterest {
		t.Errorf("extra payments did not reduce interest: %.2f >= %.2f", extra.TotalInterest, base.TotalInterest)
	}
	if math.Abs(extra.TotalInterest-279184.67) > 1 {
		t.Errorf("TotalInterest = %.2f, expected about 279184.67", extra.TotalInterest)
	}
	if extra.MonthlyPayment != base.MonthlyPayment {
		t.Errorf("MonthlyPayment changed with extra payments: %.4f != %.4f", extra.MonthlyPayment, base.MonthlyPayment)
	}

	final := extra.Schedule[len(extra.Schedule)-1]
	if final.Payment >= extra.MonthlyPayment+extra.ExtraMonthlyPayment {
		t.Errorf("final payment %.2f should be below the regular payment", final.Payment)
	}
}

func TestBuildScheduleInvariants(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		rate      float64
		term      int
		extra     float64
	}{
		{"thirty year", 300000, 6.5, 360, 0},
		{"fifteen year", 250000, 5.75, 180, 0},
		{"zero rate", 10000, 0, 12, 0},
		{"small loan", 1, 3, 12, 0},
		{"large extra", 100000, 7, 360, 5000},
		{"extra exceeding balance", 1000, 5, 60, 10000},
		{"high rate", 50000, 29.99, 60, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := mustParams(t, tt.principal, tt.rate, tt.term, tt.extra)
			result, err := BuildSchedule(params)
			if err != nil {
				t.Fatalf("BuildSchedule() error = %v", err)
			}

			if len(result.Schedule) == 0 || len(result.Schedule) > tt.term {
				t.Fatalf("schedule length %d outside 1..%d", len(result.Schedule), tt.term)
			}

			previous := tt.principal
			principalSum := 0.0
			interestSum := 0.0
			paidSum := 0.0
			for i, entry := range result.Schedule {
				if entry.Period != i+1 {
					t.Fatalf("entry %d has period %d", i, entry.Period)
				}
				if entry.RemainingBalance < 0 {
					t.Fatalf("period %d: negative balance %v", entry.Period, entry.RemainingBalance)
				}
				if entry.RemainingBalance > previous {
					t.Fatalf("period %d: balance increased from %v to %v", entry.Period, previous, entry.RemainingBalance)
				}
				expectedInterest := previous * params.MonthlyRate()
				if math.Abs(entry.Interest-expectedInterest) > 1e-9 {
					t.Fatalf("period %d: interest %v, expected %v", entry.Period, entry.Interest, expectedInterest)
				}
				if math.Abs(entry.Principal-(entry.Payment-entry.Interest)) > 1e-6 {
					t.Fatalf("period %d: principal %v != payment %v - interest %v",
						entry.Period, entry.Principal, entry.Payment, entry.Interest)
				}
				principalSum += entry.Principal
				interestSum += entry.Interest
				paidSum += entry.Payment
				if math.Abs(entry.CumulativePrincipal-principalSum) > 1e-6 {
					t.Fatalf("period %d: cumulative principal %v, expected %v", entry.Period, entry.CumulativePrincipal, principalSum)
				}
				previous = entry.RemainingBalance
			}

			if previous != 0 {
				t.Errorf("final balance = %v, expected 0", previous)
			}
			if math.Abs(principalSum-tt.principal) > 0.01 {
				t.Errorf("sum of principal = %.4f, expected %.2f", principalSum, tt.principal)
			}
			if math.Abs(result.TotalInterest-interestSum) > 1e-6 {
				t.Errorf("TotalInterest = %v, expected %v", result.TotalInterest, interestSum)
			}
			if math.Abs(result.TotalPaid-paidSum) > 1e-6 {
				t.Errorf("TotalPaid = %v, expected %v", result.TotalPaid, paidSum)
			}
		})
	}
}

func TestBuildScheduleIdempotent(t *testing.T) {
	params := mustParams(t, 300000, 6.5, 360, 150)
	first, err := BuildSchedule(params)
	if err != nil {
		t.Fatalf("BuildSchedule() error = %v", err)
	}
	second, err := BuildSchedule(params)
	if err != nil {
		t.Fatalf("BuildSchedule() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("BuildSchedule() returned different results for identical parameters")
	}
}

func TestBuildScheduleNonConvergent(t *testing.T) {
	t.Run("payment below interest", func(t *testing.T) {
		params, err := mustParams(t, 100000, 6, 360, 0).WithPayment(400)
		if err != nil {
			t.Fatalf("WithPayment() error = %v", err)
		}
		_, err = BuildSchedule(params)
		if !errors.Is(err, ErrNonConvergentSchedule) {
			t.Fatalf("expected ErrNonConvergentSchedule, got %v", err)
		}
		var nonConvergent *NonConvergentScheduleError
		if !errors.As(err, &nonConvergent) {
			t.Fatalf("expected *NonConvergentScheduleError, got %T", err)
		}
		if nonConvergent.Period != 2 {
			t.Errorf("Period = %d, expected 2", nonConvergent.Period)
		}
		if nonConvergent.Balance < 100000 {
			t.Errorf("Balance = %.2f, expected at least the principal", nonConvergent.Balance)
		}
	})

	t.Run("payment underflows to interest only", func(t *testing.T) {
		_, err := BuildSchedule(mustParams(t, 1000, 99, 1200, 0))
		if !errors.Is(err, ErrNonConvergentSchedule) {
			t.Fatalf("expected ErrNonConvergentSchedule, got %v", err)
		}
	})
}

func TestBuildScheduleFixedPaymentBalloon(t *testing.T) {
	balance, err := RemainingBalance(300000, 1896.20, 6.5, 60)
	if err != nil {
		t.Fatalf("RemainingBalance() error = %v", err)
	}
	params, err := mustParams(t, balance, 6.5, 300, 0).WithPayment(1700)
	if err != nil {
		t.Fatalf("WithPayment() error = %v", err)
	}

	result, err := BuildSchedule(params)
	if err != nil {
		t.Fatalf("BuildSchedule() error = %v", err)
	}
	if len(result.Schedule) != 300 {
		t.Fatalf("schedule length = %d, expected 300", len(result.Schedule))
	}
	final := result.Schedule[len(result.Schedule)-1]
	if final.Payment <= 1700 {
		t.Errorf("final payment = %.2f, expected a balloon above 1700", final.Payment)
	}
	if final.RemainingBalance != 0 {
		t.Errorf("final balance = %v, expected 0", final.RemainingBalance)
	}
}

func TestBuildScheduleZeroValueParameters(t *testing.T) {
	if _, err := BuildSchedule(LoanParameters{}); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter for zero-value parameters, got %v", err)
	}
}

func TestRemainingBalance(t *testing.T) {
	tests := []struct {
		name       string
		principal  float64
		payment    float64
		rate       float64
		monthsPaid int
		expected   float64
		tolerance  float64
	}{
		{"no payments", 300000, 1896.20, 6.5, 0, 300000, 1e-9},
		{"five years", 300000, 1896.2040704788958, 6.5, 60, 280832.93, 0.01},
		{"zero rate", 12000, 1000, 0, 5, 7000, 1e-9},
		{"paid off", 12000, 1000, 0, 24, 0, 0},
		{"full term", 175000, 886.6992921953001, 4.5, 360, 0, 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RemainingBalance(tt.principal, tt.payment, tt.rate, tt.monthsPaid)
			if err != nil {
				t.Fatalf("RemainingBalance() error = %v", err)
			}
			if math.Abs(got-tt.expected) > tt.tolerance {
				t.Errorf("RemainingBalance() = %.4f, expected %.2f", got, tt.expected)
			}
		})
	}

	if _, err := RemainingBalance(300000, 1896.20, 6.5, -1); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter for negative months, got %v", err)
	}
}

func BenchmarkBuildSchedule(b *testing.B) {
	params, err := NewLoanParameters(300000, 6.5, 360, 100)
	if err != nil {
		b.Fatalf("NewLoanParameters() error = %v", err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := BuildSchedule(params); err != nil {
			b.Fatal(err)
		}
	}
}
