package amortization

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter is matched by every *InvalidParameterError.
	ErrInvalidParameter = errors.New("invalid loan parameter")

	// ErrNonConvergentSchedule is matched by every *NonConvergentScheduleError.
	ErrNonConvergentSchedule = errors.New("amortization schedule does not converge")
)

// InvalidParameterError reports a loan input rejected during validation.
type InvalidParameterError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// Is lets errors.Is match ErrInvalidParameter.
func (e *InvalidParameterError) Is(target error) bool {
	return target == ErrInvalidParameter
}

// NonConvergentScheduleError reports a schedule that stopped reducing the
// balance: the principal portion was zero or negative for two consecutive
// periods.
type NonConvergentScheduleError struct {
	Period   int
	Balance  float64
	Payment  float64
	Interest float64
}

func (e *NonConvergentScheduleError) Error() string {
	return fmt.Sprintf("schedule does not converge at period %d: payment %.2f does not cover interest %.2f on balance %.2f",
		e.Period, e.Payment, e.Interest, e.Balance)
}

// Is lets errors.Is match ErrNonConvergentSchedule.
func (e *NonConvergentScheduleError) Is(target error) bool {
	return target == ErrNonConvergentSchedule
}

func invalid(field string, value float64, reason string) error {
	return &InvalidParameterError{Field: field, Value: value, Reason: reason}
}
