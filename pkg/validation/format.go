// Package validation provides common validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/mortgage-calc/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	switch format {
	case constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON:
		return nil
	}
	return fmt.Errorf("expected output format of %s, %s or %s, got %s",
		constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON, format)
}

// ValidateMode checks if the CLI mode is supported.
func ValidateMode(mode string) error {
	if mode != constants.ModeSchedule && mode != constants.ModeRefinance {
		return fmt.Errorf("expected mode of %s or %s, got %s",
			constants.ModeSchedule, constants.ModeRefinance, mode)
	}
	return nil
}
