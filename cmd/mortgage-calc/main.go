package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/iwvelando/mortgage-calc/internal/calculator"
	"github.com/iwvelando/mortgage-calc/internal/config"
	"github.com/iwvelando/mortgage-calc/internal/logging"
	"github.com/iwvelando/mortgage-calc/internal/marketdata"
	"github.com/iwvelando/mortgage-calc/pkg/constants"
	"github.com/iwvelando/mortgage-calc/pkg/output"
	"github.com/iwvelando/mortgage-calc/pkg/validation"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// A missing .env file is fine; it only supplies MORTGAGE_ overrides.
	_ = godotenv.Load()

	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	mode := flag.String("mode", constants.ModeSchedule, "what to compute: schedule, refinance")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// CLI override takes precedence over config
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(), zap.String("op", "main"))
	}
	if err := validation.ValidateMode(*mode); err != nil {
		logger.Fatal(err.Error(), zap.String("op", "main"))
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	provider, closeProvider, err := marketdata.NewProvider(conf.MarketData, logger)
	if err != nil {
		logger.Fatal("failed to initialize market data provider",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	defer func() {
		if err := closeProvider(); err != nil {
			logger.Warn("failed to close market data cache", zap.String("op", "main"), zap.Error(err))
		}
	}()

	calc := calculator.New(logger, provider)

	if err := run(context.Background(), os.Stdout, logger, calc, conf, *mode, outputFormat); err != nil {
		logger.Fatal("failed to compute "+*mode,
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}

// run computes the requested mode and writes it to w in the given format.
func run(ctx context.Context, w io.Writer, logger *zap.Logger, calc *calculator.Calculator, conf *config.Configuration, mode, outputFormat string) error {
	switch mode {
	case constants.ModeRefinance:
		analyses, err := calc.Refinance(ctx, conf.RefinanceRequest())
		if err != nil {
			return err
		}

		var timing *marketdata.Timing
		if len(conf.Refinance.Forecasts) > 0 && conf.MarketData.Enabled() {
			t, err := calc.Timing(ctx, conf.Refinance.Forecasts)
			if err != nil {
				logger.Warn("market timing unavailable",
					zap.String("op", "main.run"),
					zap.Error(err),
				)
			} else {
				timing = &t
			}
		}

		report := output.NewRefinanceReport(analyses, timing)
		switch outputFormat {
		case constants.OutputFormatCSV:
			return output.RefinanceCSV(w, report)
		case constants.OutputFormatJSON:
			return output.JSON(w, report)
		default:
			return output.RefinancePretty(w, report)
		}

	default:
		result, err := calc.Schedule(ctx, conf.LoanRequest())
		if err != nil {
			return err
		}

		report, err := output.NewScheduleReport(result, conf.Loan.StartDate)
		if err != nil {
			return err
		}
		switch outputFormat {
		case constants.OutputFormatCSV:
			return output.ScheduleCSV(w, report)
		case constants.OutputFormatJSON:
			return output.JSON(w, report)
		default:
			return output.SchedulePretty(w, report)
		}
	}
}
