package marketdata

import (
	"context"
	"fmt"

	"github.com/iwvelando/mortgage-calc/pkg/constants"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Refresher keeps a provider's cached quote warm on a cron schedule.
type Refresher struct {
	provider RefreshingProvider
	cron     *cron.Cron
	logger   *zap.Logger
}

// NewRefresher schedules provider refreshes. An empty spec uses the default
// hourly schedule; specs accept the standard five fields and descriptors
// such as "@every 30m".
func NewRefresher(provider RefreshingProvider, spec string, logger *zap.Logger) (*Refresher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if spec == "" {
		spec = constants.DefaultRefreshSchedule
	}

	r := &Refresher{
		provider: provider,
		cron:     cron.New(),
		logger:   logger,
	}
	if _, err := r.cron.AddFunc(spec, r.refresh); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	return r, nil
}

func (r *Refresher) refresh() {
	op := "marketdata.Refresher.refresh"
	quote, err := r.provider.Refresh(context.Background())
	if err != nil {
		r.logger.Error("market rate refresh failed", zap.String("op", op), zap.Error(err))
		return
	}
	r.logger.Info("market rate refreshed",
		zap.String("op", op),
		zap.String("source", quote.Source),
		zap.Float64("rate", quote.Rate),
	)
}

// Run starts the schedule and blocks until ctx is done, then waits for a
// running refresh to finish.
func (r *Refresher) Run(ctx context.Context) error {
	r.cron.Start()
	<-ctx.Done()
	<-r.cron.Stop().Done()
	return nil
}
