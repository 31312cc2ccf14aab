package workflow

import (
	"context"
	"time"

	"github.com/paynetra/reports_backend/config"
	"github.com/paynetra/reports_backend/utils"
	"github.com/sirupsen/logrus"
)

// AggregationScheduler keeps the rollups fresh by re-running the maintenance
// passes on a fixed cadence. Locking inside the passes makes it safe to run
// one scheduler per instance.
type AggregationScheduler struct {
	Logger   *logrus.Logger
	Interval time.Duration
}

func NewAggregationScheduler(logger *logrus.Logger) *AggregationScheduler {
	minutes := config.IntFromEnv("AGGREGATION_INTERVAL_MINUTES", 10)
	return &AggregationScheduler{
		Logger:   logger,
		Interval: time.Duration(minutes) * time.Minute,
	}
}

func (s *AggregationScheduler) Run(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		s.runOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.Interval):
		}
	}
}

func (s *AggregationScheduler) runOnce(ctx context.Context) {
	now := time.Now().In(utils.ReportLocation())

	type pass struct {
		name string
		run  func() error
	}
	passes := []pass{
		{"daily", func() error { _, err := UpdateDailySummaries(ctx, now); return err }},
		{"modes", func() error { _, err := UpdatePaymentModeSummaries(ctx, now); return err }},
		{"hourly", func() error { _, err := UpdateHourlyStats(ctx, now); return err }},
		{"monthly", func() error { _, err := UpdateMonthlyStats(ctx, now.Year(), int(now.Month())); return err }},
	}

	// Just after midnight, yesterday's buckets still pick up late status
	// updates from the gateway; refresh them for the first hour.
	if now.Hour() == 0 {
		yesterday := now.AddDate(0, 0, -1)
		passes = append(passes,
			pass{"daily-prev", func() error { _, err := UpdateDailySummaries(ctx, yesterday); return err }},
			pass{"modes-prev", func() error { _, err := UpdatePaymentModeSummaries(ctx, yesterday); return err }},
			pass{"hourly-prev", func() error { _, err := UpdateHourlyStats(ctx, yesterday); return err }},
		)
	}

	for _, p := range passes {
		if err := p.run(); err != nil {
			if err == ErrAggregationRunning {
				continue
			}
			config.LogError(s.Logger, "workflow", "runOnce", "aggregation pass "+p.name, nil, err)
		}
	}
}
