package app

import (
	"context"
	"sync"
	"time"

	"github.com/rabotim/marketplace/internal/config"
	"github.com/rabotim/marketplace/internal/models"
)

var (
	digestCancel context.CancelFunc
	digestWG     sync.WaitGroup
)

// MustStartDigestWorker runs one flush loop per batched frequency.
// Each tick hands the accumulated notifications to the mail/push
// gateway; here that hand-off is the log line in FlushDigest.
func MustStartDigestWorker() {
	cfg := config.Global().Digest

	var ctx context.Context
	ctx, digestCancel = context.WithCancel(context.Background())

	digestWG.Add(2)
	go runDigestLoop(ctx, models.FrequencyDaily, cfg.DailyInterval)
	go runDigestLoop(ctx, models.FrequencyWeekly, cfg.WeeklyInterval)

	globalLogger.Info().
		Dur("daily_interval", cfg.DailyInterval).
		Dur("weekly_interval", cfg.WeeklyInterval).
		Msg("started digest worker")
}

func StopDigestWorker() {
	digestCancel()
	digestWG.Wait()
	globalLogger.Info().Msg("stopped digest worker")
}

func runDigestLoop(ctx context.Context, freq models.Frequency, interval time.Duration) {
	defer digestWG.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, err := globalNotifyService.FlushDigest(ctx, freq)
			if err != nil {
				globalLogger.Error().
					Err(err).
					Str("frequency", string(freq)).
					Msg("failed to flush digest")
			}
		}
	}
}
