package services

import (
	"context"
	"time"

	"fintrack/internal/repositories"

	"go.uber.org/zap"
)

// StartTokenCleaner deletes expired single-use tokens every interval until ctx is done.
func StartTokenCleaner(
	ctx context.Context,
	tokens repositories.TokenRepository,
	interval time.Duration,
	now func() time.Time,
	log *zap.Logger,
) {
	if now == nil {
		now = time.Now
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := tokens.DeleteExpired(ctx, now().UTC())
				if err != nil {
					log.Error("failed to clean expired tokens", zap.Error(err))
					continue
				}
				if removed > 0 {
					log.Info("cleaned expired tokens", zap.Int64("removed", removed))
				}
			}
		}
	}()
}
