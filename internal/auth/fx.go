package auth

import (
	"context"
	"time"

	"github.com/seb-lewis/startupcrm/internal/auth/domain"
	"github.com/seb-lewis/startupcrm/internal/auth/repository"
	"github.com/seb-lewis/startupcrm/internal/auth/service"
	"github.com/seb-lewis/startupcrm/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const sessionGaugeInterval = time.Minute

var Module = fx.Module("auth.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
	fx.Invoke(runSessionGauge),
)

// runSessionGauge periodically refreshes the active-session gauge from
// the session store (unrevoked, unexpired sessions).
func runSessionGauge(lc fx.Lifecycle, sessions domain.SessionRepository, log *zap.Logger) {
	logger := log.Named("auth.sessions")
	done := make(chan struct{})

	sample := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		count, err := sessions.CountActiveSessions(ctx, time.Now().UTC())
		if err != nil {
			logger.Warn("active session count failed", zap.Error(err))
			return
		}
		metrics.HTTP().SetActiveSessions(int(count))
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				ticker := time.NewTicker(sessionGaugeInterval)
				defer ticker.Stop()
				for {
					sample()
					select {
					case <-done:
						return
					case <-ticker.C:
					}
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			close(done)
			return nil
		},
	})
}
