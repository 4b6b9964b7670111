package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/Chroma-Case/PLDGenerator/internal/config"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// LockKey guards report generation across replicas.
const LockKey int64 = 424242

type service interface {
	RunScheduled(ctx context.Context) error
}

type locker interface {
	TryLock(ctx context.Context, key int64) (bool, error)
	Unlock(ctx context.Context, key int64) error
}

type Cron struct {
	cfg     config.Config
	log     zerolog.Logger
	svc     service
	lock    locker
	c       *cron.Cron
	timeout time.Duration
}

func NewCron(cfg config.Config, log zerolog.Logger, svc service, l locker) (*Cron, error) {
	loc, err := time.LoadLocation(cfg.TZ)
	if err != nil {
		loc = time.Local
	}
	c := cron.New(cron.WithLocation(loc), cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow)))
	cr := &Cron{cfg: cfg, log: log, svc: svc, lock: l, c: c, timeout: 5 * time.Minute}
	if _, err := c.AddFunc(cfg.ReportCron, cr.report); err != nil {
		return nil, fmt.Errorf("report cron %q: %w", cfg.ReportCron, err)
	}
	return cr, nil
}

func (cr *Cron) Start() { cr.c.Start() }

// Stop waits for a running generation to finish.
func (cr *Cron) Stop() { <-cr.c.Stop().Done() }

func (cr *Cron) report() {
	ctx, cancel := context.WithTimeout(context.Background(), cr.timeout)
	defer cancel()
	ran, err := cr.RunOnce(ctx)
	if err != nil {
		cr.log.Error().Err(err).Msg("cron: report failed")
		return
	}
	if !ran {
		cr.log.Info().Msg("cron: already running elsewhere")
	}
}

// RunOnce runs a generation under the advisory lock. It reports false when
// another run holds the lock.
func (cr *Cron) RunOnce(ctx context.Context) (bool, error) {
	if cr.lock != nil {
		ok, err := cr.lock.TryLock(ctx, LockKey)
		if err != nil {
			return false, fmt.Errorf("lock: %w", err)
		}
		if !ok {
			return false, nil
		}
		defer func() {
			if err := cr.lock.Unlock(context.Background(), LockKey); err != nil {
				cr.log.Warn().Err(err).Msg("cron: unlock failed")
			}
		}()
	}
	cr.log.Info().Msg("cron: sprint report")
	return true, cr.svc.RunScheduled(ctx)
}
