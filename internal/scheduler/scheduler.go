// Package scheduler runs the periodic maintenance jobs that keep bill
// state consistent with the calendar, currently the overdue sweep.
package scheduler

import (
	"context"
	"time"

	"github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/clock"
	"github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/config"
	"github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/events"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("scheduler",
	fx.Provide(New),
	fx.Invoke(Run),
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Cfg    config.Config
	Clock  clock.Clock
	GenID  *snowflake.Node
	Outbox *events.Outbox
}

type Scheduler struct {
	db        *gorm.DB
	log       *zap.Logger
	clock     clock.Clock
	genID     *snowflake.Node
	outbox    *events.Outbox
	interval  time.Duration
	batchSize int
}

func New(p Params) *Scheduler {
	interval := p.Cfg.OverdueSweepInterval
	if interval <= 0 {
		interval = time.Hour
	}
	batchSize := p.Cfg.OverdueBatchSize
	if batchSize <= 0 {
		batchSize = 200
	}
	return &Scheduler{
		db:        p.DB,
		log:       p.Log.Named("scheduler"),
		clock:     p.Clock,
		genID:     p.GenID,
		outbox:    p.Outbox,
		interval:  interval,
		batchSize: batchSize,
	}
}

// Run ties the sweep loop to the application lifecycle.
func Run(lc fx.Lifecycle, s *Scheduler) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				s.loop(ctx)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}

func (s *Scheduler) loop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	flipped, err := s.SweepOverdueBills(ctx)
	if err != nil {
		s.log.Error("overdue sweep failed", zap.Error(err))
		return
	}
	if flipped > 0 {
		s.log.Info("overdue sweep completed", zap.Int("bills", flipped))
	}
}
