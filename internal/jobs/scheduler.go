package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"GestAsd/api/audit"
	"GestAsd/internal/cache"
	"GestAsd/internal/config"
	"GestAsd/internal/logger"
	"GestAsd/internal/progress"
	"GestAsd/internal/serviceiface"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
)

// CronService runs the periodic maintenance work: audit log retention,
// sweeping finished bulk jobs out of the tracker and dropping stale
// cache entries.
type CronService struct {
	config  map[string]interface{}
	pool    *pgxpool.Pool
	tracker *progress.Tracker
	caches  []*cache.TTL
	cron    *cron.Cron
}

func NewCronService(cfg map[string]interface{}, pool *pgxpool.Pool, tracker *progress.Tracker, caches ...*cache.TTL) serviceiface.Service {
	return &CronService{config: cfg, pool: pool, tracker: tracker, caches: caches}
}

func (s *CronService) Name() string {
	return "cron"
}

func (s *CronService) Start() error {
	retentionSchedule := config.DefaultRetentionSchedule
	sweepSchedule := config.DefaultSweepSchedule
	retentionDays := config.AuditRetentionDays
	tz := config.DefaultTimeZone

	if s.config != nil {
		if v, ok := s.config["retention_schedule"].(string); ok && v != "" {
			retentionSchedule = v
		}
		if v, ok := s.config["sweep_schedule"].(string); ok && v != "" {
			sweepSchedule = v
		}
		if v, ok := s.config["retention_days"].(int); ok && v > 0 {
			retentionDays = v
		}
		if v, ok := s.config["timezone"].(string); ok && v != "" {
			tz = v
		}
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("invalid timezone for cron service: %v", err)
	}

	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(retentionSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		deleted, err := audit.Purge(ctx, s.pool, retentionDays)
		if err != nil {
			logger.Errorf("audit retention purge failed: %v", err)
			return
		}
		logger.Audit(fmt.Sprintf("Audit retention purge removed %d rows", deleted))
	})
	if err != nil {
		return fmt.Errorf("failed to schedule audit retention job: %v", err)
	}

	_, err = c.AddFunc(sweepSchedule, func() {
		if s.tracker != nil {
			swept := s.tracker.Sweep(time.Hour)
			if swept > 0 {
				logger.Infof("Swept %d finished bulk jobs", swept)
			}
		}
		for _, tc := range s.caches {
			if tc != nil {
				tc.Purge()
			}
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule sweep job: %v", err)
	}

	c.Start()
	s.cron = c
	logger.Audit("Cron service started: retention " + retentionSchedule + ", sweep " + sweepSchedule + " (" + tz + ")")
	log.Println("Cron service started")
	return nil
}

func (s *CronService) Stop() error {
	if s.cron != nil {
		s.cron.Stop()
	}
	log.Println("Cron service stopped.")
	return nil
}
