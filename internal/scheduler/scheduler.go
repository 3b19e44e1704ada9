// Package scheduler runs the daily background job: refresh the cached
// forecasts and mail the overdue digest when anything is past due.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/idevisu/fincast/internal/config"
	"github.com/idevisu/fincast/internal/notify"
	"github.com/idevisu/fincast/internal/service"
)

// Scheduler owns the cron runner
type Scheduler struct {
	cron   *cron.Cron
	svc    *service.Service
	sender *notify.Sender
	cfg    *config.Config
	log    *logrus.Logger
}

// New initializes a scheduler; Start must be called to begin running
func New(svc *service.Service, sender *notify.Sender, cfg *config.Config, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		svc:    svc,
		sender: sender,
		cfg:    cfg,
		log:    log,
	}
}

// Start registers the refresh job and starts the cron runner
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.CronSpec, s.run); err != nil {
		return fmt.Errorf("failed to schedule refresh job: %w", err)
	}
	s.cron.Start()
	s.log.Infof("Scheduler started with spec %q", s.cfg.CronSpec)
	return nil
}

// Stop halts the cron runner and waits for a running job to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := s.svc.RefreshForecasts(ctx); err != nil {
		s.log.Errorf("Failed to refresh forecasts: %v", err)
	}

	asOf := time.Now().UTC()
	alerts, total, err := s.svc.Overdue(ctx, asOf)
	if err != nil {
		s.log.Errorf("Failed to scan overdue obligations: %v", err)
		return
	}
	if !total.IsPositive() {
		return
	}
	if s.cfg.AlertRecipient == "" {
		s.log.Warnf("Overdue total %s but no alert recipient configured", total)
		return
	}
	if err := s.sender.SendOverdueDigest(s.cfg.AlertRecipient, asOf, alerts, total); err != nil {
		s.log.Errorf("Failed to send overdue digest: %v", err)
	}
}
