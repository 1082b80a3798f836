package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// OTPPurger removes verification codes past their retention window
type OTPPurger interface {
	PurgeExpired(ctx context.Context, retention time.Duration) (int64, error)
}

// CleanupJob runs periodic housekeeping on a cron schedule
type CleanupJob struct {
	purger    OTPPurger
	retention time.Duration
	spec      string
	cron      *cron.Cron
	log       *zap.Logger

	mu        sync.Mutex
	isRunning bool
}

// NewCleanupJob creates a scheduler; spec uses standard five-field cron syntax
func NewCleanupJob(purger OTPPurger, retention time.Duration, spec string, logger *zap.Logger) *CleanupJob {
	if spec == "" {
		spec = "@every 15m"
	}
	return &CleanupJob{
		purger:    purger,
		retention: retention,
		spec:      spec,
		cron:      cron.New(),
		log:       logger.Named("jobs"),
	}
}

// Start registers and launches the schedule
func (j *CleanupJob) Start() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.isRunning {
		j.log.Info("cleanup job already running")
		return nil
	}

	if _, err := j.cron.AddFunc(j.spec, func() { j.RunOnce(context.Background()) }); err != nil {
		return err
	}
	j.cron.Start()
	j.isRunning = true
	j.log.Info("cleanup job started", zap.String("schedule", j.spec), zap.Duration("retention", j.retention))
	return nil
}

// Stop halts the schedule and waits for a running purge to finish
func (j *CleanupJob) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.isRunning {
		return
	}
	<-j.cron.Stop().Done()
	j.isRunning = false
	j.log.Info("cleanup job stopped")
}

// RunOnce purges expired codes immediately
func (j *CleanupJob) RunOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	n, err := j.purger.PurgeExpired(ctx, j.retention)
	if err != nil {
		j.log.Error("otp cleanup failed", zap.Error(err))
		return
	}
	if n > 0 {
		j.log.Info("expired otp rows removed", zap.Int64("rows", n))
	}
}
