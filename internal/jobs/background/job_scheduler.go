package background

import (
	"context"
	"sync"
	"time"

	"mesa/internal/repositories"
	"mesa/internal/services"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JobScheduler runs the periodic alert scan and token cleanup.
type JobScheduler struct {
	scheduler    gocron.Scheduler
	alertSvc     services.AlertService
	authSvc      services.AuthService
	businessRepo repositories.BusinessRepository
	logger       *zap.Logger
	jobs         map[string]gocron.Job
	mu           sync.RWMutex
}

func NewJobScheduler(alertSvc services.AlertService, authSvc services.AuthService, businessRepo repositories.BusinessRepository, logger *zap.Logger) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler:    scheduler,
		alertSvc:     alertSvc,
		authSvc:      authSvc,
		businessRepo: businessRepo,
		logger:       logger,
		jobs:         make(map[string]gocron.Job),
	}
	js.registerJobs()
	return js, nil
}

func (js *JobScheduler) Start() {
	js.logger.Info("starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	js.logger.Info("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	alertJob, err := js.scheduler.NewJob(
		gocron.DurationJob(30*time.Minute),
		gocron.NewTask(js.scanAllBusinesses, context.Background()),
		gocron.WithName("inventory-alert-scan"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		js.logger.Error("failed to register alert scan job", zap.Error(err))
	} else {
		js.addJob("alert-scan", alertJob)
	}

	tokenJob, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.cleanupTokens, context.Background()),
		gocron.WithName("token-cleanup"),
	)
	if err != nil {
		js.logger.Error("failed to register token cleanup job", zap.Error(err))
	} else {
		js.addJob("token-cleanup", tokenJob)
	}

	js.mu.RLock()
	count := len(js.jobs)
	js.mu.RUnlock()
	js.logger.Info("registered background jobs", zap.Int("count", count))
}

func (js *JobScheduler) addJob(name string, job gocron.Job) {
	js.mu.Lock()
	defer js.mu.Unlock()
	js.jobs[name] = job
}

// scanAllBusinesses pages through every business and derives alerts for its
// items. Failures are per-business; one bad tenant never stops the sweep.
func (js *JobScheduler) scanAllBusinesses(ctx context.Context) {
	const pageSize = 100
	offset := 0
	scanned := 0
	created := 0

	for {
		businesses, err := js.businessRepo.List(ctx, pageSize, offset)
		if err != nil {
			js.logger.Error("alert scan: failed to list businesses", zap.Error(err))
			return
		}
		for _, business := range businesses {
			n, err := js.alertSvc.ScanBusiness(ctx, business.ID)
			if err != nil {
				js.logger.Error("alert scan failed for business",
					zap.String("business_id", business.ID.String()), zap.Error(err))
				continue
			}
			scanned++
			created += n
		}
		if len(businesses) < pageSize {
			break
		}
		offset += pageSize
	}

	js.logger.Info("alert scan complete",
		zap.Int("businesses", scanned), zap.Int("alerts_created", created))
}

func (js *JobScheduler) cleanupTokens(ctx context.Context) {
	if err := js.authSvc.CleanupExpiredTokens(ctx); err != nil {
		js.logger.Error("token cleanup failed", zap.Error(err))
	}
}

// TriggerAlertScan runs an immediate scan for one business, outside the
// schedule. Used by operational tooling.
func (js *JobScheduler) TriggerAlertScan(ctx context.Context, businessID uuid.UUID) (int, error) {
	return js.alertSvc.ScanBusiness(ctx, businessID)
}
