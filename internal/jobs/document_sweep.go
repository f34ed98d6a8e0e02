// File: internal/jobs/document_sweep.go
package jobs

import (
	"context"
	"fmt"
	"time"

	"marketplace_onboarding/internal/config"
	"marketplace_onboarding/internal/documents"
	"marketplace_onboarding/internal/draft"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DocumentSweeper is the part of documents.Sweeper the job runs.
type DocumentSweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// DocumentSweepJob periodically removes orphaned staged documents and expired drafts.
type DocumentSweepJob struct {
	sweeper       DocumentSweeper
	purger        draft.Purger
	logger        *zap.Logger
	cfg           *config.Config
	cronScheduler *cron.Cron
}

// NewDocumentSweepJob creates a new DocumentSweepJob. sweeper and purger may be nil when
// the configured backends keep nothing that needs sweeping.
func NewDocumentSweepJob(
	sweeper *documents.Sweeper,
	store draft.Store,
	logger *zap.Logger,
	cfg *config.Config,
) *DocumentSweepJob {
	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(NewCronLogger(logger.Named("cron")))),
		cron.WithLogger(NewCronLogger(logger.Named("cron"))))

	job := &DocumentSweepJob{
		logger:        logger.Named("DocumentSweepJob"),
		cfg:           cfg,
		cronScheduler: scheduler,
	}
	if sweeper != nil {
		job.sweeper = sweeper
	}
	if p, ok := store.(draft.Purger); ok {
		job.purger = p
	}
	return job
}

// SetupAndStart schedules and starts the cron job.
func (j *DocumentSweepJob) SetupAndStart() error {
	if j.sweeper == nil && j.purger == nil {
		j.logger.Info("Nothing to sweep with the configured upload and draft backends. Job will not run.")
		return nil
	}
	jobSpec := j.cfg.DocumentSweepSchedule // e.g., "@hourly", "*/30 * * * *"
	if jobSpec == "" {
		j.logger.Warn("Document sweep schedule not defined (DOCUMENT_SWEEP_SCHEDULE). Job will not run.")
		return nil
	}

	jobID, err := j.cronScheduler.AddFunc(jobSpec, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule document sweep job", zap.String("spec", jobSpec), zap.Error(err))
		return err
	}

	j.logger.Info("Document sweep job scheduled", zap.String("spec", jobSpec), zap.Any("jobID", jobID))
	j.cronScheduler.Start()
	return nil
}

// RunOnce performs a single sweep. It is what the scheduler runs and what the
// sweep-documents command calls.
func (j *DocumentSweepJob) RunOnce(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	if j.sweeper != nil {
		n, err := j.sweeper.Sweep(ctx)
		res.DocumentsDeleted = n
		if err != nil {
			return res, fmt.Errorf("sweeping documents: %w", err)
		}
	}
	if j.purger != nil {
		n, err := j.purger.PurgeExpired(ctx)
		res.DraftsPurged = n
		if err != nil {
			return res, fmt.Errorf("purging drafts: %w", err)
		}
	}
	return res, nil
}

// SweepResult reports what one run removed.
type SweepResult struct {
	DocumentsDeleted int
	DraftsPurged     int64
}

// runJob is the actual work performed by the cron job.
func (j *DocumentSweepJob) runJob() {
	j.logger.Info("Starting document sweep run...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	res, err := j.RunOnce(ctx)
	if err != nil {
		j.logger.Error("Document sweep run failed", zap.Error(err))
		return
	}
	j.logger.Info("Document sweep run completed",
		zap.Int("documents_deleted", res.DocumentsDeleted),
		zap.Int64("drafts_purged", res.DraftsPurged),
	)
}

// Stop gracefully stops the cron scheduler.
func (j *DocumentSweepJob) Stop() {
	if j.cronScheduler != nil {
		j.logger.Info("Stopping document sweep scheduler...")
		stopCtx := j.cronScheduler.Stop()
		select {
		case <-stopCtx.Done():
			j.logger.Info("Document sweep scheduler stopped gracefully.")
		case <-time.After(10 * time.Second):
			j.logger.Warn("Document sweep scheduler stop timed out.")
		}
	}
}

// --- Cron Logger Adapter ---

// cronLogger adapts zap.Logger to cron.Logger interface.
type cronLogger struct {
	zl *zap.Logger
}

// NewCronLogger creates a new cronLogger.
func NewCronLogger(zl *zap.Logger) cron.Logger {
	return &cronLogger{zl: zl}
}

// Info logs routine messages from cron.
func (cl *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	fields := cl.parseKeysAndValues(keysAndValues...)
	cl.zl.Info(msg, fields...)
}

// Error logs error messages from cron.
func (cl *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := cl.parseKeysAndValues(keysAndValues...)
	fields = append(fields, zap.Error(err))
	cl.zl.Error(msg, fields...)
}

func (cl *cronLogger) parseKeysAndValues(keysAndValues ...interface{}) []zap.Field {
	var fields []zap.Field
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), keysAndValues[i+1]))
		} else {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), "MISSING_VALUE"))
		}
	}
	return fields
}
