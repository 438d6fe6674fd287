// Package scheduler
package scheduler

import (
	"context"
	"io"
	"log"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/realtyreach/realtyreach/app/dto"
	businessflow "github.com/realtyreach/realtyreach/business_flow"
	"github.com/realtyreach/realtyreach/config"
)

var (
	jobsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "realtyreach_jobs_processed_total",
		Help: "Jobs executed by the background runner, by outcome",
	}, []string{"outcome"})

	jobRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "realtyreach_job_runs_total",
		Help: "Background runner passes over the job queue",
	})

	staleRequeuedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "realtyreach_stale_requeued_total",
		Help: "Rows returned to pending by the reconciler, by kind",
	}, []string{"kind"})
)

// JobRunner periodically drains the job queue and requeues work stuck
// in claimed states after a crash.
type JobRunner struct {
	jobQueueFlow businessflow.JobQueueFlow
	cfg          config.SchedulerConfig
	batchSize    int
	logger       *log.Logger
}

// NewJobRunner creates the background runner
func NewJobRunner(jobQueueFlow businessflow.JobQueueFlow, cfg config.SchedulerConfig, pipelineCfg config.PipelineConfig) *JobRunner {
	r := &JobRunner{
		jobQueueFlow: jobQueueFlow,
		cfg:          cfg,
		batchSize:    pipelineCfg.JobBatchSize,
	}
	if r.cfg.RunInterval <= 0 {
		r.cfg.RunInterval = time.Minute
	}
	if r.cfg.ReconcileInterval <= 0 {
		r.cfg.ReconcileInterval = 10 * time.Minute
	}

	r.logger = newRunnerLogger(cfg.LogFilePath)

	return r
}

// newRunnerLogger writes to stdout, and additionally to a size-rotated
// file when a path is configured.
func newRunnerLogger(path string) *log.Logger {
	var w io.Writer = os.Stdout
	if path != "" {
		w = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   path,
			MaxSize:    50, // MB
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		})
	}
	return log.New(w, "runner ", log.LstdFlags|log.Lmicroseconds|log.LUTC)
}

// Start launches the runner loops in background goroutines and returns a stop function
func (r *JobRunner) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(r.cfg.RunInterval)
		defer ticker.Stop()

		r.runOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.runOnce(ctx)
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(r.cfg.ReconcileInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.reconcileOnce(ctx)
			}
		}
	}()

	return cancel
}

func (r *JobRunner) runOnce(ctx context.Context) {
	jobRunsTotal.Inc()

	// No user scope: the runner drains work across all users.
	req := &dto.ProcessJobQueueRequest{Limit: r.batchSize}
	metadata := businessflow.NewClientMetadata("127.0.0.1", "job-runner")

	result, err := r.jobQueueFlow.ProcessJobQueue(ctx, req, metadata)
	if err != nil {
		r.logger.Printf("runner: job queue pass failed: %v", err)
		return
	}
	if result.Processed == 0 {
		return
	}

	jobsProcessedTotal.WithLabelValues("completed").Add(float64(result.Successful))
	jobsProcessedTotal.WithLabelValues("failed").Add(float64(result.Failed))
	r.logger.Printf("runner: processed %d jobs (%d completed, %d failed)", result.Processed, result.Successful, result.Failed)
}

func (r *JobRunner) reconcileOnce(ctx context.Context) {
	outboxRequeued, jobsRequeued, err := r.jobQueueFlow.ReconcileStale(ctx)
	if err != nil {
		r.logger.Printf("runner: reconcile failed: %v", err)
		return
	}
	if outboxRequeued == 0 && jobsRequeued == 0 {
		return
	}

	staleRequeuedTotal.WithLabelValues("outbox").Add(float64(outboxRequeued))
	staleRequeuedTotal.WithLabelValues("job").Add(float64(jobsRequeued))
	r.logger.Printf("runner: requeued %d stale outbox rows, %d stale jobs", outboxRequeued, jobsRequeued)
}
