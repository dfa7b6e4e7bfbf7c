package console

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-console/models"
	"github.com/noah-isme/sma-adp-console/state"
)

type trackerClient interface {
	BulkStatus(ctx context.Context, jobID string) (*models.JobProgress, error)
}

type listingReloader interface {
	Load(ctx context.Context) error
}

// TrackerConfig tunes the shared poll loop.
type TrackerConfig struct {
	// PollInterval spaces the status sweeps across all active jobs.
	PollInterval time.Duration
	// MaxAge drops a job that has been tracked longer than this.
	MaxAge time.Duration
	// FailureLimit drops a job after this many consecutive failed polls.
	FailureLimit int
}

// Tracker follows server-side jobs to completion. One shared ticker sweeps
// every active job; each sweep issues at most one in-flight status request
// per job. The loop shuts itself down when the active set empties and
// restarts lazily on the next Register.
type Tracker struct {
	client    trackerClient
	store     *state.Store
	msgs      *MessageCenter
	metrics   *MetricsService
	directory listingReloader
	cfg       TrackerConfig
	logger    *zap.Logger

	mu       sync.Mutex
	jobs     map[string]*models.TrackedJob
	inFlight map[string]bool
	running  bool
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewTracker constructs the job tracker.
func NewTracker(client trackerClient, store *state.Store, msgs *MessageCenter, metrics *MetricsService, directory listingReloader, cfg TrackerConfig, logger *zap.Logger) *Tracker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 3 * time.Second
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 30 * time.Minute
	}
	if cfg.FailureLimit <= 0 {
		cfg.FailureLimit = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		client:    client,
		store:     store,
		msgs:      msgs,
		metrics:   metrics,
		directory: directory,
		cfg:       cfg,
		logger:    logger,
		jobs:      make(map[string]*models.TrackedJob),
		inFlight:  make(map[string]bool),
	}
}

// Register starts tracking a queued job and ensures the poll loop is running.
// Registering an id already under track is a no-op.
func (t *Tracker) Register(jobType models.JobType, jobID string, total int) {
	if jobID == "" {
		return
	}

	t.mu.Lock()
	if _, exists := t.jobs[jobID]; exists {
		t.mu.Unlock()
		return
	}
	t.jobs[jobID] = &models.TrackedJob{
		ID:        jobID,
		Type:      jobType,
		State:     models.JobStateQueued,
		Total:     total,
		StartedAt: time.Now().UTC(),
	}
	t.ensureLoopLocked()
	t.mu.Unlock()

	t.metrics.RecordJobTracked()
	t.logger.Info("tracking job",
		zap.String("job_id", jobID),
		zap.String("job_type", string(jobType)),
		zap.Int("total", total))
	t.publish()
}

// Jobs returns the active set ordered by registration time.
func (t *Tracker) Jobs() []models.TrackedJob {
	return t.snapshot()
}

// Stop halts the poll loop and waits for it to exit. Tracked jobs stay
// registered; the loop resumes on the next Register.
func (t *Tracker) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	stopCh, doneCh := t.stopCh, t.doneCh
	t.mu.Unlock()

	close(stopCh)
	<-doneCh
}

func (t *Tracker) ensureLoopLocked() {
	if t.running {
		return
	}
	t.running = true
	t.stopCh = make(chan struct{})
	t.doneCh = make(chan struct{})
	go t.loop(t.stopCh, t.doneCh)
}

func (t *Tracker) loop(stopCh, doneCh chan struct{}) {
	defer close(doneCh)
	ticker := time.NewTicker(t.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !t.tick() {
				return
			}
		}
	}
}

// tick sweeps the active set: expires over-age jobs and launches one status
// poll per job without one already in flight. Returns false once the set is
// empty so the loop can shut itself down.
func (t *Tracker) tick() bool {
	t.metrics.RecordPollTick()
	now := time.Now().UTC()

	t.mu.Lock()
	if len(t.jobs) == 0 {
		t.running = false
		t.mu.Unlock()
		return false
	}
	var expired []models.TrackedJob
	var toPoll []string
	for id, job := range t.jobs {
		if now.Sub(job.StartedAt) > t.cfg.MaxAge {
			expired = append(expired, *job)
			delete(t.jobs, id)
			continue
		}
		if t.inFlight[id] {
			continue
		}
		t.inFlight[id] = true
		toPoll = append(toPoll, id)
	}
	t.mu.Unlock()

	for _, job := range expired {
		t.reportStale(job, "it ran too long")
	}
	if len(expired) > 0 {
		t.publish()
	}
	for _, id := range toPoll {
		go t.poll(id)
	}
	return true
}

func (t *Tracker) poll(id string) {
	defer func() {
		t.mu.Lock()
		delete(t.inFlight, id)
		t.mu.Unlock()
	}()

	progress, err := t.client.BulkStatus(context.Background(), id)
	if err != nil {
		t.recordPollFailure(id, err)
		return
	}

	t.mu.Lock()
	job, ok := t.jobs[id]
	if !ok {
		t.mu.Unlock()
		return
	}
	job.PollFailures = 0
	job.State = models.JobStateProcessing
	job.Current = progress.Current
	job.Status = progress.Status

	switch {
	case progress.Failed:
		snapshot := *job
		delete(t.jobs, id)
		t.mu.Unlock()
		t.metrics.RecordJobFailed()
		t.logger.Warn("job failed",
			zap.String("job_id", id),
			zap.String("status", progress.Status))
		t.msgs.Error(failureText(snapshot.Type, progress))
		t.publish()
	case progress.Completed:
		snapshot := *job
		delete(t.jobs, id)
		t.mu.Unlock()
		t.metrics.RecordJobCompleted()
		t.logger.Info("job completed",
			zap.String("job_id", id),
			zap.Int("successful", progress.ResultSuccessful),
			zap.Int("failed", progress.ResultFailed))
		t.msgs.Success(completionText(snapshot.Type, progress))
		t.publish()
		_ = t.directory.Load(context.Background())
	default:
		t.mu.Unlock()
		t.publish()
	}
}

func (t *Tracker) recordPollFailure(id string, err error) {
	t.mu.Lock()
	job, ok := t.jobs[id]
	if !ok {
		t.mu.Unlock()
		return
	}
	job.PollFailures++
	exhausted := job.PollFailures >= t.cfg.FailureLimit
	snapshot := *job
	if exhausted {
		delete(t.jobs, id)
	}
	t.mu.Unlock()

	t.logger.Warn("job status poll failed",
		zap.String("job_id", id),
		zap.Int("failures", snapshot.PollFailures),
		zap.Error(err))
	if exhausted {
		t.reportStale(snapshot, "its status could not be read")
		t.publish()
	}
}

func (t *Tracker) reportStale(job models.TrackedJob, reason string) {
	t.metrics.RecordJobStale()
	t.logger.Warn("dropped stale job",
		zap.String("job_id", job.ID),
		zap.String("job_type", string(job.Type)),
		zap.String("reason", reason))
	t.msgs.Warning(fmt.Sprintf("Gave up tracking the %s: %s.", jobLabel(job.Type), reason))
}

func (t *Tracker) publish() {
	t.store.SetJobs(t.snapshot())
}

func (t *Tracker) snapshot() []models.TrackedJob {
	t.mu.Lock()
	jobs := make([]models.TrackedJob, 0, len(t.jobs))
	for _, job := range t.jobs {
		jobs = append(jobs, *job)
	}
	t.mu.Unlock()

	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].StartedAt.Equal(jobs[j].StartedAt) {
			return jobs[i].ID < jobs[j].ID
		}
		return jobs[i].StartedAt.Before(jobs[j].StartedAt)
	})
	return jobs
}

func jobLabel(t models.JobType) string {
	switch t {
	case models.JobTypeRoleAssignment:
		return "role assignment"
	case models.JobTypeBulkConnections:
		return "connection update"
	case models.JobTypeBulkDelete:
		return "bulk delete"
	case models.JobTypeUpload:
		return "upload"
	default:
		return "background job"
	}
}

func completionText(t models.JobType, p *models.JobProgress) string {
	label := jobLabel(t)
	if p.ResultFailed > 0 {
		return fmt.Sprintf("The %s finished: %d succeeded, %d failed.", label, p.ResultSuccessful, p.ResultFailed)
	}
	if p.ResultSuccessful > 0 {
		return fmt.Sprintf("The %s finished: %d accounts processed.", label, p.ResultSuccessful)
	}
	return fmt.Sprintf("The %s finished.", label)
}

func failureText(t models.JobType, p *models.JobProgress) string {
	label := jobLabel(t)
	if p.Status != "" {
		return fmt.Sprintf("The %s failed: %s", label, p.Status)
	}
	return fmt.Sprintf("The %s failed.", label)
}
