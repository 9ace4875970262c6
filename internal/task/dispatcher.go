package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/taskflow/taskflow-api/internal/config"
	"github.com/taskflow/taskflow-api/internal/platform/mailer"
)

// EmailEnqueuer is the write side of the dispatcher, used by handlers
// and services to hand off email work without waiting for delivery.
type EmailEnqueuer interface {
	// EnqueueEmail submits a job to its lane's queue. Returns an error
	// when the lane is unknown, full or closed; delivery failures are
	// never reported here.
	EnqueueEmail(ctx context.Context, job EmailJob) error
}

// DispatcherConfig holds configuration for the email dispatcher.
type DispatcherConfig struct {
	// QueueSize is the buffer size of each lane's queue.
	QueueSize int

	// WorkersPerLane is how many concurrent workers drain each lane.
	WorkersPerLane int

	// MaxAttempts is the total number of delivery attempts per job,
	// including the first.
	MaxAttempts int

	// RetryBackoff is the fixed wait between attempts.
	RetryBackoff time.Duration
}

// DispatcherConfigFromNotification derives dispatcher settings from the
// application's notification configuration.
func DispatcherConfigFromNotification(cfg config.NotificationConfig) DispatcherConfig {
	return DispatcherConfig{
		QueueSize:      cfg.QueueSize,
		WorkersPerLane: cfg.WorkersPerLane,
		MaxAttempts:    cfg.MaxAttempts,
		RetryBackoff:   cfg.RetryBackoff,
	}
}

// Dispatcher delivers email jobs asynchronously. Each priority lane has
// its own queue and worker set. A failed delivery is retried up to
// MaxAttempts times with RetryBackoff between attempts, then abandoned
// with an error log; failures never propagate to the enqueuer.
type Dispatcher struct {
	queues   map[string]*JobQueue
	sender   mailer.Sender
	renderer *mailer.Renderer
	cfg      DispatcherConfig
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// shutdown is closed by Stop to cut retry backoff waits short while
	// still letting workers drain buffered jobs.
	shutdown chan struct{}
	stopOnce sync.Once
}

// NewDispatcher creates a dispatcher with one queue per lane.
func NewDispatcher(
	sender mailer.Sender,
	renderer *mailer.Renderer,
	cfg DispatcherConfig,
	logger *slog.Logger,
) *Dispatcher {
	if cfg.WorkersPerLane <= 0 {
		cfg.WorkersPerLane = 1
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}

	queues := make(map[string]*JobQueue, len(Lanes))
	for _, lane := range Lanes {
		queues[lane] = NewJobQueue(lane, cfg.QueueSize, logger)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Dispatcher{
		queues:   queues,
		sender:   sender,
		renderer: renderer,
		cfg:      cfg,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		shutdown: make(chan struct{}),
	}
}

// EnqueueEmail implements EmailEnqueuer.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, job EmailJob) error {
	queue, ok := d.queues[job.Lane]
	if !ok {
		return fmt.Errorf("unknown lane %q", job.Lane)
	}
	return queue.Enqueue(job)
}

// Start launches the lane workers.
func (d *Dispatcher) Start() {
	for lane, queue := range d.queues {
		for i := 0; i < d.cfg.WorkersPerLane; i++ {
			d.wg.Add(1)
			go d.worker(lane, i, queue)
		}
	}
	d.logger.Info("email dispatcher started",
		slog.Int("lanes", len(d.queues)),
		slog.Int("workers_per_lane", d.cfg.WorkersPerLane))
}

// Stop closes the queues, lets the workers drain buffered jobs and
// waits for them to exit. Jobs waiting on a retry backoff are dropped;
// first delivery attempts of drained jobs still run.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.shutdown)
		for _, queue := range d.queues {
			queue.Close()
		}
		d.wg.Wait()
		d.cancel()
		d.logger.Info("email dispatcher stopped")
	})
}

func (d *Dispatcher) worker(lane string, id int, queue *JobQueue) {
	defer d.wg.Done()

	log := d.logger.With(
		slog.String("lane", lane),
		slog.Int("worker_id", id),
	)
	log.Debug("starting email worker")

	for job := range queue.Chan() {
		d.process(job, log)
	}
	log.Debug("email worker stopped")
}

// process renders and delivers one job, applying the retry policy.
func (d *Dispatcher) process(job EmailJob, log *slog.Logger) {
	log = log.With(
		slog.String("job_id", job.ID.String()),
		slog.String("kind", job.Kind),
	)

	msg, err := d.renderer.Render(job.Kind, job.To, job.Data)
	if err != nil {
		// Rendering is deterministic; retrying cannot help.
		log.Error("failed to render email job", slog.Any("error", err))
		return
	}
	if job.Subject != "" {
		msg.Subject = job.Subject
	}

	for attempt := 1; attempt <= d.cfg.MaxAttempts; attempt++ {
		err = d.sender.Send(d.ctx, msg)
		if err == nil {
			log.Debug("email job delivered", slog.Int("attempt", attempt))
			return
		}

		if attempt < d.cfg.MaxAttempts {
			log.Warn("email delivery failed, retrying",
				slog.Int("attempt", attempt),
				slog.Duration("backoff", d.cfg.RetryBackoff),
				slog.Any("error", err))

			select {
			case <-d.shutdown:
				log.Warn("email job dropped during shutdown")
				return
			case <-time.After(d.cfg.RetryBackoff):
			}
		}
	}

	log.Error("email job abandoned",
		slog.Int("attempts", d.cfg.MaxAttempts),
		slog.Any("error", err))
}
