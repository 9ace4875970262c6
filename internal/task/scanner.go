package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskflow/taskflow-api/internal/domain"
	"github.com/taskflow/taskflow-api/internal/platform/mailer"
	"github.com/taskflow/taskflow-api/internal/store"
)

// deadlineTimeLayout is how deadlines appear in notification emails.
const deadlineTimeLayout = "2006-01-02 15:04 MST"

// DeadlineScanner periodically finds tasks whose deadline falls within
// the lookahead window and emails the task's owner and every executor.
// A task is notified at most once: the notified flag is set after all
// recipients of that task were handled and excludes the task from later
// scans. When a scan fails partway the flag stays unset and the whole
// task is retried on the next tick, so a recipient may be emailed twice
// before one notification sticks; delivery is at-least-once.
type DeadlineScanner struct {
	tasks    store.TaskStore
	users    store.UserStore
	sender   mailer.Sender
	renderer *mailer.Renderer
	interval time.Duration
	window   time.Duration
	logger   *slog.Logger

	// timeFunc allows tests to control the scanner's clock.
	timeFunc func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDeadlineScanner creates a scanner that runs every interval and
// looks window ahead.
func NewDeadlineScanner(
	tasks store.TaskStore,
	users store.UserStore,
	sender mailer.Sender,
	renderer *mailer.Renderer,
	interval, window time.Duration,
	logger *slog.Logger,
) *DeadlineScanner {
	ctx, cancel := context.WithCancel(context.Background())

	return &DeadlineScanner{
		tasks:    tasks,
		users:    users,
		sender:   sender,
		renderer: renderer,
		interval: interval,
		window:   window,
		logger:   logger,
		timeFunc: time.Now,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the scan loop. The first scan runs immediately.
func (s *DeadlineScanner) Start() {
	s.wg.Add(1)
	go s.loop()
	s.logger.Info("deadline scanner started",
		slog.Duration("interval", s.interval),
		slog.Duration("window", s.window))
}

// Stop cancels the loop and waits for an in-flight scan to finish.
func (s *DeadlineScanner) Stop() {
	s.cancel()
	s.wg.Wait()
	s.logger.Info("deadline scanner stopped")
}

func (s *DeadlineScanner) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := s.ScanOnce(s.ctx); err != nil {
			// The next tick retries the whole scan; unnotified tasks
			// are picked up again.
			s.logger.Error("deadline scan failed", slog.Any("error", err))
		}

		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// ScanOnce performs a single scan over the lookahead window. Any error
// aborts the scan; tasks already marked notified stay marked.
func (s *DeadlineScanner) ScanOnce(ctx context.Context) error {
	now := s.timeFunc()

	tasks, err := s.tasks.ListDueForNotification(ctx, now, now.Add(s.window))
	if err != nil {
		return fmt.Errorf("failed to list tasks due for notification: %w", err)
	}
	if len(tasks) == 0 {
		return nil
	}

	s.logger.Debug("deadline scan found tasks", slog.Int("count", len(tasks)))

	for _, t := range tasks {
		if err := s.notifyTask(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

// notifyTask emails every recipient of one task, then marks it
// notified. The owner is notified first, then each executor in order;
// an owner who is also an executor receives two emails.
func (s *DeadlineScanner) notifyTask(ctx context.Context, t *domain.Task) error {
	recipientIDs := make([]uuid.UUID, 0, 1+len(t.ExecutorIDs))
	recipientIDs = append(recipientIDs, t.OwnerID)
	recipientIDs = append(recipientIDs, t.ExecutorIDs...)

	for _, id := range recipientIDs {
		user, err := s.users.GetByID(ctx, id)
		if err != nil {
			if store.IsNotFound(err) {
				// Stale reference; skip the recipient rather than wedge
				// the task forever.
				s.logger.Warn("notification recipient missing",
					slog.String("task_id", t.ID.String()),
					slog.String("user_id", id.String()))
				continue
			}
			return fmt.Errorf("failed to load notification recipient: %w", err)
		}

		if err := s.notifyUser(ctx, user, t); err != nil {
			return fmt.Errorf("failed to notify %s about task %s: %w", user.ID, t.ID, err)
		}
	}

	if err := s.tasks.MarkNotified(ctx, t.ID); err != nil {
		return fmt.Errorf("failed to mark task %s notified: %w", t.ID, err)
	}
	return nil
}

// notifyUser renders and synchronously sends the deadline email for one
// recipient. The wording depends on the recipient's role: admins and
// managers see the task as one they created, everyone else as one they
// are executing.
func (s *DeadlineScanner) notifyUser(ctx context.Context, user *domain.User, t *domain.Task) error {
	relation := "you are executing"
	if user.Role == domain.RoleAdmin || user.Role == domain.RoleManager {
		relation = "you created"
	}

	msg, err := s.renderer.Render(mailer.KindDeadlineNotification, user.Email, mailer.TemplateData{
		Username:  user.Username,
		TaskTitle: t.Title,
		Deadline:  t.Deadline.Format(deadlineTimeLayout),
		Relation:  relation,
	})
	if err != nil {
		return err
	}
	// The subject itself carries the recipient's relation to the task,
	// not just the body.
	msg.Subject = fmt.Sprintf("Deadline approaching for the task %s: %q", relation, t.Title)

	return s.sender.Send(ctx, msg)
}
