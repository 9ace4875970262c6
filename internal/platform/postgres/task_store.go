package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskflow/taskflow-api/internal/domain"
	"github.com/taskflow/taskflow-api/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface using a
// PostgreSQL database as the storage backend. The executor set lives in
// the task_executors join table and is written together with the task.
type PostgresTaskStore struct {
	db *sql.DB
}

// Ensure PostgresTaskStore implements store.TaskStore.
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface.
func NewPostgresTaskStore(db *sql.DB) *PostgresTaskStore {
	return &PostgresTaskStore{db: db}
}

const taskColumns = "id, title, description, status, priority, deadline, owner_id, notified, created_at, updated_at"

// Create implements store.TaskStore.Create.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		task.ID, task.Title, task.Description, int(task.Status), int(task.Priority),
		task.Deadline, task.OwnerID, task.Notified, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := insertExecutors(ctx, tx, task.ID, task.ExecutorIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit task creation: %w", err)
	}
	return nil
}

// GetByID implements store.TaskStore.GetByID.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)

	task, err := scanTask(row)
	if err != nil {
		return nil, err
	}

	if err := s.loadExecutors(ctx, []*domain.Task{task}); err != nil {
		return nil, err
	}
	return task, nil
}

// List implements store.TaskStore.List.
func (s *PostgresTaskStore) List(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	var (
		conds []string
		args  []any
	)

	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Status != nil {
		conds = append(conds, "status = "+arg(int(*filter.Status)))
	}
	if filter.Priority != nil {
		conds = append(conds, "priority = "+arg(int(*filter.Priority)))
	}
	if filter.OwnerID != nil {
		conds = append(conds, "owner_id = "+arg(*filter.OwnerID))
	}
	if filter.ExecutorID != nil {
		conds = append(conds,
			"id IN (SELECT task_id FROM task_executors WHERE user_id = "+arg(*filter.ExecutorID)+")")
	}

	query := "SELECT " + taskColumns + " FROM tasks"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	if filter.OrderByUrgency {
		query += " ORDER BY deadline ASC"
	} else {
		query += " ORDER BY created_at DESC"
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tasks, err := scanTasks(rows)
	if err != nil {
		return nil, err
	}

	if err := s.loadExecutors(ctx, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update implements store.TaskStore.Update. The executor set is
// replaced wholesale.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	task.UpdatedAt = time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		UPDATE tasks
		SET title = $2, description = $3, status = $4, priority = $5,
		    deadline = $6, notified = $7, updated_at = $8
		WHERE id = $1`,
		task.ID, task.Title, task.Description, int(task.Status), int(task.Priority),
		task.Deadline, task.Notified, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if rows == 0 {
		return store.ErrTaskNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM task_executors WHERE task_id = $1`, task.ID); err != nil {
		return fmt.Errorf("failed to clear task executors: %w", err)
	}
	if err := insertExecutors(ctx, tx, task.ID, task.ExecutorIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit task update: %w", err)
	}
	return nil
}

// Delete implements store.TaskStore.Delete. Executors and comments go
// with the task via ON DELETE CASCADE.
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if rows == 0 {
		return store.ErrTaskNotFound
	}
	return nil
}

// ListDueForNotification implements store.TaskStore.ListDueForNotification.
func (s *PostgresTaskStore) ListDueForNotification(
	ctx context.Context,
	from, until time.Time,
) ([]*domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE notified = FALSE AND deadline >= $1 AND deadline <= $2
		ORDER BY deadline ASC`,
		from, until,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks due for notification: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tasks, err := scanTasks(rows)
	if err != nil {
		return nil, err
	}

	if err := s.loadExecutors(ctx, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// MarkNotified implements store.TaskStore.MarkNotified.
func (s *PostgresTaskStore) MarkNotified(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET notified = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark task notified: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if rows == 0 {
		return store.ErrTaskNotFound
	}
	return nil
}

// insertExecutors writes the executor rows for a task, preserving the
// order the caller supplied.
func insertExecutors(ctx context.Context, tx *sql.Tx, taskID uuid.UUID, executorIDs []uuid.UUID) error {
	for i, userID := range executorIDs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO task_executors (task_id, user_id, position)
			VALUES ($1, $2, $3)
			ON CONFLICT (task_id, user_id) DO NOTHING`,
			taskID, userID, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert task executor: %w", err)
		}
	}
	return nil
}

// loadExecutors fills in the ExecutorIDs of the given tasks with one
// query.
func (s *PostgresTaskStore) loadExecutors(ctx context.Context, tasks []*domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*domain.Task, len(tasks))
	ids := make([]uuid.UUID, 0, len(tasks))
	for _, t := range tasks {
		t.ExecutorIDs = nil
		byID[t.ID] = t
		ids = append(ids, t.ID)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT task_id, user_id FROM task_executors
		WHERE task_id = ANY($1)
		ORDER BY task_id, position`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("failed to load task executors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var taskID, userID uuid.UUID
		if err := rows.Scan(&taskID, &userID); err != nil {
			return fmt.Errorf("failed to scan task executor: %w", err)
		}
		if t, ok := byID[taskID]; ok {
			t.ExecutorIDs = append(t.ExecutorIDs, userID)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate task executors: %w", err)
	}
	return nil
}

func scanTask(row *sql.Row) (*domain.Task, error) {
	var task domain.Task
	var status, priority int

	err := row.Scan(
		&task.ID, &task.Title, &task.Description, &status, &priority,
		&task.Deadline, &task.OwnerID, &task.Notified, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, store.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}

	task.Status = domain.TaskStatus(status)
	task.Priority = domain.TaskPriority(priority)
	return &task, nil
}

func scanTasks(rows *sql.Rows) ([]*domain.Task, error) {
	var tasks []*domain.Task
	for rows.Next() {
		var task domain.Task
		var status, priority int

		err := rows.Scan(
			&task.ID, &task.Title, &task.Description, &status, &priority,
			&task.Deadline, &task.OwnerID, &task.Notified, &task.CreatedAt, &task.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}

		task.Status = domain.TaskStatus(status)
		task.Priority = domain.TaskPriority(priority)
		tasks = append(tasks, &task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, nil
}
