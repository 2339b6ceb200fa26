package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/will-hwang/ml-commons/backend/task"
)

const taskColumns = `id, model_id, task_type, function_name, state, progress, worker_nodes, error, is_async, create_time, last_update_time`

type TaskStore struct {
	db *DB
}

var _ task.Store = (*TaskStore)(nil)

func NewTaskStore(db *DB) *TaskStore {
	return &TaskStore{db: db}
}

// Create inserts t, assigning an id and timestamps when they are unset.
func (s *TaskStore) Create(ctx context.Context, t *task.Task) error {
	if t == nil {
		return fmt.Errorf("task is required")
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.State == "" {
		t.State = task.StateCreated
	}
	now := s.db.now().UTC()
	if t.CreateTime.IsZero() {
		t.CreateTime = now
	}
	if t.LastUpdateTime.IsZero() {
		t.LastUpdateTime = t.CreateTime
	}

	workerNodes, err := json.Marshal(nonNil(t.WorkerNodes))
	if err != nil {
		return fmt.Errorf("encode worker nodes: %w", err)
	}

	_, err = s.db.sql.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`, version) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`,
		t.ID,
		t.ModelID,
		string(t.Type),
		t.FunctionName,
		string(t.State),
		t.Progress,
		string(workerNodes),
		t.Error,
		t.Async,
		toMillis(t.CreateTime),
		toMillis(t.LastUpdateTime),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("task %s: %w", t.ID, ErrAlreadyExists)
		}
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (s *TaskStore) Get(ctx context.Context, id string) (*task.Task, error) {
	row := s.db.sql.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, task.ErrNotFound
		}
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	return t, nil
}

// List returns matching tasks, newest first.
func (s *TaskStore) List(ctx context.Context, filter task.ListFilter) ([]*task.Task, error) {
	var (
		where []string
		args  []any
	)
	if filter.State != "" {
		where = append(where, "state = ?")
		args = append(args, string(filter.State))
	}
	if filter.ModelID != "" {
		where = append(where, "model_id = ?")
		args = append(args, filter.ModelID)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY create_time DESC, id`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateState moves a task to state and records errMsg when it is non-empty.
func (s *TaskStore) UpdateState(ctx context.Context, id string, state task.State, errMsg string) (*task.Task, error) {
	res, err := s.db.sql.ExecContext(ctx,
		`UPDATE tasks
		    SET state = ?,
		        error = CASE WHEN ? = '' THEN error ELSE ? END,
		        last_update_time = ?,
		        version = version + 1
		  WHERE id = ?`,
		string(state), errMsg, errMsg, toMillis(s.db.now()), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update task %s: %w", id, err)
	}
	if affected == 0 {
		return nil, task.ErrNotFound
	}
	return s.Get(ctx, id)
}

// Delete removes the task. A missing task is not an error; the receipt
// reports not_found instead.
func (s *TaskStore) Delete(ctx context.Context, id string) (*task.DeleteReceipt, error) {
	var version int64
	err := s.db.sql.QueryRowContext(ctx, `DELETE FROM tasks WHERE id = ? RETURNING version`, id).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return &task.DeleteReceipt{ID: id, Result: task.ResultNotFound}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete task %s: %w", id, err)
	}

	return &task.DeleteReceipt{ID: id, Result: task.ResultDeleted, Version: version + 1}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*task.Task, error) {
	var (
		t           task.Task
		taskType    string
		state       string
		workerNodes string
		createTime  int64
		updateTime  int64
	)
	if err := row.Scan(
		&t.ID,
		&t.ModelID,
		&taskType,
		&t.FunctionName,
		&state,
		&t.Progress,
		&workerNodes,
		&t.Error,
		&t.Async,
		&createTime,
		&updateTime,
	); err != nil {
		return nil, err
	}

	t.Type = task.Type(taskType)
	t.State = task.State(state)
	t.CreateTime = fromMillis(createTime)
	t.LastUpdateTime = fromMillis(updateTime)
	if err := json.Unmarshal([]byte(workerNodes), &t.WorkerNodes); err != nil {
		return nil, fmt.Errorf("decode worker nodes: %w", err)
	}
	if len(t.WorkerNodes) == 0 {
		t.WorkerNodes = nil
	}
	return &t, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
