package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/will-hwang/ml-commons/backend/task"
)

// TaskStore keeps task documents as JSON strings under <prefix>:task:<id> and
// indexes their ids in the set <prefix>:tasks.
type TaskStore struct {
	client goredis.Cmdable
	prefix string
	now    func() time.Time
}

var _ task.Store = (*TaskStore)(nil)

type record struct {
	task.Task
	Version int64 `json:"_version"`
}

func NewTaskStore(client goredis.Cmdable, prefix string) *TaskStore {
	if prefix == "" {
		prefix = "mlcommons"
	}
	return &TaskStore{client: client, prefix: prefix, now: time.Now}
}

func (s *TaskStore) taskKey(id string) string {
	return s.prefix + ":task:" + id
}

func (s *TaskStore) indexKey() string {
	return s.prefix + ":tasks"
}

func (s *TaskStore) Create(ctx context.Context, t *task.Task) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.State == "" {
		t.State = task.StateCreated
	}
	if t.CreateTime.IsZero() {
		t.CreateTime = s.now().UTC()
	}
	if t.LastUpdateTime.IsZero() {
		t.LastUpdateTime = t.CreateTime
	}

	data, err := json.Marshal(record{Task: *t, Version: 1})
	if err != nil {
		return fmt.Errorf("encode task: %w", err)
	}

	created, err := s.client.SetNX(ctx, s.taskKey(t.ID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("create task %s: %w", t.ID, err)
	}
	if !created {
		return fmt.Errorf("task %s: %w", t.ID, task.ErrAlreadyExists)
	}

	if err := s.client.SAdd(ctx, s.indexKey(), t.ID).Err(); err != nil {
		return fmt.Errorf("index task %s: %w", t.ID, err)
	}
	return nil
}

func (s *TaskStore) Get(ctx context.Context, id string) (*task.Task, error) {
	rec, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &rec.Task, nil
}

func (s *TaskStore) get(ctx context.Context, id string) (*record, error) {
	data, err := s.client.Get(ctx, s.taskKey(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, task.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode task %s: %w", id, err)
	}
	return &rec, nil
}

// List returns matching tasks, newest first.
func (s *TaskStore) List(ctx context.Context, filter task.ListFilter) ([]*task.Task, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list task ids: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.taskKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}

	var tasks []*task.Task
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// index entry without a document, left behind by an interrupted delete
			continue
		}
		var rec record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("decode task %s: %w", ids[i], err)
		}
		if filter.Matches(&rec.Task) {
			t := rec.Task
			tasks = append(tasks, &t)
		}
	}

	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreateTime.Equal(tasks[j].CreateTime) {
			return tasks[i].CreateTime.After(tasks[j].CreateTime)
		}
		return tasks[i].ID < tasks[j].ID
	})
	if filter.Limit > 0 && len(tasks) > filter.Limit {
		tasks = tasks[:filter.Limit]
	}
	return tasks, nil
}

// Delete removes the document and its index entry. A missing document yields
// a not_found receipt.
func (s *TaskStore) Delete(ctx context.Context, id string) (*task.DeleteReceipt, error) {
	data, err := s.client.GetDel(ctx, s.taskKey(id)).Bytes()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("delete task %s: %w", id, err)
	}

	if err := s.client.SRem(ctx, s.indexKey(), id).Err(); err != nil {
		return nil, fmt.Errorf("unindex task %s: %w", id, err)
	}

	if errors.Is(err, goredis.Nil) || data == nil {
		return &task.DeleteReceipt{ID: id, Result: task.ResultNotFound}, nil
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode deleted task %s: %w", id, err)
	}
	return &task.DeleteReceipt{ID: id, Result: task.ResultDeleted, Version: rec.Version + 1}, nil
}
