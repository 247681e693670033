// Package redisstore holds the Redis-backed JobStore.
//
// Keys: job:<id> => JSON(Job). A "jobs" sorted set scored by created_at
// unix time backs the newest-first listing.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"vidgrab/internal/domain/download"
)

const jobsIndexKey = "jobs"

// JobStore persists job records in Redis.
type JobStore struct {
	client *redis.Client
}

// NewJobStore wraps an existing go-redis client.
func NewJobStore(client *redis.Client) *JobStore {
	return &JobStore{client: client}
}

// NewClient constructs a go-redis client for the given endpoint.
func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

// Ping validates the connection.
func (s *JobStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func jobKey(id string) string { return "job:" + id }

// Create stores a new job record and indexes it for listing.
func (s *JobStore) Create(ctx context.Context, job *download.Job) error {
	exists, err := s.client.Exists(ctx, jobKey(job.ID)).Result()
	if err != nil {
		return err
	}
	if exists > 0 {
		return fmt.Errorf("job %s already exists", job.ID)
	}

	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, jobKey(job.ID), data, 0)
	pipe.ZAdd(ctx, jobsIndexKey, redis.Z{Score: float64(job.CreatedAt.Unix()), Member: job.ID})
	_, err = pipe.Exec(ctx)
	return err
}

// Get returns the job record for an id.
func (s *JobStore) Get(ctx context.Context, id string) (*download.Job, error) {
	data, err := s.client.Get(ctx, jobKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, download.ErrNotFound
		}
		return nil, err
	}
	var job download.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// Update replaces an existing job record.
func (s *JobStore) Update(ctx context.Context, job *download.Job) error {
	exists, err := s.client.Exists(ctx, jobKey(job.ID)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return download.ErrNotFound
	}
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, jobKey(job.ID), data, 0).Err()
}

// Delete removes a job record and its listing entry.
func (s *JobStore) Delete(ctx context.Context, id string) error {
	exists, err := s.client.Exists(ctx, jobKey(id)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return download.ErrNotFound
	}
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, jobKey(id))
	pipe.ZRem(ctx, jobsIndexKey, id)
	_, err = pipe.Exec(ctx)
	return err
}

// List returns all job records, newest first.
func (s *JobStore) List(ctx context.Context) ([]*download.Job, error) {
	ids, err := s.client.ZRevRange(ctx, jobsIndexKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	jobs := make([]*download.Job, 0, len(ids))
	for _, id := range ids {
		job, err := s.Get(ctx, id)
		if err != nil {
			// Index entries may outlive their records briefly.
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}
