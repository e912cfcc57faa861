// Package queue is the Redis job queue between the API and the worker.
// Jobs are JSON frames on two named lists, pushed with RPUSH and consumed
// with blocking BLPOP. Delivery is at-least-once: the worker re-checks the
// job row in Postgres before running anything.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Queue names are part of the wire contract; renaming one orphans any jobs
// already sitting in Redis.
const (
	QueueProcessVideo = "clipforge:jobs:process_video"
	QueueRenderClip   = "clipforge:jobs:render_clip"
)

const pingTimeout = 5 * time.Second

type Queue struct {
	client *redis.Client
}

// Job is the wire frame for one unit of work. ID matches the job row in
// Postgres; Data carries optional job-specific payload (it round-trips
// through JSON, so slices arrive as []interface{}).
type Job struct {
	ID        uuid.UUID              `json:"id"`
	Type      string                 `json:"type"`
	ProjectID uuid.UUID              `json:"project_id"`
	ClipID    *uuid.UUID             `json:"clip_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// New connects to Redis and verifies the connection with a ping.
func New(redisURL string) (*Queue, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Queue{client: client}, nil
}

func (q *Queue) Close() error {
	return q.client.Close()
}

func (q *Queue) push(ctx context.Context, queueName string, job *Job) error {
	job.CreatedAt = time.Now()
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	return q.client.RPush(ctx, queueName, data).Err()
}

// Dequeue blocks up to timeout for the next job on the named queue.
// Returns (nil, nil) when the wait expires with nothing to do.
func (q *Queue) Dequeue(ctx context.Context, queueName string, timeout time.Duration) (*Job, error) {
	result, err := q.client.BLPop(ctx, timeout, queueName).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dequeue: %w", err)
	}
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected redis response")
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	return &job, nil
}

// GetQueueLength reports how many jobs are waiting on the named queue.
func (q *Queue) GetQueueLength(ctx context.Context, queueName string) (int64, error) {
	return q.client.LLen(ctx, queueName).Result()
}

// EnqueueProcessVideo enqueues the full pipeline for a freshly uploaded
// project: probe, proxy, transcribe, analyze, suggest and render clips.
func (q *Queue) EnqueueProcessVideo(ctx context.Context, projectID, jobID uuid.UUID) error {
	return q.push(ctx, QueueProcessVideo, &Job{
		ID:        jobID,
		Type:      "process_video",
		ProjectID: projectID,
	})
}

// EnqueueProcessVideoParts enqueues the same pipeline for a source uploaded
// in multiple parts; the worker concatenates them before processing.
func (q *Queue) EnqueueProcessVideoParts(ctx context.Context, projectID, jobID uuid.UUID, parts []string) error {
	return q.push(ctx, QueueProcessVideo, &Job{
		ID:        jobID,
		Type:      "process_video",
		ProjectID: projectID,
		Data:      map[string]interface{}{"source_parts": parts},
	})
}

// EnqueueRenderClip enqueues a re-render of one clip with its current edit
// config.
func (q *Queue) EnqueueRenderClip(ctx context.Context, projectID, clipID, jobID uuid.UUID) error {
	return q.push(ctx, QueueRenderClip, &Job{
		ID:        jobID,
		Type:      "render_clip",
		ProjectID: projectID,
		ClipID:    &clipID,
	})
}
