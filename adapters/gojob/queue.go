package gojob

import (
	"context"
	"fmt"
	"maps"
	"strings"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	"github.com/goliatone/go-kaduu/core"
)

// BatchQueue carries leak execution batches over a go-job queue backend
// such as the redis or postgres adapters.
type BatchQueue struct {
	enqueuer queue.Enqueuer
	dequeuer queue.Dequeuer
}

// NewBatchQueue accepts either side as nil for hosts that only submit or
// only consume.
func NewBatchQueue(enqueuer queue.Enqueuer, dequeuer queue.Dequeuer) *BatchQueue {
	return &BatchQueue{enqueuer: enqueuer, dequeuer: dequeuer}
}

// Submit packs items into one execute job and enqueues it.
func (q *BatchQueue) Submit(ctx context.Context, items []core.ItemParameters, opts core.ExecuteOptions, idempotencyKey string) (string, error) {
	if len(items) == 0 {
		return "", core.NewValidationError(paramItems, "at least one item is required")
	}
	return q.Enqueue(ctx, NewExecuteJob(items, opts, idempotencyKey))
}

func (q *BatchQueue) Enqueue(ctx context.Context, msg *core.JobExecutionMessage) (string, error) {
	if q == nil || q.enqueuer == nil {
		return "", fmt.Errorf("gojob: enqueuer is not configured")
	}
	queued := toExecutionMessage(msg)
	if err := queue.ValidateRequiredMessage(queued); err != nil {
		return "", err
	}
	receipt, err := q.enqueuer.Enqueue(ctx, queued)
	if err != nil {
		return "", err
	}
	return receipt.DispatchID, nil
}

// Dequeue returns nil without error when the backend has nothing ready.
func (q *BatchQueue) Dequeue(ctx context.Context) (core.JobDelivery, error) {
	if q == nil || q.dequeuer == nil {
		return nil, fmt.Errorf("gojob: dequeuer is not configured")
	}
	delivery, err := q.dequeuer.Dequeue(ctx)
	if err != nil || delivery == nil {
		return nil, err
	}
	return &batchDelivery{raw: delivery}, nil
}

type batchDelivery struct {
	raw queue.Delivery
}

func (d *batchDelivery) Message() *core.JobExecutionMessage {
	return fromExecutionMessage(d.raw.Message())
}

func (d *batchDelivery) Ack(ctx context.Context) error {
	return d.raw.Ack(ctx)
}

func (d *batchDelivery) DeadLetter(ctx context.Context, reason string) error {
	return d.raw.Nack(ctx, queue.NackOptions{
		Disposition: queue.NackDispositionDeadLetter,
		Reason:      strings.TrimSpace(reason),
	})
}

func toExecutionMessage(msg *core.JobExecutionMessage) *job.ExecutionMessage {
	if msg == nil {
		return nil
	}
	return &job.ExecutionMessage{
		JobID:          strings.TrimSpace(msg.JobID),
		ScriptPath:     strings.TrimSpace(msg.ScriptPath),
		Parameters:     cloneParams(msg.Parameters),
		IdempotencyKey: strings.TrimSpace(msg.IdempotencyKey),
		DedupPolicy:    job.DeduplicationPolicy(strings.TrimSpace(msg.DedupPolicy)),
	}
}

func fromExecutionMessage(msg *job.ExecutionMessage) *core.JobExecutionMessage {
	if msg == nil {
		return nil
	}
	return &core.JobExecutionMessage{
		JobID:          strings.TrimSpace(msg.JobID),
		ScriptPath:     strings.TrimSpace(msg.ScriptPath),
		Parameters:     cloneParams(msg.Parameters),
		IdempotencyKey: strings.TrimSpace(msg.IdempotencyKey),
		DedupPolicy:    strings.TrimSpace(string(msg.DedupPolicy)),
	}
}

func cloneParams(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	maps.Copy(out, in)
	return out
}

var (
	_ core.JobEnqueuer = (*BatchQueue)(nil)
	_ core.JobDequeuer = (*BatchQueue)(nil)
	_ core.JobDelivery = (*batchDelivery)(nil)
)
