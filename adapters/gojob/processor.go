package gojob

import (
	"context"
	"fmt"

	"github.com/goliatone/go-kaduu/core"
	glog "github.com/goliatone/go-logger/glog"
)

// Processor runs queued batches through an executor and settles each
// delivery. A failed batch is dead lettered, never requeued; retrying is the
// host's decision. Item level failures inside a continue-on-fail batch are
// error records, not batch failures.
type Processor struct {
	executor core.MapExecutor
	logger   core.Logger
	onResult func(ctx context.Context, msg *core.JobExecutionMessage, records []core.OutputRecord)
}

type ProcessorOption func(*Processor)

func WithProcessorLogger(logger core.Logger) ProcessorOption {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithResultHandler receives the records of every settled batch, including
// partial records of a failed one.
func WithResultHandler(fn func(ctx context.Context, msg *core.JobExecutionMessage, records []core.OutputRecord)) ProcessorOption {
	return func(p *Processor) {
		p.onResult = fn
	}
}

func NewProcessor(executor core.MapExecutor, opts ...ProcessorOption) *Processor {
	p := &Processor{
		executor: executor,
		logger:   glog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Handle processes one delivery.
func (p *Processor) Handle(ctx context.Context, delivery core.JobDelivery) error {
	if p == nil || p.executor == nil {
		return fmt.Errorf("gojob: executor is not configured")
	}
	if delivery == nil {
		return fmt.Errorf("gojob: delivery is required")
	}

	msg := delivery.Message()
	items, opts, err := DecodeExecuteJob(msg)
	if err != nil {
		p.logger.Warn("kaduu job rejected", "error", err.Error())
		return delivery.DeadLetter(ctx, core.ErrorMessage(err))
	}

	records, err := p.executor.ExecuteMaps(ctx, items, opts)
	if p.onResult != nil && records != nil {
		p.onResult(ctx, msg, records)
	}
	if err == nil {
		p.logger.Debug("kaduu job completed", "items", len(items), "records", len(records))
		return delivery.Ack(ctx)
	}

	p.logger.Warn("kaduu job failed",
		"items", len(items),
		"records", len(records),
		"error_code", core.MapError(err).TextCode,
	)
	return delivery.DeadLetter(ctx, core.ErrorMessage(err))
}

// ProcessNext dequeues and handles a single delivery. It returns nil when
// nothing is ready.
func (p *Processor) ProcessNext(ctx context.Context, dequeuer core.JobDequeuer) error {
	if dequeuer == nil {
		return fmt.Errorf("gojob: dequeuer is required")
	}
	delivery, err := dequeuer.Dequeue(ctx)
	if err != nil {
		return err
	}
	if delivery == nil {
		return nil
	}
	return p.Handle(ctx, delivery)
}
