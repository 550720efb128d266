package gojob

import (
	"context"
	"fmt"

	"github.com/goliatone/go-job/queue"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
	"github.com/goliatone/go-job/queue/worker"
	"github.com/goliatone/go-kaduu/command"
	"github.com/goliatone/go-kaduu/core"
	glog "github.com/goliatone/go-logger/glog"
)

// NewCommandWorker builds a go-job worker for the ExecuteItems command
// mirrored into registry, reporting through a WorkerHook. The worker is not
// started.
func NewCommandWorker(
	dequeuer queue.Dequeuer,
	registry *jobqueuecommand.Registry,
	logger core.Logger,
	metrics core.MetricsRecorder,
	opts ...worker.Option,
) (*worker.Worker, error) {
	if registry == nil {
		return nil, fmt.Errorf("gojob: queue command registry is required")
	}
	if _, ok := registry.Get(command.TypeExecuteItems); !ok {
		return nil, fmt.Errorf("gojob: %s is not registered on the queue registry", command.TypeExecuteItems)
	}
	workerOpts := append([]worker.Option{worker.WithHooks(NewWorkerHook(logger, metrics))}, opts...)
	return jobqueuecommand.NewLocalWorker(dequeuer, registry, jobqueuecommand.LocalWorkerConfig{
		IDs:           []string{command.TypeExecuteItems},
		WorkerOptions: workerOpts,
	})
}

// WorkerHook reports go-job worker lifecycle events as kaduu.job.* metrics
// and log lines.
type WorkerHook struct {
	logger  core.Logger
	metrics core.MetricsRecorder
}

func NewWorkerHook(logger core.Logger, metrics core.MetricsRecorder) *WorkerHook {
	if logger == nil {
		logger = glog.Nop()
	}
	if metrics == nil {
		metrics = core.NopMetricsRecorder{}
	}
	return &WorkerHook{logger: logger, metrics: metrics}
}

func (h *WorkerHook) OnStart(ctx context.Context, event worker.Event) {
	h.record(ctx, "start", event)
}

func (h *WorkerHook) OnSuccess(ctx context.Context, event worker.Event) {
	h.record(ctx, "success", event)
	if event.Duration > 0 {
		h.metrics.ObserveHistogram(ctx, "kaduu.job.duration_ms", float64(event.Duration.Milliseconds()), eventTags(event, "success"))
	}
}

func (h *WorkerHook) OnFailure(ctx context.Context, event worker.Event) {
	h.record(ctx, "failure", event)
	h.logger.Warn("kaduu job failed", "job_id", eventJobID(event), "attempt", event.Attempt, "error", errorText(event.Err))
}

func (h *WorkerHook) OnRetry(ctx context.Context, event worker.Event) {
	h.record(ctx, "retry", event)
	h.logger.Info("kaduu job retry scheduled", "job_id", eventJobID(event), "attempt", event.Attempt, "delay", event.Delay.String())
}

func (h *WorkerHook) record(ctx context.Context, phase string, event worker.Event) {
	if h == nil {
		return
	}
	h.metrics.IncCounter(ctx, "kaduu.job."+phase, 1, eventTags(event, phase))
}

func eventTags(event worker.Event, phase string) map[string]string {
	return map[string]string{
		"job_id": eventJobID(event),
		"phase":  phase,
	}
}

func eventJobID(event worker.Event) string {
	message := event.Message
	if message == nil && event.Delivery != nil {
		message = event.Delivery.Message()
	}
	if message == nil {
		return "unknown"
	}
	return message.JobID
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return core.ErrorMessage(err)
}

var _ worker.Hook = (*WorkerHook)(nil)
