package adapters_test

import (
	"context"
	"sync"
	"testing"

	"github.com/goliatone/go-command"
	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
	"github.com/goliatone/go-kaduu/adapters/gocommand"
	"github.com/goliatone/go-kaduu/adapters/gojob"
	"github.com/goliatone/go-kaduu/adapters/gologger"
	kaducmd "github.com/goliatone/go-kaduu/command"
	"github.com/goliatone/go-kaduu/core"
	glog "github.com/goliatone/go-logger/glog"
)

func TestRuntimeCompatibility_GoJobGoCommandGoLogger(t *testing.T) {
	ctx := context.Background()

	logger := &compatLogger{}
	provider := &compatProvider{logger: logger}

	_, resolvedLogger, jobProvider, jobLogger := gologger.ResolveForJob("kaduu", provider, nil)
	if jobProvider == nil || jobLogger == nil {
		t.Fatalf("expected go-job logger bridges")
	}

	api := &compatLeakAPI{body: []byte(`{"id":"leak-1"}`)}
	node, err := core.NewNode(core.DefaultConfig(), core.WithLeakAPI(api), core.WithLogger(resolvedLogger))
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	broker := &compatBroker{}
	batches := gojob.NewBatchQueue(broker, broker)
	items := []core.ItemParameters{{Operation: core.OperationGet, LeakID: "leak-1"}}
	if _, err := batches.Submit(ctx, items, core.ContinueOnFail(true), "idem_1"); err != nil {
		t.Fatalf("submit via batch queue: %v", err)
	}
	if broker.last == nil || broker.last.JobID != gojob.JobIDExecute {
		t.Fatalf("expected go-job message mapping through the batch queue")
	}

	processor := gojob.NewProcessor(node, gojob.WithProcessorLogger(resolvedLogger))
	if err := processor.ProcessNext(ctx, batches); err != nil {
		t.Fatalf("process queued batch: %v", err)
	}
	if !broker.acked {
		t.Fatalf("expected queued batch to be acked")
	}
	if api.calls != 1 {
		t.Fatalf("expected one api call, got %d", api.calls)
	}

	queueRegistry := jobqueuecommand.NewRegistry()
	subs, err := gocommand.RegisterLeakHandlers(
		command.NewRegistry(),
		gocommand.NewLeakHandlers(node),
		gocommand.WithQueueMirror(queueRegistry),
		gocommand.WithInitialize(),
	)
	if err != nil {
		t.Fatalf("register leak handlers: %v", err)
	}
	t.Cleanup(subs.Unsubscribe)
	if _, ok := queueRegistry.Get(kaducmd.TypeExecuteItems); !ok {
		t.Fatalf("expected command resolver hook to mirror command into go-job queue registry")
	}

	w, err := gojob.NewCommandWorker(broker, queueRegistry, resolvedLogger, nil)
	if err != nil {
		t.Fatalf("new command worker: %v", err)
	}
	if len(w.RegisteredTasks()) != 1 {
		t.Fatalf("expected the worker to run only the execute items command")
	}
}

type compatLeakAPI struct {
	mu    sync.Mutex
	body  []byte
	calls int
}

func (a *compatLeakAPI) Fetch(context.Context, core.OperationRequest) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	return a.body, nil
}

func (a *compatLeakAPI) Stats(context.Context) ([]byte, error) {
	return []byte(`{}`), nil
}

// compatBroker is a single slot queue.
type compatBroker struct {
	last  *job.ExecutionMessage
	acked bool
	nack  *queue.NackOptions
}

func (b *compatBroker) Enqueue(_ context.Context, msg *job.ExecutionMessage) (queue.EnqueueReceipt, error) {
	b.last = msg
	return queue.EnqueueReceipt{DispatchID: "compat-1"}, nil
}

func (b *compatBroker) Dequeue(context.Context) (queue.Delivery, error) {
	return b, nil
}

func (b *compatBroker) Message() *job.ExecutionMessage {
	return b.last
}

func (b *compatBroker) Ack(context.Context) error {
	b.acked = true
	return nil
}

func (b *compatBroker) Nack(_ context.Context, opts queue.NackOptions) error {
	b.nack = &opts
	return nil
}

type compatProvider struct {
	logger glog.Logger
}

func (p *compatProvider) GetLogger(string) glog.Logger {
	if p == nil || p.logger == nil {
		return glog.Nop()
	}
	return p.logger
}

type compatLogger struct{}

func (compatLogger) Trace(string, ...any)                    {}
func (compatLogger) Debug(string, ...any)                    {}
func (compatLogger) Info(string, ...any)                     {}
func (compatLogger) Warn(string, ...any)                     {}
func (compatLogger) Error(string, ...any)                    {}
func (compatLogger) Fatal(string, ...any)                    {}
func (compatLogger) WithContext(context.Context) glog.Logger { return compatLogger{} }
