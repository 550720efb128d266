package gojob

import (
	"context"
	"testing"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-kaduu/core"
)

type stubExecutor struct {
	records []core.OutputRecord
	err     error
	items   []map[string]any
}

func (e *stubExecutor) ExecuteMaps(_ context.Context, items []map[string]any, _ core.ExecuteOptions) ([]core.OutputRecord, error) {
	e.items = items
	return e.records, e.err
}

type stubLeakAPI struct {
	bodies map[string][]byte
	calls  int
}

func (a *stubLeakAPI) Fetch(_ context.Context, req core.OperationRequest) ([]byte, error) {
	a.calls++
	return a.bodies[req.Path()], nil
}

func (a *stubLeakAPI) Stats(context.Context) ([]byte, error) {
	return []byte(`{}`), nil
}

func queuedDelivery(t *testing.T, items []core.ItemParameters) *stubQueueDelivery {
	t.Helper()
	return &stubQueueDelivery{msg: toExecutionMessage(NewExecuteJob(items, core.ExecuteOptions{}, "idem"))}
}

func TestProcessorAcksSuccessfulBatch(t *testing.T) {
	executor := &stubExecutor{records: []core.OutputRecord{{JSON: map[string]any{"id": "a"}}}}
	raw := queuedDelivery(t, []core.ItemParameters{{Operation: core.OperationGet, LeakID: "a"}})
	var seen []core.OutputRecord
	processor := NewProcessor(executor, WithResultHandler(func(_ context.Context, _ *core.JobExecutionMessage, records []core.OutputRecord) {
		seen = records
	}))

	if err := processor.Handle(context.Background(), &batchDelivery{raw: raw}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !raw.acked {
		t.Fatalf("expected delivery to be acked")
	}
	if len(seen) != 1 || len(executor.items) != 1 {
		t.Fatalf("expected result handler and executor to see the batch")
	}
}

func TestProcessorDeadLettersAPIFailures(t *testing.T) {
	executor := &stubExecutor{
		records: []core.OutputRecord{{JSON: map[string]any{"id": "a"}}},
		err:     core.NewAPIError(nil, "leak API returned 503", 503, nil),
	}
	raw := queuedDelivery(t, []core.ItemParameters{{Operation: core.OperationGet, LeakID: "a"}, {Operation: core.OperationGet, LeakID: "b"}})
	var partial []core.OutputRecord
	processor := NewProcessor(executor, WithResultHandler(func(_ context.Context, _ *core.JobExecutionMessage, records []core.OutputRecord) {
		partial = records
	}))

	if err := processor.Handle(context.Background(), &batchDelivery{raw: raw}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if raw.acked {
		t.Fatalf("expected no ack on failure")
	}
	if raw.nackOpts.Disposition != queueDeadLetter {
		t.Fatalf("expected dead letter, got %#v", raw.nackOpts)
	}
	if raw.nackOpts.Reason != "leak API returned 503" {
		t.Fatalf("unexpected nack reason %q", raw.nackOpts.Reason)
	}
	if len(partial) != 1 {
		t.Fatalf("expected partial records to reach the result handler, got %d", len(partial))
	}
}

func TestProcessorDeadLettersAuthenticationFailures(t *testing.T) {
	executor := &stubExecutor{err: core.NewAuthenticationError("token endpoint returned 401: bad credentials", nil)}
	raw := queuedDelivery(t, []core.ItemParameters{{Operation: core.OperationGet, LeakID: "a"}})

	if err := NewProcessor(executor).Handle(context.Background(), &batchDelivery{raw: raw}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if raw.nackOpts.Disposition != queueDeadLetter {
		t.Fatalf("expected dead letter, got %#v", raw.nackOpts)
	}
}

func TestProcessorDeadLettersUndecodableMessages(t *testing.T) {
	executor := &stubExecutor{}
	raw := &stubQueueDelivery{msg: &job.ExecutionMessage{JobID: "something.else"}}

	if err := NewProcessor(executor).Handle(context.Background(), &batchDelivery{raw: raw}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if raw.nackOpts.Disposition != queueDeadLetter {
		t.Fatalf("expected dead letter for undecodable message")
	}
	if executor.items != nil {
		t.Fatalf("expected executor not to run")
	}
}

func TestProcessorKeepsMalformedItemLocal(t *testing.T) {
	api := &stubLeakAPI{bodies: map[string][]byte{
		"/leak/a": []byte(`{"id":"a"}`),
		"/leak/c": []byte(`{"id":"c"}`),
	}}
	node, err := core.NewNode(core.DefaultConfig(), core.WithLeakAPI(api))
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	raw := &stubQueueDelivery{msg: &job.ExecutionMessage{JobID: JobIDExecute, Parameters: map[string]any{
		"continue_on_fail": true,
		"items": []any{
			map[string]any{"operation": "get", "leakId": "a"},
			map[string]any{"operation": "browse", "additionalFields": map[string]any{"page": "abc"}},
			map[string]any{"operation": "get", "leakId": "c"},
		},
	}}}
	var seen []core.OutputRecord
	processor := NewProcessor(node, WithResultHandler(func(_ context.Context, _ *core.JobExecutionMessage, records []core.OutputRecord) {
		seen = records
	}))

	if err := processor.Handle(context.Background(), &batchDelivery{raw: raw}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !raw.acked {
		t.Fatalf("expected the batch to be acked, got nack %#v", raw.nackOpts)
	}
	if len(seen) != 3 {
		t.Fatalf("expected 3 records, got %d", len(seen))
	}
	if seen[1].JSON["_itemIndex"] != 1 || seen[1].JSON["error"] == nil {
		t.Fatalf("expected an error record for item 1, got %v", seen[1].JSON)
	}
	if api.calls != 2 {
		t.Fatalf("expected 2 api calls, got %d", api.calls)
	}
}

func TestProcessorProcessNext(t *testing.T) {
	executor := &stubExecutor{}
	raw := queuedDelivery(t, []core.ItemParameters{{Operation: core.OperationBrowse}})
	batches := NewBatchQueue(nil, &stubQueueDequeuer{delivery: raw})

	if err := NewProcessor(executor).ProcessNext(context.Background(), batches); err != nil {
		t.Fatalf("process next: %v", err)
	}
	if !raw.acked {
		t.Fatalf("expected dequeued delivery to be acked")
	}
}

func TestProcessorProcessNextIdle(t *testing.T) {
	executor := &stubExecutor{}
	batches := NewBatchQueue(nil, &stubQueueDequeuer{})

	if err := NewProcessor(executor).ProcessNext(context.Background(), batches); err != nil {
		t.Fatalf("process next: %v", err)
	}
	if executor.items != nil {
		t.Fatalf("expected no execution without a delivery")
	}
}
