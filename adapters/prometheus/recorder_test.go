package prometheus

import (
	"context"
	"testing"

	"github.com/goliatone/go-kaduu/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder_RegistersCountersAndHistograms(t *testing.T) {
	reg := prometheus.NewRegistry()
	recorder := NewRecorder(reg)
	ctx := context.Background()

	tags := map[string]string{"operation": "browse", "status": "success", "node": "Kaduu"}
	recorder.IncCounter(ctx, "kaduu.browse.total", 1, tags)
	recorder.IncCounter(ctx, "kaduu.browse.total", 2, tags)
	recorder.ObserveHistogram(ctx, "kaduu.browse.duration_ms", 42, tags)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mfs) != 2 {
		t.Fatalf("expected 2 metric families, got %d", len(mfs))
	}

	counter := recorder.counters["kaduu_browse_total"]
	if counter == nil {
		t.Fatalf("expected kaduu_browse_total counter")
	}
	got := testutil.ToFloat64(counter.WithLabelValues("browse", "success", "Kaduu", "", "", ""))
	if got != 3 {
		t.Fatalf("expected counter value 3, got %v", got)
	}
	if count := testutil.CollectAndCount(recorder.histograms["kaduu_browse_duration_ms"]); count != 1 {
		t.Fatalf("expected one histogram series, got %d", count)
	}
}

func TestRecorder_VaryingTagsShareLabelSchema(t *testing.T) {
	reg := prometheus.NewRegistry()
	recorder := NewRecorder(reg)
	ctx := context.Background()

	recorder.IncCounter(ctx, "kaduu.get.total", 1, map[string]string{"operation": "get", "status": "success"})
	recorder.IncCounter(ctx, "kaduu.get.total", 1, map[string]string{
		"operation":  "get",
		"status":     "failure",
		"error_code": "KADUU_API_REQUEST_FAILED",
		"unexpected": "dropped",
	})

	if count := testutil.CollectAndCount(recorder.counters["kaduu_get_total"]); count != 2 {
		t.Fatalf("expected two series, got %d", count)
	}
}

func TestRecorder_IgnoresNegativeAndEmptyNames(t *testing.T) {
	reg := prometheus.NewRegistry()
	recorder := NewRecorder(reg)

	recorder.IncCounter(context.Background(), "  ", 1, nil)
	recorder.IncCounter(context.Background(), "kaduu.job.failure", -1, nil)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mfs) != 0 {
		t.Fatalf("expected no metric families, got %d", len(mfs))
	}
}

func TestRecorder_CustomLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	recorder := NewRecorder(reg, WithLabels("job_id", "phase", "job_id"), WithBuckets([]float64{1, 10}))

	recorder.IncCounter(context.Background(), "kaduu.job.success", 1, map[string]string{"job_id": "kaduu.leaks.execute", "phase": "success"})

	counter := recorder.counters["kaduu_job_success_total"]
	if counter == nil {
		t.Fatalf("expected kaduu_job_success_total counter")
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("kaduu.leaks.execute", "success")); got != 1 {
		t.Fatalf("expected counter value 1, got %v", got)
	}
}

func TestCounterName(t *testing.T) {
	cases := map[string]string{
		"kaduu.browse.total": "kaduu_browse_total",
		"kaduu.job.start":    "kaduu_job_start_total",
		"9lives":             "_9lives_total",
		"":                   "",
	}
	for input, want := range cases {
		if got := CounterName(input); got != want {
			t.Fatalf("CounterName(%q) = %q, want %q", input, got, want)
		}
	}
}

type stubLeakAPI struct{}

func (stubLeakAPI) Fetch(context.Context, core.OperationRequest) ([]byte, error) {
	return []byte(`{"id":"L1","name":"dump"}`), nil
}

func (stubLeakAPI) Stats(context.Context) ([]byte, error) {
	return []byte(`{}`), nil
}

func TestRecorder_CollectsNodeOperations(t *testing.T) {
	reg := prometheus.NewRegistry()
	recorder := NewRecorder(reg)

	node, err := core.NewNode(core.DefaultConfig(), core.WithLeakAPI(stubLeakAPI{}), core.WithMetricsRecorder(recorder))
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	items := []core.ItemParameters{
		{Operation: core.OperationGet, LeakID: "L1"},
		{Operation: core.OperationGet, LeakID: "L1"},
	}
	if _, err := node.Execute(context.Background(), items, core.ExecuteOptions{}); err != nil {
		t.Fatalf("execute: %v", err)
	}

	get := recorder.counters["kaduu_get_total"]
	if get == nil {
		t.Fatalf("expected kaduu_get_total counter")
	}
	if got := testutil.ToFloat64(get.WithLabelValues("get", "success", core.DefaultNodeName, "", "", "")); got != 2 {
		t.Fatalf("expected 2 get operations, got %v", got)
	}
	execute := recorder.counters["kaduu_execute_total"]
	if execute == nil {
		t.Fatalf("expected kaduu_execute_total counter")
	}
	if got := testutil.ToFloat64(execute.WithLabelValues("execute", "success", core.DefaultNodeName, "", "", "")); got != 1 {
		t.Fatalf("expected 1 execute run, got %v", got)
	}
}
