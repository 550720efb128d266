package gojob

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/goliatone/go-kaduu/core"
)

func TestExecuteJobSurvivesJSONRoundTrip(t *testing.T) {
	size := 25
	items := []core.ItemParameters{
		{Operation: core.OperationBrowse, Name: "acme", AdditionalFields: core.AdditionalFields{Size: &size}},
		{Operation: core.OperationGet, LeakID: "leak-1"},
	}
	msg := NewExecuteJob(items, core.ContinueOnFail(true), "batch-1")
	if msg.JobID != JobIDExecute || msg.IdempotencyKey != "batch-1" {
		t.Fatalf("unexpected message header: %#v", msg)
	}

	payload, err := json.Marshal(msg.Parameters)
	if err != nil {
		t.Fatalf("marshal parameters: %v", err)
	}
	var decodedParams map[string]any
	if err := json.Unmarshal(payload, &decodedParams); err != nil {
		t.Fatalf("unmarshal parameters: %v", err)
	}
	msg.Parameters = decodedParams

	decoded, opts, err := DecodeExecuteJob(msg)
	if err != nil {
		t.Fatalf("decode execute job: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("expected 2 items, got %d", len(decoded))
	}
	browse, err := core.DecodeItemParameters(decoded[0])
	if err != nil {
		t.Fatalf("decode browse item: %v", err)
	}
	if browse.Name != "acme" || browse.AdditionalFields.Size == nil || *browse.AdditionalFields.Size != 25 {
		t.Fatalf("unexpected browse item: %#v", browse)
	}
	get, err := core.DecodeItemParameters(decoded[1])
	if err != nil {
		t.Fatalf("decode get item: %v", err)
	}
	if get.Operation != core.OperationGet || get.LeakID != "leak-1" {
		t.Fatalf("unexpected get item: %#v", get)
	}
	if opts.ContinueOnFail == nil || !*opts.ContinueOnFail {
		t.Fatalf("expected continue on fail to survive")
	}
}

func TestExecuteJobDoesNotCarryCredentials(t *testing.T) {
	msg := NewExecuteJob([]core.ItemParameters{{Operation: core.OperationGet, LeakID: "x"}}, core.ExecuteOptions{}, "")
	payload, err := json.Marshal(msg.Parameters)
	if err != nil {
		t.Fatalf("marshal parameters: %v", err)
	}
	for _, forbidden := range []string{"password", "username", "access_token"} {
		if strings.Contains(string(payload), `"`+forbidden+`"`) {
			t.Fatalf("expected %q to be absent from job parameters: %s", forbidden, payload)
		}
	}
	if _, ok := msg.Parameters["continue_on_fail"]; ok {
		t.Fatalf("expected continue_on_fail to be omitted when unset")
	}
}

func TestDecodeExecuteJobRejectsMalformedMessages(t *testing.T) {
	cases := map[string]*core.JobExecutionMessage{
		"nil":           nil,
		"wrong job":     {JobID: "other"},
		"missing items": {JobID: JobIDExecute, Parameters: map[string]any{}},
		"bad item":      {JobID: JobIDExecute, Parameters: map[string]any{"items": []any{"nope"}}},
		"bad flag":      {JobID: JobIDExecute, Parameters: map[string]any{"items": []any{}, "continue_on_fail": "yes"}},
	}
	for name, msg := range cases {
		t.Run(name, func(t *testing.T) {
			if _, _, err := DecodeExecuteJob(msg); !core.IsValidationError(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestDecodeExecuteJobKeepsMalformedItemParameters(t *testing.T) {
	msg := &core.JobExecutionMessage{JobID: JobIDExecute, Parameters: map[string]any{"items": []any{
		map[string]any{"operation": "get", "leakId": "a"},
		map[string]any{"operation": "browse", "additionalFields": map[string]any{"page": "abc"}},
	}}}

	items, _, err := DecodeExecuteJob(msg)
	if err != nil {
		t.Fatalf("expected item parameters to be left to the executor, got %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
}
