package gojob

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-kaduu/core"
)

const (
	JobIDExecute = "kaduu.leaks.execute"

	paramItems          = "items"
	paramContinueOnFail = "continue_on_fail"
)

// NewExecuteJob packs a batch of items into a queue message. Parameters hold
// only the item maps, never credentials.
func NewExecuteJob(items []core.ItemParameters, opts core.ExecuteOptions, idempotencyKey string) *core.JobExecutionMessage {
	encoded := make([]any, 0, len(items))
	for _, item := range items {
		encoded = append(encoded, item.Map())
	}
	params := map[string]any{paramItems: encoded}
	if opts.ContinueOnFail != nil {
		params[paramContinueOnFail] = *opts.ContinueOnFail
	}
	return &core.JobExecutionMessage{
		JobID:          JobIDExecute,
		ScriptPath:     JobIDExecute,
		Parameters:     params,
		IdempotencyKey: strings.TrimSpace(idempotencyKey),
	}
}

// DecodeExecuteJob reverses NewExecuteJob. It accepts the shapes a JSON round
// trip through a queue backend produces. Items stay raw maps; their
// parameters are decoded one at a time by the executor so a malformed item
// fails alone.
func DecodeExecuteJob(msg *core.JobExecutionMessage) ([]map[string]any, core.ExecuteOptions, error) {
	if msg == nil {
		return nil, core.ExecuteOptions{}, core.NewValidationError("message", "execution message is required")
	}
	if strings.TrimSpace(msg.JobID) != JobIDExecute {
		return nil, core.ExecuteOptions{}, core.NewValidationError("job_id", fmt.Sprintf("unexpected job id %q", msg.JobID))
	}

	var rawItems []map[string]any
	switch typed := msg.Parameters[paramItems].(type) {
	case []map[string]any:
		rawItems = typed
	case []any:
		rawItems = make([]map[string]any, 0, len(typed))
		for index, value := range typed {
			item, ok := value.(map[string]any)
			if !ok {
				return nil, core.ExecuteOptions{}, core.NewValidationError(paramItems, fmt.Sprintf("item %d is not an object", index))
			}
			rawItems = append(rawItems, item)
		}
	default:
		return nil, core.ExecuteOptions{}, core.NewValidationError(paramItems, "items must be a list")
	}

	opts := core.ExecuteOptions{}
	switch value := msg.Parameters[paramContinueOnFail].(type) {
	case nil:
	case bool:
		opts = core.ContinueOnFail(value)
	default:
		return nil, core.ExecuteOptions{}, core.NewValidationError(paramContinueOnFail, "continue_on_fail must be a boolean")
	}
	return rawItems, opts, nil
}
