package query

import (
	"context"

	"github.com/goliatone/go-kaduu/core"
)

// ItemProcessor runs a single item. *core.Node satisfies it.
type ItemProcessor interface {
	ProcessItem(ctx context.Context, index int, params core.ItemParameters) core.ItemResult
}

type BrowseLeaksQuery struct {
	processor ItemProcessor
}

func NewBrowseLeaksQuery(processor ItemProcessor) *BrowseLeaksQuery {
	return &BrowseLeaksQuery{processor: processor}
}

func (q *BrowseLeaksQuery) Query(ctx context.Context, msg BrowseLeaksMessage) ([]core.OutputRecord, error) {
	if q == nil || q.processor == nil {
		return nil, core.NewInternalError("query: item processor is required")
	}
	return q.processor.ProcessItem(ctx, 0, msg.Parameters()).Unwrap()
}

type SearchLeaksQuery struct {
	processor ItemProcessor
}

func NewSearchLeaksQuery(processor ItemProcessor) *SearchLeaksQuery {
	return &SearchLeaksQuery{processor: processor}
}

func (q *SearchLeaksQuery) Query(ctx context.Context, msg SearchLeaksMessage) ([]core.OutputRecord, error) {
	if q == nil || q.processor == nil {
		return nil, core.NewInternalError("query: item processor is required")
	}
	return q.processor.ProcessItem(ctx, 0, msg.Parameters()).Unwrap()
}

type GetLeakQuery struct {
	processor ItemProcessor
}

func NewGetLeakQuery(processor ItemProcessor) *GetLeakQuery {
	return &GetLeakQuery{processor: processor}
}

// Query returns the single leak record.
func (q *GetLeakQuery) Query(ctx context.Context, msg GetLeakMessage) (core.LeakRecord, error) {
	if q == nil || q.processor == nil {
		return nil, core.NewInternalError("query: item processor is required")
	}
	records, err := q.processor.ProcessItem(ctx, 0, msg.Parameters()).Unwrap()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, core.NewEmptyResponseError(map[string]any{"operation": string(core.OperationGet)})
	}
	return records[0].JSON, nil
}
