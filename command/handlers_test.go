package command

import (
	"context"
	"errors"
	"testing"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-kaduu/core"
)

type stubTokenProvider struct {
	token       core.TokenData
	err         error
	calls       int
	invalidated int
}

func (p *stubTokenProvider) Token(context.Context) (core.TokenData, error) {
	p.calls++
	return p.token, p.err
}

func (p *stubTokenProvider) Invalidate(context.Context) error {
	p.invalidated++
	return nil
}

type stubExecutor struct {
	records []core.OutputRecord
	err     error
	items   []core.ItemParameters
	opts    core.ExecuteOptions
}

func (e *stubExecutor) Execute(_ context.Context, items []core.ItemParameters, opts core.ExecuteOptions) ([]core.OutputRecord, error) {
	e.items = items
	e.opts = opts
	return e.records, e.err
}

type stubTester struct {
	err   error
	calls int
}

func (s *stubTester) TestCredentials(context.Context) error {
	s.calls++
	return s.err
}

func TestAuthenticateCommand_StoresToken(t *testing.T) {
	tokens := &stubTokenProvider{token: core.TokenData{AccessToken: "tok", ExpiresIn: 3600}}
	cmd := NewAuthenticateCommand(tokens)
	collector := gocmd.NewResult[core.TokenData]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	if err := cmd.Execute(ctx, AuthenticateMessage{}); err != nil {
		t.Fatalf("execute authenticate: %v", err)
	}
	result, ok := collector.Load()
	if !ok {
		t.Fatalf("expected token to be stored")
	}
	if result.AccessToken != "tok" {
		t.Fatalf("unexpected token: %s", result)
	}
	if tokens.invalidated != 0 {
		t.Fatalf("expected no invalidation without force refresh")
	}
}

func TestAuthenticateCommand_ForceRefreshInvalidatesFirst(t *testing.T) {
	tokens := &stubTokenProvider{token: core.TokenData{AccessToken: "tok"}}
	if err := NewAuthenticateCommand(tokens).Execute(context.Background(), AuthenticateMessage{ForceRefresh: true}); err != nil {
		t.Fatalf("execute authenticate: %v", err)
	}
	if tokens.invalidated != 1 || tokens.calls != 1 {
		t.Fatalf("expected invalidate then token, got %d/%d", tokens.invalidated, tokens.calls)
	}
}

func TestAuthenticateCommand_PropagatesAuthenticationError(t *testing.T) {
	tokens := &stubTokenProvider{err: core.NewAuthenticationError("No access token received", nil)}
	err := NewAuthenticateCommand(tokens).Execute(context.Background(), AuthenticateMessage{})
	if !core.IsAuthenticationError(err) {
		t.Fatalf("expected authentication error, got %v", err)
	}
}

func TestInvalidateTokenCommand_DelegatesToProvider(t *testing.T) {
	tokens := &stubTokenProvider{}
	if err := NewInvalidateTokenCommand(tokens).Execute(context.Background(), InvalidateTokenMessage{}); err != nil {
		t.Fatalf("execute invalidate: %v", err)
	}
	if tokens.invalidated != 1 {
		t.Fatalf("expected one invalidation, got %d", tokens.invalidated)
	}
}

func TestTestCredentialsCommand_DelegatesToTester(t *testing.T) {
	tester := &stubTester{err: errors.New("boom")}
	err := NewTestCredentialsCommand(tester).Execute(context.Background(), TestCredentialsMessage{})
	if err == nil || err.Error() != "boom" {
		t.Fatalf("expected tester error, got %v", err)
	}
	if tester.calls != 1 {
		t.Fatalf("expected one call, got %d", tester.calls)
	}
}

func TestExecuteItemsCommand_StoresRecordsAndPassesOptions(t *testing.T) {
	executor := &stubExecutor{records: []core.OutputRecord{{ItemIndex: 0, JSON: map[string]any{"id": "a"}}}}
	collector := gocmd.NewResult[[]core.OutputRecord]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)
	continueOnFail := true

	err := NewExecuteItemsCommand(executor).Execute(ctx, ExecuteItemsMessage{
		Items:          []core.ItemParameters{{Operation: core.OperationGet, LeakID: "a"}},
		ContinueOnFail: &continueOnFail,
	})
	if err != nil {
		t.Fatalf("execute items: %v", err)
	}
	records, ok := collector.Load()
	if !ok || len(records) != 1 || records[0].JSON["id"] != "a" {
		t.Fatalf("unexpected stored records: %#v", records)
	}
	if executor.opts.ContinueOnFail == nil || !*executor.opts.ContinueOnFail {
		t.Fatalf("expected continue on fail to be forwarded")
	}
	if len(executor.items) != 1 || executor.items[0].LeakID != "a" {
		t.Fatalf("unexpected items: %#v", executor.items)
	}
}

func TestExecuteItemsCommand_StoresPartialRecordsOnFailure(t *testing.T) {
	failure := core.NewAPIError(nil, "leak API returned 500", 500, nil)
	executor := &stubExecutor{
		records: []core.OutputRecord{{ItemIndex: 0, JSON: map[string]any{"id": "a"}}},
		err:     failure,
	}
	collector := gocmd.NewResult[[]core.OutputRecord]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	err := NewExecuteItemsCommand(executor).Execute(ctx, ExecuteItemsMessage{
		Items: []core.ItemParameters{{Operation: core.OperationGet, LeakID: "a"}, {Operation: core.OperationGet, LeakID: "b"}},
	})
	if !core.IsAPIError(err) {
		t.Fatalf("expected api error, got %v", err)
	}
	records, ok := collector.Load()
	if !ok || len(records) != 1 {
		t.Fatalf("expected partial records to be stored, got %#v", records)
	}
}

func TestCommands_RequireDependencies(t *testing.T) {
	if err := NewAuthenticateCommand(nil).Execute(context.Background(), AuthenticateMessage{}); err == nil {
		t.Fatalf("expected dependency error for authenticate")
	}
	if err := NewExecuteItemsCommand(nil).Execute(context.Background(), ExecuteItemsMessage{}); err == nil {
		t.Fatalf("expected dependency error for execute items")
	}
	if err := NewTestCredentialsCommand(nil).Execute(context.Background(), TestCredentialsMessage{}); err == nil {
		t.Fatalf("expected dependency error for test credentials")
	}
}
