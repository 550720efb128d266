package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-kaduu/core"
)

// CredentialTester verifies the configured credentials. *core.Node
// satisfies it.
type CredentialTester interface {
	TestCredentials(ctx context.Context) error
}

type AuthenticateCommand struct {
	tokens core.TokenProvider
}

func NewAuthenticateCommand(tokens core.TokenProvider) *AuthenticateCommand {
	return &AuthenticateCommand{tokens: tokens}
}

func (c *AuthenticateCommand) Execute(ctx context.Context, msg AuthenticateMessage) error {
	if c == nil || c.tokens == nil {
		return commandDependencyError("command: token provider is required")
	}
	if msg.ForceRefresh {
		if err := c.tokens.Invalidate(ctx); err != nil {
			return err
		}
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}
	storeResult(ctx, token)
	return nil
}

type InvalidateTokenCommand struct {
	tokens core.TokenProvider
}

func NewInvalidateTokenCommand(tokens core.TokenProvider) *InvalidateTokenCommand {
	return &InvalidateTokenCommand{tokens: tokens}
}

func (c *InvalidateTokenCommand) Execute(ctx context.Context, _ InvalidateTokenMessage) error {
	if c == nil || c.tokens == nil {
		return commandDependencyError("command: token provider is required")
	}
	return c.tokens.Invalidate(ctx)
}

type TestCredentialsCommand struct {
	tester CredentialTester
}

func NewTestCredentialsCommand(tester CredentialTester) *TestCredentialsCommand {
	return &TestCredentialsCommand{tester: tester}
}

func (c *TestCredentialsCommand) Execute(ctx context.Context, _ TestCredentialsMessage) error {
	if c == nil || c.tester == nil {
		return commandDependencyError("command: credential tester is required")
	}
	return c.tester.TestCredentials(ctx)
}

// ExecuteItemsCommand runs a batch through the node. With continue-on-fail
// disabled the partial records are still stored before the error returns.
type ExecuteItemsCommand struct {
	executor core.ItemExecutor
}

func NewExecuteItemsCommand(executor core.ItemExecutor) *ExecuteItemsCommand {
	return &ExecuteItemsCommand{executor: executor}
}

func (c *ExecuteItemsCommand) Execute(ctx context.Context, msg ExecuteItemsMessage) error {
	if c == nil || c.executor == nil {
		return commandDependencyError("command: item executor is required")
	}
	records, err := c.executor.Execute(ctx, msg.Items, msg.Options())
	if records != nil {
		storeResult(ctx, records)
	}
	return err
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
