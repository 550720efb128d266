package gocommand

import (
	"context"
	"fmt"
	"slices"

	gocmd "github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
	"github.com/goliatone/go-kaduu/command"
	"github.com/goliatone/go-kaduu/core"
	"github.com/goliatone/go-kaduu/query"
)

// QueueResolverKey names the resolver that mirrors leak commands into a
// go-job queue registry.
const QueueResolverKey = "kaduu.queue"

// queuedTypes are the commands a worker may run from a queued message.
// Queries and token commands stay synchronous.
var queuedTypes = []string{command.TypeExecuteItems}

// LeakHandlers groups the node facing handlers exposed on the dispatcher.
type LeakHandlers struct {
	Browse          *query.BrowseLeaksQuery
	Search          *query.SearchLeaksQuery
	Get             *query.GetLeakQuery
	Authenticate    *command.AuthenticateCommand
	InvalidateToken *command.InvalidateTokenCommand
	TestCredentials *command.TestCredentialsCommand
	ExecuteItems    *command.ExecuteItemsCommand
}

// NewLeakHandlers builds every handler around node. Token commands are left
// nil when the node was built without a token provider.
func NewLeakHandlers(node *core.Node) LeakHandlers {
	handlers := LeakHandlers{
		Browse:          query.NewBrowseLeaksQuery(node),
		Search:          query.NewSearchLeaksQuery(node),
		Get:             query.NewGetLeakQuery(node),
		TestCredentials: command.NewTestCredentialsCommand(node),
		ExecuteItems:    command.NewExecuteItemsCommand(node),
	}
	if tokens := node.Dependencies().TokenProvider; tokens != nil {
		handlers.Authenticate = command.NewAuthenticateCommand(tokens)
		handlers.InvalidateToken = command.NewInvalidateTokenCommand(tokens)
	}
	return handlers
}

// Subscriptions is the set of dispatcher subscriptions created by
// RegisterLeakHandlers.
type Subscriptions []commanddispatcher.Subscription

func (s Subscriptions) Unsubscribe() {
	for _, subscription := range s {
		if subscription != nil {
			subscription.Unsubscribe()
		}
	}
}

type registerConfig struct {
	runnerOpts []runner.Option
	queue      *jobqueuecommand.Registry
	initialize bool
}

type RegisterOption func(*registerConfig)

func WithRunnerOptions(opts ...runner.Option) RegisterOption {
	return func(c *registerConfig) {
		c.runnerOpts = append(c.runnerOpts, opts...)
	}
}

// WithQueueMirror copies the queueable leak commands into queue when the
// registry initializes, so a go-job worker can run ExecuteItems batches.
func WithQueueMirror(queue *jobqueuecommand.Registry) RegisterOption {
	return func(c *registerConfig) {
		c.queue = queue
	}
}

// WithInitialize initializes the registry once every handler is registered.
// Leave it off when the host registers more commands afterwards.
func WithInitialize() RegisterOption {
	return func(c *registerConfig) {
		c.initialize = true
	}
}

// RegisterLeakHandlers registers and subscribes every non nil handler. On
// failure the subscriptions made so far are released.
func RegisterLeakHandlers(registry *gocmd.Registry, handlers LeakHandlers, opts ...RegisterOption) (Subscriptions, error) {
	if registry == nil {
		return nil, fmt.Errorf("gocommand: registry is not configured")
	}
	cfg := registerConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if cfg.queue != nil && !registry.HasResolver(QueueResolverKey) {
		if err := registry.AddResolver(QueueResolverKey, queueMirror(cfg.queue)); err != nil {
			return nil, err
		}
	}

	var subs Subscriptions
	add := func(sub commanddispatcher.Subscription, err error) error {
		if err != nil {
			subs.Unsubscribe()
			return err
		}
		subs = append(subs, sub)
		return nil
	}

	steps := []func() error{
		func() error {
			if handlers.Browse == nil {
				return nil
			}
			return add(registerQuery[query.BrowseLeaksMessage, []core.OutputRecord](registry, handlers.Browse, cfg.runnerOpts))
		},
		func() error {
			if handlers.Search == nil {
				return nil
			}
			return add(registerQuery[query.SearchLeaksMessage, []core.OutputRecord](registry, handlers.Search, cfg.runnerOpts))
		},
		func() error {
			if handlers.Get == nil {
				return nil
			}
			return add(registerQuery[query.GetLeakMessage, core.LeakRecord](registry, handlers.Get, cfg.runnerOpts))
		},
		func() error {
			if handlers.Authenticate == nil {
				return nil
			}
			return add(registerCommand[command.AuthenticateMessage](registry, handlers.Authenticate, cfg.runnerOpts))
		},
		func() error {
			if handlers.InvalidateToken == nil {
				return nil
			}
			return add(registerCommand[command.InvalidateTokenMessage](registry, handlers.InvalidateToken, cfg.runnerOpts))
		},
		func() error {
			if handlers.TestCredentials == nil {
				return nil
			}
			return add(registerCommand[command.TestCredentialsMessage](registry, handlers.TestCredentials, cfg.runnerOpts))
		},
		func() error {
			if handlers.ExecuteItems == nil {
				return nil
			}
			return add(registerCommand[command.ExecuteItemsMessage](registry, handlers.ExecuteItems, cfg.runnerOpts))
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}

	if cfg.initialize {
		if err := registry.Initialize(); err != nil {
			subs.Unsubscribe()
			return nil, err
		}
	}
	return subs, nil
}

func registerCommand[T any](registry *gocmd.Registry, cmd gocmd.Commander[T], runnerOpts []runner.Option) (commanddispatcher.Subscription, error) {
	subscription := commanddispatcher.SubscribeCommand(cmd, runnerOpts...)
	if err := registry.RegisterCommand(cmd); err != nil {
		subscription.Unsubscribe()
		return nil, err
	}
	return subscription, nil
}

func registerQuery[T any, R any](registry *gocmd.Registry, qry gocmd.Querier[T, R], runnerOpts []runner.Option) (commanddispatcher.Subscription, error) {
	subscription := commanddispatcher.SubscribeQuery(qry, runnerOpts...)
	if err := registry.RegisterCommand(qry); err != nil {
		subscription.Unsubscribe()
		return nil, err
	}
	return subscription, nil
}

func queueMirror(queue *jobqueuecommand.Registry) gocmd.Resolver {
	mirror := jobqueuecommand.QueueResolver(queue)
	return func(cmd any, meta gocmd.CommandMeta, registry *gocmd.Registry) error {
		if !slices.Contains(queuedTypes, meta.MessageType) {
			return nil
		}
		return mirror(cmd, meta, registry)
	}
}

// Dispatching helpers typed to the leak messages.

func BrowseLeaks(ctx context.Context, msg query.BrowseLeaksMessage) ([]core.OutputRecord, error) {
	return commanddispatcher.Query[query.BrowseLeaksMessage, []core.OutputRecord](ctx, msg)
}

func SearchLeaks(ctx context.Context, msg query.SearchLeaksMessage) ([]core.OutputRecord, error) {
	return commanddispatcher.Query[query.SearchLeaksMessage, []core.OutputRecord](ctx, msg)
}

func GetLeak(ctx context.Context, leakID string) (core.LeakRecord, error) {
	return commanddispatcher.Query[query.GetLeakMessage, core.LeakRecord](ctx, query.GetLeakMessage{LeakID: leakID})
}

// ExecuteItems dispatches a batch and returns the records the command stored
// on the context result.
func ExecuteItems(ctx context.Context, msg command.ExecuteItemsMessage) ([]core.OutputRecord, error) {
	collector := gocmd.NewResult[[]core.OutputRecord]()
	err := commanddispatcher.Dispatch(gocmd.ContextWithResult(ctx, collector), msg)
	records, _ := collector.Load()
	return records, err
}
