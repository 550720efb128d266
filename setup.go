package kaduu

import (
	"context"
	"net/http"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-kaduu/adapters/gocommand"
	"github.com/goliatone/go-kaduu/adapters/gojob"
	"github.com/goliatone/go-kaduu/auth"
	"github.com/goliatone/go-kaduu/core"
	"github.com/goliatone/go-kaduu/leakapi"
	"github.com/goliatone/go-kaduu/transport"
	glog "github.com/goliatone/go-logger/glog"
	"golang.org/x/oauth2"
)

// Client is a fully wired node: REST transport, password grant
// authenticator, token cache and leak API client.
type Client struct {
	*Facade

	node          *core.Node
	authenticator *auth.PasswordGrantAuthenticator
	tokens        *auth.CachingTokenProvider
	api           *leakapi.Client
}

type SetupOption func(*setupOptions)

type setupOptions struct {
	tokenStore  core.TokenStore
	httpClient  transport.HTTPDoer
	logger      core.Logger
	nodeOptions []core.Option
}

// WithTokenStore persists tokens somewhere other than process memory, for
// example store/sql or store/redis.
func WithTokenStore(store core.TokenStore) SetupOption {
	return func(o *setupOptions) {
		o.tokenStore = store
	}
}

// WithHTTPClient replaces the otelhttp instrumented default client.
func WithHTTPClient(client transport.HTTPDoer) SetupOption {
	return func(o *setupOptions) {
		o.httpClient = client
	}
}

func WithSetupLogger(logger core.Logger) SetupOption {
	return func(o *setupOptions) {
		o.logger = logger
	}
}

func WithNodeOptions(opts ...core.Option) SetupOption {
	return func(o *setupOptions) {
		o.nodeOptions = append(o.nodeOptions, opts...)
	}
}

// Setup resolves cfg and wires every collaborator of the node. The credential
// is only handed to the token provider and never logged.
func Setup(cfg Config, credential Credential, opts ...SetupOption) (*Client, error) {
	options := setupOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	if !credential.Complete() {
		return nil, core.NewAuthenticationError("Username and password are required", nil)
	}

	resolved, err := core.ResolveConfig(context.Background(), cfg, nil, core.GoOptionsResolver{})
	if err != nil {
		return nil, err
	}
	logger := glog.Ensure(options.logger)

	httpClient := options.httpClient
	if httpClient == nil {
		httpClient = transport.NewHTTPClient(resolved.Timeout)
	}
	rest := transport.NewRESTAdapter(httpClient)
	rest.MaxResponseBodyBytes = resolved.MaxResponseBodyBytes

	grant := auth.PasswordGrantConfigFrom(resolved)
	grant.Logger = logger
	authenticator := auth.NewPasswordGrantAuthenticator(rest, grant)

	tokens := auth.NewCachingTokenProvider(authenticator, options.tokenStore, auth.CachingTokenProviderConfig{
		Credential:  credential,
		Key:         auth.TokenKey(resolved.TokenURL, resolved.ClientID, credential.Username),
		RenewBefore: resolved.RenewBefore,
		Logger:      logger,
	})

	api, err := leakapi.NewClient(resolved, rest, tokens, leakapi.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	nodeOpts := append([]core.Option{
		core.WithLogger(logger),
		core.WithLeakAPI(api),
		core.WithTokenProvider(tokens),
	}, options.nodeOptions...)
	node, err := core.NewNode(resolved, nodeOpts...)
	if err != nil {
		return nil, err
	}

	facade, err := NewFacade(node)
	if err != nil {
		return nil, err
	}
	return &Client{
		Facade:        facade,
		node:          node,
		authenticator: authenticator,
		tokens:        tokens,
		api:           api,
	}, nil
}

func (c *Client) Node() *core.Node {
	if c == nil {
		return nil
	}
	return c.node
}

func (c *Client) TokenProvider() core.TokenProvider {
	if c == nil || c.tokens == nil {
		return nil
	}
	return c.tokens
}

func (c *Client) Authenticator() core.Authenticator {
	if c == nil || c.authenticator == nil {
		return nil
	}
	return c.authenticator
}

func (c *Client) LeakAPI() *leakapi.Client {
	if c == nil {
		return nil
	}
	return c.api
}

func (c *Client) Execute(ctx context.Context, items []ItemParameters, opts ExecuteOptions) ([]OutputRecord, error) {
	return c.node.Execute(ctx, items, opts)
}

func (c *Client) TestCredentials(ctx context.Context) error {
	return c.node.TestCredentials(ctx)
}

// HTTPClient returns an *http.Client that attaches the cached bearer token to
// every request.
func (c *Client) HTTPClient(ctx context.Context) *http.Client {
	if ctx == nil {
		ctx = context.Background()
	}
	return oauth2.NewClient(ctx, auth.NewTokenSource(ctx, c.tokens))
}

// RegisterHandlers exposes the node's queries and commands on a go-command
// registry. See gocommand.RegisterLeakHandlers for the options.
func (c *Client) RegisterHandlers(registry *gocmd.Registry, opts ...gocommand.RegisterOption) (gocommand.Subscriptions, error) {
	return gocommand.RegisterLeakHandlers(registry, gocommand.NewLeakHandlers(c.node), opts...)
}

// BatchProcessor runs queued item batches through the node.
func (c *Client) BatchProcessor(opts ...gojob.ProcessorOption) *gojob.Processor {
	return gojob.NewProcessor(c.node, opts...)
}
