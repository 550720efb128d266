package kaduu

import (
	"fmt"

	kaducmd "github.com/goliatone/go-kaduu/command"
	"github.com/goliatone/go-kaduu/core"
	kaduquery "github.com/goliatone/go-kaduu/query"
)

type Commands struct {
	Authenticate    *kaducmd.AuthenticateCommand
	InvalidateToken *kaducmd.InvalidateTokenCommand
	TestCredentials *kaducmd.TestCredentialsCommand
	ExecuteItems    *kaducmd.ExecuteItemsCommand
}

type Queries struct {
	Browse *kaduquery.BrowseLeaksQuery
	Search *kaduquery.SearchLeaksQuery
	Get    *kaduquery.GetLeakQuery
}

// Facade exposes the node through go-command handlers for hosts that do not
// use a dispatcher.
type Facade struct {
	node     *core.Node
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	tokenProvider core.TokenProvider
}

// WithFacadeTokenProvider overrides the token provider used by the token
// commands. The node's provider is used otherwise.
func WithFacadeTokenProvider(provider core.TokenProvider) FacadeOption {
	return func(options *facadeOptions) {
		options.tokenProvider = provider
	}
}

func NewFacade(node *core.Node, opts ...FacadeOption) (*Facade, error) {
	if node == nil {
		return nil, fmt.Errorf("kaduu: node is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	tokens := cfg.tokenProvider
	if tokens == nil {
		tokens = node.Dependencies().TokenProvider
	}

	facade := &Facade{node: node}
	facade.commands = Commands{
		TestCredentials: kaducmd.NewTestCredentialsCommand(node),
		ExecuteItems:    kaducmd.NewExecuteItemsCommand(node),
	}
	if tokens != nil {
		facade.commands.Authenticate = kaducmd.NewAuthenticateCommand(tokens)
		facade.commands.InvalidateToken = kaducmd.NewInvalidateTokenCommand(tokens)
	}
	facade.queries = Queries{
		Browse: kaduquery.NewBrowseLeaksQuery(node),
		Search: kaduquery.NewSearchLeaksQuery(node),
		Get:    kaduquery.NewGetLeakQuery(node),
	}
	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Node() *core.Node {
	if f == nil {
		return nil
	}
	return f.node
}
