package command

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-kaduu/core"
)

var (
	_ gocmd.Commander[AuthenticateMessage]    = (*AuthenticateCommand)(nil)
	_ gocmd.Commander[InvalidateTokenMessage] = (*InvalidateTokenCommand)(nil)
	_ gocmd.Commander[TestCredentialsMessage] = (*TestCredentialsCommand)(nil)
	_ gocmd.Commander[ExecuteItemsMessage]    = (*ExecuteItemsCommand)(nil)

	_ CredentialTester  = (*core.Node)(nil)
	_ core.ItemExecutor = (*core.Node)(nil)
)
