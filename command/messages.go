package command

import (
	"github.com/goliatone/go-kaduu/core"
)

const (
	TypeAuthenticate    = "kaduu.command.token.authenticate"
	TypeInvalidateToken = "kaduu.command.token.invalidate"
	TypeTestCredentials = "kaduu.command.credentials.test"
	TypeExecuteItems    = "kaduu.command.items.execute"
)

// AuthenticateMessage obtains a token. ForceRefresh drops any cached token
// before the exchange.
type AuthenticateMessage struct {
	ForceRefresh bool
}

func (AuthenticateMessage) Type() string { return TypeAuthenticate }

func (AuthenticateMessage) Validate() error { return nil }

type InvalidateTokenMessage struct{}

func (InvalidateTokenMessage) Type() string { return TypeInvalidateToken }

func (InvalidateTokenMessage) Validate() error { return nil }

type TestCredentialsMessage struct{}

func (TestCredentialsMessage) Type() string { return TypeTestCredentials }

func (TestCredentialsMessage) Validate() error { return nil }

type ExecuteItemsMessage struct {
	Items          []core.ItemParameters
	ContinueOnFail *bool
}

func (ExecuteItemsMessage) Type() string { return TypeExecuteItems }

func (m ExecuteItemsMessage) Validate() error {
	if len(m.Items) == 0 {
		return commandValidationError("items", "at least one item is required")
	}
	for _, item := range m.Items {
		if !item.Operation.Valid() {
			return commandValidationError("operation", "operation must be one of browse, search, get")
		}
	}
	return nil
}

func (m ExecuteItemsMessage) Options() core.ExecuteOptions {
	return core.ExecuteOptions{ContinueOnFail: m.ContinueOnFail}
}
