package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-kaduu/core"
)

var (
	_ gocmd.Querier[BrowseLeaksMessage, []core.OutputRecord] = (*BrowseLeaksQuery)(nil)
	_ gocmd.Querier[SearchLeaksMessage, []core.OutputRecord] = (*SearchLeaksQuery)(nil)
	_ gocmd.Querier[GetLeakMessage, core.LeakRecord]         = (*GetLeakQuery)(nil)

	_ ItemProcessor = (*core.Node)(nil)
)
