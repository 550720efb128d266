package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ ItemExecutor = (*Node)(nil)
	_ MapExecutor  = (*Node)(nil)

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
