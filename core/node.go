package core

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

// Node maps input items onto leak API calls. Items are always processed one
// at a time, in order.
type Node struct {
	config          Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	errorMapper     ErrorMapper
	configProvider  ConfigProvider
	optionsResolver OptionsResolver
	api             LeakAPI
	tokenProvider   TokenProvider
}

type NodeDependencies struct {
	Logger          Logger
	LoggerProvider  LoggerProvider
	MetricsRecorder MetricsRecorder
	ErrorMapper     ErrorMapper
	ConfigProvider  ConfigProvider
	OptionsResolver OptionsResolver
	LeakAPI         LeakAPI
	TokenProvider   TokenProvider
}

func NewNode(cfg Config, opts ...Option) (*Node, error) {
	builder := defaultNodeBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("kaduu", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("kaduu.node"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = MapError
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}

	finalConfig, err := ResolveConfig(context.Background(), builder.runtimeConfig, builder.configProvider, builder.optionsResolver)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	if builder.api == nil {
		return nil, NewInternalError("core: leak api client is required")
	}

	return &Node{
		config:          finalConfig,
		logger:          logger,
		loggerProvider:  provider,
		metricsRecorder: builder.metricsRecorder,
		errorMapper:     builder.errorMapper,
		configProvider:  builder.configProvider,
		optionsResolver: builder.optionsResolver,
		api:             builder.api,
		tokenProvider:   builder.tokenProvider,
	}, nil
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		mapper = MapError
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	if mapped.Category == goerrors.CategoryInternal && mapped.TextCode == ErrorInternal {
		mapped.Category = goerrors.CategoryBadInput
		mapped.Code = errorHTTPStatus(goerrors.CategoryBadInput)
		mapped.TextCode = ErrorValidationFailed
	}
	return mapped
}

func (n *Node) Config() Config {
	if n == nil {
		return Config{}
	}
	return n.config
}

func (n *Node) Name() string {
	if n == nil {
		return ""
	}
	return n.config.NodeName
}

func (n *Node) Dependencies() NodeDependencies {
	if n == nil {
		return NodeDependencies{}
	}
	return NodeDependencies{
		Logger:          n.logger,
		LoggerProvider:  n.loggerProvider,
		MetricsRecorder: n.metricsRecorder,
		ErrorMapper:     n.errorMapper,
		ConfigProvider:  n.configProvider,
		OptionsResolver: n.optionsResolver,
		LeakAPI:         n.api,
		TokenProvider:   n.tokenProvider,
	}
}

// ProcessItem builds the request for one item, issues exactly one API call
// and flattens the response. Failures are returned in the result.
func (n *Node) ProcessItem(ctx context.Context, index int, params ItemParameters) ItemResult {
	return n.process(ctx, index, params.Operation, params.BuildRequest)
}

// ProcessMap decodes one loosely typed item and processes it. A decode failure
// is that item's error and never touches the network.
func (n *Node) ProcessMap(ctx context.Context, index int, raw map[string]any) ItemResult {
	operation := Operation(strings.ToLower(readString(raw, "operation")))
	return n.process(ctx, index, operation, func() (OperationRequest, error) {
		params, err := DecodeItemParameters(raw)
		if err != nil {
			return nil, err
		}
		return params.BuildRequest()
	})
}

func (n *Node) process(ctx context.Context, index int, operation Operation, build func() (OperationRequest, error)) (result ItemResult) {
	startedAt := time.Now()
	result = ItemResult{Index: index}
	fields := map[string]any{
		"item_index": index,
		"operation":  string(operation),
		"node":       n.Name(),
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			result = ItemResult{Index: index, Err: NewInternalError("core: item processing panicked")}
		}
		if result.Err != nil {
			result.Err = annotateError(result.Err, fields)
		}
		n.observeOperation(ctx, startedAt, operationName(operation), result.Err, fields)
	}()

	if n == nil || n.api == nil {
		result.Err = NewInternalError("core: node is not configured")
		return result
	}

	req, err := build()
	if err != nil {
		result.Err = err
		return result
	}
	fields["path"] = req.Path()

	body, err := n.api.Fetch(ctx, req)
	if err != nil {
		result.Err = err
		return result
	}

	records, err := NormalizeResponse(body)
	if err != nil {
		result.Err = err
		return result
	}

	result.Records = make([]OutputRecord, 0, len(records))
	for _, record := range records {
		result.Records = append(result.Records, OutputRecord{ItemIndex: index, JSON: record})
	}
	fields["records"] = len(result.Records)
	return result
}

// Execute runs every item in order. With continue-on-fail a failing item is
// replaced by an error record; otherwise the records produced so far are
// returned together with the error. Authentication failures and context
// cancellation always stop the run.
func (n *Node) Execute(ctx context.Context, items []ItemParameters, opts ExecuteOptions) ([]OutputRecord, error) {
	return n.run(ctx, len(items), opts, func(ctx context.Context, index int) ItemResult {
		return n.ProcessItem(ctx, index, items[index])
	})
}

// ExecuteMaps runs loosely typed items. Each item is decoded in turn, so a
// malformed item fails alone and obeys continue-on-fail like any other error.
func (n *Node) ExecuteMaps(ctx context.Context, items []map[string]any, opts ExecuteOptions) ([]OutputRecord, error) {
	return n.run(ctx, len(items), opts, func(ctx context.Context, index int) ItemResult {
		return n.ProcessMap(ctx, index, items[index])
	})
}

func (n *Node) run(ctx context.Context, count int, opts ExecuteOptions, processAt func(context.Context, int) ItemResult) ([]OutputRecord, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	continueOnFail := n.Config().ContinueOnFail
	if opts.ContinueOnFail != nil {
		continueOnFail = *opts.ContinueOnFail
	}

	startedAt := time.Now()
	fields := map[string]any{
		"items":            count,
		"continue_on_fail": continueOnFail,
		"node":             n.Name(),
	}
	var runErr error
	defer func() {
		n.observeOperation(ctx, startedAt, "execute", runErr, fields)
	}()

	out := make([]OutputRecord, 0, count)
	failed := 0
	for index := range count {
		if err := ctx.Err(); err != nil {
			runErr = annotateError(goerrors.Wrap(err, goerrors.CategoryOperation, "execution cancelled"), map[string]any{
				"item_index": index,
			})
			return out, runErr
		}

		result := processAt(ctx, index)
		if result.OK() {
			out = append(out, result.Records...)
			continue
		}

		failed++
		fields["failed"] = failed
		if IsAuthenticationError(result.Err) || ctx.Err() != nil || !continueOnFail {
			runErr = result.Err
			return out, runErr
		}
		out = append(out, result.ErrorRecord(n.Name()).OutputRecord())
	}
	fields["records"] = len(out)
	return out, nil
}

// TestCredentials authenticates and issues a single stats call.
func (n *Node) TestCredentials(ctx context.Context) (err error) {
	startedAt := time.Now()
	defer func() {
		n.observeOperation(ctx, startedAt, "test_credentials", err, map[string]any{"node": n.Name()})
	}()
	if n == nil || n.api == nil {
		return NewInternalError("core: node is not configured")
	}
	if n.tokenProvider != nil {
		if _, err = n.tokenProvider.Token(ctx); err != nil {
			return err
		}
	}
	if _, err = n.api.Stats(ctx); err != nil {
		return err
	}
	return nil
}

// operationName keeps metric names bounded to the known operations.
func operationName(operation Operation) string {
	if !operation.Valid() {
		return "unknown"
	}
	return string(operation)
}
