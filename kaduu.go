package kaduu

import "github.com/goliatone/go-kaduu/core"

type Config = core.Config

type Option = core.Option

type Node = core.Node

type NodeDependencies = core.NodeDependencies

type Credential = core.Credential
type TokenData = core.TokenData
type TokenStore = core.TokenStore
type TokenProvider = core.TokenProvider
type SecretProvider = core.SecretProvider
type MetricsRecorder = core.MetricsRecorder

type Operation = core.Operation
type ItemParameters = core.ItemParameters
type AdditionalFields = core.AdditionalFields
type SearchOptions = core.SearchOptions
type ExecuteOptions = core.ExecuteOptions
type OutputRecord = core.OutputRecord
type ItemResult = core.ItemResult
type LeakRecord = core.LeakRecord

type JobExecutionMessage = core.JobExecutionMessage
type JobDelivery = core.JobDelivery

const (
	OperationBrowse = core.OperationBrowse
	OperationSearch = core.OperationSearch
	OperationGet    = core.OperationGet
)

var (
	WithLogger          = core.WithLogger
	WithLoggerProvider  = core.WithLoggerProvider
	WithMetricsRecorder = core.WithMetricsRecorder
	WithErrorMapper     = core.WithErrorMapper
	WithConfigProvider  = core.WithConfigProvider
	WithOptionsResolver = core.WithOptionsResolver
	WithLeakAPI         = core.WithLeakAPI
	WithTokenProvider   = core.WithTokenProvider
)

var (
	IsAuthenticationError = core.IsAuthenticationError
	IsValidationError     = core.IsValidationError
	IsAPIError            = core.IsAPIError
	IsEmptyResponseError  = core.IsEmptyResponseError
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func ContinueOnFail(enabled bool) ExecuteOptions {
	return core.ContinueOnFail(enabled)
}

// NewNode builds a node around an already configured leak API client. Most
// callers want Setup instead.
func NewNode(cfg Config, opts ...Option) (*Node, error) {
	return core.NewNode(cfg, opts...)
}
