package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type SecretProvider interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
}

type TransportRequest struct {
	Method               string
	URL                  string
	Headers              map[string]string
	Query                map[string]string
	Body                 []byte
	Metadata             map[string]any
	Timeout              time.Duration
	MaxResponseBodyBytes int64
}

type TransportResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Metadata   map[string]any
}

type TransportAdapter interface {
	Kind() string
	Do(ctx context.Context, req TransportRequest) (TransportResponse, error)
}

// Authenticator exchanges operator credentials for a bearer token. It never
// caches.
type Authenticator interface {
	Authenticate(ctx context.Context, credential Credential) (TokenData, error)
}

// TokenProvider hands out a usable token, authenticating only when the
// stored one is missing or stale.
type TokenProvider interface {
	Token(ctx context.Context) (TokenData, error)
	Invalidate(ctx context.Context) error
}

// TokenStore persists tokens by key. Load reports found=false for a missing
// key rather than an error.
type TokenStore interface {
	Load(ctx context.Context, key string) (token TokenData, found bool, err error)
	Save(ctx context.Context, key string, token TokenData) error
	Delete(ctx context.Context, key string) error
}

// LeakAPI issues one GET per request and returns the raw response body.
type LeakAPI interface {
	Fetch(ctx context.Context, req OperationRequest) ([]byte, error)
	Stats(ctx context.Context) ([]byte, error)
}

// JobExecutionMessage is a queued batch of items. Parameters never carry
// credentials.
type JobExecutionMessage struct {
	JobID          string
	ScriptPath     string
	Parameters     map[string]any
	IdempotencyKey string
	DedupPolicy    string
}

// JobEnqueuer accepts a batch and returns the backend dispatch id.
type JobEnqueuer interface {
	Enqueue(ctx context.Context, msg *JobExecutionMessage) (string, error)
}

// JobDelivery is one dequeued batch. A batch is either acked or dead
// lettered; runs are never retried by the queue.
type JobDelivery interface {
	Message() *JobExecutionMessage
	Ack(ctx context.Context) error
	DeadLetter(ctx context.Context, reason string) error
}

type JobDequeuer interface {
	Dequeue(ctx context.Context) (JobDelivery, error)
}

type ItemExecutor interface {
	Execute(ctx context.Context, items []ItemParameters, opts ExecuteOptions) ([]OutputRecord, error)
}

// MapExecutor runs items that arrive as decoded JSON, such as queued batches.
type MapExecutor interface {
	ExecuteMaps(ctx context.Context, items []map[string]any, opts ExecuteOptions) ([]OutputRecord, error)
}
