package core

import (
	"context"
	"sync"
)

type stubLogger struct{}

func (stubLogger) Trace(string, ...any) {}
func (stubLogger) Debug(string, ...any) {}
func (stubLogger) Info(string, ...any)  {}
func (stubLogger) Warn(string, ...any)  {}
func (stubLogger) Error(string, ...any) {}
func (stubLogger) Fatal(string, ...any) {}
func (s stubLogger) WithContext(context.Context) Logger {
	return s
}

type stubLoggerProvider struct {
	logger Logger
}

func (p stubLoggerProvider) GetLogger(string) Logger {
	return p.logger
}

type fetchCall struct {
	operation Operation
	path      string
	query     map[string]string
}

// fakeLeakAPI replays canned bodies keyed by request path.
type fakeLeakAPI struct {
	mu        sync.Mutex
	responses map[string][]byte
	errs      map[string]error
	stats     []byte
	statsErr  error
	calls     []fetchCall
}

func (f *fakeLeakAPI) Fetch(_ context.Context, req OperationRequest) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	query := map[string]string{}
	for key := range req.QueryParams() {
		query[key] = req.QueryParams().Get(key)
	}
	f.calls = append(f.calls, fetchCall{operation: req.Operation(), path: req.Path(), query: query})
	if err, ok := f.errs[req.Path()]; ok {
		return nil, err
	}
	return f.responses[req.Path()], nil
}

func (f *fakeLeakAPI) Stats(context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fetchCall{path: PathStats})
	return f.stats, f.statsErr
}

func (f *fakeLeakAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type stubTokenProvider struct {
	token       TokenData
	err         error
	calls       int
	invalidated int
}

func (p *stubTokenProvider) Token(context.Context) (TokenData, error) {
	p.calls++
	return p.token, p.err
}

func (p *stubTokenProvider) Invalidate(context.Context) error {
	p.invalidated++
	return nil
}

func intPtr(value int) *int {
	return &value
}

func boolPtr(value bool) *bool {
	return &value
}
