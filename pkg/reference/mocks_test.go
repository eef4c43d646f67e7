package reference

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
)

// mockDoer は httpkit.Doer インターフェースのモックです。
type mockDoer struct {
	mu     sync.Mutex
	calls  []string
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockDoer) Do(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req.URL.String())
	m.mu.Unlock()
	if m.doFunc != nil {
		return m.doFunc(req)
	}
	return newResponse(http.StatusOK, nil), nil
}

func (m *mockDoer) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func newResponse(status int, body []byte) *http.Response {
	return &http.Response{
		StatusCode:    status,
		Header:        http.Header{},
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
	}
}

// mockReader は remoteio.InputReader のモックです。
type mockReader struct {
	openFunc func(ctx context.Context, uri string) (io.ReadCloser, error)
}

func (m *mockReader) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	if m.openFunc != nil {
		return m.openFunc(ctx, uri)
	}
	return nil, nil
}

func (m *mockReader) List(ctx context.Context, uri string, fn func(string) error) error {
	return nil
}
