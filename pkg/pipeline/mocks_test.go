package pipeline

import (
	"context"
	"sync"

	"github.com/firstwinagency/firstwinagency-firstwin-panel/pkg/domain"
	"github.com/firstwinagency/firstwinagency-firstwin-panel/pkg/generator"
)

// --- Mocks ---

type mockResolver struct {
	mu        sync.Mutex
	lastLimit int
	resolved  int
	data      []byte
	err       error
}

func (m *mockResolver) ResolveAll(ctx context.Context, refs []domain.ReferenceInput, limit int) ([]domain.ResolvedReference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	if limit > 0 && len(refs) > limit {
		refs = refs[:limit]
	}
	m.resolved = len(refs)
	out := make([]domain.ResolvedReference, len(refs))
	for i, r := range refs {
		out[i] = domain.ResolvedReference{Data: m.data, MimeType: "image/png", Source: string(r)}
	}
	return out, nil
}

type mockDispatcher struct {
	mu           sync.Mutex
	inputs       []generator.GenerateInput
	generateFunc func(ctx context.Context, in generator.GenerateInput) (*domain.GeneratedImage, error)
}

func (m *mockDispatcher) Generate(ctx context.Context, in generator.GenerateInput) (*domain.GeneratedImage, error) {
	return m.GenerateWithFallback(ctx, in)
}

func (m *mockDispatcher) GenerateWithFallback(ctx context.Context, in generator.GenerateInput) (*domain.GeneratedImage, error) {
	m.mu.Lock()
	m.inputs = append(m.inputs, in)
	m.mu.Unlock()
	return m.generateFunc(ctx, in)
}

func (m *mockDispatcher) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inputs)
}
