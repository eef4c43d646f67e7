package generator

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"
)

// Backends は API バージョンごとの生成クライアントです。
// ティアごとに異なる API バージョンを使えるよう、バージョン単位でクライアントを持ちます。
type Backends map[string]ContentGenerator

// NewBackends は API バージョンごとに genai クライアントを生成します。
func NewBackends(ctx context.Context, apiKey string, timeout time.Duration, versions []string) (Backends, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("apiKey is required")
	}
	if len(versions) == 0 {
		return nil, fmt.Errorf("at least one API version is required")
	}

	backends := make(Backends, len(versions))
	for _, v := range versions {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:      apiKey,
			Backend:     genai.BackendGeminiAPI,
			HTTPOptions: genai.HTTPOptions{APIVersion: v},
			HTTPClient:  &http.Client{Timeout: timeout},
		})
		if err != nil {
			return nil, fmt.Errorf("Geminiクライアントの生成に失敗しました (api_version=%s): %w", v, err)
		}
		backends[v] = client.Models
	}
	return backends, nil
}
