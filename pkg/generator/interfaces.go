package generator

import (
	"context"

	"google.golang.org/genai"

	"github.com/firstwinagency/firstwinagency-firstwin-panel/pkg/domain"
)

// ContentGenerator は 1 回の生成呼び出しを行うためのインターフェースです。
// *genai.Models はこれを満たします。
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// ImageDispatcher はビジネスロジック層が利用する統合窓口です。
type ImageDispatcher interface {
	// Generate は指定ティアに 1 回だけ問い合わせます。
	Generate(ctx context.Context, in GenerateInput) (*domain.GeneratedImage, error)
	// GenerateWithFallback はプライマリが失敗した場合に構成済みのフォールバックティアを 1 回だけ試します。
	GenerateWithFallback(ctx context.Context, in GenerateInput) (*domain.GeneratedImage, error)
}
