package generator

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/firstwinagency/firstwinagency-firstwin-panel/pkg/config"
	"github.com/firstwinagency/firstwinagency-firstwin-panel/pkg/domain"
	"github.com/firstwinagency/firstwinagency-firstwin-panel/pkg/utils"
)

// Dispatcher はティアを具体的なモデルへ解決し、生成リクエストを送信します。
// 呼び出し側が扱うのは domain.Tier だけで、モデル名や API バージョンはレジストリに閉じています。
type Dispatcher struct {
	registry *config.TierRegistry
	backends Backends
	logger   *slog.Logger
}

// NewDispatcher は依存関係を注入して Dispatcher を初期化します。
func NewDispatcher(registry *config.TierRegistry, backends Backends, logger *slog.Logger) (*Dispatcher, error) {
	if registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if len(backends) == 0 {
		return nil, fmt.Errorf("backends are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{registry: registry, backends: backends, logger: logger}, nil
}

// Generate は指定ティアのエンドポイントを 1 回だけ呼び出します。リトライはしません。
func (d *Dispatcher) Generate(ctx context.Context, in GenerateInput) (*domain.GeneratedImage, error) {
	def, err := d.registry.Lookup(in.Tier)
	if err != nil {
		return nil, err
	}
	backend, ok := d.backends[def.APIVersion]
	if !ok {
		return nil, &domain.BackendCallError{
			Tier:  in.Tier,
			Model: def.Model,
			Err:   fmt.Errorf("API バージョン %s のクライアントがありません", def.APIVersion),
		}
	}

	refs := in.References
	if len(refs) > def.MaxReferences {
		refs = refs[:def.MaxReferences]
	}
	contents := []*genai.Content{genai.NewContentFromParts(buildParts(in.Prompt, refs), genai.RoleUser)}

	d.logger.DebugContext(ctx, "Gemini生成リクエスト送信", "tier", in.Tier, "model", def.Model, "ref_count", len(refs))

	seed := utils.SeedToPtrInt32(in.Seed)
	resp, err := backend.GenerateContent(ctx, def.Model, contents, buildConfig(seed, in.AspectRatio))
	if err != nil {
		return nil, &domain.BackendCallError{Tier: in.Tier, Model: def.Model, Err: err}
	}

	out, finishReason := parseToResponse(resp)
	if out == nil {
		return nil, &domain.NoImageReturnedError{Tier: in.Tier, Model: def.Model, FinishReason: finishReason}
	}

	return &domain.GeneratedImage{
		Data:     out.Data,
		MimeType: out.MimeType,
		Tier:     in.Tier,
		Model:    def.Model,
		UsedSeed: utils.DereferenceSeed(seed),
	}, nil
}

// GenerateWithFallback はプライマリティアを試し、失敗した場合は構成済みのフォールバックティアを 1 回だけ試します。
// 両方失敗した場合は両方のメッセージを含む DispatchError を返します。
func (d *Dispatcher) GenerateWithFallback(ctx context.Context, in GenerateInput) (*domain.GeneratedImage, error) {
	img, primaryErr := d.Generate(ctx, in)
	if primaryErr == nil {
		return img, nil
	}

	fallback, ok := d.registry.FallbackFor(in.Tier)
	if !ok {
		return nil, &domain.DispatchError{Primary: primaryErr}
	}
	if ctx.Err() != nil {
		return nil, &domain.DispatchError{Primary: primaryErr}
	}

	d.logger.WarnContext(ctx, "プライマリティアでの生成に失敗したため、フォールバックします",
		"tier", in.Tier, "fallback", fallback, "error", primaryErr)

	fbIn := in
	fbIn.Tier = fallback
	img, fallbackErr := d.Generate(ctx, fbIn)
	if fallbackErr == nil {
		return img, nil
	}
	return nil, &domain.DispatchError{Primary: primaryErr, Fallback: fallbackErr}
}
