package pipeline

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/firstwinagency/firstwinagency-firstwin-panel/pkg/config"
	"github.com/firstwinagency/firstwinagency-firstwin-panel/pkg/domain"
	"github.com/firstwinagency/firstwinagency-firstwin-panel/pkg/generator"
	"github.com/firstwinagency/firstwinagency-firstwin-panel/pkg/utils"
)

// ReferenceResolver は参照画像を解決します。
type ReferenceResolver interface {
	ResolveAll(ctx context.Context, refs []domain.ReferenceInput, limit int) ([]domain.ResolvedReference, error)
}

// CanvasNormalizer は画像を正方形キャンバスに正規化します。
type CanvasNormalizer interface {
	ToSquareCanvas(data []byte, targetSize int, fit domain.FitMode, background color.Color) (*domain.Canvas, error)
}

// OutputEncoder は画像を指定サイズとフォーマットで再エンコードします。
type OutputEncoder interface {
	EncodeExact(data []byte, width, height int, format domain.Format) (*domain.OutputImage, error)
}

// Options は Orchestrator の設定値です。
type Options struct {
	Prompts     domain.PromptDefaults
	DefaultTier domain.Tier
	// ReferenceCanvasSize が 0 より大きい場合、参照画像を送信前に正方形へ正規化します。
	ReferenceCanvasSize int
	// CanvasSize と CanvasFit は ModeSquare で未指定の場合の既定値です。
	CanvasSize int
	CanvasFit  domain.FitMode
	Logger     *slog.Logger
}

// Result は 1 回のパイプライン実行結果です。
// Canvases は ModeSquare、Outputs は ModeExact の場合にだけ埋まります。いずれも出力順です。
type Result struct {
	RunID      string
	PromptUsed string
	Tier       domain.Tier
	Generated  []domain.GeneratedImage
	Canvases   []domain.Canvas
	Outputs    []domain.OutputImage
}

// Orchestrator は 1 回の生成リクエストを、参照解決・生成・正規化・エンコードまで通しで実行します。
type Orchestrator struct {
	registry   *config.TierRegistry
	resolver   ReferenceResolver
	dispatcher generator.ImageDispatcher
	normalizer CanvasNormalizer
	encoder    OutputEncoder
	opts       Options
	logger     *slog.Logger
}

// NewOrchestrator は依存関係を注入して Orchestrator を初期化します。
func NewOrchestrator(
	registry *config.TierRegistry,
	resolver ReferenceResolver,
	dispatcher generator.ImageDispatcher,
	normalizer CanvasNormalizer,
	encoder OutputEncoder,
	opts Options,
) (*Orchestrator, error) {
	if registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("resolver is required")
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	if normalizer == nil {
		return nil, fmt.Errorf("normalizer is required")
	}
	if encoder == nil {
		return nil, fmt.Errorf("encoder is required")
	}
	if opts.DefaultTier == "" {
		opts.DefaultTier = domain.TierStandard
	}
	if opts.CanvasFit == "" {
		opts.CanvasFit = domain.FitContain
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		registry:   registry,
		resolver:   resolver,
		dispatcher: dispatcher,
		normalizer: normalizer,
		encoder:    encoder,
		opts:       opts,
		logger:     logger,
	}, nil
}

// Generate はリクエストを検証し、OutputCount 回の独立した生成を並行に実行します。
// いずれか 1 件でも失敗した場合は残りをキャンセルし、バッチ全体を失敗として返します。
func (o *Orchestrator) Generate(ctx context.Context, req domain.GenerationRequest) (*Result, error) {
	runID := uuid.NewString()
	logger := o.logger.With("run_id", runID)
	start := time.Now()

	req = o.applyDefaults(req)
	prompt := req.ResolvePrompt(o.opts.Prompts)
	if err := req.Validate(prompt); err != nil {
		return nil, err
	}

	def, err := o.registry.Lookup(req.Tier)
	if err != nil {
		return nil, &domain.InvalidRequestError{Field: "tier", Reason: err.Error()}
	}

	logger.InfoContext(ctx, "画像生成を開始します",
		"tier", req.Tier, "model", def.Model, "output_count", req.OutputCount,
		"ref_count", len(req.References), "mode", req.Delivery.Mode)

	refs, err := o.resolver.ResolveAll(ctx, req.References, def.MaxReferences)
	if err != nil {
		return nil, err
	}
	refs = o.normalizeReferences(ctx, logger, refs)

	res := &Result{
		RunID:      runID,
		PromptUsed: prompt,
		Tier:       req.Tier,
		Generated:  make([]domain.GeneratedImage, req.OutputCount),
	}
	switch req.Delivery.Mode {
	case domain.ModeSquare:
		res.Canvases = make([]domain.Canvas, req.OutputCount)
	case domain.ModeExact:
		res.Outputs = make([]domain.OutputImage, req.OutputCount)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(req.OutputCount)
	for i := range req.OutputCount {
		g.Go(func() error {
			if err := o.runTrial(gctx, req, prompt, refs, i, res); err != nil {
				return &domain.OutputError{Index: i, Err: err}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.ErrorContext(ctx, "画像生成に失敗しました", "error", err, "elapsed", time.Since(start))
		return nil, err
	}

	logger.InfoContext(ctx, "画像生成が完了しました", "outputs", req.OutputCount, "elapsed", time.Since(start))
	return res, nil
}

// runTrial は 1 枚分の生成と後処理を行い、結果を res の index 番目に書き込みます。
func (o *Orchestrator) runTrial(ctx context.Context, req domain.GenerationRequest, prompt string, refs []domain.ResolvedReference, index int, res *Result) error {
	img, err := o.dispatcher.GenerateWithFallback(ctx, generator.GenerateInput{
		Prompt:      prompt,
		References:  refs,
		Tier:        req.Tier,
		Seed:        utils.OffsetSeed(req.Seed, index),
		AspectRatio: req.AspectRatio,
	})
	if err != nil {
		return err
	}
	res.Generated[index] = *img

	d := req.Delivery
	switch d.Mode {
	case domain.ModeSquare:
		c, err := o.normalizer.ToSquareCanvas(img.Data, d.TargetSize, d.FitMode, d.Background)
		if err != nil {
			return err
		}
		res.Canvases[index] = *c
	case domain.ModeExact:
		out, err := o.encoder.EncodeExact(img.Data, d.Width, d.Height, d.Format)
		if err != nil {
			return err
		}
		res.Outputs[index] = *out
	}
	return nil
}

func (o *Orchestrator) applyDefaults(req domain.GenerationRequest) domain.GenerationRequest {
	req.OutputCount = domain.ClampOutputCount(req.OutputCount)
	if req.Tier == "" {
		req.Tier = o.opts.DefaultTier
	}
	if req.Delivery.Mode == domain.ModeSquare {
		if req.Delivery.TargetSize == 0 {
			req.Delivery.TargetSize = o.opts.CanvasSize
		}
		if req.Delivery.FitMode == "" {
			req.Delivery.FitMode = o.opts.CanvasFit
		}
	}
	return req
}

// normalizeReferences は参照画像を送信前に正方形キャンバスへ揃えます。
// デコードできない参照は元のバイト列のまま送ります。
func (o *Orchestrator) normalizeReferences(ctx context.Context, logger *slog.Logger, refs []domain.ResolvedReference) []domain.ResolvedReference {
	size := o.opts.ReferenceCanvasSize
	if size <= 0 {
		return refs
	}
	out := make([]domain.ResolvedReference, len(refs))
	for i, ref := range refs {
		c, err := o.normalizer.ToSquareCanvas(ref.Data, size, domain.FitContain, nil)
		if err != nil {
			logger.WarnContext(ctx, "参照画像を正規化できなかったため元データを送信します", "source", ref.Source, "error", err)
			out[i] = ref
			continue
		}
		out[i] = domain.ResolvedReference{Data: c.Data, MimeType: c.MimeType, Source: ref.Source}
	}
	return out
}
