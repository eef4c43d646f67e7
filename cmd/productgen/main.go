package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/firstwinagency/firstwinagency-firstwin-panel/pkg/config"
	"github.com/firstwinagency/firstwinagency-firstwin-panel/pkg/domain"
	"github.com/firstwinagency/firstwinagency-firstwin-panel/pkg/generator"
	"github.com/firstwinagency/firstwinagency-firstwin-panel/pkg/imgutil"
	"github.com/firstwinagency/firstwinagency-firstwin-panel/pkg/pipeline"
	"github.com/firstwinagency/firstwinagency-firstwin-panel/pkg/reference"
)

// refList は -ref を複数回指定できるようにするための flag.Value です。
type refList []domain.ReferenceInput

func (r *refList) String() string {
	parts := make([]string, len(*r))
	for i, ref := range *r {
		parts[i] = string(ref)
	}
	return strings.Join(parts, ",")
}

func (r *refList) Set(v string) error {
	*r = append(*r, domain.ReferenceInput(v))
	return nil
}

type cliFlags struct {
	configPath string
	outDir     string
	prompt     string
	override   string
	preset     string
	refs       refList
	tier       string
	count      int
	seed       int64
	aspect     string
	mode       string
	size       int
	fit        string
	background string
	width      int
	height     int
	format     string
}

func parseFlags(args []string) (*cliFlags, error) {
	f := &cliFlags{}
	fs := flag.NewFlagSet("productgen", flag.ContinueOnError)
	fs.StringVar(&f.configPath, "c", "", "Path to config file (YAML)")
	fs.StringVar(&f.outDir, "o", "out", "Output directory")
	fs.StringVar(&f.prompt, "p", "", "Prompt text")
	fs.StringVar(&f.override, "override", "", "Override prompt (takes precedence over -p)")
	fs.StringVar(&f.preset, "preset", "", "Preset ID used when no prompt is given")
	fs.Var(&f.refs, "ref", "Reference image: data URI, http(s) URL or gs:// (repeatable)")
	fs.StringVar(&f.tier, "tier", "", "Backend tier: standard or pro")
	fs.IntVar(&f.count, "n", 1, "Number of outputs (1-6)")
	fs.Int64Var(&f.seed, "seed", -1, "Seed (negative for random)")
	fs.StringVar(&f.aspect, "aspect", "", "Aspect ratio hint, e.g. 1:1 or 16:9")
	fs.StringVar(&f.mode, "mode", "square", "Delivery mode: raw, square or exact")
	fs.IntVar(&f.size, "size", 0, "Square canvas size (default: canvas.size)")
	fs.StringVar(&f.fit, "fit", "", "Square fit mode: contain, cover or fill")
	fs.StringVar(&f.background, "bg", "", "Square padding color, e.g. #ffffff")
	fs.IntVar(&f.width, "width", 0, "Exact output width")
	fs.IntVar(&f.height, "height", 0, "Exact output height")
	fs.StringVar(&f.format, "format", "jpeg", "Exact output format: jpeg, png, webp or bmp")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

func main() {
	_ = godotenv.Load()

	flags, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, flags, logger); err != nil {
		logger.Error("実行に失敗しました", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, flags *cliFlags, logger *slog.Logger) error {
	req, err := buildRequest(flags)
	if err != nil {
		return err
	}

	orch, err := buildOrchestrator(ctx, cfg, logger)
	if err != nil {
		return err
	}

	res, err := orch.Generate(ctx, req)
	if err != nil {
		return err
	}
	return writeResult(flags.outDir, res, logger)
}

func buildOrchestrator(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pipeline.Orchestrator, error) {
	registry, err := cfg.TierRegistry()
	if err != nil {
		return nil, err
	}

	backends, err := generator.NewBackends(ctx, cfg.Gemini.APIKey, cfg.Gemini.Timeout, registry.APIVersions())
	if err != nil {
		return nil, err
	}
	dispatcher, err := generator.NewDispatcher(registry, backends, logger)
	if err != nil {
		return nil, err
	}

	httpClient := reference.NewHTTPClient(cfg.Reference.FetchTimeout, cfg.Reference.AllowPrivateNetworks)
	resolver, err := reference.NewResolver(httpClient, reference.Options{
		FetchTimeout: cfg.Reference.FetchTimeout,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}

	bg, err := domain.ParseHexColor(cfg.Canvas.Background)
	if err != nil {
		return nil, err
	}
	policy, err := domain.ParseUnavailablePolicy(cfg.Codecs.UnavailablePolicy)
	if err != nil {
		return nil, err
	}
	codecs, err := imgutil.NewCodecRegistry(imgutil.CodecOptions{
		WebP:        cfg.Codecs.WebP,
		BMP:         cfg.Codecs.BMP,
		WebPQuality: cfg.Output.WebPQuality,
		Policy:      policy,
	})
	if err != nil {
		return nil, err
	}
	encoder, err := imgutil.NewEncoder(codecs, logger)
	if err != nil {
		return nil, err
	}
	fit, err := domain.ParseFitMode(cfg.Canvas.Fit)
	if err != nil {
		return nil, err
	}

	return pipeline.NewOrchestrator(registry, resolver, dispatcher, imgutil.NewNormalizer(bg), encoder, pipeline.Options{
		Prompts:             cfg.PromptDefaults(),
		DefaultTier:         cfg.DefaultTierValue(),
		ReferenceCanvasSize: cfg.Reference.CanvasSize,
		CanvasSize:          cfg.Canvas.Size,
		CanvasFit:           fit,
		Logger:              logger,
	})
}

func buildRequest(f *cliFlags) (domain.GenerationRequest, error) {
	req := domain.GenerationRequest{
		PromptText:         f.prompt,
		OverridePromptText: f.override,
		PresetID:           f.preset,
		References:         f.refs,
		OutputCount:        f.count,
		AspectRatio:        f.aspect,
	}
	if f.tier != "" {
		tier, err := domain.ParseTier(f.tier)
		if err != nil {
			return req, err
		}
		req.Tier = tier
	}
	if f.seed >= 0 {
		seed := f.seed
		req.Seed = &seed
	}

	switch strings.ToLower(f.mode) {
	case "raw":
		req.Delivery.Mode = domain.ModeRaw
	case "square", "":
		req.Delivery.Mode = domain.ModeSquare
		req.Delivery.TargetSize = f.size
		if f.fit != "" {
			fit, err := domain.ParseFitMode(f.fit)
			if err != nil {
				return req, err
			}
			req.Delivery.FitMode = fit
		}
		if f.background != "" {
			bg, err := domain.ParseHexColor(f.background)
			if err != nil {
				return req, err
			}
			req.Delivery.Background = bg
		}
	case "exact":
		format, err := domain.ParseFormat(f.format)
		if err != nil {
			return req, err
		}
		req.Delivery = domain.Delivery{Mode: domain.ModeExact, Width: f.width, Height: f.height, Format: format}
	default:
		return req, fmt.Errorf("unknown mode: %s", f.mode)
	}
	return req, nil
}

// writeResult は配信モードに応じた画像を outDir に書き出します。
func writeResult(outDir string, res *pipeline.Result, logger *slog.Logger) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("出力ディレクトリの作成に失敗しました: %w", err)
	}

	type file struct {
		data     []byte
		mimeType string
	}
	var files []file
	switch {
	case res.Outputs != nil:
		for _, o := range res.Outputs {
			files = append(files, file{o.Data, o.MimeType})
		}
	case res.Canvases != nil:
		for _, c := range res.Canvases {
			files = append(files, file{c.Data, c.MimeType})
		}
	default:
		for _, g := range res.Generated {
			files = append(files, file{g.Data, g.MimeType})
		}
	}

	for i, f := range files {
		path := filepath.Join(outDir, fmt.Sprintf("%s-%d%s", res.RunID, i+1, extensionFor(f.mimeType)))
		if err := os.WriteFile(path, f.data, 0o644); err != nil {
			return fmt.Errorf("画像の書き込みに失敗しました (%s): %w", path, err)
		}
		logger.Info("画像を保存しました", "path", path, "mime", f.mimeType, "bytes", len(f.data))
	}
	return nil
}

func extensionFor(mimeType string) string {
	for _, f := range []domain.Format{domain.FormatJPEG, domain.FormatPNG, domain.FormatWEBP, domain.FormatBMP} {
		if f.MimeType() == mimeType {
			return f.Extension()
		}
	}
	return ".bin"
}
