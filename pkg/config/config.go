package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/firstwinagency/firstwinagency-firstwin-panel/pkg/domain"
)

// EnvPrefix は設定キーを環境変数で上書きするときの接頭辞です。
// 例: gemini.api_key → PRODUCTGEN_GEMINI_API_KEY
const EnvPrefix = "PRODUCTGEN"

// DefaultPrompt はプロンプトがどこからも得られなかった場合の既定値です。
const DefaultPrompt = "Generate one high-quality e-commerce product image using the references."

// Config はプロセス起動時に一度だけ読み込まれ、以降は読み取り専用で共有される設定です。
type Config struct {
	Gemini        GeminiConfig          `mapstructure:"gemini"`
	Tiers         map[string]TierConfig `mapstructure:"tiers"`
	DefaultTier   string                `mapstructure:"default_tier"`
	DefaultPrompt string                `mapstructure:"default_prompt"`
	Presets       map[string]string     `mapstructure:"presets"`
	Reference     ReferenceConfig       `mapstructure:"reference"`
	Canvas        CanvasConfig          `mapstructure:"canvas"`
	Output        OutputConfig          `mapstructure:"output"`
	Codecs        CodecsConfig          `mapstructure:"codecs"`
	Log           LogConfig             `mapstructure:"log"`
}

type GeminiConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// TierConfig は YAML 上のティア定義です。
type TierConfig struct {
	Model         string `mapstructure:"model"`
	APIVersion    string `mapstructure:"api_version"`
	MaxReferences int    `mapstructure:"max_references"`
	Fallback      string `mapstructure:"fallback"`
}

type ReferenceConfig struct {
	FetchTimeout         time.Duration `mapstructure:"fetch_timeout"`
	AllowPrivateNetworks bool          `mapstructure:"allow_private_networks"`
	// CanvasSize が 0 より大きい場合、参照画像を送信前にこのサイズの正方形へ正規化します。
	CanvasSize int `mapstructure:"canvas_size"`
}

type CanvasConfig struct {
	Size       int    `mapstructure:"size"`
	Background string `mapstructure:"background"`
	Fit        string `mapstructure:"fit"`
}

type OutputConfig struct {
	WebPQuality int `mapstructure:"webp_quality"`
}

type CodecsConfig struct {
	WebP              bool   `mapstructure:"webp"`
	BMP               bool   `mapstructure:"bmp"`
	UnavailablePolicy string `mapstructure:"unavailable_policy"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.timeout", 120*time.Second)

	v.SetDefault("tiers.standard.model", "gemini-2.5-flash-image")
	v.SetDefault("tiers.standard.api_version", "v1beta")
	v.SetDefault("tiers.standard.max_references", 5)
	v.SetDefault("tiers.standard.fallback", "")
	v.SetDefault("tiers.pro.model", "gemini-3-pro-image-preview")
	v.SetDefault("tiers.pro.api_version", "v1beta")
	v.SetDefault("tiers.pro.max_references", 5)
	v.SetDefault("tiers.pro.fallback", string(domain.TierStandard))

	v.SetDefault("default_tier", string(domain.TierPro))
	v.SetDefault("default_prompt", DefaultPrompt)
	v.SetDefault("presets", map[string]string{})

	v.SetDefault("reference.fetch_timeout", 30*time.Second)
	v.SetDefault("reference.allow_private_networks", false)
	v.SetDefault("reference.canvas_size", 1024)

	v.SetDefault("canvas.size", 1024)
	v.SetDefault("canvas.background", "#ffffff")
	v.SetDefault("canvas.fit", string(domain.FitContain))

	v.SetDefault("output.webp_quality", 80)

	v.SetDefault("codecs.webp", true)
	v.SetDefault("codecs.bmp", true)
	v.SetDefault("codecs.unavailable_policy", string(domain.PolicyFail))

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load は YAML ファイルと環境変数から設定を読み込みます。
// path が空の場合は既定値と環境変数のみを使います。
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("設定ファイルの読み込みに失敗しました (%s): %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("設定のデコードに失敗しました: %w", err)
	}

	// 設定ファイル優先。無ければ Gemini SDK と同じ環境変数を参照する
	if cfg.Gemini.APIKey == "" {
		for _, key := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
			if val := strings.TrimSpace(os.Getenv(key)); val != "" {
				cfg.Gemini.APIKey = val
				break
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate は設定値の整合性を検証します。
func (c *Config) Validate() error {
	if _, err := c.TierRegistry(); err != nil {
		return err
	}
	if _, err := domain.ParseTier(c.DefaultTier); err != nil {
		return fmt.Errorf("default_tier: %w", err)
	}
	if c.Reference.FetchTimeout <= 0 {
		return fmt.Errorf("reference.fetch_timeout must be positive")
	}
	if c.Reference.CanvasSize < 0 || c.Reference.CanvasSize > domain.MaxDimension {
		return fmt.Errorf("reference.canvas_size must be between 0 and %d", domain.MaxDimension)
	}
	if c.Canvas.Size < 1 || c.Canvas.Size > domain.MaxDimension {
		return fmt.Errorf("canvas.size must be between 1 and %d", domain.MaxDimension)
	}
	if _, err := domain.ParseHexColor(c.Canvas.Background); err != nil {
		return fmt.Errorf("canvas.background: %w", err)
	}
	if _, err := domain.ParseFitMode(c.Canvas.Fit); err != nil {
		return fmt.Errorf("canvas.fit: %w", err)
	}
	if c.Output.WebPQuality < 1 || c.Output.WebPQuality > 100 {
		return fmt.Errorf("output.webp_quality must be between 1 and 100")
	}
	if _, err := domain.ParseUnavailablePolicy(c.Codecs.UnavailablePolicy); err != nil {
		return fmt.Errorf("codecs.unavailable_policy: %w", err)
	}
	return nil
}

// PromptDefaults はプロンプト補完に使う値をドメイン型で返します。
func (c *Config) PromptDefaults() domain.PromptDefaults {
	return domain.PromptDefaults{Presets: c.Presets, Default: c.DefaultPrompt}
}

// DefaultTierValue は default_tier をティアに変換して返します。Validate 済みが前提です。
func (c *Config) DefaultTierValue() domain.Tier {
	t, err := domain.ParseTier(c.DefaultTier)
	if err != nil {
		return domain.TierStandard
	}
	return t
}
