package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Tier は生成バックエンドの品質/コストの段階です。
type Tier string

const (
	TierStandard Tier = "standard"
	TierPro      Tier = "pro"
)

// Tiers は既知のティアを定義順に返します。
func Tiers() []Tier {
	return []Tier{TierStandard, TierPro}
}

// ParseTier は文字列をティアに変換します。
// 旧来のエンジン名 v2/v3 はここでのみ受け付けます。
func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "standard", "v2":
		return TierStandard, nil
	case "pro", "v3":
		return TierPro, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTier, s)
}

func (t Tier) Valid() bool {
	return slices.Contains(Tiers(), t)
}

func (t Tier) String() string { return string(t) }

// DeliveryMode は生成画像の後処理の種類です。
type DeliveryMode int

const (
	// ModeRaw はバックエンドの出力をそのまま返します。
	ModeRaw DeliveryMode = iota
	// ModeSquare はクロップなしの正方形キャンバスに正規化します。
	ModeSquare
	// ModeExact は指定サイズに cover でクロップして再エンコードします。
	ModeExact
)

func (m DeliveryMode) String() string {
	switch m {
	case ModeRaw:
		return "raw"
	case ModeSquare:
		return "square"
	case ModeExact:
		return "exact"
	}
	return fmt.Sprintf("DeliveryMode(%d)", int(m))
}

// FitMode は正方形キャンバスへの収め方です。
type FitMode string

const (
	FitContain FitMode = "contain"
	FitCover   FitMode = "cover"
	FitFill    FitMode = "fill"
)

// ParseFitMode は文字列を FitMode に変換します。空文字は contain です。
func ParseFitMode(s string) (FitMode, error) {
	switch FitMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", FitContain:
		return FitContain, nil
	case FitCover:
		return FitCover, nil
	case FitFill:
		return FitFill, nil
	}
	return "", fmt.Errorf("unknown fit mode: %q", s)
}

// Format は出力画像のエンコード形式です。
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatWEBP Format = "webp"
	FormatBMP  Format = "bmp"
)

// ParseFormat は文字列を Format に変換します。jpg は jpeg として扱います。
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	case "webp":
		return FormatWEBP, nil
	case "bmp":
		return FormatBMP, nil
	}
	return "", &UnsupportedFormatError{Format: Format(s)}
}

// MimeType はフォーマットに対応する MIME タイプを返します。
func (f Format) MimeType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatPNG:
		return "image/png"
	case FormatWEBP:
		return "image/webp"
	case FormatBMP:
		return "image/bmp"
	}
	return "application/octet-stream"
}

// Extension はファイル保存用の拡張子を返します。
func (f Format) Extension() string {
	if f == FormatJPEG {
		return ".jpg"
	}
	return "." + string(f)
}

// UnavailablePolicy はコーデックが登録されていない形式を要求されたときの振る舞いです。
type UnavailablePolicy string

const (
	// PolicyFail は UnsupportedFormatError を返します。
	PolicyFail UnavailablePolicy = "fail"
	// PolicySubstitute は PNG のバイト列を要求された MIME タイプのラベルで返します。
	PolicySubstitute UnavailablePolicy = "substitute"
)

// ParseUnavailablePolicy は設定値をポリシーに変換します。空文字は fail です。
func ParseUnavailablePolicy(s string) (UnavailablePolicy, error) {
	switch UnavailablePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyFail:
		return PolicyFail, nil
	case PolicySubstitute:
		return PolicySubstitute, nil
	}
	return "", fmt.Errorf("unknown unavailable policy: %q", s)
}
