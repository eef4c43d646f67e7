package domain

import (
	"fmt"
	"strings"
)

// MaxDimension は出力画像の一辺として受け付ける最大ピクセル数です。
const MaxDimension = 8192

// PromptDefaults はプロンプトが空の場合の補完元です。
type PromptDefaults struct {
	Presets map[string]string
	Default string
}

// ClampOutputCount は出力枚数を [MinOutputCount, MaxOutputCount] に丸めます。
func ClampOutputCount(n int) int {
	if n < MinOutputCount {
		return MinOutputCount
	}
	if n > MaxOutputCount {
		return MaxOutputCount
	}
	return n
}

// ResolvePrompt は上書きプロンプト、プロンプト本文、プリセット、デフォルトの順で
// 最初に空でないものを返します。すべて空なら空文字を返します。
func (r GenerationRequest) ResolvePrompt(d PromptDefaults) string {
	if p := strings.TrimSpace(r.OverridePromptText); p != "" {
		return p
	}
	if p := strings.TrimSpace(r.PromptText); p != "" {
		return p
	}
	if r.PresetID != "" {
		preset, ok := d.Presets[r.PresetID]
		if !ok {
			// viper はマップのキーを小文字化する
			preset = d.Presets[strings.ToLower(r.PresetID)]
		}
		if p := strings.TrimSpace(preset); p != "" {
			return p
		}
	}
	return strings.TrimSpace(d.Default)
}

// Validate はバックエンドを呼ぶ前にリクエストの整合性を検証します。
// 出力枚数は事前に ClampOutputCount 済みであることを前提にします。
func (r GenerationRequest) Validate(prompt string) error {
	if prompt == "" {
		return &InvalidRequestError{Field: "promptText", Reason: "prompt is empty after all fallbacks"}
	}
	if len(r.References) == 0 {
		return &InvalidRequestError{Field: "references", Reason: "at least one reference is required"}
	}
	for i, ref := range r.References {
		if strings.TrimSpace(string(ref)) == "" {
			return &InvalidRequestError{Field: fmt.Sprintf("references[%d]", i), Reason: "empty reference"}
		}
	}
	if !r.Tier.Valid() {
		return &InvalidRequestError{Field: "tier", Reason: fmt.Sprintf("unknown tier %q", r.Tier)}
	}
	if r.OutputCount < MinOutputCount || r.OutputCount > MaxOutputCount {
		return &InvalidRequestError{Field: "outputCount", Reason: fmt.Sprintf("must be between %d and %d", MinOutputCount, MaxOutputCount)}
	}
	return r.Delivery.validate()
}

func (d Delivery) validate() error {
	switch d.Mode {
	case ModeRaw:
		return nil
	case ModeSquare:
		if d.TargetSize < 1 || d.TargetSize > MaxDimension {
			return &InvalidRequestError{Field: "targetSize", Reason: fmt.Sprintf("must be between 1 and %d", MaxDimension)}
		}
		if _, err := ParseFitMode(string(d.FitMode)); err != nil {
			return &InvalidRequestError{Field: "fitMode", Reason: err.Error()}
		}
		return nil
	case ModeExact:
		if d.Width < 1 || d.Width > MaxDimension {
			return &InvalidRequestError{Field: "targetWidth", Reason: fmt.Sprintf("must be between 1 and %d", MaxDimension)}
		}
		if d.Height < 1 || d.Height > MaxDimension {
			return &InvalidRequestError{Field: "targetHeight", Reason: fmt.Sprintf("must be between 1 and %d", MaxDimension)}
		}
		if _, err := ParseFormat(string(d.Format)); err != nil {
			return &InvalidRequestError{Field: "outputFormat", Reason: err.Error()}
		}
		return nil
	}
	return &InvalidRequestError{Field: "delivery", Reason: fmt.Sprintf("unknown mode %s", d.Mode)}
}
