package generator

import (
	"github.com/firstwinagency/firstwinagency-firstwin-panel/pkg/domain"
)

// ResponseModalities は画像生成時に要求する応答の種類です。
var ResponseModalities = []string{"TEXT", "IMAGE"}

// GenerateInput は 1 回の生成試行に渡す入力です。
type GenerateInput struct {
	Prompt      string
	References  []domain.ResolvedReference
	Tier        domain.Tier
	Seed        *int64
	AspectRatio string
}

// imageOutput は応答の解析結果
type imageOutput struct {
	Data     []byte
	MimeType string
}
