package generator

import (
	"strings"

	"google.golang.org/genai"

	"github.com/firstwinagency/firstwinagency-firstwin-panel/pkg/domain"
)

// buildParts はプロンプトを先頭に、参照画像を入力順に並べます。
func buildParts(prompt string, refs []domain.ResolvedReference) []*genai.Part {
	parts := make([]*genai.Part, 0, len(refs)+1)
	parts = append(parts, genai.NewPartFromText(prompt))
	for _, ref := range refs {
		parts = append(parts, genai.NewPartFromBytes(ref.Data, ref.MimeType))
	}
	return parts
}

func buildConfig(seed *int32, aspectRatio string) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: ResponseModalities,
		Seed:               seed,
	}
	if aspectRatio != "" {
		cfg.ImageConfig = &genai.ImageConfig{AspectRatio: aspectRatio}
	}
	return cfg
}

// parseToResponse は候補とパートを順に走査し、最初の画像パートを返します。
// 画像が無い場合は FinishReason (またはブロック理由) を返します。
func parseToResponse(resp *genai.GenerateContentResponse) (*imageOutput, string) {
	if resp == nil {
		return nil, ""
	}

	finishReason := ""
	for _, cand := range resp.Candidates {
		if cand == nil {
			continue
		}
		if finishReason == "" && cand.FinishReason != "" {
			finishReason = string(cand.FinishReason)
		}
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			if strings.HasPrefix(part.InlineData.MIMEType, "image/") {
				return &imageOutput{Data: part.InlineData.Data, MimeType: part.InlineData.MIMEType}, ""
			}
		}
	}

	if finishReason == "" && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		finishReason = string(resp.PromptFeedback.BlockReason)
	}
	return nil, finishReason
}
