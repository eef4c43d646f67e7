package imgutil

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/disintegration/imaging"

	"github.com/firstwinagency/firstwinagency-firstwin-panel/pkg/domain"
)

// Encoder は画像を要求どおりの幅・高さ・形式に再エンコードします。
type Encoder struct {
	codecs *CodecRegistry
	logger *slog.Logger
}

// NewEncoder はコーデック表を注入して Encoder を生成します。
func NewEncoder(codecs *CodecRegistry, logger *slog.Logger) (*Encoder, error) {
	if codecs == nil {
		return nil, fmt.Errorf("codecs is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Encoder{codecs: codecs, logger: logger}, nil
}

// EncodeExact は画像を width×height に cover でリサイズ（中央基準でクロップ）し、
// 指定形式でエンコードします。縦横比が合わない部分は切り落とされます。
func (e *Encoder) EncodeExact(data []byte, width, height int, format domain.Format) (*domain.OutputImage, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("width and height must be positive: %dx%d", width, height)
	}
	format, err := domain.ParseFormat(string(format))
	if err != nil {
		return nil, err
	}

	codec, ok := e.codecs.Lookup(format)
	substituted := false
	if !ok {
		if e.codecs.Policy() != domain.PolicySubstitute {
			return nil, &domain.UnsupportedFormatError{Format: format}
		}
		codec, _ = e.codecs.Lookup(domain.FormatPNG)
		substituted = true
		e.logger.Warn("コーデックが無いため PNG で代替します", "requested_format", format)
	}

	src, err := Decode(data)
	if err != nil {
		return nil, &domain.ImageDecodeError{Stage: "encode", Err: err}
	}
	out := imaging.Fill(src, width, height, imaging.Center, imaging.Lanczos)

	buf := new(bytes.Buffer)
	if err := codec.Encode(buf, out); err != nil {
		return nil, fmt.Errorf("%s へのエンコードに失敗しました: %w", codec.Format(), err)
	}

	return &domain.OutputImage{
		Data:        buf.Bytes(),
		MimeType:    format.MimeType(),
		Width:       width,
		Height:      height,
		Substituted: substituted,
	}, nil
}
