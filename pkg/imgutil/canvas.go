package imgutil

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/firstwinagency/firstwinagency-firstwin-panel/pkg/domain"
)

// CanvasJPEGQuality は正方形キャンバスを JPEG で出力するときの品質です。
const CanvasJPEGQuality = 92

// DefaultBackground は余白の既定色です。
var DefaultBackground = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// Margins は contain で縮小した画像の周囲に足す余白です。
type Margins struct {
	Left, Right, Top, Bottom int
}

// ContainSize は長辺が target になるよう縦横比を保ったサイズを返します。
func ContainSize(srcW, srcH, target int) (int, int) {
	if srcW <= 0 || srcH <= 0 {
		return target, target
	}
	if srcW >= srcH {
		h := int(math.Round(float64(srcH) * float64(target) / float64(srcW)))
		return target, max(h, 1)
	}
	w := int(math.Round(float64(srcW) * float64(target) / float64(srcH)))
	return max(w, 1), target
}

// ContainMargins はリサイズ後の w×h を target の正方形に収めるための余白を返します。
// 余りが奇数のとき、1px 多い側は常に右と下です。
func ContainMargins(w, h, target int) Margins {
	left := (target - w) / 2
	top := (target - h) / 2
	return Margins{
		Left:   left,
		Right:  target - w - left,
		Top:    top,
		Bottom: target - h - top,
	}
}

// Normalizer は画像を固定サイズの正方形キャンバスに載せ替えます。
type Normalizer struct {
	background color.Color
}

// NewNormalizer は余白の既定色を指定して Normalizer を生成します。nil なら白です。
func NewNormalizer(background color.Color) *Normalizer {
	if background == nil {
		background = DefaultBackground
	}
	return &Normalizer{background: background}
}

// ToSquareCanvas は画像を targetSize の正方形に正規化します。
// background が nil の場合は Normalizer の既定色を使います。
func (n *Normalizer) ToSquareCanvas(data []byte, targetSize int, fit domain.FitMode, background color.Color) (*domain.Canvas, error) {
	if targetSize < 1 {
		return nil, fmt.Errorf("targetSize must be positive: %d", targetSize)
	}
	if background == nil {
		background = n.background
	}

	src, err := Decode(data)
	if err != nil {
		return nil, &domain.ImageDecodeError{Stage: "canvas", Err: err}
	}
	alpha := HasAlpha(src)

	b := src.Bounds()
	var out image.Image
	switch {
	case b.Dx() == b.Dy():
		out = imaging.Resize(src, targetSize, targetSize, imaging.Lanczos)
	case fit == domain.FitCover:
		out = imaging.Fill(src, targetSize, targetSize, imaging.Center, imaging.Lanczos)
	case fit == domain.FitFill:
		out = imaging.Resize(src, targetSize, targetSize, imaging.Lanczos)
	case fit == domain.FitContain || fit == "":
		w, h := ContainSize(b.Dx(), b.Dy(), targetSize)
		resized := imaging.Resize(src, w, h, imaging.Lanczos)
		m := ContainMargins(w, h, targetSize)
		out = imaging.Paste(imaging.New(targetSize, targetSize, background), resized, image.Pt(m.Left, m.Top))
	default:
		return nil, fmt.Errorf("unknown fit mode: %q", fit)
	}

	buf := new(bytes.Buffer)
	mimeType := "image/jpeg"
	if alpha {
		mimeType = "image/png"
		err = imaging.Encode(buf, out, imaging.PNG)
	} else {
		err = imaging.Encode(buf, out, imaging.JPEG, imaging.JPEGQuality(CanvasJPEGQuality))
	}
	if err != nil {
		return nil, fmt.Errorf("キャンバスのエンコードに失敗しました: %w", err)
	}

	return &domain.Canvas{
		Data:     buf.Bytes(),
		MimeType: mimeType,
		Width:    targetSize,
		Height:   targetSize,
	}, nil
}
