package imgutil

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// Decode は画像データ（PNG, JPEG, GIF, BMP, TIFF, WebP）をデコードします。
// EXIF の向き情報があれば適用します。
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image data")
	}
	return imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
}

// HasAlpha は画像が不透明でないピクセルを持つかどうかを返します。
func HasAlpha(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return true
			}
		}
	}
	return false
}
