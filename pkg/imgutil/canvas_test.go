package imgutil

import (
	"errors"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firstwinagency/firstwinagency-firstwin-panel/pkg/domain"
)

var red = color.NRGBA{R: 255, A: 255}

func TestContainSizeAndMargins(t *testing.T) {
	tests := []struct {
		name         string
		srcW, srcH   int
		target       int
		wantW, wantH int
	}{
		{"横長", 800, 400, 1024, 1024, 512},
		{"縦長", 400, 800, 1024, 512, 1024},
		{"奇数の余り", 300, 100, 1000, 1000, 333},
		{"極端に細い", 5000, 1, 100, 100, 1},
		{"拡大", 50, 25, 1024, 1024, 512},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := ContainSize(tt.srcW, tt.srcH, tt.target)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)

			m := ContainMargins(w, h, tt.target)
			assert.Equal(t, tt.target-w, m.Left+m.Right)
			assert.Equal(t, tt.target-h, m.Top+m.Bottom)
			assert.Contains(t, []int{0, 1}, m.Right-m.Left, "余分な 1px は右側")
			assert.Contains(t, []int{0, 1}, m.Bottom-m.Top, "余分な 1px は下側")
		})
	}

	m := ContainMargins(1000, 333, 1000)
	assert.Equal(t, Margins{Left: 0, Right: 0, Top: 333, Bottom: 334}, m)
}

func TestNormalizer_ToSquareCanvas(t *testing.T) {
	n := NewNormalizer(nil)

	t.Run("正方形の入力はそのままリサイズされ余白が入らない", func(t *testing.T) {
		src := encodeTestImage(t, solidImage(800, 800, red), "jpeg")

		c, err := n.ToSquareCanvas(src, 1024, domain.FitContain, nil)
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", c.MimeType)
		assert.Equal(t, 1024, c.Width)
		assert.Equal(t, 1024, c.Height)

		img, format := decodeTestImage(t, c.Data)
		assert.Equal(t, "jpeg", format)
		assert.Equal(t, 1024, img.Bounds().Dx())
		assert.Equal(t, 1024, img.Bounds().Dy())
		// 角も赤のまま（白い余白が無い）
		r, g, b, _ := rgba8(img.At(0, 0))
		assert.True(t, r > 200 && g < 60 && b < 60, "corner should stay red: %d,%d,%d", r, g, b)
	})

	t.Run("既に目標サイズの正方形は同じサイズのまま", func(t *testing.T) {
		src := encodeTestImage(t, solidImage(64, 64, red), "png")
		c, err := n.ToSquareCanvas(src, 64, domain.FitContain, nil)
		require.NoError(t, err)
		img, _ := decodeTestImage(t, c.Data)
		assert.Equal(t, 64, img.Bounds().Dx())
		assert.Equal(t, 64, img.Bounds().Dy())
	})

	t.Run("横長は上下に背景色の余白が入る", func(t *testing.T) {
		src := encodeTestImage(t, solidImage(800, 400, red), "png")

		c, err := n.ToSquareCanvas(src, 1024, domain.FitContain, nil)
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", c.MimeType, "アルファの無い入力は JPEG")

		img, _ := decodeTestImage(t, c.Data)
		assert.Equal(t, 1024, img.Bounds().Dx())
		assert.Equal(t, 1024, img.Bounds().Dy())

		r, g, b, _ := rgba8(img.At(512, 100))
		assert.True(t, r > 240 && g > 240 && b > 240, "top padding should be white: %d,%d,%d", r, g, b)
		r, g, b, _ = rgba8(img.At(512, 512))
		assert.True(t, r > 200 && g < 60 && b < 60, "center should be red: %d,%d,%d", r, g, b)
		r, g, b, _ = rgba8(img.At(512, 900))
		assert.True(t, r > 240 && g > 240 && b > 240, "bottom padding should be white: %d,%d,%d", r, g, b)
	})

	t.Run("アルファ付きは PNG で、奇数の余りは下側に 1px 多く入る", func(t *testing.T) {
		translucent := color.NRGBA{R: 255, A: 128}
		src := encodeTestImage(t, solidImage(300, 100, translucent), "png")
		bg := color.NRGBA{R: 10, G: 20, B: 30, A: 255}

		c, err := n.ToSquareCanvas(src, 1000, domain.FitContain, bg)
		require.NoError(t, err)
		assert.Equal(t, "image/png", c.MimeType)

		img, format := decodeTestImage(t, c.Data)
		assert.Equal(t, "png", format)

		// 上余白 333px, 画像 333px (333..665), 下余白 334px (666..999)
		_, _, _, a := rgba8(img.At(500, 332))
		assert.Equal(t, uint8(255), a, "row 332 is padding")
		r, g, b, _ := rgba8(img.At(500, 332))
		assert.Equal(t, []uint8{10, 20, 30}, []uint8{r, g, b})

		_, _, _, a = rgba8(img.At(500, 333))
		assert.True(t, near(a, 128, 8), "row 333 is image content, alpha=%d", a)
		_, _, _, a = rgba8(img.At(500, 665))
		assert.True(t, near(a, 128, 8), "row 665 is image content, alpha=%d", a)

		_, _, _, a = rgba8(img.At(500, 666))
		assert.Equal(t, uint8(255), a, "row 666 is padding")
	})

	t.Run("cover は余白なしで切り抜く", func(t *testing.T) {
		src := encodeTestImage(t, solidImage(800, 400, red), "png")
		c, err := n.ToSquareCanvas(src, 256, domain.FitCover, nil)
		require.NoError(t, err)
		img, _ := decodeTestImage(t, c.Data)
		r, g, b, _ := rgba8(img.At(128, 2))
		assert.True(t, r > 200 && g < 60 && b < 60, "no padding with cover: %d,%d,%d", r, g, b)
	})

	t.Run("fill は引き伸ばして余白なし", func(t *testing.T) {
		src := encodeTestImage(t, solidImage(800, 400, red), "png")
		c, err := n.ToSquareCanvas(src, 256, domain.FitFill, nil)
		require.NoError(t, err)
		img, _ := decodeTestImage(t, c.Data)
		assert.Equal(t, 256, img.Bounds().Dx())
		r, _, _, _ := rgba8(img.At(128, 2))
		assert.True(t, r > 200)
	})

	t.Run("不正なデータは ImageDecodeError", func(t *testing.T) {
		_, err := n.ToSquareCanvas([]byte("this is not an image"), 128, domain.FitContain, nil)
		var decodeErr *domain.ImageDecodeError
		assert.True(t, errors.As(err, &decodeErr), "got %v", err)
	})

	t.Run("サイズ0はエラー", func(t *testing.T) {
		_, err := n.ToSquareCanvas(encodeTestImage(t, solidImage(2, 2, red), "png"), 0, domain.FitContain, nil)
		assert.Error(t, err)
	})
}

func TestHasAlpha(t *testing.T) {
	assert.False(t, HasAlpha(solidImage(2, 2, red)))
	assert.True(t, HasAlpha(solidImage(2, 2, color.NRGBA{A: 10})))
}
