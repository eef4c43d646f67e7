package imgutil

import (
	"fmt"
	"image"
	"io"
	"sort"

	"github.com/disintegration/imaging"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"

	"github.com/firstwinagency/firstwinagency-firstwin-panel/pkg/domain"
)

const (
	// OutputJPEGQuality は正確なサイズで出力する JPEG の品質です。
	OutputJPEGQuality = 95
	// DefaultWebPQuality は WebP (lossy) の既定品質です。
	DefaultWebPQuality = 80
)

// Codec は 1 つの出力形式のエンコーダーです。
type Codec interface {
	Format() domain.Format
	Encode(w io.Writer, img image.Image) error
}

type jpegCodec struct{ quality int }

func (c jpegCodec) Format() domain.Format { return domain.FormatJPEG }
func (c jpegCodec) Encode(w io.Writer, img image.Image) error {
	return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(c.quality))
}

type pngCodec struct{}

func (pngCodec) Format() domain.Format { return domain.FormatPNG }
func (pngCodec) Encode(w io.Writer, img image.Image) error {
	return imaging.Encode(w, img, imaging.PNG)
}

type bmpCodec struct{}

func (bmpCodec) Format() domain.Format { return domain.FormatBMP }
func (bmpCodec) Encode(w io.Writer, img image.Image) error {
	return imaging.Encode(w, img, imaging.BMP)
}

type webpCodec struct{ options *encoder.Options }

func newWebPCodec(quality int) (*webpCodec, error) {
	opts, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, float32(quality))
	if err != nil {
		return nil, fmt.Errorf("WebP エンコーダーの初期化に失敗しました: %w", err)
	}
	return &webpCodec{options: opts}, nil
}

func (c *webpCodec) Format() domain.Format { return domain.FormatWEBP }
func (c *webpCodec) Encode(w io.Writer, img image.Image) error {
	return webp.Encode(w, img, c.options)
}

// CodecOptions は起動時にどのコーデックを登録するかの指定です。
type CodecOptions struct {
	WebP        bool
	BMP         bool
	WebPQuality int
	Policy      domain.UnavailablePolicy
}

// CodecRegistry は起動時に構築され、以降は読み取り専用で使われるコーデック表です。
// JPEG と PNG は常に登録されます。
type CodecRegistry struct {
	codecs map[domain.Format]Codec
	policy domain.UnavailablePolicy
}

// NewCodecRegistry は指定された形式のコーデックを登録します。
func NewCodecRegistry(opts CodecOptions) (*CodecRegistry, error) {
	policy, err := domain.ParseUnavailablePolicy(string(opts.Policy))
	if err != nil {
		return nil, err
	}
	codecs := []Codec{jpegCodec{quality: OutputJPEGQuality}, pngCodec{}}
	if opts.BMP {
		codecs = append(codecs, bmpCodec{})
	}
	if opts.WebP {
		quality := opts.WebPQuality
		if quality <= 0 {
			quality = DefaultWebPQuality
		}
		c, err := newWebPCodec(quality)
		if err != nil {
			return nil, err
		}
		codecs = append(codecs, c)
	}
	return NewCodecRegistryWith(policy, codecs...), nil
}

// NewCodecRegistryWith は任意のコーデック群からレジストリを構築します。
// PNG は代替出力に使うため、渡されなくても登録されます。
func NewCodecRegistryWith(policy domain.UnavailablePolicy, codecs ...Codec) *CodecRegistry {
	r := &CodecRegistry{codecs: make(map[domain.Format]Codec), policy: policy}
	r.codecs[domain.FormatPNG] = pngCodec{}
	for _, c := range codecs {
		r.codecs[c.Format()] = c
	}
	return r
}

// Lookup は形式に対応するコーデックを返します。
func (r *CodecRegistry) Lookup(f domain.Format) (Codec, bool) {
	c, ok := r.codecs[f]
	return c, ok
}

// Policy はコーデックが無い場合のポリシーを返します。
func (r *CodecRegistry) Policy() domain.UnavailablePolicy {
	return r.policy
}

// Available は登録済みの形式を名前順で返します。
func (r *CodecRegistry) Available() []domain.Format {
	formats := make([]domain.Format, 0, len(r.codecs))
	for f := range r.codecs {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}
