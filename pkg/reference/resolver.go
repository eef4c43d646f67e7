package reference

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/remoteio"
	"golang.org/x/sync/errgroup"

	"github.com/firstwinagency/firstwinagency-firstwin-panel/pkg/domain"
)

const (
	// InlinePrefix で始まる参照はインラインの data URI として扱います。
	InlinePrefix = "data:image/"

	gcsScheme = "gs://"

	// DefaultFetchTimeout はリモート取得 1 件あたりの既定タイムアウトです。
	DefaultFetchTimeout = 30 * time.Second
)

// NewHTTPClient は参照画像の取得に使う HTTP クライアントを生成します。
// allowPrivateNetworks が false の場合、接続直前の IP 検証でプライベート・ループバック宛ての接続を拒否します。
func NewHTTPClient(timeout time.Duration, allowPrivateNetworks bool) *httpkit.Client {
	return httpkit.New(timeout, httpkit.WithSkipNetworkValidation(allowPrivateNetworks))
}

// Options は Resolver の任意設定です。
type Options struct {
	FetchTimeout time.Duration
	// Reader は gs:// の参照を開くために使います。nil なら gs:// は取得エラーになります。
	Reader remoteio.InputReader
	Logger *slog.Logger
}

// Resolver は参照画像の入力を生のバイト列と MIME タイプに解決します。
// リトライもキャッシュも行いません。
type Resolver struct {
	httpClient   httpkit.Doer
	reader       remoteio.InputReader
	fetchTimeout time.Duration
	logger       *slog.Logger
}

// NewResolver は依存関係を注入して Resolver を生成します。
// httpClient の Do はリトライしないため、1 件の参照につきリクエストは 1 回だけです。
func NewResolver(httpClient httpkit.Doer, opts Options) (*Resolver, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Resolver{
		httpClient:   httpClient,
		reader:       opts.Reader,
		fetchTimeout: opts.FetchTimeout,
		logger:       opts.Logger,
	}, nil
}

// Resolve は 1 件の参照を解決します。
func (r *Resolver) Resolve(ctx context.Context, ref domain.ReferenceInput) (*domain.ResolvedReference, error) {
	return r.resolve(ctx, 0, ref)
}

// ResolveAll は先頭から limit 件までの参照を並行に解決し、入力順で返します。
// limit を超えた分は取得せずに黙って捨てます。いずれか 1 件でも失敗すれば全体が失敗します。
func (r *Resolver) ResolveAll(ctx context.Context, refs []domain.ReferenceInput, limit int) ([]domain.ResolvedReference, error) {
	if limit > 0 && len(refs) > limit {
		r.logger.DebugContext(ctx, "参照画像が上限を超えたため切り詰めます", "given", len(refs), "limit", limit)
		refs = refs[:limit]
	}

	results := make([]domain.ResolvedReference, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	for i, ref := range refs {
		g.Go(func() error {
			res, err := r.resolve(gctx, i, ref)
			if err != nil {
				return err
			}
			results[i] = *res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Resolver) resolve(ctx context.Context, index int, ref domain.ReferenceInput) (*domain.ResolvedReference, error) {
	raw := strings.TrimSpace(string(ref))
	if strings.HasPrefix(raw, InlinePrefix) {
		return decodeInline(index, raw)
	}
	return r.fetchRemote(ctx, raw)
}

// decodeInline は data:image/<type>;base64,<payload> を展開します。
func decodeInline(index int, raw string) (*domain.ResolvedReference, error) {
	header, payload, ok := strings.Cut(raw, ",")
	if !ok {
		return nil, &domain.ReferenceDecodeError{Index: index, Err: errors.New("data URI にカンマがありません")}
	}
	declared, params, _ := strings.Cut(strings.TrimPrefix(header, "data:"), ";")
	if !strings.Contains(params, "base64") {
		return nil, &domain.ReferenceDecodeError{Index: index, Err: errors.New("base64 以外の data URI は未対応です")}
	}

	payload = strings.Join(strings.Fields(payload), "")
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// パディング無しの入力も受け付ける
		var rawErr error
		if data, rawErr = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "=")); rawErr != nil {
			return nil, &domain.ReferenceDecodeError{Index: index, Err: err}
		}
	}
	if len(data) == 0 {
		return nil, &domain.ReferenceDecodeError{Index: index, Err: errors.New("空の画像データです")}
	}

	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = declared
	}
	return &domain.ResolvedReference{
		Data:     data,
		MimeType: mimeType,
		Source:   fmt.Sprintf("%s,…(%d bytes)", header[:min(len(header), 40)], len(data)),
	}, nil
}

func (r *Resolver) fetchRemote(ctx context.Context, locator string) (*domain.ResolvedReference, error) {
	ctx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	data, err := r.fetchImageData(ctx, locator)
	if err != nil {
		return nil, &domain.ReferenceFetchError{Locator: locator, Err: err}
	}
	if len(data) == 0 {
		return nil, &domain.ReferenceFetchError{Locator: locator, Err: errors.New("空のレスポンスです")}
	}

	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, &domain.ReferenceFetchError{Locator: locator, Err: fmt.Errorf("MIMEタイプが画像ではありません: %s", mimeType)}
	}
	return &domain.ResolvedReference{Data: data, MimeType: mimeType, Source: locator}, nil
}

func (r *Resolver) fetchImageData(ctx context.Context, locator string) ([]byte, error) {
	if strings.HasPrefix(locator, gcsScheme) {
		if r.reader == nil {
			return nil, errors.New("gs:// の参照を読むための reader が設定されていません")
		}
		rc, err := r.reader.Open(ctx, locator)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}

	u, err := url.Parse(locator)
	if err != nil {
		return nil, fmt.Errorf("URLパース失敗: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("不許可スキーム: %q", u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエスト作成失敗: %w", err)
	}
	req.Header.Set("User-Agent", httpkit.UserAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.logger.WarnContext(ctx, "参照画像の取得に失敗しました", "url", locator, "error", err)
		return nil, err
	}
	return httpkit.HandleResponse(resp)
}
