package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownTier は登録されていないティア名が指定された場合のエラーです。
var ErrUnknownTier = errors.New("unknown tier")

// InvalidRequestError はバックエンド呼び出し前にリクエストを拒否した場合のエラーです。
type InvalidRequestError struct {
	Field  string
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Reason)
}

// ReferenceFetchError はリモートの参照画像を取得できなかった場合のエラーです。
type ReferenceFetchError struct {
	Locator string
	Err     error
}

func (e *ReferenceFetchError) Error() string {
	return fmt.Sprintf("参照画像の取得に失敗しました (%s): %v", e.Locator, e.Err)
}

func (e *ReferenceFetchError) Unwrap() error { return e.Err }

// ReferenceDecodeError はインラインの参照画像をデコードできなかった場合のエラーです。
type ReferenceDecodeError struct {
	Index int
	Err   error
}

func (e *ReferenceDecodeError) Error() string {
	return fmt.Sprintf("参照画像 #%d のデコードに失敗しました: %v", e.Index, e.Err)
}

func (e *ReferenceDecodeError) Unwrap() error { return e.Err }

// NoImageReturnedError はバックエンドが応答したものの画像パートが無かった場合のエラーです。
type NoImageReturnedError struct {
	Tier         Tier
	Model        string
	FinishReason string
}

func (e *NoImageReturnedError) Error() string {
	if e.FinishReason != "" {
		return fmt.Sprintf("%s (%s): 画像データが見つかりませんでした (FinishReason: %s)", e.Tier, e.Model, e.FinishReason)
	}
	return fmt.Sprintf("%s (%s): 画像データが見つかりませんでした", e.Tier, e.Model)
}

// BackendCallError はティアのエンドポイント呼び出し自体が失敗した場合のエラーです。
type BackendCallError struct {
	Tier  Tier
	Model string
	Err   error
}

func (e *BackendCallError) Error() string {
	return fmt.Sprintf("%s (%s): バックエンド呼び出しエラー: %v", e.Tier, e.Model, e.Err)
}

func (e *BackendCallError) Unwrap() error { return e.Err }

// DispatchError はプライマリとフォールバックの両方が失敗した場合の終端エラーです。
// Fallback が nil の場合はフォールバックが構成されていなかったことを表します。
type DispatchError struct {
	Primary  error
	Fallback error
}

func (e *DispatchError) Error() string {
	if e.Fallback == nil {
		return fmt.Sprintf("画像生成に失敗しました: primary: %v", e.Primary)
	}
	return fmt.Sprintf("画像生成に失敗しました: primary: %v; fallback: %v", e.Primary, e.Fallback)
}

func (e *DispatchError) Unwrap() []error {
	if e.Fallback == nil {
		return []error{e.Primary}
	}
	return []error{e.Primary, e.Fallback}
}

// ImageDecodeError は正規化・エンコード段階で画像を解釈できなかった場合のエラーです。
type ImageDecodeError struct {
	Stage string
	Err   error
}

func (e *ImageDecodeError) Error() string {
	return fmt.Sprintf("%s: 画像のデコードに失敗しました: %v", e.Stage, e.Err)
}

func (e *ImageDecodeError) Unwrap() error { return e.Err }

// UnsupportedFormatError は要求された出力形式を現在の構成で扱えない場合のエラーです。
type UnsupportedFormatError struct {
	Format Format
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported output format: %q", string(e.Format))
}

// OutputError はどの出力で失敗したかを示すためにオーケストレーターが付与します。
type OutputError struct {
	Index int
	Err   error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("出力 #%d: %v", e.Index+1, e.Err)
}

func (e *OutputError) Unwrap() error { return e.Err }
