package domain

import "image/color"

// MaxOutputCount は 1 回の生成リクエストで要求できる出力枚数の上限です。
const MaxOutputCount = 6

// MinOutputCount は出力枚数の下限です。
const MinOutputCount = 1

// MaxReferenceCap はティアごとに設定できる参照画像の上限 (max_references) の最大値です。
const MaxReferenceCap = 6

// ReferenceInput は呼び出し側から渡される参照画像です。
// data URI (data:image/...;base64,...) かリモートのロケーター (http/https/gs) のいずれかです。
type ReferenceInput string

// GenerationRequest は生成パイプライン 1 回分の要求です。
// HTTP 層などの外部コラボレーターが型付きで組み立ててから渡します。
type GenerationRequest struct {
	PromptText         string
	OverridePromptText string
	PresetID           string
	References         []ReferenceInput
	Tier               Tier
	OutputCount        int
	Seed               *int64 // nil でランダム。指定時は出力ごとに seed+index を使う
	AspectRatio        string // バックエンドへのヒント。空なら指定しない
	Delivery           Delivery
}

// Delivery は生成結果をどの形で返すかを表します。
type Delivery struct {
	Mode DeliveryMode

	// ModeSquare 用
	TargetSize int
	FitMode    FitMode
	Background color.Color // nil なら設定値

	// ModeExact 用
	Width  int
	Height int
	Format Format
}

// ResolvedReference は参照画像をバイト列に解決した結果です。永続化はしません。
type ResolvedReference struct {
	Data     []byte
	MimeType string
	Source   string // ログ用のロケーター (data URI の場合は短縮表記)
}

// GeneratedImage はバックエンドが返した正規化前の画像です。
type GeneratedImage struct {
	Data     []byte
	MimeType string
	Tier     Tier
	Model    string
	UsedSeed int64 // 戻り値は情報欠落を防ぐため int64
}

// Canvas は正方形キャンバスに正規化された画像です。Width == Height が常に成り立ちます。
type Canvas struct {
	Data     []byte
	MimeType string
	Width    int
	Height   int
}

// OutputImage は要求された正確なサイズとフォーマットで再エンコードされた画像です。
type OutputImage struct {
	Data     []byte
	MimeType string
	Width    int
	Height   int
	// Substituted はコーデックが利用できず PNG バイト列で代替した場合に true になります。
	Substituted bool
}
