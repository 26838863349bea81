// Package stt は音声認識を外部サービスに委譲する薄いアダプタ層です
//
// 認識処理そのものはこのリポジトリでは実装せず、Whisper互換サーバへの
// HTTP呼び出しに委ねます。サーバが構成されていない環境では固定の
// フォールバック文言を返します。
package stt

import "context"

// FallbackTranscript は音声認識が利用できない場合の固定文言です
//
// 呼び出し側はこの文言を「認識結果なし」として扱う必要があります。
// 有効な書き起こしテキストではありません。
const FallbackTranscript = "[STT Fallback] Audio transcription not available. " +
	"Configure STT_BASE_URL or use text input instead."

// Transcriber は音声ファイルをテキストに変換するインターフェース
type Transcriber interface {
	// Transcribe は音声ファイルのパスを受け取り、書き起こしテキストを返す
	Transcribe(ctx context.Context, audioPath string) (string, error)

	// GetStatus はサービスの状態を返す
	GetStatus() Status
}

// Status は音声認識サービスの状態を表します
type Status struct {
	ServiceName  string `json:"service_name"`
	Model        string `json:"model"`
	Available    bool   `json:"available"`
	FallbackMode bool   `json:"fallback_mode"`
}

// Fallback は認識サーバが構成されていない場合のTranscriber実装です
// 常にFallbackTranscriptを返し、エラーにはなりません
type Fallback struct{}

// Transcribe は固定のフォールバック文言を返します
func (Fallback) Transcribe(ctx context.Context, audioPath string) (string, error) {
	return FallbackTranscript, nil
}

// GetStatus はフォールバックモードの状態を返します
func (Fallback) GetStatus() Status {
	return Status{
		ServiceName:  "fallback",
		Available:    false,
		FallbackMode: true,
	}
}
