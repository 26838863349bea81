package stt

import (
	"context"
	"fmt"
	"os"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// WhisperClient はWhisper互換サーバで音声認識を行うTranscriber実装です
//
// whisper.cppサーバ等が公開するOpenAI互換の書き起こしエンドポイントを
// 呼び出します。リトライは行わず、失敗は即座に報告します。
type WhisperClient struct {
	client  openai.Client
	baseURL string
	model   string
}

// NewWhisperClient は新しいWhisperClientを作成します
// baseURLにはWhisper互換サーバの /v1 エンドポイントを指定します
func NewWhisperClient(baseURL, model string) *WhisperClient {
	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		// ローカルサーバは認証不要だがクライアントはキーを要求する
		option.WithAPIKey("local"),
	)

	return &WhisperClient{
		client:  client,
		baseURL: baseURL,
		model:   model,
	}
}

// Transcribe は音声ファイルを書き起こします
func (c *WhisperClient) Transcribe(ctx context.Context, audioPath string) (string, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close()

	transcription, err := c.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  file,
		Model: openai.AudioModel(c.model),
	})
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}

	return transcription.Text, nil
}

// GetStatus はサービスの状態を返します
func (c *WhisperClient) GetStatus() Status {
	return Status{
		ServiceName:  "whisper",
		Model:        c.model,
		Available:    true,
		FallbackMode: false,
	}
}
