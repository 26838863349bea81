package stt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallback_Transcribe(t *testing.T) {
	var transcriber Transcriber = Fallback{}

	// フォールバックはエラーではなく固定文言を返す
	text, err := transcriber.Transcribe(context.Background(), "missing.wav")
	require.NoError(t, err)
	assert.Equal(t, FallbackTranscript, text)
}

func TestFallback_Status(t *testing.T) {
	status := Fallback{}.GetStatus()

	assert.Equal(t, "fallback", status.ServiceName)
	assert.False(t, status.Available)
	assert.True(t, status.FallbackMode)
}

func TestWhisperClient_Status(t *testing.T) {
	client := NewWhisperClient("http://localhost:8080/v1", "whisper-1")

	status := client.GetStatus()
	assert.Equal(t, "whisper", status.ServiceName)
	assert.Equal(t, "whisper-1", status.Model)
	assert.True(t, status.Available)
	assert.False(t, status.FallbackMode)
}

func TestWhisperClient_MissingFile(t *testing.T) {
	client := NewWhisperClient("http://localhost:8080/v1", "whisper-1")

	_, err := client.Transcribe(context.Background(), "does-not-exist.wav")
	assert.Error(t, err)
}
