package camera

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveUpload(t *testing.T) {
	handler, err := NewHandler(t.TempDir(), "")
	require.NoError(t, err)

	data := []byte("fake-jpeg-bytes")
	path, err := handler.SaveUpload(data, "upload")
	require.NoError(t, err)

	// バイト列がそのまま書き出されることを確認
	saved, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, saved)

	base := filepath.Base(path)
	assert.True(t, strings.HasPrefix(base, "upload_"))
	assert.True(t, strings.HasSuffix(base, ".jpg"))
}

func TestSaveUpload_DefaultPrefix(t *testing.T) {
	handler, err := NewHandler(t.TempDir(), "")
	require.NoError(t, err)

	path, err := handler.SaveUpload([]byte("x"), "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "capture_"))
}

func TestSaveUpload_UniquePaths(t *testing.T) {
	handler, err := NewHandler(t.TempDir(), "")
	require.NoError(t, err)

	first, err := handler.SaveUpload([]byte("a"), "upload")
	require.NoError(t, err)
	second, err := handler.SaveUpload([]byte("b"), "upload")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestBackendSelection_Sticky(t *testing.T) {
	handler, err := NewHandler(t.TempDir(), "")
	require.NoError(t, err)

	// 初期状態では未選択
	assert.Equal(t, Backend(""), handler.Backend())

	handler.mu.Lock()
	selectErr := handler.selectBackend()
	handler.mu.Unlock()

	if selectErr != nil {
		// キャプチャコマンドのない環境ではErrNoBackend
		assert.ErrorIs(t, selectErr, ErrNoBackend)
		return
	}

	chosen := handler.Backend()
	assert.NotEqual(t, Backend(""), chosen)

	// Reinitializeで再選択可能になる
	handler.Reinitialize()
	assert.Equal(t, Backend(""), handler.Backend())
}
