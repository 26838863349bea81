// Package camera はカメラ撮影と画像ファイルの保存を抽象化します
//
// 撮影は外部のキャプチャコマンドに委譲します。Raspberry Pi向けの
// rpicam-still（または旧名libcamera-still）を優先し、無ければffmpeg
// によるV4L2デバイスからの取得へフォールバックします。
package camera

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Backend はカメラバックエンドの種別
type Backend string

const (
	// BackendRpicam はrpicam-still/libcamera-stillによる撮影
	BackendRpicam Backend = "rpicam"
	// BackendV4L2 はffmpeg経由のV4L2デバイスからの撮影
	BackendV4L2 Backend = "v4l2"
)

// ErrNoBackend は利用可能なカメラバックエンドがない場合のエラー
var ErrNoBackend = errors.New("no supported camera backend available (rpicam-still or ffmpeg required)")

// Handler は画像のキャプチャと保存を行います
//
// バックエンドは最初の撮影時に選択され、Reinitializeが呼ばれるまで
// プロセス内で固定されます。
type Handler struct {
	outputDir string
	device    string

	mu         sync.Mutex
	backend    Backend
	captureBin string
}

// NewHandler は新しいHandlerを作成します
// outputDirが空の場合はOSの一時ディレクトリを使用します
func NewHandler(outputDir, device string) (*Handler, error) {
	if outputDir == "" {
		outputDir = os.TempDir()
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	if device == "" {
		device = "/dev/video0"
	}

	return &Handler{
		outputDir: outputDir,
		device:    device,
	}, nil
}

// Backend は選択済みのバックエンドを返します（未選択の場合は空）
func (h *Handler) Backend() Backend {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.backend
}

// Reinitialize はバックエンド選択をリセットします
// 次回の撮影時に再選択が行われます
func (h *Handler) Reinitialize() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.backend = ""
	h.captureBin = ""
}

// Capture はカメラで静止画を撮影し、保存先のファイルパスを返します
func (h *Handler) Capture(ctx context.Context, prefix string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.backend == "" {
		if err := h.selectBackend(); err != nil {
			return "", err
		}
	}

	outPath := h.outputPath(prefix)

	var cmd *exec.Cmd
	switch h.backend {
	case BackendRpicam:
		cmd = exec.CommandContext(ctx, h.captureBin, "-o", outPath, "-n", "-t", "500")
	case BackendV4L2:
		cmd = exec.CommandContext(ctx, h.captureBin,
			"-f", "v4l2", "-i", h.device, "-frames:v", "1", "-y", outPath)
	default:
		return "", ErrNoBackend
	}

	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("capture command failed (%s): %w: %s", h.backend, err, string(output))
	}

	return outPath, nil
}

// SaveUpload はアップロードされたバイト列をそのままファイルに書き出します
//
// フォーマットの検証や変換は行いません。ファイル形式の整合性は
// 後段のモデルに合わせて呼び出し側が保証します。
func (h *Handler) SaveUpload(data []byte, prefix string) (string, error) {
	outPath := h.outputPath(prefix)
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to save uploaded file: %w", err)
	}
	return outPath, nil
}

// selectBackend は利用可能なバックエンドを探して固定します
// 呼び出し側でミューテックスを保持していること
func (h *Handler) selectBackend() error {
	for _, bin := range []string{"rpicam-still", "libcamera-still"} {
		if path, err := exec.LookPath(bin); err == nil {
			h.backend = BackendRpicam
			h.captureBin = path
			return nil
		}
	}

	if path, err := exec.LookPath("ffmpeg"); err == nil {
		h.backend = BackendV4L2
		h.captureBin = path
		return nil
	}

	return ErrNoBackend
}

// outputPath はタイムスタンプ付きの保存先パスを生成します
func (h *Handler) outputPath(prefix string) string {
	if prefix == "" {
		prefix = "capture"
	}
	name := fmt.Sprintf("%s_%d_%s.jpg", prefix, time.Now().UnixMilli(), uuid.NewString()[:8])
	return filepath.Join(h.outputDir, name)
}
