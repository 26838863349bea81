package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const defaultDetectTimeout = 60 * time.Second

// HTTPDetector は外部の検出サーバを呼び出すDetector実装です
type HTTPDetector struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPDetector は新しいHTTPDetectorを作成します
func NewHTTPDetector(baseURL string) *HTTPDetector {
	return &HTTPDetector{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultDetectTimeout},
	}
}

// Detect は画像を検出サーバへmultipartでアップロードし、検出結果を返します
func (d *HTTPDetector) Detect(ctx context.Context, imagePath string) ([]Detection, error) {
	file, err := os.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(imagePath))
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to copy image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/vision", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call detection service: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("detection service error %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Detections []Detection `json:"detections"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to decode detections: %w", err)
	}

	if result.Detections == nil {
		result.Detections = []Detection{}
	}
	return result.Detections, nil
}
