package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// 生成パラメータのデフォルト値
const (
	DefaultTemperature    = 0.2
	DefaultTopP           = 0.9
	DefaultRepeatPenalty  = 1.1
	visionTemperature     = 0.2
	refinementTemperature = 0.3
)

// Config はOllamaクライアントの設定
type Config struct {
	BaseURL       string
	TextModel     string
	VisionModel   string
	PingTimeout   time.Duration
	TextTimeout   time.Duration
	VisionTimeout time.Duration
}

// DefaultConfig はデフォルトのクライアント設定を返します
func DefaultConfig() Config {
	return Config{
		BaseURL:       "http://localhost:11434",
		TextModel:     "phi3:mini",
		VisionModel:   "moondream",
		PingTimeout:   3 * time.Second,
		TextTimeout:   60 * time.Second,
		VisionTimeout: 120 * time.Second,
	}
}

// Client はOllamaの生成APIを呼び出すクライアントです
//
// モデル名はプロセス全体の可変状態としては持ちません。呼び出しごとに
// GenerateOptions.Modelで上書きでき、設定由来のデフォルト値は不変です。
// 並行リクエスト間でモデル選択が競合することはありません。
type Client struct {
	baseURL     string
	textModel   string
	visionModel string

	pingTimeout   time.Duration
	textTimeout   time.Duration
	visionTimeout time.Duration

	httpClient *http.Client
}

// GenerateOptions は生成呼び出しごとのパラメータです
// ゼロ値のフィールドにはデフォルト値が適用されます
type GenerateOptions struct {
	// Model はモデル名の上書き（空の場合は設定のデフォルトモデル）
	Model string

	// SystemPrompt はシステムプロンプトの上書き
	SystemPrompt string

	// Temperature は生成の多様性 (省略時 0.2)
	Temperature float64

	// TopP はnucleus sampling閾値 (省略時 0.9)
	TopP float64

	// RepeatPenalty は繰り返し抑制 (省略時 1.1)
	RepeatPenalty float64

	// MaxTokens は最大生成トークン数 (省略時はモデル既定値)
	MaxTokens int
}

// Status はバックエンドの状態を表します
type Status struct {
	ServiceName string `json:"service_name"`
	Endpoint    string `json:"endpoint"`
	TextModel   string `json:"text_model"`
	VisionModel string `json:"vision_model"`
	IsConnected bool   `json:"is_connected"`
	Status      string `json:"status"`
}

// Ollama /api/generate のリクエストボディ
type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Images  []string        `json:"images,omitempty"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature   float64 `json:"temperature"`
	TopP          float64 `json:"top_p,omitempty"`
	RepeatPenalty float64 `json:"repeat_penalty,omitempty"`
	NumPredict    int     `json:"num_predict,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// NewClient は新しいOllamaクライアントを作成します
func NewClient(cfg Config) *Client {
	defaults := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if cfg.TextModel == "" {
		cfg.TextModel = defaults.TextModel
	}
	if cfg.VisionModel == "" {
		cfg.VisionModel = defaults.VisionModel
	}
	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = defaults.PingTimeout
	}
	if cfg.TextTimeout <= 0 {
		cfg.TextTimeout = defaults.TextTimeout
	}
	if cfg.VisionTimeout <= 0 {
		cfg.VisionTimeout = defaults.VisionTimeout
	}

	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		textModel:     cfg.TextModel,
		visionModel:   cfg.VisionModel,
		pingTimeout:   cfg.PingTimeout,
		textTimeout:   cfg.TextTimeout,
		visionTimeout: cfg.VisionTimeout,
		httpClient:    &http.Client{},
	}
}

// Endpoint は接続先のベースURLを返します
func (c *Client) Endpoint() string {
	return c.baseURL
}

// CheckConnectivity はモデル一覧エンドポイントへの軽量な疎通確認を行います
// ネットワークエラーも非成功ステータスもfalseとして扱い、エラーは返しません
func (c *Client) CheckConnectivity(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.pingTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// GetStatus はバックエンドの状態を返します
func (c *Client) GetStatus(ctx context.Context) Status {
	connected := c.CheckConnectivity(ctx)
	status := "ok"
	if !connected {
		status = "unreachable"
	}

	return Status{
		ServiceName: "Ollama",
		Endpoint:    c.baseURL,
		TextModel:   c.textModel,
		VisionModel: c.visionModel,
		IsConnected: connected,
		Status:      status,
	}
}

// GenerateAnswer は商品コンテキストを添えた質問応答を実行します
//
// 疎通確認に失敗した場合、リクエストを組み立てる前にUnavailableError
// を返します。プロンプトはシステムプロンプト + コンテキスト +
// "Question: ...\nAnswer:" の連結で構築されます。
func (c *Client) GenerateAnswer(ctx context.Context, question, contextBlock string, opts GenerateOptions) (string, error) {
	if !c.CheckConnectivity(ctx) {
		return "", &UnavailableError{Endpoint: c.baseURL}
	}

	systemPrompt := opts.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}

	var promptParts []string
	if contextBlock != "" {
		promptParts = append(promptParts, fmt.Sprintf("Context:\n%s\n", contextBlock))
	}
	promptParts = append(promptParts, fmt.Sprintf("Question: %s\nAnswer:", question))
	fullPrompt := strings.Join(promptParts, "\n")

	req := generateRequest{
		Model:  c.resolveModel(opts.Model, c.textModel),
		Prompt: systemPrompt + "\n\n" + fullPrompt,
		Stream: false,
		Options: generateOptions{
			Temperature:   resolveFloat(opts.Temperature, DefaultTemperature),
			TopP:          resolveFloat(opts.TopP, DefaultTopP),
			RepeatPenalty: resolveFloat(opts.RepeatPenalty, DefaultRepeatPenalty),
			NumPredict:    opts.MaxTokens,
		},
	}

	return c.generate(ctx, req, c.textTimeout)
}

// AnalyzeImage は画像をインラインbase64で送信し、画像理解モデルで解析します
func (c *Client) AnalyzeImage(ctx context.Context, imagePath, prompt string, opts GenerateOptions) (string, error) {
	if !c.CheckConnectivity(ctx) {
		return "", &UnavailableError{Endpoint: c.baseURL}
	}

	data, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to read image file: %w", err)
	}

	req := generateRequest{
		Model:  c.resolveModel(opts.Model, c.visionModel),
		Prompt: prompt,
		Images: []string{base64.StdEncoding.EncodeToString(data)},
		Stream: false,
		Options: generateOptions{
			Temperature: visionTemperature,
		},
	}

	return c.generate(ctx, req, c.visionTimeout)
}

// ImageToText は2段階の画像質問応答パイプラインを実行します
//
// 第1段: 画像理解モデルでの解析、第2段: その出力とユーザの質問を
// テキストモデルで自然な回答に整形します。どちらの段の失敗も
// そのまま伝播し、部分的な結果は返しません。
func (c *Client) ImageToText(ctx context.Context, imagePath, userQuery string) (string, error) {
	rawAnalysis, err := c.AnalyzeImage(ctx, imagePath, userQuery, GenerateOptions{})
	if err != nil {
		return "", err
	}

	refinementPrompt := fmt.Sprintf("Raw image analysis: %s\n\nUser query: %s", rawAnalysis, userQuery)
	req := generateRequest{
		Model:  c.textModel,
		Prompt: RefinementSystemPrompt + "\n\n" + refinementPrompt,
		Stream: false,
		Options: generateOptions{
			Temperature: refinementTemperature,
		},
	}

	return c.generate(ctx, req, c.textTimeout)
}

// CaptionImage は画像の簡潔な説明文を生成します
// promptが空の場合はデフォルトのキャプション指示を使用します
func (c *Client) CaptionImage(ctx context.Context, imagePath, prompt string) (string, error) {
	if prompt == "" {
		prompt = defaultCaptionPrompt
	}
	return c.AnalyzeImage(ctx, imagePath, prompt, GenerateOptions{})
}

// generate は /api/generate への同期呼び出しを行います
// 非2xxステータスはBackendErrorとして返します
func (c *Client) generate(ctx context.Context, req generateRequest, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to call ollama: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &BackendError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var genResp generateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	// responseフィールドが欠けていても空文字列として扱う（エラーにしない）
	return genResp.Response, nil
}

// resolveModel は呼び出しごとの上書きとデフォルトモデルを解決します
func (c *Client) resolveModel(override, fallback string) string {
	if override != "" {
		return override
	}
	return fallback
}

// resolveFloat はゼロ値にデフォルトを適用します
func resolveFloat(value, defaultValue float64) float64 {
	if value == 0 {
		return defaultValue
	}
	return value
}
