package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持します
type Config struct {
	// HTTPサーバ設定
	Server ServerConfig

	// Database設定（SQLite）
	Database DatabaseConfig

	// Ollama設定（テキスト生成・画像理解）
	Ollama OllamaConfig

	// STT設定（音声認識サーバ）
	STT STTConfig

	// 物体検出サーバ設定
	Vision VisionConfig

	// カメラ設定
	Camera CameraConfig

	// プロンプトコンテキスト設定
	Context ContextConfig
}

// ServerConfig はHTTPサーバ設定
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig はデータベース設定
type DatabaseConfig struct {
	Path string // SQLiteデータベースファイルのパス
}

// OllamaConfig はOllama接続設定
type OllamaConfig struct {
	BaseURL       string
	TextModel     string        // テキスト生成モデル
	VisionModel   string        // 画像理解モデル
	PingTimeout   time.Duration // 疎通確認のタイムアウト
	TextTimeout   time.Duration // テキスト生成のタイムアウト
	VisionTimeout time.Duration // 画像解析のタイムアウト
}

// STTConfig は音声認識サーバ設定
// WhisperサーバのOpenAI互換エンドポイントを想定しています
type STTConfig struct {
	BaseURL string // 空の場合はフォールバックモードで動作
	Model   string
}

// VisionConfig は物体検出サーバ設定
type VisionConfig struct {
	BaseURL string // 空の場合はスタブ実装で動作
}

// CameraConfig はカメラ・画像保存設定
type CameraConfig struct {
	OutputDir string // キャプチャ・アップロード画像の保存先
	Device    string // V4L2デバイス（例: /dev/video0）
}

// ContextConfig はプロンプトへ注入する商品コンテキストの設定
type ContextConfig struct {
	MaxTokens int // コンテキストの最大トークン数
}

// Load は環境変数または.envファイルから設定を読み込みます
func Load(envFilePath string) (*Config, error) {
	// .envファイルが存在する場合は読み込む
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			// ファイルが存在しない場合はエラーとしない（環境変数のみで動作可能）
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load .env file: %w", err)
			}
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8000),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "shelf_assistant.db"),
		},
		Ollama: OllamaConfig{
			BaseURL:       getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			TextModel:     getEnv("OLLAMA_TEXT_MODEL", "phi3:mini"),
			VisionModel:   getEnv("OLLAMA_VISION_MODEL", "moondream"),
			PingTimeout:   getEnvAsDuration("OLLAMA_PING_TIMEOUT", 3*time.Second),
			TextTimeout:   getEnvAsDuration("OLLAMA_TEXT_TIMEOUT", 60*time.Second),
			VisionTimeout: getEnvAsDuration("OLLAMA_VISION_TIMEOUT", 120*time.Second),
		},
		STT: STTConfig{
			BaseURL: getEnv("STT_BASE_URL", ""),
			Model:   getEnv("STT_MODEL", "whisper-1"),
		},
		Vision: VisionConfig{
			BaseURL: getEnv("VISION_BASE_URL", ""),
		},
		Camera: CameraConfig{
			OutputDir: getEnv("CAMERA_OUTPUT_DIR", os.TempDir()),
			Device:    getEnv("CAMERA_DEVICE", "/dev/video0"),
		},
		Context: ContextConfig{
			MaxTokens: getEnvAsInt("CONTEXT_MAX_TOKENS", 2048),
		},
	}

	return cfg, nil
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt は環境変数を整数として取得します
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration は環境変数をtime.Durationとして取得します
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
