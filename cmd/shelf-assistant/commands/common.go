package commands

import (
	"context"
	"fmt"

	"github.com/jinford/shelf-assistant/internal/platform/logger"
	"github.com/jinford/shelf-assistant/pkg/camera"
	"github.com/jinford/shelf-assistant/pkg/config"
	"github.com/jinford/shelf-assistant/pkg/db"
	"github.com/jinford/shelf-assistant/pkg/llm"
	"github.com/jinford/shelf-assistant/pkg/query"
	"github.com/jinford/shelf-assistant/pkg/repository"
	"github.com/jinford/shelf-assistant/pkg/stt"
	"github.com/jinford/shelf-assistant/pkg/vision"
)

// AppContext はコマンド実行に必要な共通コンテキストを保持する
type AppContext struct {
	Config      *config.Config
	Database    *db.DB
	Products    *repository.ProductRepository
	Context     *query.ContextBuilder
	LLMClient   *llm.Client
	Transcriber stt.Transcriber
	Detector    vision.Detector
	Camera      *camera.Handler
}

// NewAppContext は設定ファイルを読み込み、DBに接続して AppContext を作成する
func NewAppContext(ctx context.Context, envFile string) (*AppContext, error) {
	// 設定の読み込み
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("設定の読み込みに失敗: %w", err)
	}

	// ロガーの初期化
	logger.New(logger.DefaultConfig())

	// データベースの初期化（スキーマの適用を含む）
	database, err := db.New(ctx, cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("データベースの初期化に失敗: %w", err)
	}

	products := repository.NewProductRepository(database)

	llmClient := llm.NewClient(llm.Config{
		BaseURL:       cfg.Ollama.BaseURL,
		TextModel:     cfg.Ollama.TextModel,
		VisionModel:   cfg.Ollama.VisionModel,
		PingTimeout:   cfg.Ollama.PingTimeout,
		TextTimeout:   cfg.Ollama.TextTimeout,
		VisionTimeout: cfg.Ollama.VisionTimeout,
	})

	// STTサーバが未設定の場合はフォールバックモードで動作する
	var transcriber stt.Transcriber = stt.Fallback{}
	if cfg.STT.BaseURL != "" {
		transcriber = stt.NewWhisperClient(cfg.STT.BaseURL, cfg.STT.Model)
	}

	// 検出サーバが未設定の場合は常に0件を返すスタブで動作する
	var detector vision.Detector = vision.StubDetector{}
	if cfg.Vision.BaseURL != "" {
		detector = vision.NewHTTPDetector(cfg.Vision.BaseURL)
	}

	cam, err := camera.NewHandler(cfg.Camera.OutputDir, cfg.Camera.Device)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("カメラハンドラの初期化に失敗: %w", err)
	}

	return &AppContext{
		Config:      cfg,
		Database:    database,
		Products:    products,
		Context:     query.NewContextBuilder(products, cfg.Context.MaxTokens),
		LLMClient:   llmClient,
		Transcriber: transcriber,
		Detector:    detector,
		Camera:      cam,
	}, nil
}

// Close はAppContextが保持するリソースをクリーンアップする
func (ac *AppContext) Close() {
	if ac.Database != nil {
		ac.Database.Close()
	}
}
