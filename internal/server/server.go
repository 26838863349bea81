package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/jinford/shelf-assistant/pkg/llm"
	"github.com/jinford/shelf-assistant/pkg/models"
	"github.com/jinford/shelf-assistant/pkg/query"
	"github.com/jinford/shelf-assistant/pkg/stt"
	"github.com/jinford/shelf-assistant/pkg/vision"
)

// Version はAPIのバージョン文字列
const Version = "1.0.0"

// ProductStore は商品ストアへの操作を提供するインターフェース
type ProductStore interface {
	Create(ctx context.Context, in models.ProductCreate) (*models.Product, error)
	Get(ctx context.Context, id int64) (*models.Product, error)
	List(ctx context.Context) ([]*models.Product, error)
	Search(ctx context.Context, keyword string) ([]*models.Product, error)
	Update(ctx context.Context, id int64, in models.ProductUpdate) (*models.Product, error)
	Delete(ctx context.Context, id int64) error
}

// ContextBuilder は商品コンテキストの構築を提供するインターフェース
type ContextBuilder interface {
	BuildProductContext(ctx context.Context, keyword string) (*query.ProductContext, error)
}

// InferenceClient は推論バックエンドへの操作を提供するインターフェース
type InferenceClient interface {
	GetStatus(ctx context.Context) llm.Status
	GenerateAnswer(ctx context.Context, question, contextBlock string, opts llm.GenerateOptions) (string, error)
	ImageToText(ctx context.Context, imagePath, userQuery string) (string, error)
	CaptionImage(ctx context.Context, imagePath, prompt string) (string, error)
}

// MediaStore は画像の撮影・保存を提供するインターフェース
type MediaStore interface {
	Capture(ctx context.Context, prefix string) (string, error)
	SaveUpload(data []byte, prefix string) (string, error)
}

// Deps はサーバの依存コンポーネント一式
type Deps struct {
	Products    ProductStore
	Context     ContextBuilder
	Inference   InferenceClient
	Transcriber stt.Transcriber
	Detector    vision.Detector
	Media       MediaStore
}

// Server はHTTP APIサーバです
type Server struct {
	deps       Deps
	router     *mux.Router
	httpServer *http.Server
}

// New は新しいServerを作成し、ルーティングを構成します
func New(host string, port int, deps Deps) *Server {
	s := &Server{deps: deps}

	router := mux.NewRouter().StrictSlash(true)
	router.Use(withRequestID, withAccessLog, withRecover)

	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	router.HandleFunc("/products", s.handleCreateProduct).Methods(http.MethodPost)
	router.HandleFunc("/products", s.handleListProducts).Methods(http.MethodGet)
	router.HandleFunc("/products/{id}", s.handleGetProduct).Methods(http.MethodGet)
	router.HandleFunc("/products/{id}", s.handleUpdateProduct).Methods(http.MethodPut)
	router.HandleFunc("/products/{id}", s.handleDeleteProduct).Methods(http.MethodDelete)

	router.HandleFunc("/llm/status", s.handleLLMStatus).Methods(http.MethodGet)
	router.HandleFunc("/llm/ask", s.handleAsk).Methods(http.MethodPost)
	router.HandleFunc("/llm/query", s.handleQuery).Methods(http.MethodPost)
	router.HandleFunc("/llm/voice", s.handleVoice).Methods(http.MethodPost)
	router.HandleFunc("/llm/stt/status", s.handleSTTStatus).Methods(http.MethodGet)

	router.HandleFunc("/vision/detect", s.handleDetect).Methods(http.MethodPost)
	router.HandleFunc("/vision/capture", s.handleCapture).Methods(http.MethodPost)

	s.router = router
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", host, port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler はルータを返します（テスト用）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start はHTTPサーバを起動します（ブロッキング）
func (s *Server) Start() error {
	slog.Info("starting http server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown はHTTPサーバを停止します
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// handleHealth はヘルスチェックに応答します
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "ShelfAssistant API",
		"version": Version,
	})
}
