package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jinford/shelf-assistant/pkg/llm"
	"github.com/jinford/shelf-assistant/pkg/models"
	"github.com/jinford/shelf-assistant/pkg/repository"
)

// writeData は成功レスポンスを共通エンベロープで書き出します
func writeData(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, models.Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// writeList は一覧レスポンスをページング情報付きで書き出します
func writeList(w http.ResponseWriter, message string, data any, total, page, size int) {
	writeJSON(w, http.StatusOK, models.ListResponse{
		Success: true,
		Message: message,
		Data:    data,
		Total:   total,
		Page:    page,
		Size:    size,
	})
}

// writeError はエラーをHTTPステータスへ変換して書き出します
//
// エラー種別からステータスコードへの対応付けはここでのみ行います。
// 各コンポーネントはエラーの分類だけを表明し、トランスポートの事情
// は知りません。
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError

	var (
		unavailableErr *llm.UnavailableError
		backendErr     *llm.BackendError
		inputErr       validationError
	)

	switch {
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, repository.ErrNameRequired),
		errors.Is(err, repository.ErrEmptyUpdate),
		errors.As(err, &inputErr):
		status = http.StatusBadRequest
	case errors.As(err, &unavailableErr):
		status = http.StatusServiceUnavailable
	case errors.As(err, &backendErr):
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"error", err,
			"request_id", requestIDFromContext(r.Context()),
		)
	}

	writeJSON(w, status, models.Response{
		Success: false,
		Message: err.Error(),
		Data:    nil,
	})
}

// writeJSON はJSONレスポンスを書き出します
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
