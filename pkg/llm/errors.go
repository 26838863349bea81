package llm

import "fmt"

// UnavailableError は推論バックエンドに到達できない場合のエラー
// 期待するエンドポイントと復旧手順をメッセージに含めます
type UnavailableError struct {
	Endpoint string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("cannot reach Ollama at %s: ensure 'ollama serve' is running and the model is pulled", e.Endpoint)
}

// BackendError は推論バックエンドが失敗ステータスを返した場合のエラー
// 上流のステータスコードとレスポンスボディをそのまま保持します
type BackendError struct {
	StatusCode int
	Body       string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("ollama error %d: %s", e.StatusCode, e.Body)
}
