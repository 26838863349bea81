package models

// Response はAPIレスポンスの共通エンベロープです
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ListResponse は一覧系レスポンスのエンベロープです
// ページング情報（total/page/size）を追加で持ちます
type ListResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
	Total   int    `json:"total"`
	Page    int    `json:"page"`
	Size    int    `json:"size"`
}
