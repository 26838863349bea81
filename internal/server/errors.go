package server

// validationError はリクエスト入力の不備を表すエラー
// writeErrorで400にマッピングされます
type validationError string

func (e validationError) Error() string { return string(e) }
