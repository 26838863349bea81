package repository

import "errors"

var (
	// ErrNotFound は指定IDの商品が存在しない場合のエラー
	ErrNotFound = errors.New("product not found")

	// ErrNameRequired は商品名が空の場合のバリデーションエラー
	ErrNameRequired = errors.New("product name is required")

	// ErrEmptyUpdate は更新フィールドが1つも指定されていない場合のエラー
	// 空の更新は暗黙の成功ではなくエラーとして扱います
	ErrEmptyUpdate = errors.New("no update fields provided")
)
