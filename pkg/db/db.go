package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// schema は商品テーブルの定義
// タイムスタンプはRFC3339文字列として保存します
const schema = `
CREATE TABLE IF NOT EXISTS products (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	description TEXT,
	category TEXT,
	price TEXT,
	stock_quantity INTEGER NOT NULL DEFAULT 0,
	shelf_location TEXT,
	barcode TEXT,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
`

// DB はデータベース接続を保持します
type DB struct {
	Conn *sql.DB
}

// New は新しいSQLiteデータベース接続を作成し、スキーマを初期化します
//
// 排他制御はSQLite自身のロックに委ねます。busy_timeoutを設定して
// いるため、同時書き込みは到着順に直列化されます。
func New(ctx context.Context, path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// 接続テスト
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// スキーマの初期化
	if _, err := conn.ExecContext(ctx, schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &DB{Conn: conn}, nil
}

// Close はデータベース接続を閉じます
func (db *DB) Close() {
	db.Conn.Close()
}
