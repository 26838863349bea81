package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jinford/shelf-assistant/pkg/db"
	"github.com/jinford/shelf-assistant/pkg/models"
)

// タイムスタンプの保存形式
const timeLayout = time.RFC3339Nano

// ProductRepository は商品テーブルのデータベース操作を提供します
type ProductRepository struct {
	db *db.DB
}

// NewProductRepository は新しいProductRepositoryを作成します
func NewProductRepository(database *db.DB) *ProductRepository {
	return &ProductRepository{db: database}
}

// Create は商品を作成し、採番済みのレコードを返します
// Nameが空の場合はErrNameRequiredを返します
func (r *ProductRepository) Create(ctx context.Context, in models.ProductCreate) (*models.Product, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, ErrNameRequired
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO products (name, description, category, price, stock_quantity, shelf_location, barcode, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Conn.ExecContext(ctx, query,
		in.Name,
		in.Description,
		in.Category,
		priceToDB(in.Price),
		in.StockQuantity,
		in.ShelfLocation,
		in.Barcode,
		now.Format(timeLayout),
		now.Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get inserted id: %w", err)
	}

	return r.Get(ctx, id)
}

// Get はIDで商品を取得します
// 存在しない場合はErrNotFoundを返します
func (r *ProductRepository) Get(ctx context.Context, id int64) (*models.Product, error) {
	query := `
		SELECT id, name, description, category, price, stock_quantity, shelf_location, barcode, created_at, updated_at
		FROM products
		WHERE id = ?
	`

	product, err := scanProduct(r.db.Conn.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

// List はすべての商品をID昇順で取得します
func (r *ProductRepository) List(ctx context.Context) ([]*models.Product, error) {
	query := `
		SELECT id, name, description, category, price, stock_quantity, shelf_location, barcode, created_at, updated_at
		FROM products
		ORDER BY id
	`

	rows, err := r.db.Conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// Search はキーワードで商品を検索します
//
// name / description / category のいずれかにキーワードを含む商品を
// ID昇順で返します（大文字小文字を区別しない部分一致）。
func (r *ProductRepository) Search(ctx context.Context, keyword string) ([]*models.Product, error) {
	query := `
		SELECT id, name, description, category, price, stock_quantity, shelf_location, barcode, created_at, updated_at
		FROM products
		WHERE name LIKE ? OR description LIKE ? OR category LIKE ?
		ORDER BY id
	`

	pattern := "%" + keyword + "%"
	rows, err := r.db.Conn.QueryContext(ctx, query, pattern, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// Update は商品を部分更新し、更新後のレコードを返します
//
// nilでないフィールドのみが更新され、updated_atは常に現在時刻に
// なります。更新フィールドが空の場合はErrEmptyUpdate、対象IDが
// 存在しない場合はErrNotFoundを返します。
func (r *ProductRepository) Update(ctx context.Context, id int64, in models.ProductUpdate) (*models.Product, error) {
	if in.IsEmpty() {
		return nil, ErrEmptyUpdate
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, ErrNameRequired
	}

	setClauses := []string{}
	args := []any{}

	if in.Name != nil {
		setClauses = append(setClauses, "name = ?")
		args = append(args, *in.Name)
	}
	if in.Description != nil {
		setClauses = append(setClauses, "description = ?")
		args = append(args, *in.Description)
	}
	if in.Category != nil {
		setClauses = append(setClauses, "category = ?")
		args = append(args, *in.Category)
	}
	if in.Price != nil {
		setClauses = append(setClauses, "price = ?")
		args = append(args, in.Price.String())
	}
	if in.StockQuantity != nil {
		setClauses = append(setClauses, "stock_quantity = ?")
		args = append(args, *in.StockQuantity)
	}
	if in.ShelfLocation != nil {
		setClauses = append(setClauses, "shelf_location = ?")
		args = append(args, *in.ShelfLocation)
	}
	if in.Barcode != nil {
		setClauses = append(setClauses, "barcode = ?")
		args = append(args, *in.Barcode)
	}

	setClauses = append(setClauses, "updated_at = ?")
	args = append(args, time.Now().UTC().Format(timeLayout))
	args = append(args, id)

	query := fmt.Sprintf("UPDATE products SET %s WHERE id = ?", strings.Join(setClauses, ", "))

	result, err := r.db.Conn.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	return r.Get(ctx, id)
}

// Delete は商品を完全に削除します（論理削除ではありません）
// 存在しない場合はErrNotFoundを返します
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Conn.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// rowScanner はsql.Rowとsql.Rowsの共通インターフェース
type rowScanner interface {
	Scan(dest ...any) error
}

// scanProduct は1行をProductに変換します
func scanProduct(row rowScanner) (*models.Product, error) {
	var (
		product   models.Product
		price     sql.NullString
		createdAt string
		updatedAt string
	)

	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Category,
		&price,
		&product.StockQuantity,
		&product.ShelfLocation,
		&product.Barcode,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if price.Valid {
		d, err := decimal.NewFromString(price.String)
		if err != nil {
			return nil, fmt.Errorf("invalid price value %q: %w", price.String, err)
		}
		product.Price = &d
	}

	product.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at value %q: %w", createdAt, err)
	}
	product.UpdatedAt, err = time.Parse(timeLayout, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid updated_at value %q: %w", updatedAt, err)
	}

	return &product, nil
}

// collectProducts は全行をProductのスライスに変換します
func collectProducts(rows *sql.Rows) ([]*models.Product, error) {
	products := []*models.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return products, nil
}

// priceToDB は価格をDB保存用の値に変換します
func priceToDB(price *decimal.Decimal) any {
	if price == nil {
		return nil
	}
	return price.String()
}
