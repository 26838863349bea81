package query

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinford/shelf-assistant/pkg/models"
)

// fakeProductSource はテスト用のProductSource実装
type fakeProductSource struct {
	all      []*models.Product
	filtered []*models.Product
}

func (f *fakeProductSource) List(ctx context.Context) ([]*models.Product, error) {
	return f.all, nil
}

func (f *fakeProductSource) Search(ctx context.Context, keyword string) ([]*models.Product, error) {
	return f.filtered, nil
}

func product(id int64, name, category, price, shelf string) *models.Product {
	p := &models.Product{ID: id, Name: name}
	if category != "" {
		p.Category = &category
	}
	if price != "" {
		d := decimal.RequireFromString(price)
		p.Price = &d
	}
	if shelf != "" {
		p.ShelfLocation = &shelf
	}
	return p
}

func TestBuildProductContext_AllProducts(t *testing.T) {
	source := &fakeProductSource{
		all: []*models.Product{
			product(1, "Apple Juice", "Beverages", "4.99", "A1-B3"),
			product(2, "Wheat Bread", "Bakery", "2.5", "B2-C1"),
		},
	}

	builder := NewContextBuilder(source, 2048)
	result, err := builder.BuildProductContext(context.Background(), "")
	require.NoError(t, err)

	// ヘッダと商品行の形式を確認
	assert.True(t, strings.HasPrefix(result.Context, "Products:"))
	assert.Contains(t, result.Context, "- #1 | Apple Juice | Beverages | 4.99 | A1-B3")
	assert.Contains(t, result.Context, "- #2 | Wheat Bread | Bakery | 2.5 | B2-C1")
	assert.Len(t, result.Matches, 2)
}

func TestBuildProductContext_WithKeyword(t *testing.T) {
	source := &fakeProductSource{
		all: []*models.Product{
			product(1, "Apple Juice", "Beverages", "4.99", ""),
			product(2, "Wheat Bread", "Bakery", "2.5", ""),
		},
		filtered: []*models.Product{
			product(1, "Apple Juice", "Beverages", "4.99", ""),
		},
	}

	builder := NewContextBuilder(source, 2048)
	result, err := builder.BuildProductContext(context.Background(), "juice")
	require.NoError(t, err)

	assert.Contains(t, result.Context, "Apple Juice")
	assert.NotContains(t, result.Context, "Wheat Bread")
	assert.Len(t, result.Matches, 1)
}

func TestBuildProductContext_NoMatches(t *testing.T) {
	source := &fakeProductSource{}

	builder := NewContextBuilder(source, 2048)
	result, err := builder.BuildProductContext(context.Background(), "nonexistent")
	require.NoError(t, err)

	// 空文字列ではなく固定文言を返すことを確認
	assert.Equal(t, NoProductsContext, result.Context)
	assert.Empty(t, result.Matches)
}

func TestBuildProductContext_MissingOptionalFields(t *testing.T) {
	source := &fakeProductSource{
		all: []*models.Product{product(7, "Mystery Item", "", "", "")},
	}

	builder := NewContextBuilder(source, 2048)
	result, err := builder.BuildProductContext(context.Background(), "")
	require.NoError(t, err)

	// 未設定フィールドは空欄として整形される
	assert.Contains(t, result.Context, "- #7 | Mystery Item |  |  | ")
}

func TestBuildProductContext_TruncatesToTokenBudget(t *testing.T) {
	products := make([]*models.Product, 100)
	for i := range products {
		products[i] = product(int64(i+1), "Product With A Fairly Long Name", "Category", "9.99", "Z9-Z9")
	}
	source := &fakeProductSource{all: products}

	// 全件はとても収まらない小さな上限
	builder := NewContextBuilder(source, 50)
	result, err := builder.BuildProductContext(context.Background(), "")
	require.NoError(t, err)

	// 切り詰めマーカーが付与され、Matchesは全件のまま
	assert.Contains(t, result.Context, "more products omitted)")
	assert.Len(t, result.Matches, 100)

	// レンダリングされた行数は全件より少ない
	lines := strings.Count(result.Context, "- #")
	assert.Less(t, lines, 100)
	assert.Greater(t, lines, 0)
}
