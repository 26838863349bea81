package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/jinford/shelf-assistant/pkg/models"
)

// NoProductsContext は一致する商品が1件もない場合の固定文言です
// 空文字列ではなくこの文言を返すことで、LLM側に「該当なし」を明示します
const NoProductsContext = "Products: (none)"

// tokenEncoding はトークン数計算に使用するエンコーディング名
const tokenEncoding = "cl100k_base"

// ProductSource は商品の検索・列挙を提供するインターフェース
type ProductSource interface {
	List(ctx context.Context) ([]*models.Product, error)
	Search(ctx context.Context, keyword string) ([]*models.Product, error)
}

// ProductContext は整形済みコンテキストと一致した商品レコードを保持します
type ProductContext struct {
	// Context はプロンプトへ注入するテキストブロック
	Context string

	// Matches は一致した商品レコード（切り詰め前の全件）
	Matches []*models.Product
}

// ContextBuilder は商品レコードからLLMプロンプト用のコンテキストを構築します
//
// コンテキストはリクエストごとに組み立て直され、キャッシュされません。
// 巨大なカタログでプロンプトが無制限に膨らまないよう、レンダリング結果は
// maxTokensの範囲に行単位で切り詰められます。
type ContextBuilder struct {
	source    ProductSource
	maxTokens int
	encoder   *tiktoken.Tiktoken // nilの場合は文字数ベースで概算
}

// NewContextBuilder は新しいContextBuilderを作成します
//
// トークン数の計算にはtiktokenを使用します。エンコーディングが取得
// できない環境（オフライン等）では文字数ベースの概算にフォールバック
// します（1トークン ≈ 4文字）。
func NewContextBuilder(source ProductSource, maxTokens int) *ContextBuilder {
	encoder, err := tiktoken.GetEncoding(tokenEncoding)
	if err != nil {
		encoder = nil
	}

	return &ContextBuilder{
		source:    source,
		maxTokens: maxTokens,
		encoder:   encoder,
	}
}

// BuildProductContext は商品コンテキストを構築します
//
// keywordが空でない場合は検索結果、空の場合は全商品を対象とします。
// 一致が0件の場合、ContextはNoProductsContextになります。
func (cb *ContextBuilder) BuildProductContext(ctx context.Context, keyword string) (*ProductContext, error) {
	var (
		matches []*models.Product
		err     error
	)

	if keyword != "" {
		matches, err = cb.source.Search(ctx, keyword)
		if err != nil {
			return nil, fmt.Errorf("failed to search products: %w", err)
		}
	} else {
		matches, err = cb.source.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list products: %w", err)
		}
	}

	if len(matches) == 0 {
		return &ProductContext{Context: NoProductsContext, Matches: matches}, nil
	}

	return &ProductContext{
		Context: cb.render(matches),
		Matches: matches,
	}, nil
}

// render は商品レコードを1行ずつのテキストブロックに整形します
// トークン上限を超える場合は行単位で切り詰め、省略件数を明示します
func (cb *ContextBuilder) render(products []*models.Product) string {
	var builder strings.Builder
	builder.WriteString("Products:")

	used := cb.countTokens("Products:")
	rendered := 0

	for _, product := range products {
		line := "\n" + formatProductLine(product)
		cost := cb.countTokens(line)
		if cb.maxTokens > 0 && used+cost > cb.maxTokens {
			break
		}
		builder.WriteString(line)
		used += cost
		rendered++
	}

	if omitted := len(products) - rendered; omitted > 0 {
		builder.WriteString(fmt.Sprintf("\n... (%d more products omitted)", omitted))
	}

	return builder.String()
}

// formatProductLine は商品1件を `- #<id> | <name> | <category> | <price> | <shelf_location>` 形式に整形します
func formatProductLine(p *models.Product) string {
	category := ""
	if p.Category != nil {
		category = *p.Category
	}
	price := ""
	if p.Price != nil {
		price = p.Price.String()
	}
	shelf := ""
	if p.ShelfLocation != nil {
		shelf = *p.ShelfLocation
	}

	return fmt.Sprintf("- #%d | %s | %s | %s | %s", p.ID, p.Name, category, price, shelf)
}

// countTokens はテキストのトークン数を計算します
func (cb *ContextBuilder) countTokens(text string) int {
	if cb.encoder != nil {
		return len(cb.encoder.Encode(text, nil, nil))
	}
	// 概算: 1トークン ≈ 4文字
	return (len(text) + 3) / 4
}
