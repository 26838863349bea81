package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/jinford/shelf-assistant/pkg/models"
)

// ProductListAction は商品一覧を表示するコマンドのアクション
func ProductListAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	search := cmd.String("search")

	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	var products []*models.Product
	if search != "" {
		products, err = appCtx.Products.Search(ctx, search)
	} else {
		products, err = appCtx.Products.List(ctx)
	}
	if err != nil {
		return err
	}

	if len(products) == 0 {
		fmt.Println("商品が登録されていません")
		return nil
	}

	fmt.Printf("%-6s %-30s %-15s %10s %8s %-10s\n", "ID", "NAME", "CATEGORY", "PRICE", "STOCK", "SHELF")
	for _, p := range products {
		fmt.Printf("%-6d %-30s %-15s %10s %8d %-10s\n",
			p.ID,
			p.Name,
			strOrEmpty(p.Category),
			priceOrEmpty(p),
			p.StockQuantity,
			strOrEmpty(p.ShelfLocation),
		)
	}
	fmt.Printf("合計: %d件\n", len(products))

	return nil
}

// ProductShowAction は商品詳細を表示するコマンドのアクション
func ProductShowAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	id := cmd.Int64("id")

	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	product, err := appCtx.Products.Get(ctx, id)
	if err != nil {
		return err
	}

	fmt.Printf("ID:             %d\n", product.ID)
	fmt.Printf("名前:           %s\n", product.Name)
	fmt.Printf("説明:           %s\n", strOrEmpty(product.Description))
	fmt.Printf("カテゴリ:       %s\n", strOrEmpty(product.Category))
	fmt.Printf("価格:           %s\n", priceOrEmpty(product))
	fmt.Printf("在庫数:         %d\n", product.StockQuantity)
	fmt.Printf("棚位置:         %s\n", strOrEmpty(product.ShelfLocation))
	fmt.Printf("バーコード:     %s\n", strOrEmpty(product.Barcode))
	fmt.Printf("作成日時:       %s\n", product.CreatedAt.Local())
	fmt.Printf("更新日時:       %s\n", product.UpdatedAt.Local())

	return nil
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func priceOrEmpty(p *models.Product) string {
	if p.Price == nil {
		return ""
	}
	return p.Price.String()
}
