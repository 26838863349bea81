package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/jinford/shelf-assistant/cmd/shelf-assistant/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	envFlag := &cli.StringFlag{
		Name:  "env",
		Usage: "環境変数ファイルパス",
		Value: ".env",
	}

	app := &cli.Command{
		Name:  "shelf-assistant",
		Usage: "スマート棚デモ用のバックエンドAPIサーバおよび管理CLI",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "HTTP APIサーバを起動",
				Flags:  []cli.Flag{envFlag},
				Action: commands.ServeAction,
			},
			{
				Name:   "status",
				Usage:  "バックエンドサービスの状態を表示",
				Flags:  []cli.Flag{envFlag},
				Action: commands.StatusAction,
			},
			{
				Name:  "product",
				Usage: "商品管理コマンド",
				Commands: []*cli.Command{
					{
						Name:  "list",
						Usage: "商品一覧を表示",
						Flags: []cli.Flag{
							envFlag,
							&cli.StringFlag{
								Name:  "search",
								Usage: "キーワードで絞り込み",
							},
						},
						Action: commands.ProductListAction,
					},
					{
						Name:  "show",
						Usage: "商品詳細を表示",
						Flags: []cli.Flag{
							envFlag,
							&cli.Int64Flag{
								Name:     "id",
								Usage:    "商品ID",
								Required: true,
							},
						},
						Action: commands.ProductShowAction,
					},
				},
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatalf("エラー: %v", err)
	}
}
