package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// StatusAction はバックエンドサービスの状態を表示するコマンドのアクション
func StatusAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")

	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	llmStatus := appCtx.LLMClient.GetStatus(ctx)
	fmt.Printf("LLM:      %s (%s)\n", llmStatus.Status, llmStatus.Endpoint)
	fmt.Printf("  テキストモデル: %s\n", llmStatus.TextModel)
	fmt.Printf("  画像モデル:     %s\n", llmStatus.VisionModel)

	sttStatus := appCtx.Transcriber.GetStatus()
	mode := "接続"
	if sttStatus.FallbackMode {
		mode = "フォールバック"
	}
	fmt.Printf("STT:      %s (%s)\n", sttStatus.ServiceName, mode)

	products, err := appCtx.Products.List(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("商品数:   %d\n", len(products))

	if backend := appCtx.Camera.Backend(); backend != "" {
		fmt.Printf("カメラ:   %s\n", backend)
	} else {
		fmt.Println("カメラ:   未初期化")
	}

	return nil
}
