package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/jinford/shelf-assistant/internal/server"
)

// シャットダウン時に処理中リクエストの完了を待つ猶予
const shutdownTimeout = 10 * time.Second

// ServeAction はHTTP APIサーバを起動するコマンドのアクション
func ServeAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")

	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	// 起動時に推論バックエンドの疎通を確認する（失敗しても起動は継続）
	status := appCtx.LLMClient.GetStatus(ctx)
	if status.IsConnected {
		slog.Info("推論バックエンドに接続しました",
			"endpoint", status.Endpoint,
			"text_model", status.TextModel,
			"vision_model", status.VisionModel,
		)
	} else {
		slog.Warn("推論バックエンドに接続できません。問い合わせAPIは503を返します",
			"endpoint", status.Endpoint,
		)
	}

	srv := server.New(appCtx.Config.Server.Host, appCtx.Config.Server.Port, server.Deps{
		Products:    appCtx.Products,
		Context:     appCtx.Context,
		Inference:   appCtx.LLMClient,
		Transcriber: appCtx.Transcriber,
		Detector:    appCtx.Detector,
		Media:       appCtx.Camera,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		slog.Info("シャットダウンを開始します")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	}
}
