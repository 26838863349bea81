// Package vision は物体検出を外部サービスに委譲する薄いアダプタ層です
//
// 検出モデルそのものはこのリポジトリでは実装しません。検出処理は
// 狭いDetectorインターフェースの背後に置かれ、実サーバがない環境でも
// フェイク実装でオーケストレーション側をテストできます。
package vision

import "context"

// NoDetectionsMessage は検出結果が0件の場合の固定文言です
// 本番向けのエラーハンドリングではなく、意図的なプレースホルダです
const NoDetectionsMessage = "no objects detected"

// Detection は検出された物体1件を表します
type Detection struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	// Box は [x1, y1, x2, y2]
	Box [4]float64 `json:"box"`
}

// Detector は画像内の物体検出を行うインターフェース
type Detector interface {
	Detect(ctx context.Context, imagePath string) ([]Detection, error)
}

// StubDetector は検出サーバが構成されていない場合のDetector実装です
// 常に空の検出結果を返します
type StubDetector struct{}

// Detect は常に0件の検出結果を返します
func (StubDetector) Detect(ctx context.Context, imagePath string) ([]Detection, error) {
	return []Detection{}, nil
}
