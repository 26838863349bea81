package server

import (
	"net/http"

	"github.com/jinford/shelf-assistant/pkg/vision"
)

// handleDetect はアップロード画像に対して物体検出を実行します
func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	imagePath, hasFile, err := s.saveUploadedFile(r, "file", "detect")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !hasFile {
		writeError(w, r, validationError("image file is required"))
		return
	}

	detections, err := s.deps.Detector.Detect(r.Context(), imagePath)
	if err != nil {
		writeError(w, r, err)
		return
	}

	message := "Detection completed"
	if len(detections) == 0 {
		// 0件は失敗ではなく固定文言で通知する
		message = vision.NoDetectionsMessage
	}

	writeData(w, message, detections)
}

// handleCapture はカメラで撮影し、画像の説明文を返します
func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	imagePath, err := s.deps.Media.Capture(r.Context(), "capture")
	if err != nil {
		writeError(w, r, err)
		return
	}

	caption, err := s.deps.Inference.CaptionImage(r.Context(), imagePath, "")
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, "Image captured and captioned", caption)
}
