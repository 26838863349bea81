package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/jinford/shelf-assistant/pkg/llm"
	"github.com/jinford/shelf-assistant/pkg/models"
)

// アップロードの最大サイズ
const maxUploadBytes = 32 << 20 // 32MB

// handleLLMStatus は推論バックエンドの状態を返します
func (s *Server) handleLLMStatus(w http.ResponseWriter, r *http.Request) {
	status := s.deps.Inference.GetStatus(r.Context())

	writeJSON(w, http.StatusOK, models.Response{
		Success: status.IsConnected,
		Message: "LLM status",
		Data:    status,
	})
}

// handleAsk は商品コンテキスト付きの質問応答を実行します
//
// searchフィールドでコンテキストに含める商品を絞り込めます。
// modelフィールドはこのリクエストに限りモデルを上書きします。
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	question := r.FormValue("question")
	if question == "" {
		writeError(w, r, validationError("question is required"))
		return
	}
	search := r.FormValue("search")
	model := r.FormValue("model")

	productCtx, err := s.deps.Context.BuildProductContext(r.Context(), search)
	if err != nil {
		writeError(w, r, err)
		return
	}

	answer, err := s.deps.Inference.GenerateAnswer(r.Context(), question, productCtx.Context, llm.GenerateOptions{
		Model: model,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, "OK", answer)
}

// handleQuery はテキスト質問または画像質問を受け付けます
// 両方が指定された場合は画像が優先されます
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	imagePath, hasImage, err := s.saveUploadedFile(r, "image", "query")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if hasImage {
		userQuery := r.FormValue("query")
		if userQuery == "" {
			userQuery = "Describe the image succinctly."
		}

		answer, err := s.deps.Inference.ImageToText(r.Context(), imagePath, userQuery)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, "OK", answer)
		return
	}

	question := r.FormValue("question")
	if question == "" {
		writeError(w, r, validationError("question or image is required"))
		return
	}

	productCtx, err := s.deps.Context.BuildProductContext(r.Context(), "")
	if err != nil {
		writeError(w, r, err)
		return
	}

	answer, err := s.deps.Inference.GenerateAnswer(r.Context(), question, productCtx.Context, llm.GenerateOptions{})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, "OK", answer)
}

// handleVoice は音声ファイルを書き起こし、その内容で回答を生成します
// 書き起こしと回答の両方をレスポンスに含めます
func (s *Server) handleVoice(w http.ResponseWriter, r *http.Request) {
	audioPath, hasAudio, err := s.saveUploadedFile(r, "audio", "voice")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !hasAudio {
		writeError(w, r, validationError("audio file is required"))
		return
	}

	transcript, err := s.deps.Transcriber.Transcribe(r.Context(), audioPath)
	if err != nil {
		writeError(w, r, err)
		return
	}

	answer, err := s.deps.Inference.GenerateAnswer(r.Context(), transcript, "", llm.GenerateOptions{})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, "OK", map[string]string{
		"transcript": transcript,
		"response":   answer,
	})
}

// handleSTTStatus は音声認識サービスの状態を返します
func (s *Server) handleSTTStatus(w http.ResponseWriter, r *http.Request) {
	writeData(w, "STT status", s.deps.Transcriber.GetStatus())
}

// saveUploadedFile はmultipartのファイルフィールドを保存します
// フィールドが存在しない場合は hasFile=false を返します（エラーにしない）
func (s *Server) saveUploadedFile(r *http.Request, field, prefix string) (path string, hasFile bool, err error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return "", false, nil
		}
		return "", false, validationError("invalid multipart form: " + err.Error())
	}

	file, _, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", false, nil
		}
		return "", false, validationError("invalid file field: " + err.Error())
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", false, validationError("failed to read uploaded file: " + err.Error())
	}

	path, err = s.deps.Media.SaveUpload(data, prefix)
	if err != nil {
		return "", false, err
	}
	return path, true, nil
}
