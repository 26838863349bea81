package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOllama はOllamaサーバを模したテストサーバです
type fakeOllama struct {
	tagsStatus   int
	generateFunc func(req generateRequest) (int, string)

	generateCalls []generateRequest
}

func (f *fakeOllama) server(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		status := f.tagsStatus
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
	})
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		f.generateCalls = append(f.generateCalls, req)

		status, body := http.StatusOK, `{"response":"ok"}`
		if f.generateFunc != nil {
			status, body = f.generateFunc(req)
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestClient(serverURL string) *Client {
	cfg := DefaultConfig()
	cfg.BaseURL = serverURL
	return NewClient(cfg)
}

func writeTestImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shelf.jpg")
	require.NoError(t, os.WriteFile(path, []byte("fake-jpeg-bytes"), 0o644))
	return path
}

func TestGenerateAnswer(t *testing.T) {
	fake := &fakeOllama{
		generateFunc: func(req generateRequest) (int, string) {
			return http.StatusOK, `{"response":"Apple Juice is on shelf A1-B3."}`
		},
	}
	client := newTestClient(fake.server(t).URL)

	answer, err := client.GenerateAnswer(context.Background(), "Where is the apple juice?", "Products:\n- #1 | Apple Juice | Beverages | 4.99 | A1-B3", GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Apple Juice is on shelf A1-B3.", answer)

	require.Len(t, fake.generateCalls, 1)
	req := fake.generateCalls[0]

	// プロンプトの構造とデフォルトパラメータを確認
	assert.Equal(t, "phi3:mini", req.Model)
	assert.False(t, req.Stream)
	assert.Contains(t, req.Prompt, DefaultSystemPrompt)
	assert.Contains(t, req.Prompt, "Context:\nProducts:")
	assert.Contains(t, req.Prompt, "Question: Where is the apple juice?\nAnswer:")
	assert.Equal(t, DefaultTemperature, req.Options.Temperature)
	assert.Equal(t, DefaultTopP, req.Options.TopP)
	assert.Equal(t, DefaultRepeatPenalty, req.Options.RepeatPenalty)
	assert.Zero(t, req.Options.NumPredict)
}

func TestGenerateAnswer_NoContext(t *testing.T) {
	fake := &fakeOllama{}
	client := newTestClient(fake.server(t).URL)

	_, err := client.GenerateAnswer(context.Background(), "Hello", "", GenerateOptions{})
	require.NoError(t, err)

	require.Len(t, fake.generateCalls, 1)
	assert.NotContains(t, fake.generateCalls[0].Prompt, "Context:")
}

func TestGenerateAnswer_ModelOverride(t *testing.T) {
	fake := &fakeOllama{}
	client := newTestClient(fake.server(t).URL)

	_, err := client.GenerateAnswer(context.Background(), "Hello", "", GenerateOptions{
		Model:     "phi",
		MaxTokens: 64,
	})
	require.NoError(t, err)

	require.Len(t, fake.generateCalls, 1)
	assert.Equal(t, "phi", fake.generateCalls[0].Model)
	assert.Equal(t, 64, fake.generateCalls[0].Options.NumPredict)
}

func TestGenerateAnswer_Unavailable(t *testing.T) {
	fake := &fakeOllama{tagsStatus: http.StatusInternalServerError}
	client := newTestClient(fake.server(t).URL)

	_, err := client.GenerateAnswer(context.Background(), "Hello", "", GenerateOptions{})

	var unavailable *UnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Contains(t, unavailable.Error(), client.Endpoint())

	// 疎通確認に失敗した場合、生成リクエストは送信されない
	assert.Empty(t, fake.generateCalls)
}

func TestGenerateAnswer_BackendError(t *testing.T) {
	fake := &fakeOllama{
		generateFunc: func(req generateRequest) (int, string) {
			return http.StatusNotFound, `{"error":"model not found"}`
		},
	}
	client := newTestClient(fake.server(t).URL)

	_, err := client.GenerateAnswer(context.Background(), "Hello", "", GenerateOptions{})

	var backendErr *BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, http.StatusNotFound, backendErr.StatusCode)
	assert.Contains(t, backendErr.Body, "model not found")
}

func TestGenerateAnswer_EmptyResponseField(t *testing.T) {
	fake := &fakeOllama{
		generateFunc: func(req generateRequest) (int, string) {
			return http.StatusOK, `{}`
		},
	}
	client := newTestClient(fake.server(t).URL)

	// responseフィールドの欠落はエラーではなく空文字列
	answer, err := client.GenerateAnswer(context.Background(), "Hello", "", GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "", answer)
}

func TestAnalyzeImage(t *testing.T) {
	fake := &fakeOllama{
		generateFunc: func(req generateRequest) (int, string) {
			return http.StatusOK, `{"response":"A shelf with bottles."}`
		},
	}
	client := newTestClient(fake.server(t).URL)

	result, err := client.AnalyzeImage(context.Background(), writeTestImage(t), "What is on the shelf?", GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "A shelf with bottles.", result)

	require.Len(t, fake.generateCalls, 1)
	req := fake.generateCalls[0]
	assert.Equal(t, "moondream", req.Model)
	assert.Equal(t, "What is on the shelf?", req.Prompt)
	require.Len(t, req.Images, 1)
	assert.NotEmpty(t, req.Images[0])
}

func TestImageToText_TwoStages(t *testing.T) {
	fake := &fakeOllama{
		generateFunc: func(req generateRequest) (int, string) {
			if len(req.Images) > 0 {
				return http.StatusOK, `{"response":"raw vision output"}`
			}
			return http.StatusOK, `{"response":"refined answer"}`
		},
	}
	client := newTestClient(fake.server(t).URL)

	result, err := client.ImageToText(context.Background(), writeTestImage(t), "how many bottles?")
	require.NoError(t, err)
	assert.Equal(t, "refined answer", result)

	// 第1段は画像理解モデル、第2段はテキストモデル
	require.Len(t, fake.generateCalls, 2)
	assert.Equal(t, "moondream", fake.generateCalls[0].Model)
	assert.Equal(t, "phi3:mini", fake.generateCalls[1].Model)
	assert.Contains(t, fake.generateCalls[1].Prompt, "Raw image analysis: raw vision output")
	assert.Contains(t, fake.generateCalls[1].Prompt, "User query: how many bottles?")
}

func TestImageToText_Stage1FailureAbortsPipeline(t *testing.T) {
	fake := &fakeOllama{
		generateFunc: func(req generateRequest) (int, string) {
			return http.StatusBadGateway, "vision backend down"
		},
	}
	client := newTestClient(fake.server(t).URL)

	_, err := client.ImageToText(context.Background(), writeTestImage(t), "how many bottles?")

	var backendErr *BackendError
	require.ErrorAs(t, err, &backendErr)

	// 第2段は実行されない
	assert.Len(t, fake.generateCalls, 1)
}

func TestCaptionImage_DefaultPrompt(t *testing.T) {
	fake := &fakeOllama{}
	client := newTestClient(fake.server(t).URL)

	_, err := client.CaptionImage(context.Background(), writeTestImage(t), "")
	require.NoError(t, err)

	require.Len(t, fake.generateCalls, 1)
	assert.Equal(t, "Describe the image succinctly.", fake.generateCalls[0].Prompt)
}

func TestGetStatus(t *testing.T) {
	fake := &fakeOllama{}
	client := newTestClient(fake.server(t).URL)

	status := client.GetStatus(context.Background())
	assert.Equal(t, "Ollama", status.ServiceName)
	assert.Equal(t, "phi3:mini", status.TextModel)
	assert.Equal(t, "moondream", status.VisionModel)
	assert.True(t, status.IsConnected)
	assert.Equal(t, "ok", status.Status)
}

func TestGetStatus_Unreachable(t *testing.T) {
	fake := &fakeOllama{tagsStatus: http.StatusServiceUnavailable}
	client := newTestClient(fake.server(t).URL)

	status := client.GetStatus(context.Background())
	assert.False(t, status.IsConnected)
	assert.Equal(t, "unreachable", status.Status)
}
