package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audiobook/model"
	"audiobook/rag"
	"audiobook/store"
	"audiobook/types"
)

// flatEmbedder gives every text the same unit vector. Retrieval order then
// falls back to the id tie-break, which is all these handler tests need.
type flatEmbedder struct{}

func (flatEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0, 0}
	}
	return out, nil
}

func (flatEmbedder) Dimension() int { return 4 }
func (flatEmbedder) Name() string   { return "flat-test" }

type cannedCompleter struct{ err error }

func (c cannedCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return "a canned answer", nil
}

func (cannedCompleter) Name() string { return "canned-test" }

func newTestApp(completerErr error) *fiber.App {
	service := rag.NewService(
		log.New(io.Discard),
		store.NewMemoryStore(4),
		flatEmbedder{},
		cannedCompleter{err: completerErr},
		model.WordCounter{},
		rag.Options{},
	)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})

	checkHandler := NewCheckHandler()
	requestHandler := NewRequestHandler(service)

	app.Get("/check/healthy", checkHandler.HandleHealthy)
	app.Post("/api/v1/documents", requestHandler.HandleIndex)
	app.Post("/api/v1/documents/upload", requestHandler.HandleUpload)
	app.Post("/api/v1/ask", requestHandler.HandleAsk)
	app.Get("/api/v1/history", requestHandler.HandleHistory)
	app.Delete("/api/v1/history", requestHandler.HandleClearHistory)

	return app
}

func doJSON(t *testing.T, app *fiber.App, method, target string, payload any) (*http.Response, map[string]any) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]any
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, &decoded), "body: %s", data)
	}
	return resp, decoded
}

func indexTestDoc(t *testing.T, app *fiber.App) {
	t.Helper()
	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/documents", fiber.Map{
		"name":   "doc1",
		"text":   "The cat sat. The dog ran. Birds fly high.",
		"method": "sentences",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %v", body)
}

func TestHandleHealthy(t *testing.T) {
	app := newTestApp(nil)
	resp, body := doJSON(t, app, http.MethodGet, "/check/healthy", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["result"])
}

func TestHandleIndex(t *testing.T) {
	app := newTestApp(nil)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/documents", fiber.Map{
		"name":   "doc1",
		"text":   "The cat sat. The dog ran. Birds fly high.",
		"method": "sentences",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "doc1", body["document"])
	assert.EqualValues(t, 3, body["units_indexed"])
}

func TestHandleIndexValidation(t *testing.T) {
	app := newTestApp(nil)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/documents", fiber.Map{
		"name": "doc1",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body["errors"], "Text")
}

func TestHandleAsk(t *testing.T) {
	app := newTestApp(nil)
	indexTestDoc(t, app)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/ask", fiber.Map{
		"question": "What did the cat do?",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "a canned answer", body["answer"])
	assert.NotEmpty(t, body["session_id"])
	assert.False(t, body["degraded"].(bool))
	assert.NotEmpty(t, body["sources"])
}

func TestHandleAskBeforeIndexing(t *testing.T) {
	app := newTestApp(nil)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/ask", fiber.Map{
		"question": "anything",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestHandleAskValidation(t *testing.T) {
	app := newTestApp(nil)
	indexTestDoc(t, app)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/ask", fiber.Map{
		"question":   "who?",
		"session_id": "not-a-uuid",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body["errors"], "SessionID")
}

func TestHandleAskDegraded(t *testing.T) {
	app := newTestApp(fmt.Errorf("%w: out of credits", types.ErrLLMQuotaExceeded))
	indexTestDoc(t, app)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/ask", fiber.Map{
		"question": "What did the cat do?",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode, "a degraded answer is still a success")
	assert.True(t, body["degraded"].(bool))
	assert.Contains(t, body["answer"], "The cat sat.")
}

func TestHandleUpload(t *testing.T) {
	app := newTestApp(nil)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "my book.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("Chapter one. It begins."))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "my_book", body["document"])
	assert.EqualValues(t, 1, body["units_indexed"])
}

func TestHandleUploadUnsupportedFormat(t *testing.T) {
	app := newTestApp(nil)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "scan.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleHistoryLifecycle(t *testing.T) {
	app := newTestApp(nil)
	indexTestDoc(t, app)

	const session = "3b241101-e2bb-4255-8caf-4136c566a962"
	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/ask", fiber.Map{
		"question":   "What did the cat do?",
		"session_id": session,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/history?session_id="+session, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, session, body["session_id"])
	assert.Len(t, body["turns"], 1)

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/v1/history?session_id="+session, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/history?session_id="+session, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["turns"])
}

func TestHandleHistoryRequiresSession(t *testing.T) {
	app := newTestApp(nil)

	resp, _ := doJSON(t, app, http.MethodGet, "/api/v1/history", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/v1/history", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
