package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ragline/ragline"
	"github.com/ragline/ragline/domain/chat"
	"github.com/ragline/ragline/domain/document"
	v1 "github.com/ragline/ragline/infrastructure/api/v1"
	"github.com/ragline/ragline/infrastructure/api/v1/dto"
	"github.com/ragline/ragline/infrastructure/runtime"
	"github.com/ragline/ragline/internal/config"
)

// stubParser turns the raw upload bytes into a single page of text. Files
// containing "FAIL" report a parse error, letting tests exercise partial
// batch failures.
type stubParser struct{}

func (stubParser) Parse(_ context.Context, data []byte) ([]document.PageText, error) {
	text := string(data)
	if strings.Contains(text, "FAIL") {
		return nil, errors.New("corrupt pdf")
	}
	return []document.PageText{document.NewPageText(1, text)}, nil
}

type stubEmbedder struct{}

func (stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

type stubRuntime struct{}

func (stubRuntime) Complete(_ context.Context, _ []chat.Message, _ config.SamplingConfig) (string, error) {
	return "stub answer", nil
}

func (stubRuntime) Close() error { return nil }

func newTestClient(t *testing.T, modelFiles ...string) *ragline.Client {
	t.Helper()

	tmpDir := t.TempDir()
	modelDir := filepath.Join(tmpDir, "models")
	if err := os.MkdirAll(modelDir, 0o755); err != nil {
		t.Fatalf("create model dir: %v", err)
	}
	for _, name := range modelFiles {
		if err := os.WriteFile(filepath.Join(modelDir, name), []byte("gguf"), 0o644); err != nil {
			t.Fatalf("write model file: %v", err)
		}
	}

	cfg := config.NewAppConfigWithOptions(
		config.WithDataDir(tmpDir),
		config.WithDBURL("sqlite:///"+filepath.Join(tmpDir, "test.db")),
		config.WithModelDir(modelDir),
	)

	factory := func(_ context.Context, _ string, _ config.RuntimeConfig) (runtime.Runtime, error) {
		return stubRuntime{}, nil
	}

	client, err := ragline.New(
		ragline.WithConfig(cfg),
		ragline.WithParser(stubParser{}),
		ragline.WithEmbedder(stubEmbedder{}),
		ragline.WithRuntimeFactory(factory),
	)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func multipartBody(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, content := range files {
		part, err := writer.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte(content)); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func uploadFiles(t *testing.T, client *ragline.Client, files map[string]string) dto.UploadResponse {
	t.Helper()

	routes := v1.NewDocumentsRouter(client).Routes()
	body, contentType := multipartBody(t, files)

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	routes.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("upload status = %v, want %v (body: %s)", w.Code, http.StatusCreated, w.Body.String())
	}

	var response dto.UploadResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	return response
}

func TestDocumentsRouter_UploadAndList(t *testing.T) {
	client := newTestClient(t)

	response := uploadFiles(t, client, map[string]string{
		"alpha.pdf": "alpha page text",
		"beta.pdf":  "beta page text",
	})

	if len(response.Results) != 2 {
		t.Fatalf("len(Results) = %v, want 2", len(response.Results))
	}
	if len(response.Errors) != 0 {
		t.Errorf("len(Errors) = %v, want 0", len(response.Errors))
	}
	for _, result := range response.Results {
		if result.AlreadyExists {
			t.Errorf("%s: AlreadyExists = true, want false", result.FileName)
		}
		if result.ChunksInserted != 1 {
			t.Errorf("%s: ChunksInserted = %v, want 1", result.FileName, result.ChunksInserted)
		}
	}

	// Originals are archived under the upload directory.
	entries, err := os.ReadDir(client.Config().UploadDir())
	if err != nil {
		t.Fatalf("read upload dir: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("archived uploads = %v, want 2", len(entries))
	}

	routes := v1.NewDocumentsRouter(client).Routes()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	routes.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("list status = %v, want %v", w.Code, http.StatusOK)
	}

	var list dto.DocumentListResponse
	if err := json.NewDecoder(w.Body).Decode(&list); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if list.Total != 2 {
		t.Errorf("Total = %v, want 2", list.Total)
	}
	if len(list.Documents) != 2 {
		t.Errorf("len(Documents) = %v, want 2", len(list.Documents))
	}
}

func TestDocumentsRouter_Upload_PartialFailure(t *testing.T) {
	client := newTestClient(t)

	response := uploadFiles(t, client, map[string]string{
		"good.pdf": "readable text",
		"bad.pdf":  "FAIL marker",
	})

	if len(response.Results) != 1 {
		t.Fatalf("len(Results) = %v, want 1", len(response.Results))
	}
	if response.Results[0].FileName != "good.pdf" {
		t.Errorf("result file = %v, want good.pdf", response.Results[0].FileName)
	}
	if len(response.Errors) != 1 {
		t.Fatalf("len(Errors) = %v, want 1", len(response.Errors))
	}
	if response.Errors[0].FileName != "bad.pdf" {
		t.Errorf("error file = %v, want bad.pdf", response.Errors[0].FileName)
	}
}

func TestDocumentsRouter_Upload_DuplicateContent(t *testing.T) {
	client := newTestClient(t)

	uploadFiles(t, client, map[string]string{"first.pdf": "same bytes"})
	response := uploadFiles(t, client, map[string]string{"second.pdf": "same bytes"})

	if len(response.Results) != 1 {
		t.Fatalf("len(Results) = %v, want 1", len(response.Results))
	}
	if !response.Results[0].AlreadyExists {
		t.Error("AlreadyExists = false, want true")
	}
	if response.Results[0].ChunksInserted != 0 {
		t.Errorf("ChunksInserted = %v, want 0", response.Results[0].ChunksInserted)
	}
}

func TestDocumentsRouter_Upload_NoFiles(t *testing.T) {
	client := newTestClient(t)
	routes := v1.NewDocumentsRouter(client).Routes()

	body, contentType := multipartBody(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	routes.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %v, want %v", w.Code, http.StatusBadRequest)
	}
}

func TestDocumentsRouter_Delete(t *testing.T) {
	client := newTestClient(t)

	response := uploadFiles(t, client, map[string]string{"doc.pdf": "page text"})
	id := response.Results[0].DocumentID

	routes := v1.NewDocumentsRouter(client).Routes()
	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/%d", id), nil)
	w := httptest.NewRecorder()
	routes.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %v, want %v", w.Code, http.StatusNoContent)
	}

	req = httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/%d", id), nil)
	w = httptest.NewRecorder()
	routes.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %v, want %v", w.Code, http.StatusNotFound)
	}
}

func TestDocumentsRouter_Delete_InvalidID(t *testing.T) {
	client := newTestClient(t)
	routes := v1.NewDocumentsRouter(client).Routes()

	req := httptest.NewRequest(http.MethodDelete, "/not-a-number", nil)
	w := httptest.NewRecorder()
	routes.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %v, want %v", w.Code, http.StatusBadRequest)
	}
}

func TestChatRouter_Ask(t *testing.T) {
	client := newTestClient(t, "phi-2-q4.gguf")

	upload := uploadFiles(t, client, map[string]string{"doc.pdf": "relevant page text"})
	docID := upload.Results[0].DocumentID

	routes := v1.NewChatRouter(client).Routes()
	body, _ := json.Marshal(dto.ChatRequest{
		Question:    "what does the document say?",
		DocumentIDs: []int64{docID},
	})

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	routes.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %v, want %v (body: %s)", w.Code, http.StatusOK, w.Body.String())
	}

	var response dto.ChatResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Answer != "stub answer" {
		t.Errorf("Answer = %v, want 'stub answer'", response.Answer)
	}
	if response.ModelFile != "phi-2-q4.gguf" {
		t.Errorf("ModelFile = %v, want phi-2-q4.gguf", response.ModelFile)
	}
	if len(response.Sources) != 1 {
		t.Errorf("len(Sources) = %v, want 1", len(response.Sources))
	}
}

func TestChatRouter_Ask_MissingQuestion(t *testing.T) {
	client := newTestClient(t, "phi-2-q4.gguf")
	routes := v1.NewChatRouter(client).Routes()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	routes.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %v, want %v", w.Code, http.StatusBadRequest)
	}
}

func TestChatRouter_Ask_NoModels(t *testing.T) {
	client := newTestClient(t)
	routes := v1.NewChatRouter(client).Routes()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"question":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	routes.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %v, want %v", w.Code, http.StatusNotFound)
	}
}

func TestModelsRouter_List(t *testing.T) {
	client := newTestClient(t, "b-model.gguf", "a-model.gguf")
	routes := v1.NewModelsRouter(client).Routes()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	routes.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %v, want %v", w.Code, http.StatusOK)
	}

	var response dto.ModelListResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(response.Models) != 2 {
		t.Fatalf("len(Models) = %v, want 2", len(response.Models))
	}
	if response.Models[0].FileName != "a-model.gguf" {
		t.Errorf("first model = %v, want a-model.gguf", response.Models[0].FileName)
	}
	if response.Models[0].Loaded {
		t.Error("Loaded = true, want false")
	}
}
