package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lazypower/synapse/internal/config"
	"github.com/lazypower/synapse/internal/graph"
	"github.com/lazypower/synapse/internal/store"
)

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	fw.Write([]byte(content))
	w.Close()
	return &buf, w.FormDataContentType()
}

func TestIngestMultipartMarkdown(t *testing.T) {
	srv := testServer(t)
	body, contentType := multipartBody(t, "markdown_files", "garden.md",
		"# Garden Notes\n\ntomatoes need regular watering")

	req := httptest.NewRequest("POST", "/api/ingest", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["nodes_created"] != float64(1) {
		t.Errorf("nodes_created = %v, want 1", resp["nodes_created"])
	}

	n, ok := srv.graph.NodeBySource(graph.KindNote, "garden.md")
	if !ok {
		t.Fatal("markdown node not in graph")
	}
	if n.Title != "Garden Notes" {
		t.Errorf("title = %q, want Garden Notes", n.Title)
	}
}

func TestIngestMultipartLinks(t *testing.T) {
	srv := testServer(t)
	body, contentType := multipartBody(t, "links_file", "bookmarks.json",
		`[{"url":"https://example.com/raft","title":"Raft"}]`)

	req := httptest.NewRequest("POST", "/api/ingest", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if _, ok := srv.graph.NodeBySource(graph.KindLink, "https://example.com/raft"); !ok {
		t.Error("link node not in graph")
	}
}

func TestIngestMultipartBadPDFReported(t *testing.T) {
	srv := testServer(t)
	body, contentType := multipartBody(t, "pdf_files", "broken.pdf", "not a pdf at all")

	req := httptest.NewRequest("POST", "/api/ingest", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with per-item error", w.Code)
	}
	var resp struct {
		Errors         []graph.ItemError `json:"errors"`
		ItemsProcessed int               `json:"items_processed"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Errors) != 1 || resp.Errors[0].SourceReference != "broken.pdf" {
		t.Fatalf("errors = %+v, want one for broken.pdf", resp.Errors)
	}
	if resp.ItemsProcessed != 1 {
		t.Errorf("items_processed = %d, want 1", resp.ItemsProcessed)
	}
}

func TestMutationsPersistToDatabase(t *testing.T) {
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	g := graph.NewStore()
	srv := New(g, graph.NewBuilder(g, fixedProvider{}), db, config.Default(), "test")
	ingestNotes(t, srv, "a.md", "b.md")

	reloaded := graph.NewStore()
	if err := db.LoadGraph(reloaded); err != nil {
		t.Fatalf("LoadGraph: %v", err)
	}
	if reloaded.NodeCount() != 2 || reloaded.EdgeCount() != 1 {
		t.Errorf("persisted = %d nodes, %d edges, want 2, 1",
			reloaded.NodeCount(), reloaded.EdgeCount())
	}
}
