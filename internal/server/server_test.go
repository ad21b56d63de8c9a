package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/siteradius/siteradius/internal/config"
	"github.com/siteradius/siteradius/internal/pipeline"
	"github.com/siteradius/siteradius/internal/store"
	"github.com/siteradius/siteradius/pkg/models"
)

type stubEmbedder struct{}

func (stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func (stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func (stubEmbedder) Dimension() int { return 3 }
func (stubEmbedder) Model() string  { return "stub-model" }

var testFiller = strings.Repeat("Task API integration fixture content for crawl tests. ", 5)

func testSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		switch r.URL.Path {
		case "/":
			fmt.Fprintf(w, `<html><head><title>Home</title></head><body><main><p>%s</p>
				<a href="/about">About</a></main></body></html>`, testFiller)
		case "/about":
			fmt.Fprintf(w, `<html><head><title>About</title></head><body><main><p>%s</p></main></body></html>`, testFiller)
		default:
			http.NotFound(w, r)
		}
	})
	site := httptest.NewServer(mux)
	t.Cleanup(site.Close)
	return site
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	cfg := config.Defaults()
	cfg.Crawler.Delay = time.Millisecond
	cfg.Crawler.Workers = 4

	p, err := pipeline.NewWithEmbedder(cfg, stubEmbedder{}, st)
	if err != nil {
		t.Fatalf("NewWithEmbedder() error = %v", err)
	}

	srv := New(p, st)
	api := httptest.NewServer(srv.Router())
	t.Cleanup(api.Close)
	return srv, api
}

func postAnalyze(t *testing.T, api *httptest.Server, body string) (*http.Response, analyzeResponse) {
	t.Helper()
	resp, err := http.Post(api.URL+"/analyze", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("POST /analyze error = %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var ack analyzeResponse
	if resp.StatusCode == http.StatusAccepted || resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
			t.Fatalf("decoding analyze response: %v", err)
		}
	}
	return resp, ack
}

func waitForTask(t *testing.T, api *httptest.Server, taskID string) Task {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(api.URL + "/task/" + taskID)
		if err != nil {
			t.Fatalf("GET /task error = %v", err)
		}
		var task Task
		err = json.NewDecoder(resp.Body).Decode(&task)
		resp.Body.Close()
		if err != nil {
			t.Fatalf("decoding task: %v", err)
		}
		if task.Status != TaskRunning {
			return task
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("task did not finish in time")
	return Task{}
}

func TestServer_AnalyzeFlow(t *testing.T) {
	site := testSite(t)
	_, api := newTestServer(t)

	resp, ack := postAnalyze(t, api, fmt.Sprintf(`{"url": %q, "max_pages": 10, "max_depth": 1}`, site.URL))
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("POST /analyze status = %d, want %d", resp.StatusCode, http.StatusAccepted)
	}
	if ack.TaskID == "" || ack.Status != TaskRunning {
		t.Fatalf("analyze response = %+v", ack)
	}

	task := waitForTask(t, api, ack.TaskID)
	if task.Status != TaskCompleted {
		t.Fatalf("task = %+v, want completed", task)
	}

	res, err := http.Get(api.URL + "/results/" + ack.TaskID)
	if err != nil {
		t.Fatalf("GET /results error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("GET /results status = %d, want 200", res.StatusCode)
	}

	var result models.CohesionResult
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if result.Metadata.PageCount != 2 {
		t.Errorf("PageCount = %d, want 2", result.Metadata.PageCount)
	}
	if result.Metadata.URL != site.URL {
		t.Errorf("Metadata.URL = %q, want %q", result.Metadata.URL, site.URL)
	}
}

func TestServer_AnalyzeDeduplicatesRunningTasks(t *testing.T) {
	site := testSite(t)
	srv, api := newTestServer(t)

	// Register the task as already running to pin the dedup path.
	req := pipeline.Request{URL: site.URL, MaxPages: 10, MaxDepth: 1}
	taskID := srv.pipeline.AnalysisID(req)
	srv.tasks.Start(taskID)

	resp, ack := postAnalyze(t, api, fmt.Sprintf(`{"url": %q, "max_pages": 10, "max_depth": 1}`, site.URL))
	if resp.StatusCode != http.StatusOK {
		t.Errorf("duplicate POST /analyze status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if ack.TaskID != taskID {
		t.Errorf("TaskID = %q, want %q", ack.TaskID, taskID)
	}
}

func TestServer_AnalyzeRejectsBadRequests(t *testing.T) {
	_, api := newTestServer(t)

	resp, _ := postAnalyze(t, api, `{"max_pages": 10}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing url status = %d, want 400", resp.StatusCode)
	}

	resp, _ = postAnalyze(t, api, `{not json`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", resp.StatusCode)
	}
}

func TestServer_AnalyzeFailureIsReported(t *testing.T) {
	// A server that serves nothing crawlable yields no pages, which fails
	// the analysis and must surface on the task.
	empty := httptest.NewServer(http.NotFoundHandler())
	defer empty.Close()
	_, api := newTestServer(t)

	resp, ack := postAnalyze(t, api, fmt.Sprintf(`{"url": %q, "max_pages": 5}`, empty.URL))
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("POST /analyze status = %d, want 202", resp.StatusCode)
	}

	task := waitForTask(t, api, ack.TaskID)
	if task.Status != TaskFailed {
		t.Fatalf("task = %+v, want failed", task)
	}
	if task.Error == "" {
		t.Error("failed task should carry an error message")
	}
}

func TestServer_TaskNotFound(t *testing.T) {
	_, api := newTestServer(t)

	resp, err := http.Get(api.URL + "/task/unknown")
	if err != nil {
		t.Fatalf("GET /task error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestServer_ResultsNotFound(t *testing.T) {
	_, api := newTestServer(t)

	resp, err := http.Get(api.URL + "/results/unknown")
	if err != nil {
		t.Fatalf("GET /results error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestServer_Health(t *testing.T) {
	_, api := newTestServer(t)

	resp, err := http.Get(api.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding health: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want %q", body["status"], "ok")
	}
}
