package spacyd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/driftos/driftd/pkg/provider/analyzer"
)

// fakeSidecar serves POST /parse and returns one trivially tokenized doc
// per requested text, recording each batch it receives.
type fakeSidecar struct {
	mu      sync.Mutex
	batches [][]string

	// status, if non-zero, is returned instead of a parse response.
	status int
	// short, if true, returns one doc fewer than requested.
	short bool
}

func (f *fakeSidecar) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/parse" {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Texts []string `json:"texts"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		f.mu.Lock()
		f.batches = append(f.batches, req.Texts)
		f.mu.Unlock()

		if f.status != 0 {
			http.Error(w, "model exploded", f.status)
			return
		}

		docs := make([]*analyzer.Doc, 0, len(req.Texts))
		for _, t := range req.Texts {
			doc := &analyzer.Doc{Text: t}
			for i, w := range strings.Fields(t) {
				doc.Tokens = append(doc.Tokens, analyzer.Token{Text: w, I: i, Head: 0})
			}
			docs = append(docs, doc)
		}
		if f.short && len(docs) > 0 {
			docs = docs[:len(docs)-1]
		}
		json.NewEncoder(w).Encode(map[string]any{"docs": docs})
	}
}

func (f *fakeSidecar) batchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batches)
}

func newTestClient(t *testing.T, f *fakeSidecar) *Client {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	c, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestParse(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, &fakeSidecar{})
	doc, err := c.Parse(context.Background(), "granite countertops")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Text != "granite countertops" {
		t.Errorf("doc.Text = %q", doc.Text)
	}
	if len(doc.Tokens) != 2 || doc.Tokens[1].Text != "countertops" {
		t.Errorf("doc.Tokens = %v", doc.Tokens)
	}
}

func TestPipe_Batches(t *testing.T) {
	t.Parallel()

	f := &fakeSidecar{}
	c := newTestClient(t, f)

	texts := []string{"one", "two", "three", "four", "five"}
	docs, err := c.Pipe(context.Background(), texts, 2)
	if err != nil {
		t.Fatalf("Pipe: %v", err)
	}
	if len(docs) != len(texts) {
		t.Fatalf("got %d docs, want %d", len(docs), len(texts))
	}
	for i, d := range docs {
		if d.Text != texts[i] {
			t.Errorf("docs[%d].Text = %q, want %q", i, d.Text, texts[i])
		}
	}
	if n := f.batchCount(); n != 3 {
		t.Errorf("sidecar saw %d batches, want 3", n)
	}
}

func TestPipe_DefaultBatchSize(t *testing.T) {
	t.Parallel()

	f := &fakeSidecar{}
	c := newTestClient(t, f)

	texts := make([]string, DefaultBatchSize+1)
	for i := range texts {
		texts[i] = "x"
	}
	if _, err := c.Pipe(context.Background(), texts, 0); err != nil {
		t.Fatalf("Pipe: %v", err)
	}
	if n := f.batchCount(); n != 2 {
		t.Errorf("sidecar saw %d batches, want 2", n)
	}
}

func TestPipe_Empty(t *testing.T) {
	t.Parallel()

	f := &fakeSidecar{}
	c := newTestClient(t, f)

	docs, err := c.Pipe(context.Background(), nil, 10)
	if err != nil {
		t.Fatalf("Pipe: %v", err)
	}
	if docs != nil {
		t.Errorf("docs = %v, want nil", docs)
	}
	if n := f.batchCount(); n != 0 {
		t.Errorf("sidecar saw %d batches, want none", n)
	}
}

func TestParse_BackendError(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, &fakeSidecar{status: http.StatusBadGateway})
	_, err := c.Parse(context.Background(), "hello")
	if err == nil {
		t.Fatal("Parse() = nil error, want status failure")
	}
	if !strings.Contains(err.Error(), "502") {
		t.Errorf("error %q does not carry the status code", err)
	}
}

func TestPipe_DocCountMismatch(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, &fakeSidecar{short: true})
	_, err := c.Pipe(context.Background(), []string{"a", "b"}, 10)
	if err == nil {
		t.Fatal("Pipe() = nil error, want count mismatch")
	}
	if !strings.Contains(err.Error(), "expected 2 docs") {
		t.Errorf("error = %q", err)
	}
}

func TestParse_ContextCancelled(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, &fakeSidecar{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Parse(ctx, "hello"); err == nil {
		t.Fatal("Parse() = nil error with cancelled context")
	}
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q, want default", c.baseURL)
	}

	c, err = New("http://spacyd:8200///")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.baseURL != "http://spacyd:8200" {
		t.Errorf("baseURL = %q, want trailing slashes trimmed", c.baseURL)
	}
}
