package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/example/go-nertags/internal/indexer"
	"github.com/example/go-nertags/internal/server"
	"github.com/example/go-nertags/internal/vocab"
	"github.com/google/go-cmp/cmp"
)

// testVocab holds ner_tags NONE=0 PER=1 LOC=2.
func testVocab() *vocab.Vocabulary {
	v := vocab.New()
	for _, tag := range []string{"NONE", "PER", "LOC"} {
		v.AddToken("ner_tags", tag)
	}
	return v
}

func newTestHandler(opts ...server.Option) http.Handler {
	return server.NewHandler(indexer.NewNerTagIndexer(""), testVocab(), opts...)
}

func post(h http.Handler, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(rec, req)
	return rec
}

// ---------------------------------------------------------------------------
// GET /health
// ---------------------------------------------------------------------------

func TestHealth_Returns200WithStatusOK(t *testing.T) {
	h := newTestHandler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	if body["status"] != "ok" {
		t.Errorf("want status=ok, got %q", body["status"])
	}

	if _, ok := body["version"]; !ok {
		t.Error("want version field in response")
	}
}

// ---------------------------------------------------------------------------
// GET /vocab
// ---------------------------------------------------------------------------

func TestVocab_ReturnsNamespaceSizes(t *testing.T) {
	h := newTestHandler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/vocab", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}

	var body struct {
		Indexer    string         `json:"indexer_namespace"`
		Namespaces map[string]int `json:"namespaces"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	if body.Indexer != "ner_tags" {
		t.Errorf("indexer_namespace = %q; want ner_tags", body.Indexer)
	}

	if diff := cmp.Diff(map[string]int{"ner_tags": 3}, body.Namespaces); diff != "" {
		t.Errorf("namespaces mismatch (-want +got):\n%s", diff)
	}
}

func TestVocabNamespace(t *testing.T) {
	h := newTestHandler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/vocab/ner_tags", nil))

	var tags []string
	if err := json.NewDecoder(rec.Body).Decode(&tags); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	if diff := cmp.Diff([]string{"NONE", "PER", "LOC"}, tags); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/vocab/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown namespace status = %d; want 404", rec.Code)
	}
}

// ---------------------------------------------------------------------------
// POST /index
// ---------------------------------------------------------------------------

type indexBody struct {
	IDs          []int  `json:"ids"`
	Mask         []bool `json:"mask"`
	PaddingToken int    `json:"padding_token"`
}

func TestIndex_MapsTagsAndPads(t *testing.T) {
	h := newTestHandler()

	rec := post(h, "/index", `{"tokens":[{"text":"Ann","ent_type":"PER"},{"text":"in"},{"text":"Rome","ent_type":"LOC"}],"length":5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body indexBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	want := indexBody{
		IDs:          []int{1, 0, 2, 0, 0},
		Mask:         []bool{true, true, true, false, false},
		PaddingToken: 0,
	}
	if diff := cmp.Diff(want, body); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func TestIndex_NormalizesLabels(t *testing.T) {
	rec := post(newTestHandler(), "/index", `{"tokens":[{"text":" Ann ","ent_type":" PER "},{"text":"x","ent_type":"  "}]}`)

	var body indexBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	if diff := cmp.Diff([]int{1, 0}, body.IDs); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestIndex_DefaultLengthIsInputLength(t *testing.T) {
	rec := post(newTestHandler(), "/index", `{"tokens":[{"text":"a"},{"text":"Bo","ent_type":"PER"}]}`)

	var body indexBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	if diff := cmp.Diff([]int{0, 1}, body.IDs); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestIndex_Truncates(t *testing.T) {
	rec := post(newTestHandler(), "/index", `{"tokens":[{"text":"a"},{"text":"Bo","ent_type":"PER"}],"length":1}`)

	var body indexBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	if diff := cmp.Diff([]int{0}, body.IDs); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestIndex_Errors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		body   string
		opts   []server.Option
		want   int
	}{
		{"wrong method", http.MethodGet, "", nil, http.StatusMethodNotAllowed},
		{"invalid json", http.MethodPost, `{"tokens":`, nil, http.StatusBadRequest},
		{"no tokens", http.MethodPost, `{"tokens":[]}`, nil, http.StatusBadRequest},
		{"negative length", http.MethodPost, `{"tokens":[{"text":"a"}],"length":-1}`, nil, http.StatusBadRequest},
		{"empty token text", http.MethodPost, `{"tokens":[{"text":"  "}]}`, nil, http.StatusBadRequest},
		{"unknown tag", http.MethodPost, `{"tokens":[{"text":"IBM","ent_type":"ORG"}]}`, nil, http.StatusUnprocessableEntity},
		{
			"too many tokens", http.MethodPost, `{"tokens":[{"text":"a"},{"text":"b"}]}`,
			[]server.Option{server.WithMaxTokens(1)}, http.StatusRequestEntityTooLarge,
		},
		{
			"body too large", http.MethodPost, `{"tokens":[{"text":"` + strings.Repeat("a", 100) + `"}]}`,
			[]server.Option{server.WithMaxBodyBytes(32)}, http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(tt.opts...)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, "/index", bytes.NewBufferString(tt.body))
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d; want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}

			var body map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}

			if body["error"] == "" {
				t.Error("want non-empty error field")
			}
		})
	}
}

func TestIndex_MissingNoneTagFails(t *testing.T) {
	v := vocab.New()
	v.AddToken("ner_tags", "PER")
	h := server.NewHandler(indexer.NewNerTagIndexer(""), v)

	rec := post(h, "/index", `{"tokens":[{"text":"Ann","ent_type":"PER"}]}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d; want 422 when NONE is absent", rec.Code)
	}
}

// ---------------------------------------------------------------------------
// POST /count
// ---------------------------------------------------------------------------

func TestCount_ReturnsCounter(t *testing.T) {
	rec := post(newTestHandler(), "/count", `{"tokens":[{"text":"Ann","ent_type":"PER"},{"text":"x"},{"text":"y"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}

	var body map[string]map[string]int
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	want := map[string]map[string]int{"ner_tags": {"PER": 1, "NONE": 2}}
	if diff := cmp.Diff(want, body); diff != "" {
		t.Errorf("counter mismatch (-want +got):\n%s", diff)
	}
}
