package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arjun-mahar/recordsearch/internal/indexer"
	"github.com/arjun-mahar/recordsearch/internal/searcher"
)

func newTestHandler(t *testing.T, records ...indexer.Record) *Handler {
	t.Helper()
	snap, err := indexer.New(0, nil).Build(context.Background(), indexer.NewSliceSource(records...))
	if err != nil {
		t.Fatalf("building snapshot: %v", err)
	}
	exec := searcher.NewExecutor(nil)
	exec.Swap(snap)
	return New(exec, nil, nil, nil, 25, 500, 4)
}

func doSearch(t *testing.T, h *Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)
	return rec
}

func TestSearchEndpoint(t *testing.T) {
	h := newTestHandler(t,
		indexer.Record{ExternalID: "t1", Text: "side effects of the vaccine"},
		indexer.Record{ExternalID: "t2", Text: "side effects of malaria vaccine"},
	)

	rec := doSearch(t, h, "/search?q=malaria+vaccine")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result searcher.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if result.TotalHits != 1 {
		t.Errorf("expected 1 hit, got %d", result.TotalHits)
	}
	if len(result.IDs) != 1 || result.IDs[0] != "t2" {
		t.Errorf("expected [t2], got %v", result.IDs)
	}
}

func TestSearchEndpointMissingQuery(t *testing.T) {
	h := newTestHandler(t, indexer.Record{ExternalID: "t1", Text: "hello"})

	rec := doSearch(t, h, "/search")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSearchEndpointNoSearchableTerms(t *testing.T) {
	h := newTestHandler(t, indexer.Record{ExternalID: "t1", Text: "hello"})

	rec := doSearch(t, h, "/search?q=%21%21%21")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSearchEndpointNotReady(t *testing.T) {
	h := New(searcher.NewExecutor(nil), nil, nil, nil, 25, 500, 4)

	rec := doSearch(t, h, "/search?q=hello")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestSearchEndpointLimitClamped(t *testing.T) {
	h := newTestHandler(t,
		indexer.Record{ExternalID: "t1", Text: "common"},
		indexer.Record{ExternalID: "t2", Text: "common"},
		indexer.Record{ExternalID: "t3", Text: "common"},
	)

	rec := doSearch(t, h, "/search?q=common&limit=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var result searcher.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(result.IDs) != 2 {
		t.Errorf("expected 2 ids, got %d", len(result.IDs))
	}
	if result.TotalHits != 3 {
		t.Errorf("expected total hits 3, got %d", result.TotalHits)
	}
}

func TestParseLimitDefaults(t *testing.T) {
	h := newTestHandler(t, indexer.Record{ExternalID: "t1", Text: "hello"})

	if got := h.parseLimit(""); got != 25 {
		t.Errorf("expected default 25, got %d", got)
	}
	if got := h.parseLimit("10000"); got != 500 {
		t.Errorf("expected clamp to 500, got %d", got)
	}
	if got := h.parseLimit("not-a-number"); got != 25 {
		t.Errorf("expected default on bad input, got %d", got)
	}
}
