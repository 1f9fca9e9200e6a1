package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const litePage = `<html><body><table>
<tr><td><a rel="nofollow" href="https://example.org/ai-health" class="result-link">AI in Healthcare Delivery</a></td></tr>
<tr><td class="result-snippet">How machine learning changes clinical workflows.</td></tr>
<tr><td><a rel="nofollow" href="https://example.com/review" class="result-link">Systematic Review of Hospital AI</a></td></tr>
<tr><td class="result-snippet">A review of 120 studies on hospital AI adoption.</td></tr>
</table></body></html>`

func TestDuckDuckGoSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("q") == "" {
			t.Error("expected a q form value")
		}
		w.Write([]byte(litePage))
	}))
	defer srv.Close()

	d := NewDuckDuckGoWithClient(srv.Client(), srv.URL)
	results, err := d.Search(context.Background(), "ai healthcare")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Title != "AI in Healthcare Delivery" {
		t.Errorf("unexpected title: %q", results[0].Title)
	}
	if results[0].URL != "https://example.org/ai-health" {
		t.Errorf("unexpected url: %q", results[0].URL)
	}
	if results[0].Snippet != "How machine learning changes clinical workflows." {
		t.Errorf("unexpected snippet: %q", results[0].Snippet)
	}
}

func TestDuckDuckGoSearch_EmptyQuery(t *testing.T) {
	d := NewDuckDuckGo()
	if _, err := d.Search(context.Background(), "  "); err == nil {
		t.Error("expected error for empty query")
	}
}

func TestDuckDuckGoSearch_FallbackParse(t *testing.T) {
	page := `<html><body>
<a href="https://duckduckgo.com/settings">Settings</a>
<a href="/internal">Internal nav</a>
<a href="https://example.net/paper">An External Research Paper</a>
</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	d := NewDuckDuckGoWithClient(srv.Client(), srv.URL)
	results, err := d.Search(context.Background(), "anything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].URL != "https://example.net/paper" {
		t.Fatalf("fallback parse failed: %+v", results)
	}
}

func TestDuckDuckGoSearch_RetriesOn429(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(litePage))
	}))
	defer srv.Close()

	d := NewDuckDuckGoWithClient(srv.Client(), srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	results, err := d.Search(ctx, "ai healthcare")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected one retry, got %d attempts", attempts)
	}
	if len(results) == 0 {
		t.Error("expected results after retry")
	}
}

func TestBraveSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Subscription-Token") != "test-key" {
			t.Error("missing subscription token")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"web":{"results":[
			{"title":"Result One","url":"https://one.example","description":"first"},
			{"title":"","url":"https://skip.example","description":"no title"},
			{"title":"Result Two","url":"https://two.example","description":"second"}
		]}}`))
	}))
	defer srv.Close()

	b := NewBraveWithClient("test-key", srv.Client(), srv.URL)
	results, err := b.Search(context.Background(), "query")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results (untitled skipped), got %d", len(results))
	}
	if results[1].Snippet != "second" {
		t.Errorf("unexpected snippet: %q", results[1].Snippet)
	}
}

func TestBraveSearch_NoKey(t *testing.T) {
	b := NewBrave("")
	if _, err := b.Search(context.Background(), "query"); err == nil {
		t.Error("expected error without api key")
	}
}
