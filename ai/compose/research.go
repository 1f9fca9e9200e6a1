package compose

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/inkwell-app/inkwell/search"
)

// maxBriefResults caps how many scored hits make it into the research brief.
const maxBriefResults = 6

// perQueryTimeout bounds one provider call; a slow query must not stall the
// whole research stage.
const perQueryTimeout = 25 * time.Second

// scoredResult pairs a search hit with its keyword-overlap score against the
// query that produced it.
type scoredResult struct {
	search.Result
	Score float64
}

var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "of": true, "in": true, "on": true,
	"for": true, "and": true, "or": true, "to": true, "with": true, "is": true,
	"are": true, "at": true, "by": true, "from": true, "its": true, "as": true,
}

// tokenize lowercases, strips punctuation, and drops stopwords.
func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 2 || stopwords[f] {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// overlapScore is the fraction of query terms present in the result's
// title+snippet text.
func overlapScore(query string, r search.Result) float64 {
	queryTerms := tokenize(query)
	if len(queryTerms) == 0 {
		return 0
	}
	resultTerms := make(map[string]bool)
	for _, t := range tokenize(r.Title + " " + r.Snippet) {
		resultTerms[t] = true
	}
	matched := 0
	for _, t := range queryTerms {
		if resultTerms[t] {
			matched++
		}
	}
	return float64(matched) / float64(len(queryTerms))
}

// gatherResearch fans the queries out to the provider, scores every hit by
// keyword overlap, and keeps the best results across all queries. Individual
// query failures are tolerated; the stage only fails when every query fails.
func gatherResearch(ctx context.Context, provider search.Provider, queries []string) ([]scoredResult, error) {
	var (
		mu       sync.Mutex
		scored   []scoredResult
		failures int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(2)
	for _, query := range queries {
		query := query
		g.Go(func() error {
			qctx, cancel := context.WithTimeout(gctx, perQueryTimeout)
			defer cancel()

			results, err := provider.Search(qctx, query)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.Warn("research: query failed", "query", query, "error", err)
				failures++
				return nil
			}
			for _, r := range results {
				scored = append(scored, scoredResult{Result: r, Score: overlapScore(query, r)})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if failures == len(queries) {
		return nil, fmt.Errorf("all %d research queries failed", len(queries))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	// Dedupe by URL, highest score wins.
	seen := make(map[string]bool)
	deduped := scored[:0]
	for _, s := range scored {
		if seen[s.URL] {
			continue
		}
		seen[s.URL] = true
		deduped = append(deduped, s)
		if len(deduped) >= maxBriefResults {
			break
		}
	}
	return deduped, nil
}

// renderBrief formats scored results as the plain-text research brief embedded
// in the writing prompt.
func renderBrief(results []scoredResult) string {
	if len(results) == 0 {
		return ""
	}
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, r.Title, r.URL)
		if snippet := strings.TrimSpace(r.Snippet); snippet != "" {
			fmt.Fprintf(&b, "   %s\n", snippet)
		}
	}
	return b.String()
}
