package prompt

import (
	"strings"
	"testing"
)

func newRequest() *DocumentRequest {
	return &DocumentRequest{
		Topic:         "Impact of AI on healthcare delivery",
		DocumentType:  "Thesis",
		AcademicLevel: "Masters",
		ResearchAreas: "methodology, case studies",
		TargetWords:   5000,
	}
}

func TestBuildWriting(t *testing.T) {
	req := newRequest()
	p := BuildWriting(req)

	for _, want := range []string{
		`Write a complete Thesis on the topic: "Impact of AI on healthcare delivery"`,
		"Academic Level: Masters",
		"Target Length: 5000 words",
		"Research Areas: methodology, case studies",
		"APA style",
		"Begin the document below:",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	if strings.Contains(p, "Additional Requirements:") {
		t.Error("empty requirements should not produce an Additional Requirements block")
	}
}

func TestBuildWriting_RequirementsTrimmed(t *testing.T) {
	req := newRequest()
	req.Requirements = "  focus on EU regulation  "

	p := BuildWriting(req)
	if !strings.Contains(p, "Additional Requirements: focus on EU regulation\n") {
		t.Error("expected trimmed requirements block")
	}
}

func TestBuildWritingWithBrief(t *testing.T) {
	req := newRequest()

	t.Run("brief embedded before requirements", func(t *testing.T) {
		p := BuildWritingWithBrief(req, "1. Some result\n   finding text")
		briefIdx := strings.Index(p, "Some result")
		reqIdx := strings.Index(p, "Requirements:")
		if briefIdx == -1 {
			t.Fatal("brief not embedded")
		}
		if briefIdx > reqIdx {
			t.Error("brief should appear before the requirements block")
		}
	})

	t.Run("blank brief falls back to direct prompt", func(t *testing.T) {
		if BuildWritingWithBrief(req, "  \n ") != BuildWriting(req) {
			t.Error("blank brief should produce the direct prompt")
		}
	})
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		req       DocumentRequest
		wantAreas string
		wantWords int
	}{
		{
			name:      "blank areas get placeholder",
			req:       DocumentRequest{Topic: "t", ResearchAreas: "  "},
			wantAreas: "general academic research",
			wantWords: DefaultTargetWords,
		},
		{
			name:      "word count clamped low",
			req:       DocumentRequest{Topic: "t", ResearchAreas: "x", TargetWords: 10},
			wantAreas: "x",
			wantWords: MinTargetWords,
		},
		{
			name:      "word count clamped high",
			req:       DocumentRequest{Topic: "t", ResearchAreas: "x", TargetWords: 999999},
			wantAreas: "x",
			wantWords: MaxTargetWords,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.Normalize()
			if tt.req.ResearchAreas != tt.wantAreas {
				t.Errorf("areas = %q, want %q", tt.req.ResearchAreas, tt.wantAreas)
			}
			if tt.req.TargetWords != tt.wantWords {
				t.Errorf("words = %d, want %d", tt.req.TargetWords, tt.wantWords)
			}
		})
	}
}

func TestBuildResearchQueries(t *testing.T) {
	req := newRequest()
	queries := BuildResearchQueries(req)

	if len(queries) != 4 {
		t.Fatalf("expected 4 queries, got %d: %v", len(queries), queries)
	}
	if queries[0] != req.Topic {
		t.Errorf("first query should be the bare topic, got %q", queries[0])
	}
	if !strings.Contains(queries[1], "methodology") {
		t.Errorf("expected a methodology query, got %q", queries[1])
	}

	t.Run("generic areas produce topic queries only", func(t *testing.T) {
		generic := newRequest()
		generic.ResearchAreas = ""
		generic.Normalize()
		qs := BuildResearchQueries(generic)
		if len(qs) != 2 {
			t.Fatalf("expected 2 queries for generic areas, got %d: %v", len(qs), qs)
		}
	})
}

func TestValidators(t *testing.T) {
	if !IsValidDocumentType("Thesis") || IsValidDocumentType("Novel") {
		t.Error("document type validation broken")
	}
	if !IsValidAcademicLevel("PhD") || IsValidAcademicLevel("Kindergarten") {
		t.Error("academic level validation broken")
	}
}
