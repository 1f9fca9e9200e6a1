// Package prompt assembles the LLM instructions for document generation.
package prompt

import (
	"fmt"
	"strings"
)

// DocumentRequest carries the form fields describing the document to generate.
type DocumentRequest struct {
	Topic         string
	DocumentType  string
	AcademicLevel string
	ResearchAreas string
	Requirements  string
	TargetWords   int
}

// DocumentTypes lists the supported document types, in display order.
var DocumentTypes = []string{
	"Thesis",
	"Synopsis",
	"Dissertation",
	"Research Paper",
	"Literature Review",
	"Research Proposal",
	"Academic Report",
}

// AcademicLevels lists the supported academic levels, in display order.
var AcademicLevels = []string{"Undergraduate", "Masters", "PhD"}

const (
	// MinTargetWords and MaxTargetWords bound the requested word count.
	MinTargetWords = 1000
	MaxTargetWords = 50000

	// DefaultTargetWords is used when the form leaves word count empty.
	DefaultTargetWords = 5000
)

// defaultResearchAreas substitutes for a blank research-areas field.
const defaultResearchAreas = "general academic research"

// SystemPrompt is the writer persona sent with every generation call.
const SystemPrompt = "You are an expert academic writer who creates sophisticated, " +
	"well-researched thesis documents that sound completely human-written. You avoid AI " +
	"patterns and create authentic academic content with proper citations and natural flow."

const requirementsBlock = `
Requirements:
- Use credible academic sources and reference them in-text (APA style, e.g., (Author, Year)).
- Write in proper academic style for the specified level.
- Create logical structure with introduction, body, and conclusion.
- Use varied sentence structures and academic vocabulary.
- Include critical analysis and original insights.
- Maintain scholarly tone while sounding natural and human.
- Avoid AI-like patterns and robotic language.
- Include methodology, findings, and implications if relevant.
- Make it engaging and intellectually rigorous.
Structure:
1. Introduction and background
2. Literature review
3. Methodology
4. Analysis and findings
5. Discussion and implications
6. Conclusion and recommendations
Important: Write as if you're a human academic expert sharing original research and insights. Make it indistinguishable from human writing.

Begin the document below:

`

// IsValidDocumentType reports whether t is one of the supported document types.
func IsValidDocumentType(t string) bool {
	for _, dt := range DocumentTypes {
		if dt == t {
			return true
		}
	}
	return false
}

// IsValidAcademicLevel reports whether l is one of the supported academic levels.
func IsValidAcademicLevel(l string) bool {
	for _, al := range AcademicLevels {
		if al == l {
			return true
		}
	}
	return false
}

// Normalize applies the form defaults: blank research areas become the generic
// placeholder and out-of-range word counts are clamped.
func (r *DocumentRequest) Normalize() {
	r.Topic = strings.TrimSpace(r.Topic)
	if strings.TrimSpace(r.ResearchAreas) == "" {
		r.ResearchAreas = defaultResearchAreas
	}
	if r.TargetWords == 0 {
		r.TargetWords = DefaultTargetWords
	}
	if r.TargetWords < MinTargetWords {
		r.TargetWords = MinTargetWords
	}
	if r.TargetWords > MaxTargetWords {
		r.TargetWords = MaxTargetWords
	}
}

// BuildWriting assembles the direct-mode user prompt from the request fields.
func BuildWriting(req *DocumentRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, `
You are an expert academic writer. Write a complete %s on the topic: %q.
Academic Level: %s
Target Length: %d words
Research Areas: %s
`, req.DocumentType, req.Topic, req.AcademicLevel, req.TargetWords, req.ResearchAreas)

	if trimmed := strings.TrimSpace(req.Requirements); trimmed != "" {
		fmt.Fprintf(&b, "\nAdditional Requirements: %s\n", trimmed)
	}

	b.WriteString(requirementsBlock)
	return b.String()
}

// BuildWritingWithBrief assembles the assisted-mode user prompt, embedding the
// research brief between the request header and the fixed requirements.
func BuildWritingWithBrief(req *DocumentRequest, brief string) string {
	if strings.TrimSpace(brief) == "" {
		return BuildWriting(req)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `
You are an expert academic writer. Write a complete %s on the topic: %q.
Academic Level: %s
Target Length: %d words
Research Areas: %s
`, req.DocumentType, req.Topic, req.AcademicLevel, req.TargetWords, req.ResearchAreas)

	if trimmed := strings.TrimSpace(req.Requirements); trimmed != "" {
		fmt.Fprintf(&b, "\nAdditional Requirements: %s\n", trimmed)
	}

	b.WriteString("\nResearch notes gathered for this topic (use them to ground claims, cite the underlying works, never cite the URLs themselves):\n")
	b.WriteString(brief)
	b.WriteString("\n")

	b.WriteString(requirementsBlock)
	return b.String()
}

// BuildResearchQueries derives up to four search queries from the topic and the
// comma-separated research areas.
func BuildResearchQueries(req *DocumentRequest) []string {
	queries := []string{req.Topic}

	if req.ResearchAreas != defaultResearchAreas {
		for _, area := range strings.Split(req.ResearchAreas, ",") {
			area = strings.TrimSpace(area)
			if area == "" {
				continue
			}
			queries = append(queries, req.Topic+" "+area)
			if len(queries) == 3 {
				break
			}
		}
	}

	queries = append(queries, req.Topic+" recent research findings")
	if len(queries) > 4 {
		queries = queries[:4]
	}
	return queries
}
