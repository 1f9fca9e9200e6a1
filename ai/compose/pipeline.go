// Package compose runs the document generation pipeline: either a single
// direct LLM call, or the assisted chain research -> write -> humanize.
package compose

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/inkwell-app/inkwell/ai/humanize"
	"github.com/inkwell-app/inkwell/ai/llm"
	"github.com/inkwell-app/inkwell/ai/prompt"
	"github.com/inkwell-app/inkwell/internal/util"
	"github.com/inkwell-app/inkwell/search"
)

// Mode selects the pipeline variant.
type Mode string

const (
	// ModeDirect issues one writing call.
	ModeDirect Mode = "direct"
	// ModeAssisted chains research, writing, and the humanization pass.
	ModeAssisted Mode = "assisted"
)

// IsValidMode reports whether m names a pipeline variant.
func IsValidMode(m Mode) bool {
	return m == ModeDirect || m == ModeAssisted
}

// StageStats records per-stage timing and token usage for one run.
type StageStats struct {
	ResearchMs       int64 `json:"research_ms,omitempty"`
	ResearchResults  int   `json:"research_results,omitempty"`
	WriteMs          int64 `json:"write_ms"`
	HumanizeMs       int64 `json:"humanize_ms,omitempty"`
	PromptTokens     int   `json:"prompt_tokens"`
	CompletionTokens int   `json:"completion_tokens"`
	TotalDurationMs  int64 `json:"total_duration_ms"`
}

// Result is the outcome of one pipeline run.
type Result struct {
	RunID   string
	Mode    Mode
	Content string
	Brief   string
	Stats   StageStats
}

// Runner executes generation pipelines against a configured LLM service and
// search provider.
type Runner struct {
	llm      llm.Service
	searcher search.Provider
}

// NewRunner creates a pipeline runner. searcher may be nil, in which case
// assisted runs skip the research stage and fall back to the direct prompt.
func NewRunner(llmService llm.Service, searcher search.Provider) *Runner {
	return &Runner{llm: llmService, searcher: searcher}
}

// Run executes the pipeline for req. seedKey makes the humanization pass
// reproducible; callers pass the document UID.
func (r *Runner) Run(ctx context.Context, req *prompt.DocumentRequest, mode Mode, seedKey string) (*Result, error) {
	if r.llm == nil {
		return nil, fmt.Errorf("llm service is not configured")
	}
	if !IsValidMode(mode) {
		return nil, fmt.Errorf("unknown pipeline mode %q", mode)
	}

	req.Normalize()

	result := &Result{RunID: util.GenUUID(), Mode: mode}
	start := time.Now()

	slog.Info("pipeline: run started",
		"run_id", result.RunID,
		"mode", mode,
		"topic", util.TruncateString(req.Topic, 60),
	)

	if mode == ModeAssisted {
		r.runResearch(ctx, req, result)
	}

	if err := r.runWrite(ctx, req, result); err != nil {
		return nil, err
	}

	if mode == ModeAssisted {
		humanizeStart := time.Now()
		result.Content = humanize.NewPass(seedKey, req.Topic).Apply(result.Content)
		result.Stats.HumanizeMs = time.Since(humanizeStart).Milliseconds()
	}

	result.Stats.TotalDurationMs = time.Since(start).Milliseconds()

	slog.Info("pipeline: run completed",
		"run_id", result.RunID,
		"duration_ms", result.Stats.TotalDurationMs,
		"completion_tokens", result.Stats.CompletionTokens,
	)

	return result, nil
}

// runResearch populates result.Brief. Research failure is not fatal: the write
// stage falls back to the direct prompt.
func (r *Runner) runResearch(ctx context.Context, req *prompt.DocumentRequest, result *Result) {
	if r.searcher == nil {
		slog.Warn("pipeline: no search provider configured, skipping research", "run_id", result.RunID)
		return
	}

	researchStart := time.Now()
	queries := prompt.BuildResearchQueries(req)
	scored, err := gatherResearch(ctx, r.searcher, queries)
	result.Stats.ResearchMs = time.Since(researchStart).Milliseconds()
	if err != nil {
		slog.Warn("pipeline: research stage failed, falling back to direct prompt",
			"run_id", result.RunID,
			"error", err,
		)
		return
	}

	result.Brief = renderBrief(scored)
	result.Stats.ResearchResults = len(scored)
}

func (r *Runner) runWrite(ctx context.Context, req *prompt.DocumentRequest, result *Result) error {
	var userPrompt string
	if result.Brief != "" {
		userPrompt = prompt.BuildWritingWithBrief(req, result.Brief)
	} else {
		userPrompt = prompt.BuildWriting(req)
	}

	writeStart := time.Now()
	content, stats, err := r.llm.Chat(ctx, []llm.Message{
		llm.SystemPrompt(prompt.SystemPrompt),
		llm.UserMessage(userPrompt),
	}, &llm.CallOptions{MaxTokens: completionBudget(req.TargetWords)})
	result.Stats.WriteMs = time.Since(writeStart).Milliseconds()
	if err != nil {
		return fmt.Errorf("write stage: %w", err)
	}

	result.Content = content
	if stats != nil {
		result.Stats.PromptTokens = stats.PromptTokens
		result.Stats.CompletionTokens = stats.CompletionTokens
	}
	return nil
}

// completionBudget sizes the completion cap from the requested word count.
// English prose averages roughly 1.5 tokens per word; the headroom covers
// markdown structure and citations.
func completionBudget(targetWords int) int {
	budget := targetWords * 2
	if budget < 2048 {
		budget = 2048
	}
	return budget
}
