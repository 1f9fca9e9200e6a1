// Package v1 implements the JSON API for document generation and retrieval.
package v1

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/inkwell-app/inkwell/ai/compose"
	"github.com/inkwell-app/inkwell/ai/prompt"
	"github.com/inkwell-app/inkwell/internal/profile"
	"github.com/inkwell-app/inkwell/internal/util"
	"github.com/inkwell-app/inkwell/store"
)

// PipelineRunner is the pipeline surface the API needs. Implemented by
// compose.Runner; faked in tests.
type PipelineRunner interface {
	Run(ctx context.Context, req *prompt.DocumentRequest, mode compose.Mode, seedKey string) (*compose.Result, error)
}

// MetricsRecorder is the metrics surface the API needs. Implemented by
// metrics.Exporter; nil-safe via the noopMetrics fallback.
type MetricsRecorder interface {
	ObserveGeneration(mode, status string)
	ObserveStage(stage string, d time.Duration)
	AddTokens(promptTokens, completionTokens int)
	DocumentStored()
}

type noopMetrics struct{}

func (noopMetrics) ObserveGeneration(string, string)   {}
func (noopMetrics) ObserveStage(string, time.Duration) {}
func (noopMetrics) AddTokens(int, int)                 {}
func (noopMetrics) DocumentStored()                    {}

type APIV1Service struct {
	Profile *profile.Profile
	Store   *store.Store

	runner  PipelineRunner
	metrics MetricsRecorder
}

func NewAPIV1Service(profile *profile.Profile, store *store.Store, runner PipelineRunner, metrics MetricsRecorder) *APIV1Service {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &APIV1Service{
		Profile: profile,
		Store:   store,
		runner:  runner,
		metrics: metrics,
	}
}

// Register mounts the API routes.
func (s *APIV1Service) Register(e *echo.Echo) {
	g := e.Group("/api/v1")
	g.POST("/documents", s.createDocument)
	g.GET("/documents", s.listDocuments)
	g.GET("/documents/:uid", s.getDocument)
	g.DELETE("/documents/:uid", s.deleteDocument)
	g.GET("/documents/:uid/download", s.downloadDocument)
}

// Generate runs the pipeline for a validated request and persists the outcome.
// A failed run is persisted too, with status failed and empty content, so the
// history shows what was attempted.
func (s *APIV1Service) Generate(ctx context.Context, req *prompt.DocumentRequest, mode compose.Mode) (*store.Document, error) {
	uid := util.GenShortUUID()
	now := time.Now().Unix()

	doc := &store.Document{
		UID:           uid,
		Topic:         req.Topic,
		DocumentType:  req.DocumentType,
		AcademicLevel: req.AcademicLevel,
		ResearchAreas: req.ResearchAreas,
		Requirements:  req.Requirements,
		TargetWords:   req.TargetWords,
		Mode:          string(mode),
		CreatedTs:     now,
		UpdatedTs:     now,
	}

	result, runErr := s.runner.Run(ctx, req, mode, uid)
	if runErr != nil {
		doc.Status = store.DocumentFailed
		s.metrics.ObserveGeneration(string(mode), "failed")
		if _, err := s.Store.CreateDocument(ctx, doc); err != nil {
			slog.Error("failed to persist failed document", "uid", uid, "error", err)
		}
		return doc, fmt.Errorf("generation failed: %w", runErr)
	}

	doc.Status = store.DocumentCompleted
	doc.Content = result.Content
	doc.TargetWords = req.TargetWords
	doc.WordsGenerated = countWords(result.Content)
	doc.SentenceCount = countSentences(result.Content)
	doc.ParagraphCount = countParagraphs(result.Content)
	doc.PromptTokens = result.Stats.PromptTokens
	doc.CompletionTokens = result.Stats.CompletionTokens
	doc.DurationMs = result.Stats.TotalDurationMs

	s.metrics.ObserveGeneration(string(mode), "completed")
	s.metrics.ObserveStage("write", time.Duration(result.Stats.WriteMs)*time.Millisecond)
	if result.Stats.ResearchMs > 0 {
		s.metrics.ObserveStage("research", time.Duration(result.Stats.ResearchMs)*time.Millisecond)
	}
	if result.Stats.HumanizeMs > 0 {
		s.metrics.ObserveStage("humanize", time.Duration(result.Stats.HumanizeMs)*time.Millisecond)
	}
	s.metrics.AddTokens(result.Stats.PromptTokens, result.Stats.CompletionTokens)

	created, err := s.Store.CreateDocument(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to persist document: %w", err)
	}
	s.metrics.DocumentStored()

	return created, nil
}

// IsGenerationAvailable reports whether an LLM backend is configured.
func (s *APIV1Service) IsGenerationAvailable() bool {
	return s.Profile.IsLLMConfigured()
}
