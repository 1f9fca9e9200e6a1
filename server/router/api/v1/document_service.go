package v1

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/inkwell-app/inkwell/ai/compose"
	"github.com/inkwell-app/inkwell/ai/prompt"
	"github.com/inkwell-app/inkwell/store"
)

// CreateDocumentRequest is the payload of POST /api/v1/documents, accepted as
// JSON or form data.
type CreateDocumentRequest struct {
	Topic         string `json:"topic" form:"topic"`
	DocumentType  string `json:"document_type" form:"document_type"`
	AcademicLevel string `json:"academic_level" form:"academic_level"`
	ResearchAreas string `json:"research_areas" form:"research_areas"`
	Requirements  string `json:"requirements" form:"requirements"`
	TargetWords   int    `json:"target_words" form:"target_words"`
	Mode          string `json:"mode" form:"mode"`
}

type documentResponse struct {
	UID              string `json:"uid"`
	Topic            string `json:"topic"`
	DocumentType     string `json:"document_type"`
	AcademicLevel    string `json:"academic_level"`
	ResearchAreas    string `json:"research_areas"`
	Requirements     string `json:"requirements,omitempty"`
	Mode             string `json:"mode"`
	Status           string `json:"status"`
	Content          string `json:"content,omitempty"`
	TargetWords      int    `json:"target_words"`
	WordsGenerated   int    `json:"words_generated"`
	SentenceCount    int    `json:"sentence_count"`
	ParagraphCount   int    `json:"paragraph_count"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	DurationMs       int64  `json:"duration_ms"`
	CreatedTs        int64  `json:"created_ts"`
}

func convertDocument(doc *store.Document, includeContent bool) *documentResponse {
	resp := &documentResponse{
		UID:              doc.UID,
		Topic:            doc.Topic,
		DocumentType:     doc.DocumentType,
		AcademicLevel:    doc.AcademicLevel,
		ResearchAreas:    doc.ResearchAreas,
		Requirements:     doc.Requirements,
		Mode:             doc.Mode,
		Status:           string(doc.Status),
		TargetWords:      doc.TargetWords,
		WordsGenerated:   doc.WordsGenerated,
		SentenceCount:    doc.SentenceCount,
		ParagraphCount:   doc.ParagraphCount,
		PromptTokens:     doc.PromptTokens,
		CompletionTokens: doc.CompletionTokens,
		DurationMs:       doc.DurationMs,
		CreatedTs:        doc.CreatedTs,
	}
	if includeContent {
		resp.Content = doc.Content
	}
	return resp
}

// ValidateCreateRequest checks the form fields and returns the normalized
// request and pipeline mode. Shared with the frontend form handler.
func ValidateCreateRequest(in *CreateDocumentRequest) (*prompt.DocumentRequest, compose.Mode, error) {
	if strings.TrimSpace(in.Topic) == "" {
		return nil, "", errors.New("topic is required")
	}
	if in.DocumentType == "" {
		in.DocumentType = prompt.DocumentTypes[0]
	}
	if !prompt.IsValidDocumentType(in.DocumentType) {
		return nil, "", fmt.Errorf("unknown document type %q", in.DocumentType)
	}
	if in.AcademicLevel == "" {
		in.AcademicLevel = prompt.AcademicLevels[0]
	}
	if !prompt.IsValidAcademicLevel(in.AcademicLevel) {
		return nil, "", fmt.Errorf("unknown academic level %q", in.AcademicLevel)
	}

	mode := compose.Mode(in.Mode)
	if mode == "" {
		mode = compose.ModeDirect
	}
	if !compose.IsValidMode(mode) {
		return nil, "", fmt.Errorf("unknown mode %q", in.Mode)
	}

	req := &prompt.DocumentRequest{
		Topic:         strings.TrimSpace(in.Topic),
		DocumentType:  in.DocumentType,
		AcademicLevel: in.AcademicLevel,
		ResearchAreas: in.ResearchAreas,
		Requirements:  in.Requirements,
		TargetWords:   in.TargetWords,
	}
	req.Normalize()
	return req, mode, nil
}

func (s *APIV1Service) createDocument(c echo.Context) error {
	if !s.IsGenerationAvailable() {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "LLM API key not configured")
	}

	in := &CreateDocumentRequest{}
	if err := c.Bind(in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request").SetInternal(err)
	}

	req, mode, err := ValidateCreateRequest(in)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	doc, err := s.Generate(c.Request().Context(), req, mode)
	if err != nil {
		if doc != nil {
			// The failed attempt was recorded; surface the upstream failure.
			return echo.NewHTTPError(http.StatusBadGateway, "generation failed").SetInternal(err)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to store document").SetInternal(err)
	}

	return c.JSON(http.StatusCreated, convertDocument(doc, true))
}

func (s *APIV1Service) listDocuments(c echo.Context) error {
	find := &store.FindDocument{}
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		find.Limit = &limit
	}

	docs, err := s.Store.ListDocuments(c.Request().Context(), find)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list documents").SetInternal(err)
	}

	resp := make([]*documentResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, convertDocument(doc, false))
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *APIV1Service) getDocument(c echo.Context) error {
	doc, err := s.findDocumentByUID(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, convertDocument(doc, true))
}

func (s *APIV1Service) deleteDocument(c echo.Context) error {
	uid := c.Param("uid")
	err := s.Store.DeleteDocument(c.Request().Context(), &store.DeleteDocument{UID: uid})
	if errors.Is(err, sql.ErrNoRows) {
		return echo.NewHTTPError(http.StatusNotFound, "document not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete document").SetInternal(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *APIV1Service) downloadDocument(c echo.Context) error {
	doc, err := s.findDocumentByUID(c)
	if err != nil {
		return err
	}
	if doc.Status != store.DocumentCompleted {
		return echo.NewHTTPError(http.StatusConflict, "document generation did not complete")
	}

	format := c.QueryParam("format")
	if format == "" {
		format = "txt"
	}

	baseName := strings.ReplaceAll(doc.Topic, " ", "_") + "_" + strings.ReplaceAll(doc.DocumentType, " ", "_")

	switch format {
	case "txt":
		c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", baseName+".txt"))
		return c.Blob(http.StatusOK, "text/plain; charset=utf-8", []byte(doc.Content))
	case "md":
		c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", baseName+".md"))
		return c.Blob(http.StatusOK, "text/markdown; charset=utf-8", []byte(markdownExport(doc)))
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "format must be txt or md")
	}
}

// markdownExport wraps the content in a metadata header for the .md download.
func markdownExport(doc *store.Document) string {
	return fmt.Sprintf(`# %s
**Document Type:** %s
**Academic Level:** %s
**Research Areas:** %s
**Word Count:** %d
**Generated:** %s

---
%s
`,
		doc.Topic,
		doc.DocumentType,
		doc.AcademicLevel,
		doc.ResearchAreas,
		doc.WordsGenerated,
		time.Unix(doc.CreatedTs, 0).UTC().Format("2006-01-02 15:04:05"),
		doc.Content,
	)
}

func (s *APIV1Service) findDocumentByUID(c echo.Context) (*store.Document, error) {
	uid := c.Param("uid")
	doc, err := s.Store.GetDocument(c.Request().Context(), &store.FindDocument{UID: &uid})
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch document").SetInternal(err)
	}
	if doc == nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "document not found")
	}
	return doc, nil
}
