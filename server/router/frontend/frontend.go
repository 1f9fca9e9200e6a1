// Package frontend serves the embedded HTML form and document pages.
package frontend

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/inkwell-app/inkwell/ai/prompt"
	"github.com/inkwell-app/inkwell/internal/profile"
	apiv1 "github.com/inkwell-app/inkwell/server/router/api/v1"
	"github.com/inkwell-app/inkwell/store"
)

//go:embed templates/*.html
var templateFS embed.FS

type FrontendService struct {
	Profile *profile.Profile
	Store   *store.Store

	api       *apiv1.APIV1Service
	templates *template.Template
	markdown  goldmark.Markdown
}

func NewFrontendService(profile *profile.Profile, store *store.Store, api *apiv1.APIV1Service) *FrontendService {
	return &FrontendService{
		Profile:   profile,
		Store:     store,
		api:       api,
		templates: template.Must(template.ParseFS(templateFS, "templates/*.html")),
		markdown: goldmark.New(
			goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
		),
	}
}

// Register mounts the frontend routes.
func (f *FrontendService) Register(e *echo.Echo) {
	e.Renderer = &templateRenderer{templates: f.templates}
	e.GET("/", f.index)
	e.POST("/generate", f.generate)
	e.GET("/d/:uid", f.document)
}

type templateRenderer struct {
	templates *template.Template
}

func (r *templateRenderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

type indexData struct {
	DocumentTypes  []string
	AcademicLevels []string
	DefaultWords   int
	Ready          bool
	Error          string
	Recent         []*store.Document
}

func (f *FrontendService) index(c echo.Context) error {
	limit := 10
	recent, err := f.Store.ListDocuments(c.Request().Context(), &store.FindDocument{Limit: &limit})
	if err != nil {
		recent = nil
	}

	return c.Render(http.StatusOK, "index.html", &indexData{
		DocumentTypes:  prompt.DocumentTypes,
		AcademicLevels: prompt.AcademicLevels,
		DefaultWords:   prompt.DefaultTargetWords,
		Ready:          f.api.IsGenerationAvailable(),
		Error:          c.QueryParam("error"),
		Recent:         recent,
	})
}

// generate handles the HTML form post, runs the pipeline, and redirects to the
// document page. Errors redirect back to the form with a message.
func (f *FrontendService) generate(c echo.Context) error {
	if !f.api.IsGenerationAvailable() {
		return f.redirectError(c, "LLM API key not configured. Set INKWELL_LLM_API_KEY.")
	}

	in := &apiv1.CreateDocumentRequest{}
	if err := c.Bind(in); err != nil {
		return f.redirectError(c, "malformed form submission")
	}

	req, mode, err := apiv1.ValidateCreateRequest(in)
	if err != nil {
		return f.redirectError(c, err.Error())
	}

	doc, err := f.api.Generate(c.Request().Context(), req, mode)
	if err != nil {
		return f.redirectError(c, "generation failed, see server logs")
	}

	return c.Redirect(http.StatusSeeOther, "/d/"+doc.UID)
}

type documentData struct {
	Doc         *store.Document
	ContentHTML template.HTML
}

func (f *FrontendService) document(c echo.Context) error {
	uid := c.Param("uid")
	doc, err := f.Store.GetDocument(c.Request().Context(), &store.FindDocument{UID: &uid})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch document").SetInternal(err)
	}
	if doc == nil {
		return echo.NewHTTPError(http.StatusNotFound, "document not found")
	}

	var rendered bytes.Buffer
	if err := f.markdown.Convert([]byte(doc.Content), &rendered); err != nil {
		rendered.Reset()
		rendered.WriteString("<pre>")
		template.HTMLEscape(&rendered, []byte(doc.Content))
		rendered.WriteString("</pre>")
	}

	return c.Render(http.StatusOK, "document.html", &documentData{
		Doc:         doc,
		ContentHTML: template.HTML(rendered.String()),
	})
}

func (f *FrontendService) redirectError(c echo.Context, msg string) error {
	return c.Redirect(http.StatusSeeOther, "/?error="+url.QueryEscape(msg))
}
