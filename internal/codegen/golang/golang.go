package golang

import (
	"bytes"
	_ "embed"
	"fmt"
	"go/format"
	"io"
	"text/template"

	"github.com/terminally-online/querygen/internal/codegen"
	"github.com/terminally-online/querygen/internal/model"
)

//go:embed templates/queries.go.tmpl
var defaultTemplate string

func init() {
	codegen.Register(MustNew(""))
}

var _ codegen.PackageRenderer = (*GoGenerator)(nil)

type GoGenerator struct {
	tmpl *template.Template
}

// New parses body as the output template, or the built-in one when body is
// empty. The template executes against an internal view of the model; see
// templates/queries.go.tmpl for the fields it exposes.
func New(body string) (*GoGenerator, error) {
	if body == "" {
		body = defaultTemplate
	}
	tmpl, err := template.New("queries").Funcs(template.FuncMap{
		"goString": goString,
	}).Parse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return &GoGenerator{tmpl: tmpl}, nil
}

func MustNew(body string) *GoGenerator {
	g, err := New(body)
	if err != nil {
		panic(err)
	}
	return g
}

func DefaultTemplate() string {
	return defaultTemplate
}

func (g *GoGenerator) Language() string {
	return "go"
}

func (g *GoGenerator) WithTemplate(body string) (codegen.Renderer, error) {
	return New(body)
}

// Render writes a self-contained file for root.
func (g *GoGenerator) Render(w io.Writer, root *model.RootModel) error {
	view, err := buildView(root, true)
	if err != nil {
		return err
	}
	return g.execute(w, view)
}

// RenderPart writes the code for root without the package helpers, for
// packages generated from several query files.
func (g *GoGenerator) RenderPart(w io.Writer, root *model.RootModel) error {
	view, err := buildView(root, false)
	if err != nil {
		return err
	}
	return g.execute(w, view)
}

// RenderShared writes the package helpers needed by the parts rendered
// from roots.
func (g *GoGenerator) RenderShared(w io.Writer, roots []*model.RootModel) error {
	view, err := buildSharedView(roots)
	if err != nil {
		return err
	}
	return g.execute(w, view)
}

func (g *GoGenerator) execute(w io.Writer, view *fileView) error {
	var buf bytes.Buffer
	if err := g.tmpl.Execute(&buf, view); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return fmt.Errorf("generated code for package %s is not valid Go: %w", view.Package, err)
	}

	if _, err := w.Write(src); err != nil {
		return fmt.Errorf("failed to write generated code: %w", err)
	}
	return nil
}
