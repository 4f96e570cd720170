package codegen

import (
	"fmt"
	"io"
	"sort"

	"github.com/terminally-online/querygen/internal/model"
)

type Renderer interface {
	Render(w io.Writer, root *model.RootModel) error
	Language() string
}

// TemplateRenderer is implemented by renderers that accept a replacement
// template body.
type TemplateRenderer interface {
	Renderer
	WithTemplate(body string) (Renderer, error)
}

// PackageRenderer is implemented by renderers that can put the output of
// several query files in one package. RenderShared writes the declarations
// the parts have in common and RenderPart writes one file without them.
type PackageRenderer interface {
	Renderer
	RenderShared(w io.Writer, roots []*model.RootModel) error
	RenderPart(w io.Writer, root *model.RootModel) error
}

var renderers = make(map[string]Renderer)

func Register(r Renderer) {
	renderers[r.Language()] = r
}

func Get(language string) (Renderer, error) {
	r, ok := renderers[language]
	if !ok {
		return nil, fmt.Errorf("unknown language: %s", language)
	}
	return r, nil
}

// GetWithTemplate returns the renderer for language, switched to body when
// body is not empty.
func GetWithTemplate(language, body string) (Renderer, error) {
	r, err := Get(language)
	if err != nil {
		return nil, err
	}
	if body == "" {
		return r, nil
	}
	tr, ok := r.(TemplateRenderer)
	if !ok {
		return nil, fmt.Errorf("language %s does not support custom templates", language)
	}
	return tr.WithTemplate(body)
}

func Languages() []string {
	var langs []string
	for lang := range renderers {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}
