package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"finance/src/utils"

	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templatesFS embed.FS

const layoutFile = "layout.html"

// Page is the data every view receives. Data holds the view specific value.
type Page struct {
	Title    string
	LoggedIn bool
	Flashes  []string
	Data     interface{}
}

// Renderer holds one parsed template set per page, each combined with the
// shared layout.
type Renderer struct {
	pages map[string]*template.Template
}

func Funcs() template.FuncMap {
	return template.FuncMap{
		"usd": func(amount decimal.Decimal) string {
			return utils.FormatUSD(amount)
		},
		"abs": func(n int64) int64 {
			if n < 0 {
				return -n
			}
			return n
		},
	}
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	return NewRendererFS(templatesFS, "templates")
}

func NewRendererFS(fsys fs.FS, dir string) (*Renderer, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == layoutFile || !strings.HasSuffix(name, ".html") {
			continue
		}
		tpl, err := template.New(layoutFile).Funcs(Funcs()).ParseFS(fsys, path.Join(dir, layoutFile), path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		r.pages[strings.TrimSuffix(name, ".html")] = tpl
	}
	return r, nil
}

// Render executes the page into a buffer first so a template error never
// leaves a half written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, page Page) error {
	tpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	var output bytes.Buffer
	if err := tpl.ExecuteTemplate(&output, layoutFile, page); err != nil {
		return fmt.Errorf("rendering %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := output.WriteTo(w)
	return err
}
