package documents

import (
	"context"
	"embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/jonathan/profile-builder/internal/types"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var extensions = map[Format]string{
	FormatMarkdown: "md",
	FormatText:     "txt",
	FormatLaTeX:    "tex",
}

// PostingFetcher reads the description of a job posting.
type PostingFetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// Generator renders documents from the embedded templates.
type Generator struct {
	templates map[string]*template.Template
	fetcher   PostingFetcher
	now       func() time.Time
}

// NewGenerator parses every template. fetcher may be nil, in which case
// requests must carry the job description inline.
func NewGenerator(fetcher PostingFetcher) (*Generator, error) {
	g := &Generator{
		templates: make(map[string]*template.Template),
		fetcher:   fetcher,
		now:       time.Now,
	}
	for _, kind := range []Kind{KindResume, KindCoverLetter} {
		for format, ext := range extensions {
			name := fmt.Sprintf("%s.%s.tmpl", kind, ext)
			src, err := templateFS.ReadFile("templates/" + name)
			if err != nil {
				return nil, &TemplateError{Name: name, Cause: err}
			}
			t := template.New(name).Funcs(funcsFor(format))
			if format == FormatLaTeX {
				t = t.Delims("<<", ">>")
			}
			if t, err = t.Parse(string(src)); err != nil {
				return nil, &TemplateError{Name: name, Cause: err}
			}
			g.templates[templateKey(kind, format)] = t
		}
	}
	return g, nil
}

func templateKey(kind Kind, format Format) string {
	return string(kind) + "/" + string(format)
}

// Generate validates req, fetches the posting when only its URL is given and
// renders the document for p.
func (g *Generator) Generate(ctx context.Context, p *types.Profile, req Request) (*Document, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	description := req.JobDescription
	if strings.TrimSpace(description) == "" && req.JobURL != "" && g.fetcher != nil {
		text, err := g.fetcher.FetchText(ctx, req.JobURL)
		if err != nil {
			return nil, &PostingError{URL: req.JobURL, Cause: err}
		}
		description = text
	}

	t, ok := g.templates[templateKey(req.Kind, req.Format)]
	if !ok {
		return nil, fmt.Errorf("no template for %s/%s", req.Kind, req.Format)
	}

	kw := ExtractKeywords(req.JobTitle, description)
	var out strings.Builder
	if err := t.Execute(&out, buildView(p, &req, kw, g.now())); err != nil {
		return nil, &TemplateError{Name: t.Name(), Cause: err}
	}
	return &Document{Kind: req.Kind, Format: req.Format, Content: out.String()}, nil
}

func funcsFor(format Format) template.FuncMap {
	esc := escaperFor(format)
	return template.FuncMap{
		"esc":   esc,
		"upper": strings.ToUpper,
		"url":   latexURL,
		"escJoin": func(items []string, sep string) string {
			out := make([]string, len(items))
			for i, s := range items {
				out[i] = esc(s)
			}
			return strings.Join(out, sep)
		},
		// list joins items as prose: "a, b and c".
		"list": func(items []string) string {
			out := make([]string, len(items))
			for i, s := range items {
				out[i] = esc(s)
			}
			if len(out) < 2 {
				return strings.Join(out, "")
			}
			return strings.Join(out[:len(out)-1], ", ") + " and " + out[len(out)-1]
		},
		"contact": func(v *view) string {
			return contactLine(v, format, esc)
		},
	}
}

func contactLine(v *view, format Format, esc func(string) string) string {
	var parts []string
	for _, s := range []string{v.Location, v.Email} {
		if s != "" {
			parts = append(parts, esc(s))
		}
	}
	for _, l := range v.Links {
		switch format {
		case FormatMarkdown:
			parts = append(parts, fmt.Sprintf("[%s](%s)", esc(l.Platform), l.URL))
		case FormatLaTeX:
			parts = append(parts, fmt.Sprintf(`\href{%s}{%s}`, latexURL(l.URL), esc(l.Platform)))
		default:
			parts = append(parts, l.URL)
		}
	}
	sep := " | "
	if format == FormatLaTeX {
		sep = ` $\cdot$ `
	}
	return strings.Join(parts, sep)
}

var latexURLEscaper = strings.NewReplacer(`%`, `\%`, `#`, `\#`)

func latexURL(u string) string {
	return latexURLEscaper.Replace(u)
}
