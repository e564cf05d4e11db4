package resolver

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/aymerick/raymond"
)

// IconTemplateError reports an icon URL template that does not parse or
// render.
type IconTemplateError struct {
	Template string
	Wrapped  error
}

func (e *IconTemplateError) Error() string {
	return fmt.Sprintf("icon URL template %q: %v", e.Template, e.Wrapped)
}

func (e *IconTemplateError) Unwrap() error {
	return e.Wrapped
}

// IconContext is the data an icon URL template is rendered with.
type IconContext struct {
	Owner  string
	Name   string
	Branch string
	// Path is the project-relative, slash-separated location of the icon
	Path string
}

type iconTemplate struct {
	source string
	tpl    *raymond.Template
}

func parseIconTemplate(source string) (*iconTemplate, error) {
	tpl, err := raymond.Parse(source)
	if err != nil {
		return nil, &IconTemplateError{Template: source, Wrapped: err}
	}
	return &iconTemplate{source: source, tpl: tpl}, nil
}

// render fills the template. Values are URL path escaped per segment and
// handed over as SafeString so handlebars does not HTML-escape them again.
func (t *iconTemplate) render(ic IconContext) (string, error) {
	data := map[string]interface{}{
		"owner":      raymond.SafeString(escapeSegments(ic.Owner)),
		"name":       raymond.SafeString(escapeSegments(ic.Name)),
		"repository": raymond.SafeString(escapeSegments(ic.Owner + "/" + ic.Name)),
		"branch":     raymond.SafeString(escapeSegments(ic.Branch)),
		"path":       raymond.SafeString(escapeSegments(ic.Path)),
	}
	out, err := t.tpl.Exec(data)
	if err != nil {
		return "", &IconTemplateError{Template: t.source, Wrapped: err}
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", &IconTemplateError{Template: t.source, Wrapped: fmt.Errorf("rendered an empty URL")}
	}
	return out, nil
}

func escapeSegments(p string) string {
	parts := strings.Split(p, "/")
	for i, s := range parts {
		parts[i] = url.PathEscape(s)
	}
	return strings.Join(parts, "/")
}
