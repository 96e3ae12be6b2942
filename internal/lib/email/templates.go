package email

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/pkg/errors"
)

// Template names an embedded file under templates/.
type Template string

const (
	TemplateWelcome Template = "welcome"
)

//go:embed templates/*.html
var templateFS embed.FS

// RenderTemplate executes the named template with sprig functions available.
func RenderTemplate(name Template, data map[string]string) (string, error) {
	file := "templates/" + string(name) + ".html"

	tmpl, err := template.New(string(name) + ".html").Funcs(sprig.FuncMap()).ParseFS(templateFS, file)
	if err != nil {
		return "", errors.Wrapf(err, "failed to parse email template %s", name)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return "", errors.Wrapf(err, "failed to execute email template %s", name)
	}

	return body.String(), nil
}
