package domain

import (
	"bytes"
	"strings"
	"text/template"

	"go.trai.ch/zerr"
)

// PackageMeta holds the package.json fields used by banners and templates.
type PackageMeta struct {
	Name        string
	Description string
	Version     string
	Homepage    string
	License     string
}

// DefaultBanner is the header prepended to built bundles when a header step declares no template.
var DefaultBanner = strings.Join([]string{
	"/**",
	" * {{.Name}} - {{.Description}}",
	" * @version v{{.Version}}",
	" * @link {{.Homepage}}",
	" * @license {{.License}}",
	" */",
	"",
}, "\n")

// RenderBanner renders tmpl with the package metadata.
// Missing fields are rendered as empty strings.
func RenderBanner(tmpl string, meta PackageMeta) (string, error) {
	if tmpl == "" {
		tmpl = DefaultBanner
	}
	t, err := template.New("banner").Option("missingkey=zero").Parse(tmpl)
	if err != nil {
		return "", zerr.Wrap(ErrTemplateFailed, err.Error())
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, meta); err != nil {
		return "", zerr.Wrap(ErrTemplateFailed, err.Error())
	}
	return buf.String(), nil
}

// BuildEnv is the per-invocation context shared by every task of a run.
type BuildEnv struct {
	// Root is the absolute project root.
	Root string
	// Meta is the package metadata, read once per invocation.
	Meta PackageMeta
}
