// Package dos renders the files a door expects to find in its session
// workspace: the DOOR.SYS dropfile and the DOORMAN.BAT launcher. Output
// is transliterated to code page 437 with DOS line endings, since the
// guest side never sees UTF-8.
package dos

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"golang.org/x/text/encoding/charmap"
)

//go:embed templates/*.tmpl
var assets embed.FS

// Templates renders the embedded DOS file templates and arbitrary
// command strings from door configuration.
type Templates struct{}

// New returns a Templates renderer.
func New() *Templates {
	return &Templates{}
}

// RenderString renders a template string from door configuration, e.g.
// launch_commands, against vars.
func (t *Templates) RenderString(text string, vars any) (string, error) {
	tmpl, err := template.New("inline").Parse(text)
	if err != nil {
		return "", fmt.Errorf("couldn't parse template: %w", err)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("couldn't render template: %w", err)
	}
	return buf.String(), nil
}

// render renders the embedded template for name, e.g. "door.sys".
func (t *Templates) render(name string, vars any) (string, error) {
	raw, err := assets.ReadFile("templates/" + name + ".tmpl")
	if err != nil {
		return "", fmt.Errorf("couldn't find template for %s: %w", name, err)
	}
	return t.RenderString(string(raw), vars)
}

// WriteDOS renders the embedded template for name and writes it into
// dir under the upper-cased name, CRLF-terminated and encoded as
// CP437. Runes with no CP437 equivalent become '?'.
func (t *Templates) WriteDOS(name string, dir string, vars any) error {
	rendered, err := t.render(name, vars)
	if err != nil {
		return err
	}

	crlf := strings.ReplaceAll(rendered, "\n", "\r\n")
	path := filepath.Join(dir, strings.ToUpper(name))

	if err := os.WriteFile(path, encodeCP437(crlf), 0o644); err != nil {
		return fmt.Errorf("couldn't write %s: %w", path, err)
	}
	return nil
}

func encodeCP437(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		b, ok := charmap.CodePage437.EncodeRune(r)
		if !ok {
			b = '?'
		}
		out = append(out, b)
	}
	return out
}
