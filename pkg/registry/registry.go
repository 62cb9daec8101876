// pkg/registry/registry.go
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
)

//go:embed templates.json
var defaultTemplates []byte

// LoadRegistry reads a template registry from path, or the built-in one when
// path is empty.
func LoadRegistry(path string) (*TemplateRegistry, error) {
	data := defaultTemplates
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, err
		}
	}
	return Parse(data)
}

func Parse(data []byte) (*TemplateRegistry, error) {
	var reg TemplateRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse template registry: %w", err)
	}
	seen := make(map[string]bool, len(reg.Templates))
	for _, t := range reg.Templates {
		if t.Type == "" {
			return nil, fmt.Errorf("template without type")
		}
		if seen[t.Type] {
			return nil, fmt.Errorf("duplicate template type %q", t.Type)
		}
		seen[t.Type] = true
	}
	return &reg, nil
}

// Lookup returns the template registered for notificationType.
func (r *TemplateRegistry) Lookup(notificationType string) (Template, bool) {
	if r == nil {
		return Template{}, false
	}
	for _, t := range r.Templates {
		if t.Type == notificationType {
			return t, true
		}
	}
	return Template{}, false
}

// Types lists the registered notification types.
func (r *TemplateRegistry) Types() []string {
	out := make([]string, 0, len(r.Templates))
	for _, t := range r.Templates {
		out = append(out, t.Type)
	}
	return out
}

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// Render substitutes {{key}} placeholders. Unknown keys render empty.
func Render(tmpl string, data map[string]interface{}) string {
	return placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		key := placeholder.FindStringSubmatch(m)[1]
		v, ok := data[key]
		if !ok || v == nil {
			return ""
		}
		if s, ok := v.(string); ok {
			return s
		}
		return strings.TrimSpace(fmt.Sprint(v))
	})
}

// Placeholders lists the distinct keys referenced by tmpl, in order of first use.
func Placeholders(tmpl string) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range placeholder.FindAllStringSubmatch(tmpl, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}

// Validate checks that every template can be sent on the channels it declares
// and only references declared variables.
func (r *TemplateRegistry) Validate() error {
	if len(r.Templates) == 0 {
		return fmt.Errorf("registry contains no templates")
	}
	for _, t := range r.Templates {
		if len(t.Channels) == 0 {
			return fmt.Errorf("template %s declares no channel", t.Type)
		}
		for _, c := range t.Channels {
			switch c {
			case ChannelEmail:
				if strings.TrimSpace(t.Subject) == "" || strings.TrimSpace(t.Body) == "" {
					return fmt.Errorf("template %s: email channel needs subject and body", t.Type)
				}
			case ChannelSMS:
				if strings.TrimSpace(t.SMS) == "" {
					return fmt.Errorf("template %s: sms channel needs an sms text", t.Type)
				}
			default:
				return fmt.Errorf("template %s: unknown channel %q", t.Type, c)
			}
		}

		declared := make(map[string]bool, len(t.Variables))
		for _, v := range t.Variables {
			declared[v] = true
		}
		for _, text := range []string{t.Subject, t.Body, t.SMS} {
			for _, key := range Placeholders(text) {
				if !declared[key] {
					return fmt.Errorf("template %s: undeclared variable %q", t.Type, key)
				}
			}
		}
	}
	return nil
}
