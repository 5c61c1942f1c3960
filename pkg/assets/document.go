package assets

import (
	"context"
	"fmt"
	"math"
	"path"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/engineerOfLies/MoGUL-sub000/pkg/errors"
)

// Document formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Document is a decoded configuration file.
type Document struct {
	Key    string
	Format string
	Data   map[string]any
}

// DocumentFormat returns the format implied by name's extension, or "" when
// the extension is not a document one. name must already have any
// compression extension removed.
func DocumentFormat(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return ""
	}
}

func decodeDocument(format string, data []byte, doc *Document) error {
	var out map[string]any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &out); err != nil {
			return errors.Wrap(err, errors.ErrorTypeData, "invalid YAML document")
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &out); err != nil {
			return errors.Wrap(err, errors.ErrorTypeData, "invalid JSON document")
		}
	default:
		return errors.Newf(errors.ErrorTypeData, "unsupported document format %q", format)
	}
	if out == nil {
		out = map[string]any{}
	}
	doc.Format = format
	doc.Data = out
	return nil
}

func (m *Manager) loadDocument(ctx context.Context, key string, doc *Document) error {
	raw, name, err := m.reader.read(ctx, key)
	if err != nil {
		return err
	}
	format := DocumentFormat(name)
	if format == "" {
		return errors.Newf(errors.ErrorTypeData, "%s is not a YAML or JSON document", key)
	}
	doc.Key = key
	return decodeDocument(format, raw, doc)
}

func destroyDocument(doc *Document) {
	doc.Data = nil
}

// Lookup returns the value at a dotted path such as "actor.stats.hp" or
// "waves.0.count". Numeric segments index into lists.
func (d *Document) Lookup(p string) (any, bool) {
	var cur any = d.Data
	if p == "" {
		return cur, d.Data != nil
	}
	for _, seg := range strings.Split(p, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// String returns the string at p.
func (d *Document) String(p string) (string, bool) {
	v, ok := d.Lookup(p)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Int returns the integer at p. JSON numbers with no fractional part count.
func (d *Document) Int(p string) (int, bool) {
	v, ok := d.Lookup(p)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		if n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case float64:
		if n != math.Trunc(n) || n > math.MaxInt || n < math.MinInt {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

// Float returns the number at p.
func (d *Document) Float(p string) (float64, bool) {
	v, ok := d.Lookup(p)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// Bool returns the boolean at p.
func (d *Document) Bool(p string) (bool, bool) {
	v, ok := d.Lookup(p)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Strings returns the list of strings at p. Any non-string element fails.
func (d *Document) Strings(p string) ([]string, bool) {
	v, ok := d.Lookup(p)
	if !ok {
		return nil, false
	}
	list, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// Decode copies the document into v, a pointer to a struct with json tags.
func (d *Document) Decode(v any) error {
	data, err := json.Marshal(d.Data)
	if err != nil {
		return fmt.Errorf("encode %s: %w", d.Key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", d.Key, err)
	}
	return nil
}

// cloneValue deep-copies the maps and lists a decoded document is built from.
func cloneValue(v any) any {
	switch node := v.(type) {
	case map[string]any:
		return cloneMap(node)
	case []any:
		out := make([]any, len(node))
		for i, item := range node {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}
