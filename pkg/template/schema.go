package template

import (
	"fmt"
	"strings"
	"time"
)

// A template schema maps top-level field names to type descriptors. A
// descriptor is one of:
//
//   - a primitive type name: "string", "number", "currency", "date",
//     "boolean", "email"
//   - a nested schema (map[string]any) for dotted-path fields
//   - an array marker: the string "array", or a one-element []any holding
//     the element schema
//
// Schemas are stored alongside templates as JSON, so all maps and slices
// arrive as map[string]any and []any.

// ValidationResult reports whether a template's variable references are all
// covered by its schema. Errors are advisory: callers decide whether to
// block publishing on them.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ValidateTemplate checks every variable reference in a template against the
// flattened schema. The loop-injected synthetic fields _index and _value are
// always accepted. Loop directives bound to a schema field that is not an
// array are also reported, since a shape mismatch silently erases the whole
// section at render time.
func ValidateTemplate(tmpl string, schema map[string]any) ValidationResult {
	known := flattenSchema(schema)
	result := ValidationResult{Valid: true}
	reported := make(map[string]struct{})

	report := func(msg string) {
		if _, dup := reported[msg]; dup {
			return
		}
		reported[msg] = struct{}{}
		result.Valid = false
		result.Errors = append(result.Errors, msg)
	}

	for _, ref := range scanTags(tmpl) {
		root := ref.path
		if idx := strings.IndexByte(root, '.'); idx >= 0 {
			root = root[:idx]
		}
		if root == "_index" || root == "_value" {
			continue
		}
		if _, ok := known[root]; !ok {
			report(fmt.Sprintf("Variable %q is not defined in schema", ref.path))
			continue
		}
		if ref.kind == tagLoop {
			if desc, topLevel := schema[ref.path]; topLevel && !isArrayDescriptor(desc) {
				report(fmt.Sprintf("Loop %q is not bound to an array in schema", ref.path))
			}
		}
	}
	return result
}

// flattenSchema collects every field name reachable in a schema: top-level
// keys plus the keys of nested and array-element schemas. Templates are
// validated against this flat set because loop bodies reference element
// fields by bare name.
func flattenSchema(schema map[string]any) map[string]struct{} {
	known := make(map[string]struct{})
	var walk func(s map[string]any)
	walk = func(s map[string]any) {
		for key, desc := range s {
			known[key] = struct{}{}
			switch d := desc.(type) {
			case map[string]any:
				walk(d)
			case []any:
				if len(d) > 0 {
					if elem, ok := d[0].(map[string]any); ok {
						walk(elem)
					}
				}
			}
		}
	}
	walk(schema)
	return known
}

func isArrayDescriptor(desc any) bool {
	switch d := desc.(type) {
	case string:
		return d == "array"
	case []any:
		return true
	default:
		return false
	}
}

// GenerateSampleData produces a concrete data context for template preview
// from a schema: every field gets a fixed, recognizable sample value.
func GenerateSampleData(schema map[string]any) map[string]any {
	data := make(map[string]any, len(schema))
	for key, desc := range schema {
		data[key] = sampleValue(key, desc)
	}
	return data
}

func sampleValue(key string, desc any) any {
	switch d := desc.(type) {
	case string:
		switch d {
		case "number":
			return 42
		case "currency":
			return 4999
		case "date":
			return time.Now().Format(time.RFC3339)
		case "boolean":
			return true
		case "email":
			return "customer@example.com"
		case "array":
			return sampleLineItems()
		default:
			return "Sample " + key
		}
	case map[string]any:
		return GenerateSampleData(d)
	case []any:
		if len(d) > 0 {
			if elem, ok := d[0].(map[string]any); ok {
				return []any{GenerateSampleData(elem), GenerateSampleData(elem)}
			}
		}
		return sampleLineItems()
	default:
		return "Sample " + key
	}
}

// sampleLineItems returns two line-item-shaped records for previewing order
// tables.
func sampleLineItems() []any {
	return []any{
		map[string]any{"name": "Cold-Pressed Greens", "quantity": 1, "price": 1200},
		map[string]any{"name": "Citrus Immunity Shot", "quantity": 2, "price": 450},
	}
}
