package template

import (
	"strconv"
	"strings"
)

// Substitute evaluates a template string against the given data context and
// returns the expanded output. Partials are injected first, then the
// directive tree is evaluated in a single recursive pass, so loops inside
// conditionals and conditionals inside loops both behave as written.
//
// Substitute never returns an error: unresolved variables render as the
// empty string, loops over non-array values render as nothing, and malformed
// directives are copied through as literal text.
func Substitute(tmpl string, data map[string]any) string {
	var sb strings.Builder
	evalNodes(parse(injectPartials(tmpl)), data, &sb)
	return sb.String()
}

func evalNodes(nodes []node, data map[string]any, sb *strings.Builder) {
	for _, n := range nodes {
		switch n := n.(type) {
		case textNode:
			sb.WriteString(n.text)

		case varNode:
			val, ok := lookupPath(data, n.path)
			if !ok || val == nil {
				continue
			}
			if n.formatter != "" {
				sb.WriteString(ApplyFormatter(val, n.formatter))
			} else {
				sb.WriteString(formatValue(val))
			}

		case loopNode:
			val, ok := lookupPath(data, n.name)
			if !ok {
				continue
			}
			items, ok := asSlice(val)
			if !ok {
				// Non-array value: the whole span renders empty.
				continue
			}
			for i, elem := range items {
				evalNodes(n.body, childContext(elem, i), sb)
			}

		case condNode:
			val, _ := lookupPath(data, n.path)
			if isTruthy(val) {
				evalNodes(n.then, data, sb)
			} else {
				evalNodes(n.els, data, sb)
			}
		}
	}
}

// lookupPath walks a dotted path through nested maps. Resolution fails if
// any intermediate value is nil, absent, or not a map (arrays are not
// addressable by dotted path).
func lookupPath(data map[string]any, path string) (any, bool) {
	current := any(data)
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// asSlice normalizes the handful of slice shapes that reach the engine:
// decoded JSON ([]any), hand-built contexts ([]map[string]any, []string).
func asSlice(val any) ([]any, bool) {
	switch v := val.(type) {
	case []any:
		return v, true
	case []map[string]any:
		out := make([]any, len(v))
		for i, m := range v {
			out[i] = m
		}
		return out, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}

// childContext builds the per-iteration context for a loop body. Map
// elements become the context with _index injected; primitive elements are
// wrapped so the body can address them as {{_value}}.
func childContext(elem any, index int) map[string]any {
	if m, ok := elem.(map[string]any); ok {
		child := make(map[string]any, len(m)+1)
		for k, v := range m {
			child[k] = v
		}
		child["_index"] = index
		return child
	}
	return map[string]any{"_value": elem, "_index": index}
}

// isTruthy pins down conditional truthiness explicitly: nil, false, the
// empty string and numeric zero are falsy. Everything else, including empty
// arrays and maps, is truthy.
func isTruthy(val any) bool {
	switch v := val.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case int:
		return v != 0
	case int8:
		return v != 0
	case int16:
		return v != 0
	case int32:
		return v != 0
	case int64:
		return v != 0
	case uint:
		return v != 0
	case uint8:
		return v != 0
	case uint16:
		return v != 0
	case uint32:
		return v != 0
	case uint64:
		return v != 0
	case float32:
		return v != 0
	case float64:
		return v != 0
	default:
		return true
	}
}

// formatValue converts an arbitrary value to its display string.
func formatValue(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return stringify(v)
	}
}
