package template

import "strings"

// tagKind classifies a scanned directive for static analysis.
type tagKind int

const (
	tagVariable tagKind = iota
	tagLoop
	tagConditional
)

// tagRef is a single directive reference found by a static scan.
type tagRef struct {
	kind tagKind
	path string
}

// scanTags walks every {{...}} span in a template and records the variable
// references it makes: plain variables (full dotted path, formatter
// stripped), loop array names, and conditional paths. Closing tags, else
// tags and partial tokens are not references.
func scanTags(tmpl string) []tagRef {
	var refs []tagRef
	for _, m := range tagRegex.FindAllStringSubmatch(tmpl, -1) {
		directive := m[1]
		switch {
		case strings.HasPrefix(directive, "#if "):
			path := strings.TrimSpace(directive[len("#if "):])
			if pathRegex.MatchString(path) {
				refs = append(refs, tagRef{kind: tagConditional, path: path})
			}
		case directive == "else", strings.HasPrefix(directive, "/"):
			// Not a reference.
		case strings.HasPrefix(directive, "#"):
			name := directive[1:]
			if identRegex.MatchString(name) {
				refs = append(refs, tagRef{kind: tagLoop, path: name})
			}
		default:
			path, _, ok := splitVariable(directive)
			if !ok {
				continue
			}
			if _, isPartial := partialNames[path]; isPartial {
				continue
			}
			refs = append(refs, tagRef{kind: tagVariable, path: path})
		}
	}
	return refs
}

// ExtractVariables returns the deduplicated set of variable names a template
// references, in order of first appearance. Dotted paths are recorded in
// full; loop and conditional directives contribute their array name and
// condition path respectively. Used by template-authoring tooling to check a
// template against its declared schema.
func ExtractVariables(tmpl string) []string {
	seen := make(map[string]struct{})
	var vars []string
	for _, ref := range scanTags(tmpl) {
		if _, dup := seen[ref.path]; dup {
			continue
		}
		seen[ref.path] = struct{}{}
		vars = append(vars, ref.path)
	}
	return vars
}
