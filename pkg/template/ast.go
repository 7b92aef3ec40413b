package template

import (
	"regexp"
	"strings"
)

// tagRegex matches {{directive}} spans with optional inner whitespace.
var tagRegex = regexp.MustCompile(`\{\{\s*([^{}]+?)\s*\}\}`)

// pathRegex matches dotted identifier paths like "user.address.city".
var pathRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// identRegex matches a single identifier (loop names, formatter names).
var identRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type node interface{}

// textNode is a literal run of template text.
type textNode struct {
	text string
}

// varNode is a {{path}} or {{path|formatter}} directive.
type varNode struct {
	path      string
	formatter string
}

// loopNode is a {{#name}}...{{/name}} block.
type loopNode struct {
	name string
	body []node
}

// condNode is a {{#if path}}...{{else}}...{{/if}} block. els is nil when no
// else branch is present.
type condNode struct {
	path string
	then []node
	els  []node
}

const (
	frameRoot = iota
	frameLoop
	frameIf
)

// frame is an open block on the parse stack.
type frame struct {
	kind    int
	name    string // loop array name or conditional path
	raw     string // original opening tag, kept for literal fallback
	nodes   []node
	elseRaw string
	els     []node
	inElse  bool
}

func (f *frame) append(n node) {
	if f.inElse {
		f.els = append(f.els, n)
	} else {
		f.nodes = append(f.nodes, n)
	}
}

// parse tokenizes a template into a directive tree. Directives that cannot
// be interpreted (bad identifiers, mismatched closing tags, unclosed blocks)
// degrade to literal text rather than failing: stored templates must always
// render to something.
func parse(tmpl string) []node {
	stack := []*frame{{kind: frameRoot}}
	top := func() *frame { return stack[len(stack)-1] }

	pos := 0
	for _, loc := range tagRegex.FindAllStringSubmatchIndex(tmpl, -1) {
		if loc[0] > pos {
			top().append(textNode{text: tmpl[pos:loc[0]]})
		}
		raw := tmpl[loc[0]:loc[1]]
		directive := tmpl[loc[2]:loc[3]]
		pos = loc[1]

		switch {
		case strings.HasPrefix(directive, "#if "):
			path := strings.TrimSpace(directive[len("#if "):])
			if !pathRegex.MatchString(path) {
				top().append(textNode{text: raw})
				continue
			}
			stack = append(stack, &frame{kind: frameIf, name: path, raw: raw})

		case directive == "else":
			f := top()
			if f.kind == frameIf && !f.inElse {
				f.inElse = true
				f.elseRaw = raw
			} else {
				f.append(textNode{text: raw})
			}

		case directive == "/if":
			f := top()
			if f.kind != frameIf {
				f.append(textNode{text: raw})
				continue
			}
			stack = stack[:len(stack)-1]
			top().append(condNode{path: f.name, then: f.nodes, els: f.els})

		case strings.HasPrefix(directive, "#"):
			name := directive[1:]
			if !identRegex.MatchString(name) {
				top().append(textNode{text: raw})
				continue
			}
			stack = append(stack, &frame{kind: frameLoop, name: name, raw: raw})

		case strings.HasPrefix(directive, "/"):
			f := top()
			name := directive[1:]
			if f.kind != frameLoop || f.name != name {
				// Closing tag with no matching open block stays literal.
				f.append(textNode{text: raw})
				continue
			}
			stack = stack[:len(stack)-1]
			top().append(loopNode{name: f.name, body: f.nodes})

		default:
			path, formatter, ok := splitVariable(directive)
			if !ok {
				top().append(textNode{text: raw})
				continue
			}
			top().append(varNode{path: path, formatter: formatter})
		}
	}
	if pos < len(tmpl) {
		top().append(textNode{text: tmpl[pos:]})
	}

	// Unclosed blocks at end of input: flatten the open frame back into its
	// parent, with the opening tag restored as literal text.
	for len(stack) > 1 {
		f := top()
		stack = stack[:len(stack)-1]
		parent := top()
		parent.append(textNode{text: f.raw})
		for _, n := range f.nodes {
			parent.append(n)
		}
		if f.inElse {
			parent.append(textNode{text: f.elseRaw})
			for _, n := range f.els {
				parent.append(n)
			}
		}
	}

	return stack[0].nodes
}

// splitVariable parses "path" or "path|formatter" directive bodies.
func splitVariable(directive string) (path, formatter string, ok bool) {
	path = directive
	if idx := strings.IndexByte(directive, '|'); idx >= 0 {
		path = strings.TrimSpace(directive[:idx])
		formatter = strings.TrimSpace(directive[idx+1:])
		if !identRegex.MatchString(formatter) {
			return "", "", false
		}
	}
	if !pathRegex.MatchString(path) {
		return "", "", false
	}
	return path, formatter, true
}
