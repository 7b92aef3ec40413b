package template

import (
	"strings"
	"testing"
)

func TestLiteralPassthrough(t *testing.T) {
	tests := []struct {
		name string
		tmpl string
	}{
		{"plain text", "Hello there, welcome to Pressed."},
		{"html", "<p>Cold-pressed, <b>never</b> heated.</p>"},
		{"empty", ""},
		{"single braces", "body { margin: 0; } .a { color: red; }"},
	}
	data := map[string]any{"name": "Ana"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Substitute(tt.tmpl, data); got != tt.tmpl {
				t.Errorf("Substitute() = %q, want %q", got, tt.tmpl)
			}
		})
	}
}

func TestVariableSubstitution(t *testing.T) {
	data := map[string]any{
		"name": "Ana",
		"user": map[string]any{
			"name": "Ana",
			"address": map[string]any{
				"city": "Portland",
			},
		},
		"count": 3,
		"items": []any{"a", "b"},
	}

	tests := []struct {
		name string
		tmpl string
		want string
	}{
		{"simple", "{{name}}", "Ana"},
		{"dotted path", "{{user.name}}", "Ana"},
		{"deep path", "{{user.address.city}}", "Portland"},
		{"missing", "{{user.missing}}", ""},
		{"missing root", "{{nothing}}", ""},
		{"number value", "{{count}} juices", "3 juices"},
		{"surrounding text", "Hi {{name}}!", "Hi Ana!"},
		{"path through array fails", "{{items.name}}", ""},
		{"path through primitive fails", "{{name.first}}", ""},
		{"whitespace inside braces", "{{ name }}", "Ana"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Substitute(tt.tmpl, data); got != tt.want {
				t.Errorf("Substitute(%q) = %q, want %q", tt.tmpl, got, tt.want)
			}
		})
	}
}

func TestNilValueRendersEmpty(t *testing.T) {
	data := map[string]any{"gone": nil}
	if got := Substitute("a{{gone}}b", data); got != "ab" {
		t.Errorf("got %q, want %q", got, "ab")
	}
}

func TestLoopExpansion(t *testing.T) {
	t.Run("length and order", func(t *testing.T) {
		data := map[string]any{"items": []any{1, 2, 3, 4, 5}}
		got := Substitute("{{#items}}X{{/items}}", data)
		if got != strings.Repeat("X", 5) {
			t.Errorf("got %q, want %q", got, "XXXXX")
		}
	})

	t.Run("index injection", func(t *testing.T) {
		data := map[string]any{"items": []any{"a", "b", "c"}}
		got := Substitute("{{#items}}{{_index}}:{{_value}} {{/items}}", data)
		want := "0:a 1:b 2:c "
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("map elements", func(t *testing.T) {
		data := map[string]any{
			"items": []any{
				map[string]any{"name": "Greens", "price": 1200},
				map[string]any{"name": "Citrus", "price": 450},
			},
		}
		got := Substitute("{{#items}}{{name}}={{price|currency}};{{/items}}", data)
		want := "Greens=$12.00;Citrus=$4.50;"
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("non-array renders empty", func(t *testing.T) {
		tests := []map[string]any{
			{"items": "not an array"},
			{"items": 7},
			{"items": map[string]any{"a": 1}},
			{},
		}
		for _, data := range tests {
			if got := Substitute("before{{#items}}X{{/items}}after", data); got != "beforeafter" {
				t.Errorf("data %v: got %q, want %q", data, got, "beforeafter")
			}
		}
	})

	t.Run("empty array", func(t *testing.T) {
		data := map[string]any{"items": []any{}}
		if got := Substitute("[{{#items}}X{{/items}}]", data); got != "[]" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("loop context does not see outer names", func(t *testing.T) {
		data := map[string]any{
			"brand": "Pressed",
			"items": []any{map[string]any{"name": "Greens"}},
		}
		got := Substitute("{{#items}}{{brand}}{{name}}{{/items}}", data)
		if got != "Greens" {
			t.Errorf("got %q, want %q", got, "Greens")
		}
	})

	t.Run("same name twice at one level", func(t *testing.T) {
		data := map[string]any{"items": []any{"a", "b"}}
		got := Substitute("{{#items}}{{_value}}{{/items}}|{{#items}}{{_value}}{{/items}}", data)
		if got != "ab|ab" {
			t.Errorf("got %q, want %q", got, "ab|ab")
		}
	})
}

func TestConditionals(t *testing.T) {
	tests := []struct {
		name string
		tmpl string
		data map[string]any
		want string
	}{
		{"true selects then", "{{#if flag}}A{{else}}B{{/if}}", map[string]any{"flag": true}, "A"},
		{"false selects else", "{{#if flag}}A{{else}}B{{/if}}", map[string]any{"flag": false}, "B"},
		{"absent selects else", "{{#if flag}}A{{else}}B{{/if}}", map[string]any{}, "B"},
		{"no else true", "{{#if flag}}A{{/if}}", map[string]any{"flag": true}, "A"},
		{"no else false", "{{#if flag}}A{{/if}}", map[string]any{"flag": false}, ""},
		{"dotted condition", "{{#if user.vip}}VIP{{/if}}", map[string]any{"user": map[string]any{"vip": true}}, "VIP"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Substitute(tt.tmpl, tt.data); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruthiness(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		truthy bool
	}{
		{"nil", nil, false},
		{"false", false, false},
		{"true", true, true},
		{"empty string", "", false},
		{"string", "x", true},
		{"zero int", 0, false},
		{"int", 1, true},
		{"zero float", 0.0, false},
		{"float", 0.1, true},
		{"negative", -1, true},
		{"empty array", []any{}, true},
		{"empty map", map[string]any{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := map[string]any{"v": tt.value}
			want := "no"
			if tt.truthy {
				want = "yes"
			}
			got := Substitute("{{#if v}}yes{{else}}no{{/if}}", data)
			if got != want {
				t.Errorf("value %v: got %q, want %q", tt.value, got, want)
			}
		})
	}
}

func TestNesting(t *testing.T) {
	t.Run("conditional inside loop", func(t *testing.T) {
		data := map[string]any{
			"items": []any{
				map[string]any{"name": "Greens", "sub": true},
				map[string]any{"name": "Citrus", "sub": false},
			},
		}
		got := Substitute("{{#items}}{{name}}{{#if sub}}*{{/if}};{{/items}}", data)
		if got != "Greens*;Citrus;" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("loop inside conditional", func(t *testing.T) {
		data := map[string]any{
			"show":  true,
			"items": []any{"a", "b"},
		}
		got := Substitute("{{#if show}}{{#items}}{{_value}}{{/items}}{{/if}}", data)
		if got != "ab" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("loop inside false conditional is dead", func(t *testing.T) {
		data := map[string]any{
			"show":  false,
			"items": []any{"a", "b"},
		}
		got := Substitute("{{#if show}}{{#items}}{{_value}}{{/items}}{{/if}}", data)
		if got != "" {
			t.Errorf("got %q, want empty", got)
		}
	})

	t.Run("nested loops", func(t *testing.T) {
		data := map[string]any{
			"orders": []any{
				map[string]any{"id": "o1", "lines": []any{"x", "y"}},
				map[string]any{"id": "o2", "lines": []any{"z"}},
			},
		}
		got := Substitute("{{#orders}}{{id}}:{{#lines}}{{_value}}{{/lines}} {{/orders}}", data)
		if got != "o1:xy o2:z " {
			t.Errorf("got %q", got)
		}
	})

	t.Run("nested conditionals", func(t *testing.T) {
		data := map[string]any{"a": true, "b": false}
		got := Substitute("{{#if a}}1{{#if b}}2{{else}}3{{/if}}4{{/if}}", data)
		if got != "134" {
			t.Errorf("got %q", got)
		}
	})
}

func TestMalformedDirectivesStayLiteral(t *testing.T) {
	data := map[string]any{"items": []any{"a"}, "name": "Ana"}
	tests := []struct {
		name string
		tmpl string
		want string
	}{
		{"mismatched loop close", "{{#items}}X{{/other}}", "{{#items}}X{{/other}}"},
		{"stray close", "{{/items}}ok", "{{/items}}ok"},
		{"unclosed if", "{{#if name}}hello", "{{#if name}}hello"},
		{"stray else", "a{{else}}b", "a{{else}}b"},
		{"bad identifier", "{{9lives}}", "{{9lives}}"},
		{"bad formatter name", "{{name|big bad}}", "{{name|big bad}}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Substitute(tt.tmpl, data); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPartialInjection(t *testing.T) {
	t.Run("header independent of data", func(t *testing.T) {
		got := Substitute("{{standardHeader}}", map[string]any{})
		if got != StandardHeader {
			t.Errorf("got %q, want the standard header markup", got)
		}
	})

	t.Run("all three partials", func(t *testing.T) {
		got := Substitute("{{standardStyles}}{{standardHeader}}{{standardFooter}}", nil)
		want := StandardStyles + StandardHeader + StandardFooter
		if got != want {
			t.Errorf("partials did not expand to their constant markup")
		}
	})

	t.Run("injection precedes substitution", func(t *testing.T) {
		got := Substitute("{{standardHeader}}Hi {{name}}", map[string]any{"name": "Ana"})
		if !strings.Contains(got, StandardHeader) || !strings.Contains(got, "Hi Ana") {
			t.Errorf("got %q", got)
		}
	})

	t.Run("misspelled partial is an empty variable", func(t *testing.T) {
		got := Substitute("a{{standardHeadr}}b", map[string]any{})
		if got != "ab" {
			t.Errorf("got %q", got)
		}
	})
}

func TestEndToEnd(t *testing.T) {
	tmpl := "Hello {{name}}, you paid {{amount|currency}} on {{date|formatDate}}."
	data := map[string]any{
		"name":   "Sam",
		"amount": 2500,
		"date":   "2024-03-15T00:00:00Z",
	}
	want := "Hello Sam, you paid $25.00 on March 15, 2024."
	if got := Substitute(tmpl, data); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestOrderConfirmationTemplate(t *testing.T) {
	tmpl := `{{standardHeader}}<p>Thanks {{customer.name|capitalize}}!</p>
<table class="items">{{#items}}<tr><td>{{name}}</td><td>{{quantity}}</td><td>{{price|currency}}</td></tr>{{/items}}</table>
{{#if discount}}<p>Discount applied: {{discount|currency}}</p>{{/if}}
<p>Total: {{total|currency}}</p>{{standardFooter}}`

	data := map[string]any{
		"customer": map[string]any{"name": "ana"},
		"items": []any{
			map[string]any{"name": "Cold-Pressed Greens", "quantity": 2, "price": 1200},
			map[string]any{"name": "Citrus Immunity Shot", "quantity": 1, "price": 450},
		},
		"discount": 285,
		"total":    2565,
	}

	got := Substitute(tmpl, data)
	for _, want := range []string{
		"Thanks Ana!",
		"<td>Cold-Pressed Greens</td><td>2</td><td>$12.00</td>",
		"<td>Citrus Immunity Shot</td><td>1</td><td>$4.50</td>",
		"Discount applied: $2.85",
		"Total: $25.65",
		StandardHeader,
		StandardFooter,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q\noutput: %s", want, got)
		}
	}
}
