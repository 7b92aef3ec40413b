// Package template provides variable substitution for transactional email
// templates. Templates are plain strings with {{...}} directives:
//
//	{{name}}              variable lookup
//	{{user.name}}         dotted-path lookup into nested maps
//	{{amount|currency}}   variable with a named formatter
//	{{#items}}...{{/items}}          loop over an array
//	{{#if cond}}...{{/if}}           conditional
//	{{#if cond}}...{{else}}...{{/if}} conditional with else branch
//
// Three fixed partials expand to constant markup before any data-driven
// substitution runs: {{standardStyles}}, {{standardHeader}} and
// {{standardFooter}}.
//
// # Formatters
//
//   - currency: cents to "$12.34", always two decimal digits
//   - formatDate: "January 2, 2006"
//   - formatDateTime: "Jan 2, 2006, 3:04 PM"
//   - uppercase, lowercase, capitalize
//   - number: thousand separators ("1,234,567")
//   - percent: trailing "%" sign
//
// Unknown formatters fall back to plain stringification, and unparsable
// input passes through unchanged.
//
// # Error model
//
// Substitution never fails. A variable that resolves to nil or is absent
// substitutes the empty string, a loop bound to a non-array value expands to
// nothing, and malformed directives are emitted as literal text. A broken
// template must never take down an email send; authoring mistakes are
// surfaced ahead of time by ValidateTemplate instead.
//
// # Loop contexts
//
// Inside a loop body the context is the current element. Map elements get an
// injected _index key (0-based position); primitive elements are wrapped as
// {_value, _index}.
package template
