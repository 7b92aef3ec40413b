package template

import "strings"

// Shared email partials. Defined once so every stored template renders with
// the same styles, header and footer; the blocks may themselves contain
// directives, which is why injection runs before data substitution.
const (
	// StandardStyles is the shared CSS block injected by {{standardStyles}}.
	StandardStyles = `<style>
  body { margin: 0; padding: 0; background-color: #f7f5ef; font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; color: #1f2a1f; }
  .container { max-width: 600px; margin: 0 auto; padding: 24px; background-color: #ffffff; }
  .button { display: inline-block; padding: 12px 28px; background-color: #2e7d32; color: #ffffff; text-decoration: none; border-radius: 4px; font-weight: 600; }
  .muted { color: #6b7a6b; font-size: 13px; }
  h1, h2 { color: #1b4d1b; }
  table.items { width: 100%; border-collapse: collapse; }
  table.items td { padding: 8px 0; border-bottom: 1px solid #e8e4d8; }
</style>`

	// StandardHeader is the brand header injected by {{standardHeader}}.
	StandardHeader = `<div style="background-color:#1b4d1b;padding:20px;text-align:center;">
  <img src="https://cdn.getpressed.com/email/logo.png" alt="Pressed" width="120" style="display:block;margin:0 auto;" />
</div>`

	// StandardFooter is the footer injected by {{standardFooter}}.
	StandardFooter = `<div class="muted" style="padding:24px;text-align:center;">
  <p>Pressed &middot; Cold-pressed, never heated.</p>
  <p>123 Orchard Lane, Portland, OR 97201</p>
  <p><a href="https://getpressed.com/account/preferences">Email preferences</a> &middot; <a href="https://getpressed.com/unsubscribe">Unsubscribe</a></p>
</div>`
)

// partialNames maps partial tokens to their expansions. The keys are also
// excluded from ExtractVariables, since partials are not data variables.
var partialNames = map[string]string{
	"standardStyles": StandardStyles,
	"standardHeader": StandardHeader,
	"standardFooter": StandardFooter,
}

// injectPartials replaces every occurrence of the three partial tokens with
// their constant markup. Misspelled tokens are left alone and later resolve
// as ordinary (empty) variables.
func injectPartials(tmpl string) string {
	for name, markup := range partialNames {
		tmpl = strings.ReplaceAll(tmpl, "{{"+name+"}}", markup)
	}
	return tmpl
}
