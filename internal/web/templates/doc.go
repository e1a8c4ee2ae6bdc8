// Package templates renders the HTML fragments returned to HTMX clients.
//
// Components are written in fragments.templ; run `templ generate` after
// editing it to refresh fragments_templ.go.
package templates
