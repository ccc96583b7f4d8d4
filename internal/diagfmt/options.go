// Package diagfmt renders collected diagnostics for people and for
// machines. The pretty form writes gcc-style "path:line:" lines with the
// offending source underneath; the JSON form is a stable shape for editor
// and CI integration. Color handling rides on the global fatih/color mode,
// which the root command sets from --color.
package diagfmt

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	ShowSource bool // print the offending source line under the message
	ShowNotes  bool
}

// DefaultPrettyOpts is what the CLI uses unless flags say otherwise.
func DefaultPrettyOpts() PrettyOpts {
	return PrettyOpts{ShowSource: true, ShowNotes: true}
}
