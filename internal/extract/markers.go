package extract

import "strings"

// Marker tokens emitted into the corpus vocabulary
const (
	MarkerBeginName   = "<boname>"
	MarkerEndName     = "<eoname>"
	MarkerOpenExp     = "<open-exp>"
	MarkerCloseExp    = "<close-exp>"
	MarkerEOS         = "<eos>"
	MarkerQuestion    = "<question>"
	MarkerExclamation = "<exclamation>"
	MarkerOpenBrack   = "<open-brack>"
	MarkerCloseBrack  = "<close-brack>"
	MarkerEllipsis    = "<ellipsis>"
	MarkerBeginQuote  = "<boquote>"
	MarkerEndQuote    = "<eoquote>"
	MarkerEndEpisode  = "<eoepisode>"
)

// DirectiveMarker builds a dynamic marker token from a directive label,
// e.g. "BLACKOUT" -> "<BLACKOUT>". Internal whitespace becomes "_" so the
// marker stays a single token.
func DirectiveMarker(label string) string {
	return "<" + strings.Join(strings.Fields(label), "_") + ">"
}

// IsMarker reports whether tok has the shape of a marker token.
func IsMarker(tok string) bool {
	return len(tok) > 2 && strings.HasPrefix(tok, "<") && strings.HasSuffix(tok, ">")
}
