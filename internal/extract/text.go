package extract

import "strings"

// substitution is one literal replacement step of the text normalizer.
type substitution struct {
	from string
	to   string
}

// substitutions run in this order. No marker contains a trigger character,
// so a later step never rewrites an inserted marker.
var substitutions = []substitution{
	{".", " " + MarkerEOS},
	{"?", " " + MarkerQuestion},
	{"!", " " + MarkerExclamation},
	{",", " , "},
	{"'", " '"},
	{"’", " '"},
	{"[", MarkerOpenBrack + " "},
	{"]", " " + MarkerCloseBrack},
	{"…", MarkerEllipsis},
	{"“", MarkerBeginQuote},
	{"”", MarkerEndQuote},
}

// NormalizeText rewrites punctuation in a text fragment into marker tokens.
// The result is not whitespace-collapsed; see CollapseSpace.
func NormalizeText(text string) string {
	for _, s := range substitutions {
		text = strings.ReplaceAll(text, s.from, s.to)
	}
	return text
}

// CollapseSpace splits text on whitespace and rejoins the words with single spaces.
func CollapseSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// CountTokens counts the whitespace-delimited tokens of a rendered line and
// how many of them are markers.
func CountTokens(line string) (tokens, markers int) {
	for _, tok := range strings.Fields(line) {
		tokens++
		if IsMarker(tok) {
			markers++
		}
	}
	return tokens, markers
}
