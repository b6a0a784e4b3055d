package extract

import "github.com/ppiankov/scriptcorpus/internal/model"

// ParsedLine is the outcome of parsing one non-empty raw line
type ParsedLine struct {
	Kind        LineKind
	Text        string // Rendered token line, empty when Dropped
	Dropped     bool
	Diagnostics []model.Diagnostic
}

// ParseLine classifies a raw line and dispatches it to the matching parser.
func ParseLine(raw string) ParsedLine {
	switch Classify(raw) {
	case LineCharacter:
		u, diags := ParseCharacterLine(raw)
		return ParsedLine{Kind: LineCharacter, Text: u.Render(), Diagnostics: diags}
	default:
		exp, ok, diags := ParseExpositionLine(raw)
		if !ok {
			return ParsedLine{Kind: LineExposition, Dropped: true, Diagnostics: diags}
		}
		return ParsedLine{Kind: LineExposition, Text: exp.Render(), Diagnostics: diags}
	}
}
