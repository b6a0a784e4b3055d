package extract

import (
	"strings"

	"github.com/ppiankov/scriptcorpus/internal/model"
)

// Utterance is a parsed character line: a normalized speaker name and the
// normalized, whitespace-collapsed spoken text.
type Utterance struct {
	Name string
	Text string
}

// Render formats the utterance as "<boname> NAME <eoname> tokens...".
// Empty fields render as empty spans rather than doubled spaces.
func (u Utterance) Render() string {
	parts := make([]string, 0, 4)
	parts = append(parts, MarkerBeginName)
	if u.Name != "" {
		parts = append(parts, u.Name)
	}
	parts = append(parts, MarkerEndName)
	if u.Text != "" {
		parts = append(parts, u.Text)
	}
	return strings.Join(parts, " ")
}

// ParseCharacterLine extracts speaker and utterance from a line classified as
// LineCharacter. It never fails; problems are reported as diagnostics.
//
//	BRAN (looking down): I promise.
//	JAIME: As your brother, I feel it's my duty to warn you: You worry too much.
func ParseCharacterLine(line string) (Utterance, []model.Diagnostic) {
	var diags []model.Diagnostic

	fields := strings.Split(line, ":")
	// Trailing empty fields carry no text ("NAME:" or "NAME::")
	for len(fields) > 1 && fields[len(fields)-1] == "" {
		fields = fields[:len(fields)-1]
	}

	name := NormalizeName(speakerLabel(fields[0]))
	if name == "" {
		diags = append(diags, model.Diagnostic{
			Kind:    model.DiagMissingName,
			Line:    line,
			Message: "no speaker name before colon",
		})
	}

	var text string
	if len(fields) < 2 {
		diags = append(diags, model.Diagnostic{
			Kind:    model.DiagMissingText,
			Line:    line,
			Message: "no utterance text after colon",
		})
	} else {
		// Colons inside dialogue are plain text
		text = CollapseSpace(NormalizeText(strings.Join(fields[1:], " ")))
	}

	return Utterance{Name: name, Text: text}, diags
}

// speakerLabel cuts a parenthetical off the name field: "BRAN (looking down)" -> "BRAN ".
// A parenthesis in the first position is part of the label.
func speakerLabel(field string) string {
	if field == "" {
		return ""
	}
	if i := strings.IndexByte(field[1:], '('); i >= 0 {
		return field[:i+1]
	}
	return field
}

// NormalizeName trims a speaker name, joins its words with "_" and upper-cases it.
func NormalizeName(name string) string {
	return strings.ToUpper(strings.Join(strings.Fields(name), "_"))
}
