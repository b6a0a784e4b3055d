package extract

import (
	"regexp"
	"strings"

	"github.com/ppiankov/scriptcorpus/internal/model"
)

// ExpositionSource names the branch that produced an exposition's text
type ExpositionSource int

const (
	SourceBracketed    ExpositionSource = iota // "[text]"
	SourceMissingClose                         // "[text" wrapped onto the next line
	SourceMissingOpen                          // "text]" continued from the previous line
	SourceDirective                            // "/ LABEL /"
	SourceRawLine                              // no brackets at all, whole line used
)

func (s ExpositionSource) String() string {
	switch s {
	case SourceBracketed:
		return "bracketed"
	case SourceMissingClose:
		return "missing_close"
	case SourceMissingOpen:
		return "missing_open"
	case SourceDirective:
		return "directive"
	default:
		return "raw_line"
	}
}

// Exposition is a parsed stage direction
type Exposition struct {
	Text   string // Normalized, whitespace-collapsed text
	Source ExpositionSource
}

// Render formats the exposition as "<open-exp> tokens... <close-exp>".
func (e Exposition) Render() string {
	if e.Text == "" {
		return MarkerOpenExp + " " + MarkerCloseExp
	}
	return MarkerOpenExp + " " + e.Text + " " + MarkerCloseExp
}

var (
	// multiSpeakerPattern catches dialogue that failed the stricter
	// character pattern, e.g. "JON/ROBB: Quick, Bran, faster!"
	multiSpeakerPattern = regexp.MustCompile(`^[()\w\s/]*:`)
	bracketPattern      = regexp.MustCompile(`\[(.*?)\]`)
	directivePattern    = regexp.MustCompile(`^/(.*?)/`)
)

// ParseExpositionLine extracts stage-direction text from a line classified as
// LineExposition. ok is false when the line is dropped as multi-speaker dialogue.
// Otherwise it always produces an exposition, falling back to the raw line.
func ParseExpositionLine(line string) (exp Exposition, ok bool, diags []model.Diagnostic) {
	if IsMultiSpeaker(line) {
		return Exposition{}, false, nil
	}

	if label, found := directiveLabel(line); found {
		return Exposition{Text: DirectiveMarker(label), Source: SourceDirective}, true, nil
	}

	text, source := bracketedText(line)
	switch source {
	case SourceMissingClose:
		diags = append(diags, model.Diagnostic{
			Kind:    model.DiagUnclosedBracket,
			Line:    line,
			Message: "opening bracket without closing bracket",
		})
	case SourceMissingOpen:
		diags = append(diags, model.Diagnostic{
			Kind:    model.DiagUnopenedBracket,
			Line:    line,
			Message: "closing bracket without opening bracket",
		})
	case SourceRawLine:
		diags = append(diags, model.Diagnostic{
			Kind:    model.DiagMissingBrackets,
			Line:    line,
			Message: "no brackets in exposition line, using whole line",
		})
	}

	return Exposition{Text: CollapseSpace(NormalizeText(text)), Source: source}, true, diags
}

// IsMultiSpeaker reports whether an exposition-classified line is really
// dialogue with a slash-joined speaker label.
func IsMultiSpeaker(line string) bool {
	return multiSpeakerPattern.MatchString(line)
}

// bracketedText resolves the stage-direction text of a line and the branch
// that produced it. Only the single physical line is recovered.
func bracketedText(line string) (string, ExpositionSource) {
	if m := bracketPattern.FindStringSubmatch(line); m != nil {
		return m[1], SourceBracketed
	}
	// A stray "]" wins over a stray "[" anywhere on the line
	if text, ok := missingOpenText(line); ok {
		return text, SourceMissingOpen
	}
	if text, ok := missingCloseText(line); ok {
		return text, SourceMissingClose
	}
	return line, SourceRawLine
}

// missingCloseText returns the text after the first "[" of a line with no "]".
func missingCloseText(line string) (string, bool) {
	open := strings.IndexByte(line, '[')
	if open < 0 || strings.IndexByte(line, ']') >= 0 {
		return "", false
	}
	return line[open+1:], true
}

// missingOpenText returns the text before the first "]".
func missingOpenText(line string) (string, bool) {
	before, _, found := strings.Cut(line, "]")
	return before, found
}

// directiveLabel returns the trimmed label of a "/ LABEL /" line.
// An empty label is not a directive.
func directiveLabel(line string) (string, bool) {
	m := directivePattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	label := strings.TrimSpace(m[1])
	return label, label != ""
}
