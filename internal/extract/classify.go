package extract

import "regexp"

// LineKind is the classification of a raw transcript line.
type LineKind int

const (
	// LineExposition is a stage direction or anything not shaped like dialogue.
	LineExposition LineKind = iota
	// LineCharacter is "NAME[(parenthetical)]: text".
	LineCharacter
)

func (k LineKind) String() string {
	switch k {
	case LineCharacter:
		return "character"
	default:
		return "exposition"
	}
}

// characterLinePattern matches a colon preceded only by word characters,
// parentheses and whitespace. A stage direction with an early colon, such as
// a time stamp, is misclassified; this is an accepted approximation.
var characterLinePattern = regexp.MustCompile(`^[()\w\s]*:`)

// Classify decides whether a raw line is a character line or exposition.
func Classify(line string) LineKind {
	if characterLinePattern.MatchString(line) {
		return LineCharacter
	}
	return LineExposition
}
