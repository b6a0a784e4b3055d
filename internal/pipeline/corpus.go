package pipeline

import (
	"strings"

	"github.com/ppiankov/scriptcorpus/internal/extract"
)

// DefaultTestDivisor gives a 10% test slice, 10% valid slice and 80% train slice
const DefaultTestDivisor = 10

// Splits is a contiguous, unshuffled partition of a corpus into episodes
type Splits struct {
	Test  []string
	Valid []string
	Train []string

	// terminated records that the flat corpus ended with a terminator
	terminated bool
}

// Episodes returns the total episode count
func (s Splits) Episodes() int {
	return len(s.Test) + len(s.Valid) + len(s.Train)
}

// TestText joins the test episodes with the terminator between them only.
func (s Splits) TestText() string { return joinEpisodes(s.Test) }

// ValidText joins the valid episodes with the terminator between them only.
func (s Splits) ValidText() string { return joinEpisodes(s.Valid) }

// TrainText joins the train episodes with the terminator between them only.
func (s Splits) TrainText() string { return joinEpisodes(s.Train) }

// Rejoin reassembles the flat corpus the splits were cut from.
func (s Splits) Rejoin() string {
	all := make([]string, 0, s.Episodes())
	all = append(all, s.Test...)
	all = append(all, s.Valid...)
	all = append(all, s.Train...)
	flat := joinEpisodes(all)
	if s.terminated {
		flat += extract.MarkerEndEpisode
	}
	return flat
}

// Split returns the name of the split holding episode i
func (s Splits) Split(i int) string {
	switch {
	case i < 0 || i >= s.Episodes():
		return ""
	case i < len(s.Test):
		return "test"
	case i < len(s.Test)+len(s.Valid):
		return "valid"
	default:
		return "train"
	}
}

func joinEpisodes(episodes []string) string {
	return strings.Join(episodes, extract.MarkerEndEpisode)
}

// Flatten serializes each document as newline-joined lines and concatenates
// them with no separator, matching the on-disk concatenation of normalized files.
func Flatten(documents [][]string) string {
	var b strings.Builder
	for _, lines := range documents {
		b.WriteString(strings.Join(lines, "\n"))
	}
	return b.String()
}

// SplitEpisodes cuts a flat corpus on the episode terminator. The empty
// remainder after a final terminator is not an episode.
func SplitEpisodes(flat string) (episodes []string, terminated bool) {
	parts := strings.Split(flat, extract.MarkerEndEpisode)
	if last := len(parts) - 1; parts[last] == "" {
		return parts[:last], strings.HasSuffix(flat, extract.MarkerEndEpisode)
	}
	return parts, false
}

// Partition slices episodes into test [0, t), valid [t, 2t) and train [2t, n)
// where t = n / divisor. A divisor <= 0 uses DefaultTestDivisor.
func Partition(episodes []string, divisor int) Splits {
	if divisor <= 0 {
		divisor = DefaultTestDivisor
	}
	n := len(episodes)
	testN := n / divisor
	validN := testN * 2
	if validN > n {
		validN = n
	}
	return Splits{
		Test:  episodes[:testN],
		Valid: episodes[testN:validN],
		Train: episodes[validN:],
	}
}

// SplitCorpus cuts a flat corpus into episodes and partitions them.
func SplitCorpus(flat string, divisor int) Splits {
	episodes, terminated := SplitEpisodes(flat)
	s := Partition(episodes, divisor)
	s.terminated = terminated
	return s
}

// Assemble concatenates normalized documents and partitions the episodes
// with the default 80/10/10 proportions.
func Assemble(documents [][]string) Splits {
	return SplitCorpus(Flatten(documents), DefaultTestDivisor)
}
