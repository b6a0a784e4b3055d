package pipeline

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ppiankov/scriptcorpus/internal/extract"
	"github.com/ppiankov/scriptcorpus/internal/logging"
	"github.com/ppiankov/scriptcorpus/internal/model"
)

// ErrStrict is returned in strict mode when a document produced diagnostics
var ErrStrict = errors.New("document has diagnostics")

// Normalizer turns the raw lines of one document into rendered token lines
type Normalizer struct {
	strict bool
	logger *slog.Logger
}

// NewNormalizer creates a document normalizer. A nil logger discards output.
func NewNormalizer(strict bool, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Normalizer{strict: strict, logger: logger}
}

// Strict reports whether the normalizer fails documents with diagnostics
func (n *Normalizer) Strict() bool {
	return n.strict
}

// Normalize renders every non-empty raw line, drops multi-speaker lines and
// appends the episode terminator. Only exactly-empty lines are skipped.
// In strict mode the document is still returned alongside an ErrStrict error.
func (n *Normalizer) Normalize(doc model.RawDocument) (*model.Document, error) {
	log := n.logger.With(slog.String("doc", doc.ID))
	out := &model.Document{
		ID:    doc.ID,
		Lines: make([]string, 0, len(doc.Lines)+1),
	}

	for i, raw := range doc.Lines {
		out.Stats.Raw++
		if raw == "" {
			out.Stats.Empty++
			continue
		}

		parsed := extract.ParseLine(raw)
		for _, d := range parsed.Diagnostics {
			d.LineNo = i + 1
			out.Diagnostics = append(out.Diagnostics, d)
			log.Debug("line diagnostic",
				slog.Int("line_no", d.LineNo),
				slog.String("kind", string(d.Kind)),
				slog.String("line", d.Line))
		}

		if parsed.Dropped {
			out.Stats.Dropped++
			log.Debug("dropped multi-speaker line", slog.Int("line_no", i+1), slog.String("line", raw))
			continue
		}

		switch parsed.Kind {
		case extract.LineCharacter:
			out.Stats.Character++
		default:
			out.Stats.Exposition++
		}
		out.Lines = append(out.Lines, parsed.Text)
	}
	out.Lines = append(out.Lines, extract.MarkerEndEpisode)
	for _, line := range out.Lines {
		tokens, markers := extract.CountTokens(line)
		out.Stats.Tokens += tokens
		out.Stats.Markers += markers
	}

	if n.strict && len(out.Diagnostics) > 0 {
		return out, fmt.Errorf("%s: %w: %d diagnostics, first %s", doc.ID, ErrStrict, len(out.Diagnostics), out.Diagnostics[0])
	}
	return out, nil
}

// NormalizeLines renders raw lines with the default non-strict policy.
func NormalizeLines(lines []string) []string {
	doc, _ := NewNormalizer(false, nil).Normalize(model.RawDocument{Lines: lines})
	return doc.Lines
}
