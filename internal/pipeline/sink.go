package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppiankov/scriptcorpus/internal/model"
)

// Sink persists normalized documents and corpus splits
type Sink interface {
	DocumentPath(id string) string
	WriteDocument(ctx context.Context, doc *model.Document) (string, error)
	WriteCorpus(ctx context.Context, flat string, splits Splits) ([]string, error)
}

// FileSink writes artifacts to the directories named in OutputConfig
type FileSink struct {
	out model.OutputConfig
}

// NewFileSink creates a filesystem sink
func NewFileSink(out model.OutputConfig) *FileSink {
	return &FileSink{out: out}
}

// DocumentPath is the normalized output path for a document identifier.
// HTML inputs keep their extension and gain .txt, so e01.html and e01.txt
// do not share an output file.
func (s *FileSink) DocumentPath(id string) string {
	name := filepath.Base(id)
	if IsHTML(name) {
		name += ".txt"
	}
	return filepath.Join(s.out.NormalizedDir, name)
}

// WriteDocument writes the document's lines joined by newlines, without a trailing newline.
func (s *FileSink) WriteDocument(ctx context.Context, doc *model.Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := s.DocumentPath(doc.ID)
	if err := writeFileAtomic(path, []byte(doc.Text())); err != nil {
		return "", fmt.Errorf("write normalized %s: %w", doc.ID, err)
	}
	return path, nil
}

// WriteCorpus writes the concatenated corpus and the three split files.
// Files with an empty configured name are skipped.
func (s *FileSink) WriteCorpus(ctx context.Context, flat string, splits Splits) ([]string, error) {
	outputs := []struct {
		name string
		data string
	}{
		{s.out.AllFile, flat},
		{s.out.TestFile, splits.TestText()},
		{s.out.ValidFile, splits.ValidText()},
		{s.out.TrainFile, splits.TrainText()},
	}

	var written []string
	for _, o := range outputs {
		if o.name == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return written, err
		}
		path := filepath.Join(s.out.Dir, o.name)
		if err := writeFileAtomic(path, []byte(o.data)); err != nil {
			return written, fmt.Errorf("write %s: %w", o.name, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// writeFileAtomic writes data to a temp file in the target directory and renames it into place.
func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
