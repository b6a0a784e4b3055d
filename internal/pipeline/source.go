package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/scriptcorpus/internal/model"
	"golang.org/x/net/html"
)

// Source provides raw transcripts in a stable order
type Source interface {
	Documents(ctx context.Context) ([]model.RawDocument, error)
}

// FileSource discovers transcripts in a directory by glob pattern
type FileSource struct {
	dir      string
	patterns []string
}

// NewFileSource creates a source over dir. Empty patterns default to "*.txt".
func NewFileSource(dir string, patterns []string) *FileSource {
	if len(patterns) == 0 {
		patterns = []string{"*.txt"}
	}
	return &FileSource{dir: dir, patterns: patterns}
}

// Documents reads every matching file, ordered lexicographically by file name.
func (s *FileSource) Documents(ctx context.Context) ([]model.RawDocument, error) {
	paths, err := s.paths()
	if err != nil {
		return nil, err
	}

	docs := make([]model.RawDocument, 0, len(paths))
	for _, path := range paths {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		doc, err := ReadDocument(path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *FileSource) paths() ([]string, error) {
	info, err := os.Stat(s.dir)
	if err != nil {
		return nil, fmt.Errorf("input dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input dir %s: not a directory", s.dir)
	}

	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range s.patterns {
		matches, err := filepath.Glob(filepath.Join(s.dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] {
				continue
			}
			if fi, err := os.Stat(m); err != nil || !fi.Mode().IsRegular() {
				continue
			}
			seen[m] = true
			paths = append(paths, m)
		}
	}

	sort.Slice(paths, func(i, j int) bool {
		return filepath.Base(paths[i]) < filepath.Base(paths[j])
	})
	return paths, nil
}

// ReadDocument reads one transcript file. HTML files contribute their visible text.
func ReadDocument(path string) (model.RawDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.RawDocument{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	doc, err := ReaderDocument(filepath.Base(path), f, IsHTML(path))
	if err != nil {
		return model.RawDocument{}, fmt.Errorf("read %s: %w", path, err)
	}
	doc.Path = path
	return doc, nil
}

// ReaderDocument reads a transcript from r under the given identifier.
func ReaderDocument(id string, r io.Reader, isHTML bool) (model.RawDocument, error) {
	if isHTML {
		lines, err := HTMLLines(r)
		if err != nil {
			return model.RawDocument{}, err
		}
		return model.RawDocument{ID: id, Lines: lines}, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return model.RawDocument{}, err
	}
	return model.RawDocument{ID: id, Lines: SplitLines(string(data))}, nil
}

// IsHTML reports whether a path names an HTML transcript
func IsHTML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	}
	return false
}

// SplitLines splits text on "\n" and strips a trailing "\r" from each line.
// Empty lines are kept; the document normalizer skips them.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// blockElements end the current line of visible text
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"pre": true, "blockquote": true, "section": true, "article": true,
	"dd": true, "dt": true, "hr": true,
}

// HTMLLines extracts visible text from an HTML transcript, one line per
// block element, skipping scripts and styles. Entities such as &rsquo; are
// decoded so the text normalizer sees the same punctuation as in plain files.
func HTMLLines(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var lines []string
	var cur strings.Builder
	flush := func() {
		if line := strings.Join(strings.Fields(cur.String()), " "); line != "" {
			lines = append(lines, line)
		}
		cur.Reset()
	}

	var walk func(n *html.Node, pre bool)
	walk = func(n *html.Node, pre bool) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "head":
				return
			}
			if n.Data == "pre" {
				pre = true
			}
		}

		if n.Type == html.TextNode {
			if pre {
				parts := strings.Split(n.Data, "\n")
				for i, p := range parts {
					if i > 0 {
						flush()
					}
					cur.WriteString(p)
				}
			} else {
				cur.WriteString(n.Data)
			}
		}

		block := n.Type == html.ElementNode && blockElements[n.Data]
		if block {
			flush()
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, pre)
		}
		if block {
			flush()
		}
	}

	walk(doc, false)
	flush()
	return lines, nil
}
