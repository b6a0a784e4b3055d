package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestFileSource_OrderAndPatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "e10.txt"), "NED: Ten.")
	writeFile(t, filepath.Join(dir, "e02.txt"), "NED: Two.")
	writeFile(t, filepath.Join(dir, "e01.html"), "<p>NED: One.</p>")
	writeFile(t, filepath.Join(dir, "notes.md"), "ignored")
	if err := os.Mkdir(filepath.Join(dir, "sub.txt"), 0755); err != nil {
		t.Fatal(err)
	}

	src := NewFileSource(dir, []string{"*.txt", "e*", "*.html"})
	docs, err := src.Documents(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var ids []string
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	expected := []string{"e01.html", "e02.txt", "e10.txt"}
	if !reflect.DeepEqual(ids, expected) {
		t.Errorf("Expected %v, got %v", expected, ids)
	}
	if !reflect.DeepEqual(docs[0].Lines, []string{"NED: One."}) {
		t.Errorf("Expected HTML text line, got %q", docs[0].Lines)
	}
	if docs[1].Path != filepath.Join(dir, "e02.txt") {
		t.Errorf("Expected path to be recorded, got %q", docs[1].Path)
	}
}

func TestFileSource_MissingDir(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "missing"), nil)
	if _, err := src.Documents(context.Background()); err == nil {
		t.Error("Expected error for missing input dir")
	}
}

func TestFileSource_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "e01.txt"), "NED: One.")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewFileSource(dir, nil).Documents(ctx); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		desc     string
		text     string
		expected []string
	}{
		{"empty", "", nil},
		{"trailing newline", "a\nb\n", []string{"a", "b"}},
		{"no trailing newline", "a\nb", []string{"a", "b"}},
		{"crlf", "a\r\n\r\nb\r\n", []string{"a", "", "b"}},
		{"blank lines kept", "a\n\n\nb", []string{"a", "", "", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := SplitLines(tt.text); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestHTMLLines(t *testing.T) {
	page := `<html><head><title>Episode 1</title><style>p{}</style></head>
<body>
<script>var x = "NED: no";</script>
<h1>Winter Is Coming</h1>
<p>[The Wall]</p>
<p>NED: It&rsquo;s   cold.<br>ARYA: Good.</p>
<pre>JON: One.
SAM: Two.</pre>
</body></html>`

	lines, err := HTMLLines(strings.NewReader(page))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := []string{
		"Winter Is Coming",
		"[The Wall]",
		"NED: It’s cold.",
		"ARYA: Good.",
		"JON: One.",
		"SAM: Two.",
	}
	if !reflect.DeepEqual(lines, expected) {
		t.Errorf("Expected %q, got %q", expected, lines)
	}
}

func TestReaderDocument(t *testing.T) {
	doc, err := ReaderDocument("stdin", strings.NewReader("NED: One.\nARYA: Two.\n"), false)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if doc.ID != "stdin" || len(doc.Lines) != 2 {
		t.Errorf("Unexpected document %+v", doc)
	}
}

func TestIsHTML(t *testing.T) {
	for path, want := range map[string]bool{
		"a.html": true,
		"a.HTM":  true,
		"a.txt":  false,
		"html":   false,
	} {
		if got := IsHTML(path); got != want {
			t.Errorf("IsHTML(%q): expected %v, got %v", path, want, got)
		}
	}
}
