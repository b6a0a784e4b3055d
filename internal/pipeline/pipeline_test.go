package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/scriptcorpus/internal/cache"
	"github.com/ppiankov/scriptcorpus/internal/model"
)

type recordingRecorder struct {
	reports []*model.RunReport
}

func (r *recordingRecorder) RecordRun(_ context.Context, report *model.RunReport) (int64, error) {
	r.reports = append(r.reports, report)
	return int64(len(r.reports)), nil
}

type staticSource []model.RawDocument

func (s staticSource) Documents(context.Context) ([]model.RawDocument, error) {
	return s, nil
}

func testConfig(dir string) *model.Config {
	cfg := model.DefaultConfig()
	cfg.Input.Dir = filepath.Join(dir, "raw")
	cfg.Output.NormalizedDir = filepath.Join(dir, "normalized")
	cfg.Output.Dir = dir
	cfg.Normalize.Workers = 4
	cfg.Cache.Enabled = false
	return cfg
}

func writeEpisodes(t *testing.T, dir string, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		content := fmt.Sprintf("[Episode %d]\n\nNED: Line %d.\nARYA: Why?\n", i, i)
		writeFile(t, filepath.Join(dir, fmt.Sprintf("e%02d.txt", i)), content)
	}
}

func TestPipeline_Run(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	writeEpisodes(t, cfg.Input.Dir, 10)

	rec := &recordingRecorder{}
	report, err := NewPipeline(cfg, WithRecorder(rec)).Run(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if report.Splits != (model.SplitReport{Episodes: 10, Test: 1, Valid: 1, Train: 8}) {
		t.Errorf("Unexpected splits %+v", report.Splits)
	}
	if len(report.Documents) != 10 {
		t.Fatalf("Expected 10 documents, got %d", len(report.Documents))
	}
	if report.Documents[0].ID != "e01.txt" || report.Documents[0].Split != "test" {
		t.Errorf("Expected e01 in test, got %+v", report.Documents[0])
	}
	if report.Documents[1].Split != "valid" || report.Documents[9].Split != "train" {
		t.Errorf("Unexpected split membership %q %q", report.Documents[1].Split, report.Documents[9].Split)
	}
	if s := report.Documents[0].Stats; s.Raw != 4 || s.Empty != 1 || s.Character != 2 || s.Exposition != 1 {
		t.Errorf("Unexpected stats %+v", s)
	}
	if report.Diagnostics != 0 {
		t.Errorf("Expected no diagnostics, got %d", report.Diagnostics)
	}
	if len(rec.reports) != 1 || rec.reports[0] != report {
		t.Error("Expected the run to be recorded once")
	}

	first, err := os.ReadFile(filepath.Join(cfg.Output.NormalizedDir, "e01.txt"))
	if err != nil {
		t.Fatal(err)
	}
	expected := "<open-exp> Episode 1 <close-exp>\n" +
		"<boname> NED <eoname> Line 1 <eos>\n" +
		"<boname> ARYA <eoname> Why <question>\n" +
		"<eoepisode>"
	if string(first) != expected {
		t.Errorf("Expected normalized e01\n%q\ngot\n%q", expected, first)
	}

	var concat strings.Builder
	for _, d := range report.Documents {
		data, err := os.ReadFile(d.OutputPath)
		if err != nil {
			t.Fatal(err)
		}
		concat.Write(data)
	}
	all, err := os.ReadFile(filepath.Join(dir, "all.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(all) != concat.String() {
		t.Error("all.txt must be the concatenation of the normalized documents")
	}

	test, _ := os.ReadFile(filepath.Join(dir, "ptb.test.txt"))
	if string(test) != strings.TrimSuffix(string(first), "<eoepisode>") {
		t.Errorf("Expected test split to hold episode 1 without terminator, got %q", test)
	}

	for _, name := range []string{"ptb.valid.txt", "ptb.train.txt", "GoT-scripts.tar.gz"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("Expected %s to be written: %v", name, err)
		}
	}
}

func TestPipeline_CacheHits(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	writeEpisodes(t, cfg.Input.Dir, 3)

	docCache := cache.NewDocumentCache(cache.NewMemoryCache(time.Hour, time.Minute), time.Hour)
	p := NewPipeline(cfg, WithCache(docCache))

	first, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("First run: %v", err)
	}
	if first.CacheHits != 0 {
		t.Errorf("Expected no cache hits on first run, got %d", first.CacheHits)
	}
	firstAll, _ := os.ReadFile(filepath.Join(dir, "all.txt"))

	second, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Second run: %v", err)
	}
	if second.CacheHits != 3 {
		t.Errorf("Expected 3 cache hits, got %d", second.CacheHits)
	}
	secondAll, _ := os.ReadFile(filepath.Join(dir, "all.txt"))
	if string(firstAll) != string(secondAll) {
		t.Error("Cached run must produce the same corpus")
	}
}

func TestPipeline_StrictFailsBeforeWriting(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.Normalize.Strict = true

	src := staticSource{
		{ID: "e01.txt", Lines: []string{"NED: Fine."}},
		{ID: "e02.txt", Lines: []string{"He runs."}},
	}

	_, err := NewPipeline(cfg, WithSource(src)).Run(context.Background())
	if !errors.Is(err, ErrStrict) {
		t.Fatalf("Expected ErrStrict, got %v", err)
	}
	if !strings.Contains(err.Error(), "e02.txt") {
		t.Errorf("Expected error to name the failing document, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "all.txt")); !os.IsNotExist(err) {
		t.Error("Expected nothing written in strict failure")
	}
	if _, err := os.Stat(filepath.Join(cfg.Output.NormalizedDir, "e01.txt")); !os.IsNotExist(err) {
		t.Error("Expected no normalized documents in strict failure")
	}
}

func TestPipeline_NoArchive(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.Output.Archive = ""

	src := staticSource{{ID: "e01.txt", Lines: []string{"NED: One."}}}
	report, err := NewPipeline(cfg, WithSource(src)).Run(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if report.Splits.Train != 1 || report.Documents[0].Split != "train" {
		t.Errorf("Expected single episode in train, got %+v", report.Splits)
	}
	for _, out := range report.Outputs {
		if strings.HasSuffix(out, ".tar.gz") {
			t.Errorf("Expected no archive, got %s", out)
		}
	}
}

func TestPipeline_Cancelled(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	src := staticSource{{ID: "e01.txt", Lines: []string{"NED: One."}}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewPipeline(cfg, WithSource(src)).Run(ctx); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

func TestPipeline_HTMLAndTextWithSameStem(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	writeFile(t, filepath.Join(cfg.Input.Dir, "e01.txt"), "ARYA: Not today.\n")
	writeFile(t, filepath.Join(cfg.Input.Dir, "e01.html"), "<p>NED: Winter is coming.</p>")

	report, err := NewPipeline(cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(report.Documents) != 2 {
		t.Fatalf("Expected 2 documents, got %d", len(report.Documents))
	}
	if report.Documents[0].OutputPath == report.Documents[1].OutputPath {
		t.Fatalf("Documents share output path %s", report.Documents[0].OutputPath)
	}

	entries, err := os.ReadDir(cfg.Output.NormalizedDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("Expected one normalized file per document, got %d", len(entries))
	}

	html, _ := os.ReadFile(filepath.Join(cfg.Output.NormalizedDir, "e01.html.txt"))
	if !strings.Contains(string(html), "<boname> NED <eoname>") {
		t.Errorf("Expected NED episode in e01.html.txt, got %q", html)
	}
	text, _ := os.ReadFile(filepath.Join(cfg.Output.NormalizedDir, "e01.txt"))
	if !strings.Contains(string(text), "<boname> ARYA <eoname>") {
		t.Errorf("Expected ARYA episode in e01.txt, got %q", text)
	}
}

func TestPipeline_OutputCollision(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	src := staticSource{
		{ID: "season1/e01.txt", Lines: []string{"NED: One."}},
		{ID: "season2/e01.txt", Lines: []string{"JON: Two."}},
	}

	_, err := NewPipeline(cfg, WithSource(src)).Run(context.Background())
	if !errors.Is(err, ErrOutputCollision) {
		t.Fatalf("Expected ErrOutputCollision, got %v", err)
	}
	if _, err := os.Stat(cfg.Output.NormalizedDir); !os.IsNotExist(err) {
		t.Error("Expected nothing written on output collision")
	}
}
