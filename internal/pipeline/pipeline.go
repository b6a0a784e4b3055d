package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/ppiankov/scriptcorpus/internal/cache"
	"github.com/ppiankov/scriptcorpus/internal/logging"
	"github.com/ppiankov/scriptcorpus/internal/model"
	"github.com/ppiankov/scriptcorpus/internal/worker"
)

// ErrOutputCollision is returned when two documents map to one normalized file
var ErrOutputCollision = errors.New("documents share an output path")

// Recorder persists a finished run, e.g. to the sqlite manifest
type Recorder interface {
	RecordRun(ctx context.Context, report *model.RunReport) (int64, error)
}

// Pipeline orchestrates a complete corpus build
type Pipeline struct {
	config     *model.Config
	source     Source
	sink       Sink
	normalizer *Normalizer
	docCache   *cache.DocumentCache // nil when caching is disabled
	layers     *cache.LayeredCache  // set when the cache is built from config
	recorder   Recorder             // nil when the manifest is disabled
	logger     *slog.Logger
}

// Option customizes a Pipeline
type Option func(*Pipeline)

// WithSource replaces the file source built from the input config
func WithSource(s Source) Option {
	return func(p *Pipeline) { p.source = s }
}

// WithSink replaces the file sink built from the output config
func WithSink(s Sink) Option {
	return func(p *Pipeline) { p.sink = s }
}

// WithCache sets the document cache. A nil cache disables caching.
func WithCache(c *cache.DocumentCache) Option {
	return func(p *Pipeline) {
		p.docCache = c
		p.layers = nil
	}
}

// WithRecorder records every successful run
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// NewPipeline creates a pipeline from configuration. Unless overridden by
// options, transcripts are read from cfg.Input and written to cfg.Output,
// and a layered memory/disk cache is used when cfg.Cache.Enabled.
func NewPipeline(cfg *model.Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		config: cfg,
		source: NewFileSource(cfg.Input.Dir, cfg.Input.Patterns),
		sink:   NewFileSink(cfg.Output),
		logger: logging.Discard(),
	}
	if cfg.Cache.Enabled && cfg.Cache.Dir != "" {
		p.layers = cache.NewDocumentLayers(cfg.Cache.Dir, cfg.Cache.TTL)
		p.docCache = cache.NewDocumentCache(p.layers, cfg.Cache.TTL)
	}

	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logging.Discard()
	}
	p.normalizer = NewNormalizer(cfg.Normalize.Strict, p.logger)
	return p
}

// Run reads every transcript, normalizes them concurrently, writes the
// normalized documents, the concatenated corpus, the three splits and the
// optional archive, then records the run.
//
// In strict mode every document is attempted and, if any failed, nothing is
// written and the first failure is returned.
func (p *Pipeline) Run(ctx context.Context) (*model.RunReport, error) {
	started := time.Now()

	// 1. Discover and read transcripts
	raws, err := p.source.Documents(ctx)
	if err != nil {
		return nil, fmt.Errorf("read sources: %w", err)
	}
	if len(raws) == 0 {
		p.logger.Warn("no transcripts found", slog.String("dir", p.config.Input.Dir))
	}
	p.logger.Info("read transcripts", slog.Int("documents", len(raws)))

	// 2. Normalize concurrently, results in source order
	batch := worker.NewBatchProcessor(p.documentNormalizer(), p.config.Normalize.Workers, p.logger)
	results := batch.ProcessDocuments(ctx, raws)
	if p.layers != nil {
		stats := p.layers.Stats()
		p.logger.Debug("document cache",
			slog.Int64("memory_hits", stats.MemoryHits),
			slog.Int64("disk_hits", stats.DiskHits),
			slog.Int64("misses", stats.Misses))
	}

	var failures []error
	for _, r := range results {
		if r.Error != nil {
			p.logger.Error("document failed", slog.String("doc", r.ID), slog.String("error", r.Error.Error()))
			failures = append(failures, r.Error)
		}
	}
	if len(failures) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%d of %d documents failed: %w", len(failures), len(raws), failures[0])
	}

	if err := p.checkOutputPaths(results); err != nil {
		return nil, err
	}

	report := &model.RunReport{
		StartedAt: started.UTC(),
		Strict:    p.normalizer.Strict(),
		Documents: make([]model.DocumentReport, len(results)),
	}

	// 3. Write normalized documents
	lines := make([][]string, len(results))
	for i, r := range results {
		path, err := p.sink.WriteDocument(ctx, r.Document)
		if err != nil {
			return nil, err
		}
		lines[i] = r.Document.Lines
		report.Documents[i] = model.DocumentReport{
			ID:          r.ID,
			OutputPath:  path,
			Stats:       r.Document.Stats,
			Diagnostics: r.Document.Diagnostics,
			Cached:      r.Cached,
		}
		report.Diagnostics += len(r.Document.Diagnostics)
		report.Tokens += r.Document.Stats.Tokens
		if r.Cached {
			report.CacheHits++
		}
		report.Outputs = append(report.Outputs, path)
	}

	// 4. Assemble and split the corpus
	flat := Flatten(lines)
	splits := SplitCorpus(flat, p.config.Split.TestDivisor)
	report.Splits = model.SplitReport{
		Episodes: splits.Episodes(),
		Test:     len(splits.Test),
		Valid:    len(splits.Valid),
		Train:    len(splits.Train),
	}
	if splits.Episodes() == len(report.Documents) {
		for i := range report.Documents {
			report.Documents[i].Split = splits.Split(i)
		}
	} else {
		p.logger.Warn("episode count differs from document count, split membership not recorded",
			slog.Int("episodes", splits.Episodes()),
			slog.Int("documents", len(report.Documents)))
	}

	corpusFiles, err := p.sink.WriteCorpus(ctx, flat, splits)
	if err != nil {
		return nil, fmt.Errorf("write corpus: %w", err)
	}
	report.Outputs = append(report.Outputs, corpusFiles...)

	// 5. Bundle the corpus files
	if p.config.Output.Archive != "" && len(corpusFiles) > 0 {
		archivePath := filepath.Join(p.config.Output.Dir, p.config.Output.Archive)
		if err := WriteArchive(archivePath, corpusFiles); err != nil {
			return nil, fmt.Errorf("write archive: %w", err)
		}
		report.Outputs = append(report.Outputs, archivePath)
	}

	report.Duration = time.Since(started)

	// 6. Record the run
	if p.recorder != nil {
		runID, err := p.recorder.RecordRun(ctx, report)
		if err != nil {
			return nil, fmt.Errorf("record run: %w", err)
		}
		p.logger.Debug("recorded run", slog.Int64("run_id", runID))
	}

	p.logger.Info("corpus built",
		slog.Int("episodes", report.Splits.Episodes),
		slog.Int("test", report.Splits.Test),
		slog.Int("valid", report.Splits.Valid),
		slog.Int("train", report.Splits.Train),
		slog.Int("tokens", report.Tokens),
		slog.Int("diagnostics", report.Diagnostics),
		slog.Int("cache_hits", report.CacheHits),
		slog.Duration("duration", report.Duration))

	return report, nil
}

// checkOutputPaths fails when two documents would be written to the same
// normalized file, before anything is written.
func (p *Pipeline) checkOutputPaths(results []*worker.DocumentResult) error {
	owners := make(map[string]string, len(results))
	for _, r := range results {
		path := p.sink.DocumentPath(r.ID)
		if prev, ok := owners[path]; ok {
			return fmt.Errorf("%s and %s: %w: %s", prev, r.ID, ErrOutputCollision, path)
		}
		owners[path] = r.ID
	}
	return nil
}

func (p *Pipeline) documentNormalizer() worker.DocumentNormalizer {
	return &cachingNormalizer{
		normalizer: p.normalizer,
		cache:      p.docCache,
		logger:     p.logger,
	}
}

// cachingNormalizer serves normalized documents from the cache when the raw
// content is unchanged. Only successful results are cached.
type cachingNormalizer struct {
	normalizer *Normalizer
	cache      *cache.DocumentCache
	logger     *slog.Logger
}

func (c *cachingNormalizer) NormalizeDocument(ctx context.Context, raw model.RawDocument) (*model.Document, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	strict := c.normalizer.Strict()
	if c.cache != nil {
		if doc, ok := c.cache.Get(raw, strict); ok {
			return doc, true, nil
		}
	}

	doc, err := c.normalizer.Normalize(raw)
	if err != nil {
		return doc, false, err
	}

	if c.cache != nil {
		if err := c.cache.Put(raw, strict, doc); err != nil {
			c.logger.Warn("cache write failed", slog.String("doc", raw.ID), slog.String("error", err.Error()))
		}
	}
	return doc, false, nil
}
