package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/ppiankov/scriptcorpus/internal/model"
)

// ErrNotRun marks a document whose job never ran because the batch was cancelled
var ErrNotRun = errors.New("document not processed")

// DocumentNormalizer normalizes one raw document. cached reports whether the
// result came from a cache instead of being computed.
type DocumentNormalizer interface {
	NormalizeDocument(ctx context.Context, doc model.RawDocument) (result *model.Document, cached bool, err error)
}

// DocumentJob normalizes one document
type DocumentJob struct {
	Index      int
	Doc        model.RawDocument
	Normalizer DocumentNormalizer
	Progress   *Progress
}

// Execute executes the normalization job
func (j *DocumentJob) Execute(ctx context.Context) Result {
	doc, cached, err := j.Normalizer.NormalizeDocument(ctx, j.Doc)
	if j.Progress != nil {
		j.Progress.Done(j.Doc.ID)
	}
	return &DocumentResult{
		Index:    j.Index,
		ID:       j.Doc.ID,
		Document: doc,
		Cached:   cached,
		Error:    err,
	}
}

// DocumentResult represents the result of a normalization job
type DocumentResult struct {
	Index    int
	ID       string
	Document *model.Document
	Cached   bool
	Error    error
}

// GetError returns the error from the normalization result
func (r *DocumentResult) GetError() error {
	return r.Error
}

// BatchProcessor normalizes many documents concurrently
type BatchProcessor struct {
	normalizer       DocumentNormalizer
	concurrency      int
	logger           *slog.Logger
	progressInterval time.Duration
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(normalizer DocumentNormalizer, concurrency int, logger *slog.Logger) *BatchProcessor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &BatchProcessor{
		normalizer:       normalizer,
		concurrency:      concurrency,
		logger:           logger,
		progressInterval: 2 * time.Second,
	}
}

// ProcessDocuments normalizes docs concurrently and returns one result per
// document in input order, whatever order the workers finished in.
func (b *BatchProcessor) ProcessDocuments(ctx context.Context, docs []model.RawDocument) []*DocumentResult {
	if len(docs) == 0 {
		return []*DocumentResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	progress := NewProgress(len(docs), b.progressInterval, b.logger)
	for i, doc := range docs {
		if !pool.Submit(&DocumentJob{Index: i, Doc: doc, Normalizer: b.normalizer, Progress: progress}) {
			break
		}
	}

	results := pool.Wait()
	if done := progress.Count(); done < len(docs) {
		b.logger.Warn("batch stopped early", slog.Int("done", done), slog.Int("total", len(docs)))
	}

	ordered := make([]*DocumentResult, len(docs))
	for _, r := range results {
		dr := r.(*DocumentResult)
		ordered[dr.Index] = dr
	}

	for i, r := range ordered {
		if r != nil {
			continue
		}
		err := ErrNotRun
		if ctx.Err() != nil {
			err = errors.Join(ErrNotRun, ctx.Err())
		}
		ordered[i] = &DocumentResult{Index: i, ID: docs[i].ID, Error: err}
	}

	return ordered
}
