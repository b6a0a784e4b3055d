package worker

import (
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Progress logs batch completion without flooding the log: the first
// completion, then at most one line per interval, then the final one.
type Progress struct {
	total     int
	done      atomic.Int64
	sometimes *rate.Sometimes
	logger    *slog.Logger
}

// NewProgress creates a progress reporter for total items
func NewProgress(total int, interval time.Duration, logger *slog.Logger) *Progress {
	return &Progress{
		total:     total,
		sometimes: &rate.Sometimes{First: 1, Interval: interval},
		logger:    logger,
	}
}

// Done records one finished item
func (p *Progress) Done(id string) {
	n := p.done.Add(1)
	if int(n) == p.total {
		p.logger.Info("normalized documents", slog.Int("done", int(n)), slog.Int("total", p.total))
		return
	}
	p.sometimes.Do(func() {
		p.logger.Info("normalizing documents",
			slog.Int("done", int(n)),
			slog.Int("total", p.total),
			slog.String("last", id))
	})
}

// Count returns the number of finished items
func (p *Progress) Count() int {
	return int(p.done.Load())
}
