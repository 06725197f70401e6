package indexer

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/inverted-index/internal/indexer/corpus"
	"github.com/Adithya-Monish-Kumar-K/inverted-index/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/inverted-index/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/inverted-index/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/inverted-index/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/inverted-index/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/inverted-index/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/inverted-index/pkg/tracing"
)

const defaultMaxLineBytes = 1 << 20

type Option func(*Builder)

func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Builder) {
		b.metrics = m
	}
}

// WithLogger replaces the default "indexer" component logger. A nil logger
// is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// Builder runs the single build pass that turns a corpus into a frozen
// index.Index. A Builder holds no index state between builds.
type Builder struct {
	cfg     config.IndexerConfig
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewBuilder(cfg config.IndexerConfig, opts ...Option) *Builder {
	b := &Builder{
		cfg:    cfg,
		logger: logger.WithComponent("indexer"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build indexes docs in the order given. Any document that cannot be opened
// or read fails the whole build and no index is returned.
func (b *Builder) Build(ctx context.Context, docs []corpus.Document) (*index.Index, error) {
	start := time.Now()
	workers := b.workers()
	ctx, span := tracing.Start(ctx, "index.build")
	defer span.End()
	span.SetAttr("documents", len(docs))
	span.SetAttr("workers", workers)
	b.logger.Info("index build starting", "documents", len(docs), "workers", workers)

	mem := index.NewMemoryIndex()
	var (
		tokens int64
		err    error
	)
	_, pass := tracing.Start(ctx, "index.tokenize")
	if workers > 1 && len(docs) > 1 {
		tokens, err = b.buildParallel(ctx, mem, docs, workers)
	} else {
		tokens, err = b.buildSequential(ctx, mem, docs)
	}
	pass.SetAttr("tokens", tokens)
	pass.End()
	if err != nil {
		span.SetAttr("error", err.Error())
		b.observeBuild("failed", start)
		b.logger.Error("index build failed", "error", err, "elapsed", time.Since(start))
		return nil, err
	}

	size := mem.Size()
	_, freeze := tracing.Start(ctx, "index.freeze")
	idx := mem.Freeze()
	freeze.SetAttr("terms", idx.Len())
	freeze.End()
	b.observeBuild("ok", start)
	if b.metrics != nil {
		b.metrics.DocsIndexedTotal.Add(float64(len(docs)))
		b.metrics.TokensIndexedTotal.Add(float64(tokens))
		b.metrics.IndexTerms.Set(float64(idx.Len()))
		b.metrics.IndexDocuments.Set(float64(idx.DocCount()))
	}
	b.logger.Info("index build complete",
		"documents", idx.DocCount(),
		"terms", idx.Len(),
		"tokens", tokens,
		"mem_size", size,
		"elapsed", time.Since(start),
	)
	return idx, nil
}

func (b *Builder) buildSequential(ctx context.Context, mem *index.MemoryIndex, docs []corpus.Document) (int64, error) {
	var total int64
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return total, fmt.Errorf("index build cancelled: %w", err)
		}
		mem.BeginDocument(doc.ID)
		n, err := b.readDocument(doc, func(term string) {
			mem.RecordOccurrence(term, doc.ID)
		})
		mem.EndDocument()
		if err != nil {
			return total, err
		}
		total += int64(n)
		b.logger.Debug("document indexed", "doc_id", doc.ID, "name", doc.Name, "token_count", n)
	}
	return total, nil
}

// buildParallel tokenizes up to workers documents at once. A single merge
// goroutine consumes the token streams in submission order, so the
// MemoryIndex only ever has one writer.
func (b *Builder) buildParallel(ctx context.Context, mem *index.MemoryIndex, docs []corpus.Document, workers int) (int64, error) {
	results := make([]chan []string, len(docs))
	for i := range results {
		results[i] = make(chan []string, 1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tg, tctx := errgroup.WithContext(gctx)
		tg.SetLimit(workers)
		for i, doc := range docs {
			if tctx.Err() != nil {
				break
			}
			tg.Go(func() error {
				if err := tctx.Err(); err != nil {
					return err
				}
				terms := make([]string, 0, 256)
				if _, err := b.readDocument(doc, func(term string) {
					terms = append(terms, term)
				}); err != nil {
					return err
				}
				results[i] <- terms
				return nil
			})
		}
		return tg.Wait()
	})

	var total int64
	g.Go(func() error {
		for i, doc := range docs {
			select {
			case terms := <-results[i]:
				mem.BeginDocument(doc.ID)
				for _, term := range terms {
					mem.RecordOccurrence(term, doc.ID)
				}
				mem.EndDocument()
				total += int64(len(terms))
				b.logger.Debug("document indexed", "doc_id", doc.ID, "name", doc.Name, "token_count", len(terms))
			case <-gctx.Done():
				return fmt.Errorf("index build cancelled: %w", gctx.Err())
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return total, err
	}
	return total, nil
}

// readDocument streams doc line by line and passes every token to emit. It
// returns the number of tokens emitted.
func (b *Builder) readDocument(doc corpus.Document, emit func(term string)) (int, error) {
	rc, err := doc.Open()
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrDocumentUnreadable, err, "opening document %d (%s)", doc.ID, doc.Name)
	}
	defer rc.Close()

	maxLine := b.maxLineBytes()
	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 0, min(64*1024, maxLine)), maxLine)
	n := 0
	for scanner.Scan() {
		for term := range tokenizer.Tokens(scanner.Text()) {
			emit(term)
			n++
		}
	}
	if err := scanner.Err(); err != nil {
		return n, apperrors.Wrap(apperrors.ErrDocumentUnreadable, err, "reading document %d (%s)", doc.ID, doc.Name)
	}
	return n, nil
}

func (b *Builder) observeBuild(status string, start time.Time) {
	if b.metrics == nil {
		return
	}
	b.metrics.BuildsTotal.WithLabelValues(status).Inc()
	b.metrics.BuildDuration.Observe(time.Since(start).Seconds())
}

func (b *Builder) workers() int {
	if b.cfg.Workers < 1 {
		return 1
	}
	return b.cfg.Workers
}

func (b *Builder) maxLineBytes() int {
	if b.cfg.MaxLineBytes <= 0 {
		return defaultMaxLineBytes
	}
	return b.cfg.MaxLineBytes
}
