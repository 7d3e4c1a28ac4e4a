package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/akolanti/ChatPDF/internal/config"
	"github.com/akolanti/ChatPDF/internal/domain/commonModels"
	"github.com/akolanti/ChatPDF/internal/domain/jobModel"
	"github.com/akolanti/ChatPDF/internal/rag/embedding"
	"github.com/akolanti/ChatPDF/internal/rag/vectorDB"
	"github.com/akolanti/ChatPDF/pkg/logger_i"
)

var logger = logger_i.NewLogger("Document Ingestion")

var ErrNoText = errors.New("no extractable text in document")

// Upload is a stored file waiting to be ingested.
type Upload struct {
	Path     string
	FileName string
}

// Input bundles the per session collaborators of one run.
type Input struct {
	Upload    Upload
	Splitter  *Splitter
	Embedder  embedding.Embedder
	IndexName string
	// Track is told about each step as it starts, may be nil.
	Track func(jobModel.InternalStatus)
}

func (in Input) track(step jobModel.InternalStatus) {
	if in.Track != nil {
		in.Track(step)
	}
}

// Result is everything a session needs to swap in after a successful run.
type Result struct {
	Loader Loader
	Pages  []commonModels.Page
	Chunks []commonModels.DocChunk
	Index  vectorDB.Index
	Report jobModel.IngestReport
}

type Pipeline struct {
	MaxPages    int
	BatchSize   int
	PageTimeout time.Duration
	Builder     vectorDB.Builder
}

func NewPipeline(settings config.IngestSettings, builder vectorDB.Builder) *Pipeline {
	return &Pipeline{
		MaxPages:    settings.MaxIndexedPages,
		BatchSize:   settings.BatchSize,
		PageTimeout: config.PageExtractTimeout,
		Builder:     builder,
	}
}

// Run loads, splits, embeds and indexes one upload. The stored file is removed
// whatever the outcome. On error nothing is left behind in the vector store.
func (p *Pipeline) Run(ctx context.Context, in Input) (*Result, error) {
	loggr := logger.FromContext(ctx)
	defer func() {
		if err := os.Remove(in.Upload.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			loggr.Error("Error removing file", "path", in.Upload.Path, "error", err)
		}
	}()

	loggr.Debug("Processing document", "filename", in.Upload.FileName, "path", in.Upload.Path)

	in.track(jobModel.IngestLoading)
	loader := &PDFLoader{Path: in.Upload.Path, FileName: in.Upload.FileName, PageTimeout: p.PageTimeout}
	pages, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	report := jobModel.IngestReport{
		FileName:    in.Upload.FileName,
		PagesLoaded: len(pages),
	}
	indexed := p.indexedPages(pages)
	if len(indexed) < len(pages) {
		loggr.Warn("Document truncated", "pages", len(pages), "indexed", len(indexed), "maxPage", p.MaxPages)
		report.Truncated = true
	}
	report.PagesIndexed = len(indexed)

	doc := commonModels.Document{
		Id:                  in.IndexName,
		Name:                in.Upload.FileName,
		LastIngestTimestamp: time.Now(),
		ContentType:         commonModels.PDF,
	}
	in.track(jobModel.IngestSplitting)
	chunks, err := in.Splitter.SplitPages(indexed, doc)
	if err != nil {
		return nil, err
	}
	loggr.Debug("Processing document", "pages", len(indexed), "chunks", len(chunks))
	if len(chunks) == 0 {
		return nil, ErrNoText
	}
	report.Chunks = len(chunks)

	in.track(jobModel.IngestIndexing)
	index, err := p.Builder.CreateIndex(ctx, in.IndexName)
	if err != nil {
		return nil, fmt.Errorf("%w: create index: %w", commonModels.ErrStorage, err)
	}
	if err := BatchIngest(ctx, chunks, index, in.Embedder, p.BatchSize); err != nil {
		// the caller's ctx may be the reason we failed
		dropCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.ShutdownContextTimeout)
		defer cancel()
		if dropErr := index.Drop(dropCtx); dropErr != nil {
			loggr.Error("Error dropping partial index", "index", index.Name(), "error", dropErr)
		}
		return nil, err
	}

	return &Result{
		Loader: loader,
		Pages:  pages,
		Chunks: chunks,
		Index:  index,
		Report: report,
	}, nil
}

// indexedPages keeps the pages numbered up to MaxPages. Skipped pages do not
// shift later pages under the cap.
func (p *Pipeline) indexedPages(pages []commonModels.Page) []commonModels.Page {
	if p.MaxPages <= 0 {
		return pages
	}
	for i, page := range pages {
		if page.Number > p.MaxPages {
			return pages[:i]
		}
	}
	return pages
}

// BatchIngest embeds and stores chunks batchSize at a time.
func BatchIngest(ctx context.Context, chunks []commonModels.DocChunk, index vectorDB.Index, embedder embedding.Embedder, batchSize int) error {
	loggr := logger.FromContext(ctx)
	if batchSize <= 0 {
		batchSize = config.EmbeddingBatchSize
	}

	for i := 0; i < len(chunks); i += batchSize {
		end := min(i+batchSize, len(chunks))
		currentBatch := chunks[i:end]

		texts := make([]string, len(currentBatch))
		for j, c := range currentBatch {
			texts[j] = c.Chunk
		}

		loggr.Debug("Starting embedding call", "batch", i/batchSize, "size", len(texts))
		vectors, err := embedder.BatchEmbedding(ctx, texts)
		if err != nil {
			return fmt.Errorf("%w: embedding batch failed: %w", commonModels.ErrUpstream, err)
		}

		if err := index.UpsertBatch(ctx, currentBatch, vectors); err != nil {
			return fmt.Errorf("%w: upserting to %s failed: %w", commonModels.ErrStorage, index.Name(), err)
		}
	}
	return nil
}
