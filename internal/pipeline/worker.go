package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dgallion1/lawgest/internal/chunker"
	"github.com/dgallion1/lawgest/internal/doctree"
	"github.com/dgallion1/lawgest/internal/outline"
	"github.com/dgallion1/lawgest/internal/parser"
	"github.com/dgallion1/lawgest/internal/segment"
	"github.com/dgallion1/lawgest/internal/storage"
)

// Uploads is the part of the upload registry the worker needs.
type Uploads interface {
	Get(ctx context.Context, id string) (storage.Upload, error)
	MarkLearned(ctx context.Context, id string, chunks int, at time.Time) error
}

// Files opens stored uploads.
type Files interface {
	Open(path string) (io.ReadCloser, error)
}

// ChunkIndexer writes chunks to the vector index.
type ChunkIndexer interface {
	Index(ctx context.Context, chunks []segment.Chunk) (int, error)
}

// Worker learns one upload: load, segment, index.
type Worker struct {
	uploads  Uploads
	files    Files
	indexer  ChunkIndexer
	log      *slog.Logger
	chunkCfg chunker.Config

	pdfFallback bool
}

func NewWorker(uploads Uploads, files Files, indexer ChunkIndexer, log *slog.Logger, chunkCfg chunker.Config, pdfFallback bool) *Worker {
	return &Worker{
		uploads:     uploads,
		files:       files,
		indexer:     indexer,
		log:         log,
		chunkCfg:    chunkCfg,
		pdfFallback: pdfFallback,
	}
}

// Process runs the learn pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "upload_id", job.UploadID)
	start := time.Now()

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	up, err := w.uploads.Get(ctx, job.UploadID)
	if err != nil {
		log.Error("upload lookup failed", "error", err)
		job.Fail("parsing", err)
		return
	}
	doc, err := LoadDocument(w.files, up, w.pdfFallback)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.Fail("parsing", err)
		return
	}
	job.SetUnits(doc.Len())

	// Phase 2: Segment
	job.SetStatus(StatusSegmenting, "segmenting")
	chunks := segment.Segment(doc.Text(), up.Filename, w.chunkCfg)
	job.SetChunks(len(chunks))
	log.Info("segmented document", "units", doc.Len(), "chunks", len(chunks))
	if len(chunks) == 0 {
		log.Warn("no chunks produced")
		job.Fail("segmenting", fmt.Errorf("no extractable content"))
		return
	}

	// Phase 3: Index
	job.SetStatus(StatusIndexing, "indexing")
	n, err := w.indexer.Index(ctx, chunks)
	job.SetIndexed(n)
	if err != nil {
		log.Error("index failed", "indexed", n, "error", err)
		job.Fail("indexing", fmt.Errorf("index: %w", err))
		return
	}

	if err := w.uploads.MarkLearned(ctx, up.ID, n, time.Now()); err != nil {
		log.Warn("mark learned failed", "error", err)
		job.AddError(fmt.Sprintf("mark learned: %s", err))
	}

	job.SetStatus(StatusCompleted, "done")
	log.Info("learn complete", "indexed", n, "duration_ms", time.Since(start).Milliseconds())
}

// LoadDocument opens a stored upload and parses it by extension.
func LoadDocument(files Files, up storage.Upload, pdfFallback bool) (*doctree.Document, error) {
	p, err := parser.ForFile(up.Filename)
	if err != nil {
		return nil, err
	}
	if pp, ok := p.(*parser.PDFParser); ok {
		pp.FallbackPdftotext = pdfFallback
	}

	f, err := files.Open(up.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", up.Filename, err)
	}
	defer f.Close()

	doc, err := p.Parse(f, up.Filename)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", up.Filename, err)
	}
	return doc, nil
}

// ExtractRange builds the outline of units start..end of doc.
func ExtractRange(doc *doctree.Document, start, end int) ([]outline.Term, error) {
	lines, err := doc.Select(start, end)
	if err != nil {
		return nil, err
	}
	return outline.Extract(lines)
}
