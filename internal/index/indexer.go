// Package index embeds segmented chunks and keeps them in a vector store
// for retrieval during review.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/dgallion1/lawgest/internal/segment"
	"github.com/google/uuid"
)

// Payload keys. FieldText holds the chunk text; the rest are the chunk
// metadata keys downstream consumers match on.
const (
	FieldText          = "text"
	FieldProgram       = "program"
	FieldChapterTitle  = "chapter_title"
	FieldArticleTitle  = "article_title"
	FieldArticleNumber = "article_number"
)

// Embedder turns texts into vectors of a fixed dimension.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// Store is the vector backend.
type Store interface {
	EnsureCollection(ctx context.Context, collection string, size int) error
	Upsert(ctx context.Context, collection string, points []Point) error
	Search(ctx context.Context, collection string, vector []float32, k int) ([]ScoredPoint, error)
	DeleteProgram(ctx context.Context, collection, program string) error
}

// Point is one stored vector with its payload.
type Point struct {
	ID      string
	Vector  []float32
	Payload map[string]any
}

// ScoredPoint is a search result as returned by the store.
type ScoredPoint struct {
	ID      string
	Score   float32
	Payload map[string]any
}

// Hit is a retrieved chunk.
type Hit struct {
	Chunk segment.Chunk
	Score float32
}

// Indexer embeds chunks in batches and writes them to one collection.
type Indexer struct {
	embedder   Embedder
	store      Store
	collection string
	batchSize  int
	log        *slog.Logger
}

func NewIndexer(embedder Embedder, store Store, collection string, batchSize int, log *slog.Logger) *Indexer {
	if batchSize <= 0 {
		batchSize = 32
	}
	return &Indexer{
		embedder:   embedder,
		store:      store,
		collection: collection,
		batchSize:  batchSize,
		log:        log.With("component", "indexer", "collection", collection),
	}
}

// EnsureCollection creates the collection sized to the embedder.
func (ix *Indexer) EnsureCollection(ctx context.Context) error {
	return ix.store.EnsureCollection(ctx, ix.collection, ix.embedder.Dimension())
}

// Index replaces the stored chunks of every program present in chunks and
// returns the number of points written. Point IDs depend only on program and
// chunk position, so indexing the same document twice is idempotent.
func (ix *Indexer) Index(ctx context.Context, chunks []segment.Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	seen := make(map[string]bool)
	for _, c := range chunks {
		if seen[c.Program] {
			continue
		}
		seen[c.Program] = true
		if err := ix.store.DeleteProgram(ctx, ix.collection, c.Program); err != nil {
			return 0, fmt.Errorf("clear %s: %w", c.Program, err)
		}
	}

	ordinals := make(map[string]int)
	written := 0
	for start := 0; start < len(chunks); start += ix.batchSize {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		end := min(start+ix.batchSize, len(chunks))
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}
		vectors, err := ix.embedder.Embed(ctx, texts)
		if err != nil {
			return written, fmt.Errorf("embed batch %d-%d: %w", start, end, err)
		}

		points := make([]Point, len(batch))
		for i, c := range batch {
			n := ordinals[c.Program]
			ordinals[c.Program] = n + 1
			points[i] = Point{
				ID:      PointID(c.Program, n),
				Vector:  vectors[i],
				Payload: payload(c),
			}
		}
		if err := ix.store.Upsert(ctx, ix.collection, points); err != nil {
			return written, fmt.Errorf("upsert batch %d-%d: %w", start, end, err)
		}
		written += len(points)
		ix.log.Debug("batch indexed", "from", start, "to", end)
	}

	ix.log.Info("chunks indexed", "count", written, "programs", len(seen))
	return written, nil
}

// Search returns the k chunks nearest to query.
func (ix *Indexer) Search(ctx context.Context, query string, k int) ([]Hit, error) {
	vectors, err := ix.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	points, err := ix.store.Search(ctx, ix.collection, vectors[0], k)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	hits := make([]Hit, 0, len(points))
	for _, p := range points {
		hits = append(hits, Hit{Chunk: chunkFromPayload(p.Payload), Score: p.Score})
	}
	return hits, nil
}

// Forget removes every stored chunk of program.
func (ix *Indexer) Forget(ctx context.Context, program string) error {
	if err := ix.store.DeleteProgram(ctx, ix.collection, program); err != nil {
		return fmt.Errorf("forget %s: %w", program, err)
	}
	ix.log.Info("program removed", "program", program)
	return nil
}

// PointID derives a stable UUID for the n-th chunk of program.
func PointID(program string, n int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("lawgest:"+program+"#"+strconv.Itoa(n))).String()
}

func payload(c segment.Chunk) map[string]any {
	p := c.Metadata()
	p[FieldText] = c.Text
	return p
}

func chunkFromPayload(p map[string]any) segment.Chunk {
	str := func(k string) string {
		s, _ := p[k].(string)
		return s
	}
	c := segment.Chunk{
		Text:         str(FieldText),
		Program:      str(FieldProgram),
		ChapterTitle: str(FieldChapterTitle),
		ArticleTitle: str(FieldArticleTitle),
	}
	switch n := p[FieldArticleNumber].(type) {
	case int64:
		v := int(n)
		c.ArticleNumber = &v
	case int:
		v := n
		c.ArticleNumber = &v
	case float64:
		v := int(n)
		c.ArticleNumber = &v
	}
	return c
}
