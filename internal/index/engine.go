package index

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/codescope/backend/internal/models"
)

var (
	// ErrQueryParse reports a query string the engine could not parse.
	ErrQueryParse = errors.New("malformed query")

	// ErrClosed reports an operation on a closed engine.
	ErrClosed = errors.New("index is closed")
)

// Engine owns one on-disk search index for one project. All methods are
// safe for concurrent use; BuildIndex takes the write side and swaps the
// underlying index wholesale.
type Engine struct {
	path      string
	batchSize int

	mu  sync.RWMutex
	idx bleve.Index
}

func NewEngine(path string, batchSize int) *Engine {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Engine{path: path, batchSize: batchSize}
}

// Open opens the index at the engine's path, creating an empty one when
// none exists yet.
func (e *Engine) Open() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.idx != nil {
		return nil
	}
	idx, err := bleve.Open(e.path)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		idx, err = bleve.New(e.path, buildIndexMapping())
	}
	if err != nil {
		return fmt.Errorf("opening index at %s: %w", e.path, err)
	}
	e.idx = idx
	return nil
}

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.idx == nil {
		return nil
	}
	err := e.idx.Close()
	e.idx = nil
	return err
}

// BuildIndex replaces the index contents with documents derived from the
// given structure. The previous index is destroyed first, so rebuilding
// the same structure always yields the same documents. Returns the
// number of documents written.
func (e *Engine) BuildIndex(structure *models.ProjectStructure) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.idx != nil {
		if err := e.idx.Close(); err != nil {
			return 0, fmt.Errorf("closing index for rebuild: %w", err)
		}
		e.idx = nil
	}
	if err := os.RemoveAll(e.path); err != nil {
		return 0, fmt.Errorf("removing stale index: %w", err)
	}

	idx, err := bleve.New(e.path, buildIndexMapping())
	if err != nil {
		return 0, fmt.Errorf("creating index at %s: %w", e.path, err)
	}

	docs := buildDocuments(structure)
	batch := idx.NewBatch()
	for _, doc := range docs {
		if err := batch.Index(doc.ID, doc.Fields); err != nil {
			idx.Close()
			return 0, fmt.Errorf("batching document %s: %w", doc.ID, err)
		}
		if batch.Size() >= e.batchSize {
			if err := idx.Batch(batch); err != nil {
				idx.Close()
				return 0, fmt.Errorf("committing batch: %w", err)
			}
			batch.Reset()
		}
	}
	if batch.Size() > 0 {
		if err := idx.Batch(batch); err != nil {
			idx.Close()
			return 0, fmt.Errorf("committing batch: %w", err)
		}
	}

	e.idx = idx
	return len(docs), nil
}

// Search runs a free-text query at the given level. The query string is
// validated up front so a malformed query surfaces as ErrQueryParse
// rather than a search failure.
func (e *Engine) Search(queryStr string, level Level, limit int) ([]Result, error) {
	if err := validateQuery(queryStr); err != nil {
		return nil, err
	}

	fields := level.searchFields()
	clauses := make([]query.Query, 0, len(fields))
	for _, field := range fields {
		mq := bleve.NewMatchQuery(queryStr)
		mq.SetField(field)
		clauses = append(clauses, mq)
	}
	var q query.Query = bleve.NewDisjunctionQuery(clauses...)

	if kind := level.kindFilter(); kind != "" {
		tq := bleve.NewTermQuery(kind)
		tq.SetField(FieldKind)
		q = bleve.NewConjunctionQuery(q, tq)
	}

	return e.run(q, limit)
}

// SearchByRelation finds entities holding a relation edge of the given
// kind to the given target, e.g. all types extending "BaseService".
func (e *Engine) SearchByRelation(kind models.RelationKind, target string, limit int) ([]Result, error) {
	tq := bleve.NewTermQuery(string(kind) + ":" + target)
	tq.SetField(FieldRelations)
	return e.run(tq, limit)
}

// SemanticSearch matches against documentation text only, so results
// reflect what entities are described as doing rather than identifier
// overlap.
func (e *Engine) SemanticSearch(queryStr string, limit int) ([]Result, error) {
	if err := validateQuery(queryStr); err != nil {
		return nil, err
	}
	mq := bleve.NewMatchQuery(queryStr)
	mq.SetField(FieldDoc)
	return e.run(mq, limit)
}

// AdvancedSearch executes a query assembled by a QueryBuilder.
func (e *Engine) AdvancedSearch(b *QueryBuilder, limit int) ([]Result, error) {
	q, err := b.Build()
	if err != nil {
		return nil, err
	}
	return e.run(q, limit)
}

// DocCount reports the number of documents currently indexed.
func (e *Engine) DocCount() (uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.idx == nil {
		return 0, ErrClosed
	}
	return e.idx.DocCount()
}

func (e *Engine) run(q query.Query, limit int) ([]Result, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.idx == nil {
		return nil, ErrClosed
	}

	if limit <= 0 {
		limit = 10
	}
	req := bleve.NewSearchRequest(q)
	req.Size = limit
	req.Fields = []string{"*"}

	res, err := e.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("executing search: %w", err)
	}

	results := make([]Result, 0, len(res.Hits))
	for _, hit := range res.Hits {
		results = append(results, hitToResult(hit))
	}
	return results, nil
}

func validateQuery(queryStr string) error {
	qs := query.NewQueryStringQuery(queryStr)
	if _, err := qs.Parse(); err != nil {
		return fmt.Errorf("%w: %v", ErrQueryParse, err)
	}
	return nil
}
