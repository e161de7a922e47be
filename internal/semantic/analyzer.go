package semantic

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/search"
	"github.com/sirupsen/logrus"

	"github.com/codescope/backend/internal/models"
)

// Artifact index names under the analyzer's directory.
const (
	callGraphIndex  = "call_graph"
	dataFlowIndex   = "data_flow"
	similarityIndex = "code_similarity"
	conceptIndex    = "concept"
)

// ErrNotAnalyzed reports a query against an analyzer that has not run.
var ErrNotAnalyzed = errors.New("project has not been analyzed")

// Report summarizes one analysis run.
type Report struct {
	Methods       int `json:"methods"`
	CallEdges     int `json:"callEdges"`
	DataFlowNodes int `json:"dataFlowNodes"`
	SimilarPairs  int `json:"similarPairs"`
	Concepts      int `json:"concepts"`
	QualityIssues int `json:"qualityIssues"`
	QualityScore  int `json:"qualityScore"`
}

// Analyzer runs every semantic pass over a project and persists each
// artifact to its own index, so relation lookups survive a restart
// without recomputing the analysis.
type Analyzer struct {
	dir string
	log *logrus.Entry

	mu       sync.RWMutex
	graph    *CallGraph
	dataFlow map[string]*DataFlowNode
	pairs    []SimilarPair
	concepts []Concept
	quality  *QualityAnalyzer
	indexes  map[string]bleve.Index
}

func NewAnalyzer(dir string, log *logrus.Entry) *Analyzer {
	return &Analyzer{
		dir:     dir,
		log:     log,
		indexes: make(map[string]bleve.Index),
	}
}

// AnalyzeProject runs the call graph, data flow, similarity, concept and
// quality passes in order. Earlier artifacts feed later ones, so the
// order is fixed.
func (a *Analyzer) AnalyzeProject(ctx context.Context, structure *models.ProjectStructure) (*Report, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	graph := BuildCallGraph(structure)
	a.log.WithFields(logrus.Fields{
		"nodes": len(graph.Nodes()),
		"edges": graph.EdgeCount(),
	}).Info("call graph built")
	if err := a.saveCallGraph(graph); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dataFlow := BuildDataFlow(structure, graph)
	if err := a.saveDataFlow(dataFlow); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pairs := ComputeSimilarities(structure, DuplicateThreshold)
	a.log.WithField("pairs", len(pairs)).Info("similarity analysis done")
	if err := a.saveSimilarities(pairs); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	extractor := NewConceptExtractor()
	for _, ir := range structure.IRs() {
		if ir.Doc != "" {
			extractor.ProcessText(ir.ID, ir.Doc, SourceDoc)
		}
		extractor.ProcessText(ir.ID, ir.Name, SourceIdentifier)
		extractor.ProcessText(ir.ID, ir.Text, SourceCode)
	}
	concepts := extractor.RankConcepts()
	a.log.WithField("concepts", len(concepts)).Info("concept extraction done")
	if err := a.saveConcepts(concepts); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	quality := NewQualityAnalyzer()
	for _, entity := range structure.Entities() {
		quality.AnalyzeEntity(entity)
	}
	a.log.WithFields(logrus.Fields{
		"issues": len(quality.Issues("")),
		"score":  quality.Score(),
	}).Info("quality analysis done")

	a.graph = graph
	a.dataFlow = dataFlow
	a.pairs = pairs
	a.concepts = concepts
	a.quality = quality

	return &Report{
		Methods:       len(structure.MethodEntities()),
		CallEdges:     graph.EdgeCount(),
		DataFlowNodes: len(dataFlow),
		SimilarPairs:  len(pairs),
		Concepts:      len(concepts),
		QualityIssues: len(quality.Issues("")),
		QualityScore:  quality.Score(),
	}, nil
}

// CallDirection selects which side of the call graph a lookup walks.
type CallDirection string

const (
	DirectionCallers CallDirection = "callers"
	DirectionCallees CallDirection = "callees"
)

// FindRelatedMethods returns up to limit methods calling (or called by)
// the given method, from the persisted call graph.
func (a *Analyzer) FindRelatedMethods(methodID string, direction CallDirection, limit int) ([]string, error) {
	queryField, returnField := "caller", "callee"
	if direction == DirectionCallers {
		queryField, returnField = "callee", "caller"
	}

	hits, err := a.termSearch(callGraphIndex, queryField, methodID, limit)
	if err != nil {
		return nil, err
	}

	related := make([]string, 0, len(hits))
	for _, hit := range hits {
		if v, ok := hit.Fields[returnField].(string); ok {
			related = append(related, v)
		}
	}
	return related, nil
}

// FindDataFlowNode returns the data flow node for a method.
func (a *Analyzer) FindDataFlowNode(methodID string) (*DataFlowNode, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.dataFlow == nil {
		return nil, ErrNotAnalyzed
	}
	return a.dataFlow[methodID], nil
}

// FindSimilarMethods returns up to limit methods similar to the given
// one at or above minScore, from the persisted similarity pairs.
func (a *Analyzer) FindSimilarMethods(methodID string, minScore float64, limit int) ([]SimilarPair, error) {
	q1 := bleve.NewTermQuery(methodID)
	q1.SetField("method1")
	q2 := bleve.NewTermQuery(methodID)
	q2.SetField("method2")

	hits, err := a.search(similarityIndex, bleve.NewSearchRequest(bleve.NewDisjunctionQuery(q1, q2)), limit)
	if err != nil {
		return nil, err
	}

	var result []SimilarPair
	for _, hit := range hits {
		score, _ := hit.Fields["similarity"].(float64)
		if score < minScore {
			continue
		}
		m1, _ := hit.Fields["method1"].(string)
		m2, _ := hit.Fields["method2"].(string)
		other := m2
		if other == methodID {
			other = m1
		}
		result = append(result, SimilarPair{A: methodID, B: other, Score: score})
	}
	return result, nil
}

// FindEntitiesByConcept returns everywhere a concept occurs.
func (a *Analyzer) FindEntitiesByConcept(concept string) ([]ConceptOccurrence, error) {
	hits, err := a.termSearch(conceptIndex, "concept", concept, 1)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}

	entityIDs := stringValues(hits[0].Fields["entityId"])
	sources := stringValues(hits[0].Fields["source"])

	occurrences := make([]ConceptOccurrence, 0, len(entityIDs))
	for i, id := range entityIDs {
		occ := ConceptOccurrence{EntityID: id, Concept: concept}
		if i < len(sources) {
			occ.Source = ConceptSource(sources[i])
		}
		occurrences = append(occurrences, occ)
	}
	return occurrences, nil
}

// QualityIssues returns the findings for one entity, or all findings
// when entityID is empty.
func (a *Analyzer) QualityIssues(entityID string) ([]QualityIssue, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.quality == nil {
		return nil, ErrNotAnalyzed
	}
	return a.quality.Issues(entityID), nil
}

// QualityScore returns the project quality score.
func (a *Analyzer) QualityScore() (int, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.quality == nil {
		return 0, ErrNotAnalyzed
	}
	return a.quality.Score(), nil
}

// Close releases every artifact index.
func (a *Analyzer) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	var firstErr error
	for name, idx := range a.indexes {
		if err := idx.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(a.indexes, name)
	}
	return firstErr
}

func (a *Analyzer) saveCallGraph(graph *CallGraph) error {
	var docs []artifactDoc
	for _, node := range graph.Nodes() {
		for _, callee := range node.Callees() {
			docs = append(docs, artifactDoc{
				id: node.ID + "->" + callee,
				fields: map[string]interface{}{
					"caller": node.ID,
					"callee": callee,
				},
			})
		}
	}
	return a.rebuild(callGraphIndex, docs)
}

func (a *Analyzer) saveDataFlow(nodes map[string]*DataFlowNode) error {
	var docs []artifactDoc
	for _, id := range sortedNodeIDs(nodes) {
		node := nodes[id]
		fields := map[string]interface{}{
			"methodId": node.MethodID,
			"class":    node.ClassName,
		}
		var inputs []string
		for _, name := range node.InputNames() {
			inputs = append(inputs, name+":"+node.Inputs[name])
		}
		if len(inputs) > 0 {
			fields["inputs"] = inputs
		}
		if out, ok := node.Outputs["return"]; ok {
			fields["output"] = "return:" + out
		}
		if len(node.Connections) > 0 {
			fields["connection"] = node.Connections
		}
		docs = append(docs, artifactDoc{id: node.MethodID, fields: fields})
	}
	return a.rebuild(dataFlowIndex, docs)
}

func (a *Analyzer) saveSimilarities(pairs []SimilarPair) error {
	docs := make([]artifactDoc, 0, len(pairs))
	for i, pair := range pairs {
		docs = append(docs, artifactDoc{
			id: strconv.Itoa(i),
			fields: map[string]interface{}{
				"method1":    pair.A,
				"method2":    pair.B,
				"similarity": pair.Score,
			},
		})
	}
	return a.rebuild(similarityIndex, docs)
}

func (a *Analyzer) saveConcepts(concepts []Concept) error {
	docs := make([]artifactDoc, 0, len(concepts))
	for _, concept := range concepts {
		entityIDs := make([]string, len(concept.Occurrences))
		sources := make([]string, len(concept.Occurrences))
		for i, occ := range concept.Occurrences {
			entityIDs[i] = occ.EntityID
			sources[i] = string(occ.Source)
		}
		fields := map[string]interface{}{
			"concept":   concept.Name,
			"frequency": float64(len(concept.Occurrences)),
			"entityId":  entityIDs,
			"source":    sources,
		}
		if len(concept.Related) > 0 {
			fields["related"] = concept.Related
		}
		docs = append(docs, artifactDoc{id: concept.Name, fields: fields})
	}
	return a.rebuild(conceptIndex, docs)
}

type artifactDoc struct {
	id     string
	fields map[string]interface{}
}

// rebuild replaces one artifact index wholesale. Artifact fields are
// exact terms, so the whole index uses the keyword analyzer.
func (a *Analyzer) rebuild(name string, docs []artifactDoc) error {
	if idx, ok := a.indexes[name]; ok {
		if err := idx.Close(); err != nil {
			return fmt.Errorf("closing %s index: %w", name, err)
		}
		delete(a.indexes, name)
	}

	path := filepath.Join(a.dir, name)
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("removing stale %s index: %w", name, err)
	}

	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = keyword.Name
	idx, err := bleve.New(path, im)
	if err != nil {
		return fmt.Errorf("creating %s index: %w", name, err)
	}

	batch := idx.NewBatch()
	for _, doc := range docs {
		if err := batch.Index(doc.id, doc.fields); err != nil {
			idx.Close()
			return fmt.Errorf("batching %s document: %w", name, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		idx.Close()
		return fmt.Errorf("committing %s index: %w", name, err)
	}

	a.indexes[name] = idx
	return nil
}

func (a *Analyzer) termSearch(indexName, field, term string, limit int) ([]*search.DocumentMatch, error) {
	tq := bleve.NewTermQuery(term)
	tq.SetField(field)
	return a.search(indexName, bleve.NewSearchRequest(tq), limit)
}

func (a *Analyzer) search(indexName string, req *bleve.SearchRequest, limit int) ([]*search.DocumentMatch, error) {
	idx, err := a.openIndex(indexName)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 100
	}
	req.Size = limit
	req.Fields = []string{"*"}
	res, err := idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("searching %s index: %w", indexName, err)
	}
	return res.Hits, nil
}

// openIndex returns the live handle for an artifact index, reopening it
// from disk when the analyzer was restarted after a previous run.
func (a *Analyzer) openIndex(name string) (bleve.Index, error) {
	a.mu.RLock()
	idx, ok := a.indexes[name]
	a.mu.RUnlock()
	if ok {
		return idx, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if idx, ok := a.indexes[name]; ok {
		return idx, nil
	}
	idx, err := bleve.Open(filepath.Join(a.dir, name))
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		return nil, ErrNotAnalyzed
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s index: %w", name, err)
	}
	a.indexes[name] = idx
	return idx, nil
}

func stringValues(v interface{}) []string {
	switch v := v.(type) {
	case string:
		return []string{v}
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func sortedNodeIDs(nodes map[string]*DataFlowNode) []string {
	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
