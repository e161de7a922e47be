package index

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/codescope/backend/internal/models"
)

// QueryBuilder assembles a boolean query clause by clause. And adds a
// required clause, Or an optional one, Not an exclusion. The zero value
// is not usable; call NewQueryBuilder.
//
//	q := index.NewQueryBuilder().
//		OfKind(models.KindMethod).
//		And(index.FieldName, "save").
//		Not(index.FieldModifiers, "private")
type QueryBuilder struct {
	boolean *query.BooleanQuery
	clauses int
}

func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{boolean: bleve.NewBooleanQuery()}
}

// And requires the field to match the given text.
func (b *QueryBuilder) And(field, text string) *QueryBuilder {
	return b.must(matchOn(field, text))
}

// Or makes the field matching the given text raise relevance without
// being required, unless it is the only clause.
func (b *QueryBuilder) Or(field, text string) *QueryBuilder {
	b.boolean.AddShould(matchOn(field, text))
	b.clauses++
	return b
}

// Not excludes documents where the field matches the given text.
func (b *QueryBuilder) Not(field, text string) *QueryBuilder {
	b.boolean.AddMustNot(matchOn(field, text))
	b.clauses++
	return b
}

// Term requires an exact, unanalyzed term in the field.
func (b *QueryBuilder) Term(field, term string) *QueryBuilder {
	tq := bleve.NewTermQuery(term)
	tq.SetField(field)
	return b.must(tq)
}

// Prefix requires a term in the field starting with the given prefix.
func (b *QueryBuilder) Prefix(field, prefix string) *QueryBuilder {
	pq := bleve.NewPrefixQuery(prefix)
	pq.SetField(field)
	return b.must(pq)
}

// Range requires a numeric field value in [min, max].
func (b *QueryBuilder) Range(field string, min, max float64) *QueryBuilder {
	inclusive := true
	rq := bleve.NewNumericRangeInclusiveQuery(&min, &max, &inclusive, &inclusive)
	rq.SetField(field)
	return b.must(rq)
}

// Wildcard requires a term matching the given wildcard pattern, where
// '*' matches any run of characters and '?' a single one.
func (b *QueryBuilder) Wildcard(field, pattern string) *QueryBuilder {
	wq := bleve.NewWildcardQuery(pattern)
	wq.SetField(field)
	return b.must(wq)
}

// OfKind constrains results to one entity kind.
func (b *QueryBuilder) OfKind(kind models.EntityKind) *QueryBuilder {
	return b.Term(FieldKind, string(kind))
}

// HasRelation requires a relation edge of the given kind to the target.
func (b *QueryBuilder) HasRelation(kind models.RelationKind, target string) *QueryBuilder {
	return b.Term(FieldRelations, string(kind)+":"+target)
}

// Build returns the assembled query. A builder with no clauses is an
// error rather than a match-all.
func (b *QueryBuilder) Build() (query.Query, error) {
	if b.clauses == 0 {
		return nil, fmt.Errorf("%w: no clauses", ErrQueryParse)
	}
	return b.boolean, nil
}

func (b *QueryBuilder) must(q query.Query) *QueryBuilder {
	b.boolean.AddMust(q)
	b.clauses++
	return b
}

func matchOn(field, text string) query.Query {
	mq := bleve.NewMatchQuery(text)
	mq.SetField(field)
	return mq
}
