package semantic

import (
	"sort"
	"strings"
)

// ConceptSource tags where a concept occurrence was seen.
type ConceptSource string

const (
	SourceDoc        ConceptSource = "DOC"
	SourceIdentifier ConceptSource = "IDENTIFIER"
	SourceCode       ConceptSource = "CODE"
)

// ConceptOccurrence is one sighting of a concept in one entity.
type ConceptOccurrence struct {
	EntityID string        `json:"entityId"`
	Concept  string        `json:"concept"`
	Source   ConceptSource `json:"source"`
}

// Concept is a ranked keyword with everywhere it occurred and the
// concepts seen adjacent to it.
type Concept struct {
	Name        string              `json:"name"`
	Occurrences []ConceptOccurrence `json:"occurrences"`
	Related     []string            `json:"related,omitempty"`
}

var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true,
	"but": true, "if": true, "then": true, "else": true, "when": true,
	"at": true, "by": true, "for": true, "with": true, "about": true,
	"against": true, "between": true, "into": true, "through": true,
	"during": true, "before": true, "after": true, "above": true,
	"below": true, "from": true, "up": true, "down": true, "in": true,
	"out": true, "on": true, "off": true, "over": true, "under": true,
	"again": true, "further": true, "once": true, "here": true,
	"there": true, "all": true, "any": true, "both": true, "each": true,
	"few": true, "more": true, "most": true, "other": true, "some": true,
	"such": true, "no": true, "nor": true, "not": true, "only": true,
	"own": true, "same": true, "so": true, "than": true, "too": true,
	"very": true, "s": true, "t": true, "can": true, "will": true,
	"just": true, "don": true, "should": true, "now": true,
}

// ConceptExtractor accumulates keyword concepts out of documentation,
// identifiers and code text. Single tokens must be longer than two
// characters and outside the stop list; adjacent non-stop tokens also
// form two-word phrase concepts and record each other as related.
type ConceptExtractor struct {
	occurrences map[string]map[ConceptOccurrence]bool
	related     map[string]map[string]bool
}

func NewConceptExtractor() *ConceptExtractor {
	return &ConceptExtractor{
		occurrences: make(map[string]map[ConceptOccurrence]bool),
		related:     make(map[string]map[string]bool),
	}
}

// ProcessText extracts concepts from one text and attributes them to the
// given entity.
func (c *ConceptExtractor) ProcessText(entityID, text string, source ConceptSource) {
	if text == "" {
		return
	}

	tokens := tokenize(text)

	for _, token := range tokens {
		if len(token) > 2 && !stopWords[token] {
			c.add(entityID, token, source)
		}
	}

	for i := 0; i+1 < len(tokens); i++ {
		t1, t2 := tokens[i], tokens[i+1]
		if t1 == "" || t2 == "" || stopWords[t1] || stopWords[t2] {
			continue
		}
		c.add(entityID, t1+" "+t2, source)
		c.relate(t1, t2)
		c.relate(t2, t1)
	}
}

// RankConcepts returns all concepts ordered by occurrence count,
// most frequent first. Ties break on name for stable output.
func (c *ConceptExtractor) RankConcepts() []Concept {
	concepts := make([]Concept, 0, len(c.occurrences))
	for name, set := range c.occurrences {
		concept := Concept{Name: name, Related: sortedSet(c.related[name])}
		for occ := range set {
			concept.Occurrences = append(concept.Occurrences, occ)
		}
		sort.Slice(concept.Occurrences, func(i, j int) bool {
			a, b := concept.Occurrences[i], concept.Occurrences[j]
			if a.EntityID != b.EntityID {
				return a.EntityID < b.EntityID
			}
			return a.Source < b.Source
		})
		concepts = append(concepts, concept)
	}

	sort.Slice(concepts, func(i, j int) bool {
		if len(concepts[i].Occurrences) != len(concepts[j].Occurrences) {
			return len(concepts[i].Occurrences) > len(concepts[j].Occurrences)
		}
		return concepts[i].Name < concepts[j].Name
	})
	return concepts
}

// RelatedConcepts returns the concepts seen adjacent to the given one.
func (c *ConceptExtractor) RelatedConcepts(concept string) []string {
	return sortedSet(c.related[concept])
}

func (c *ConceptExtractor) add(entityID, concept string, source ConceptSource) {
	if c.occurrences[concept] == nil {
		c.occurrences[concept] = make(map[ConceptOccurrence]bool)
	}
	c.occurrences[concept][ConceptOccurrence{EntityID: entityID, Concept: concept, Source: source}] = true
}

func (c *ConceptExtractor) relate(a, b string) {
	if c.related[a] == nil {
		c.related[a] = make(map[string]bool)
	}
	c.related[a][b] = true
}

func tokenize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return ' '
		}
	}, text)
	return strings.Fields(cleaned)
}
