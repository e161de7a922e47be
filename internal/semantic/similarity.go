package semantic

import (
	"math"
	"sort"
	"strings"

	"github.com/codescope/backend/internal/models"
)

// SimilarPair is a pair of methods whose feature vectors overlap at or
// above the reporting threshold. A is always the lexically smaller id.
type SimilarPair struct {
	A     string  `json:"a"`
	B     string  `json:"b"`
	Score float64 `json:"score"`
}

// ComputeFeatureVector turns method text into an L2-normalized term
// frequency vector. Identifiers are lowercased and split on anything
// outside [a-z0-9_], so formatting and casing differences wash out.
func ComputeFeatureVector(text string) map[string]float64 {
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

	vector := make(map[string]float64)
	for _, term := range strings.Fields(cleaned) {
		vector[term]++
	}

	var norm float64
	for _, f := range vector {
		norm += f * f
	}
	if norm == 0 {
		return vector
	}
	norm = math.Sqrt(norm)
	for term := range vector {
		vector[term] /= norm
	}
	return vector
}

// Similarity is the cosine of two normalized vectors: the dot product
// over their shared terms. Symmetric in its arguments.
func Similarity(a, b map[string]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for term, fa := range a {
		if fb, ok := b[term]; ok {
			dot += fa * fb
		}
	}
	return dot
}

// ComputeSimilarities scores every pair of methods in the project and
// returns the pairs at or above threshold, highest score first.
func ComputeSimilarities(structure *models.ProjectStructure, threshold float64) []SimilarPair {
	type entry struct {
		id     string
		vector map[string]float64
	}

	var entries []entry
	for id, ir := range structure.IRs() {
		if ir.Kind != string(models.KindMethod) {
			continue
		}
		text := ir.Source
		if text == "" {
			text = ir.Text
		}
		entries = append(entries, entry{id: id, vector: ComputeFeatureVector(text)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].id < entries[j].id })

	var pairs []SimilarPair
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			score := Similarity(entries[i].vector, entries[j].vector)
			if score >= threshold {
				pairs = append(pairs, SimilarPair{A: entries[i].id, B: entries[j].id, Score: score})
			}
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Score != pairs[j].Score {
			return pairs[i].Score > pairs[j].Score
		}
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})
	return pairs
}

// DuplicateThreshold is the score at which two methods are reported as
// likely duplicates.
const DuplicateThreshold = 0.8

// FindPotentialDuplicates filters pairs down to likely copy-paste
// duplicates.
func FindPotentialDuplicates(pairs []SimilarPair) []SimilarPair {
	var dupes []SimilarPair
	for _, p := range pairs {
		if p.Score >= DuplicateThreshold {
			dupes = append(dupes, p)
		}
	}
	return dupes
}
