package models

import "sort"

// ProjectStructure aggregates everything extracted from one project. It is
// owned by a single analysis session; no internal locking.
type ProjectStructure struct {
	entities []*CodeEntity
	irByID   map[string]*IR
	entityIR map[*CodeEntity]*IR

	// referenceGraph maps source entity name -> "target:KIND" edge keys,
	// resolved once all entities are known.
	referenceGraph map[string][]string
}

func NewProjectStructure() *ProjectStructure {
	return &ProjectStructure{
		irByID:         make(map[string]*IR),
		entityIR:       make(map[*CodeEntity]*IR),
		referenceGraph: make(map[string][]string),
	}
}

// AddEntity registers an entity and its IR.
func (s *ProjectStructure) AddEntity(entity *CodeEntity, ir *IR) {
	s.entities = append(s.entities, entity)
	s.irByID[ir.ID] = ir
	s.entityIR[entity] = ir
}

func (s *ProjectStructure) Entities() []*CodeEntity {
	return s.entities
}

func (s *ProjectStructure) IRByID(id string) *IR {
	return s.irByID[id]
}

func (s *ProjectStructure) IRs() map[string]*IR {
	return s.irByID
}

func (s *ProjectStructure) ReferenceGraph() map[string][]string {
	return s.referenceGraph
}

// MethodEntities returns all method entities.
func (s *ProjectStructure) MethodEntities() []*CodeEntity {
	var methods []*CodeEntity
	for _, e := range s.entities {
		if e.Kind == KindMethod {
			methods = append(methods, e)
		}
	}
	return methods
}

// BuildRelationships resolves Extends/Implements/Calls edges into the
// project-wide reference graph. Must run after extraction completes and
// before indexing.
func (s *ProjectStructure) BuildRelationships() {
	for _, entity := range s.entities {
		if entity.Kind == KindClass || entity.Kind == KindInterface {
			for _, kind := range []RelationKind{RelationExtends, RelationImplements} {
				for _, target := range sortedNames(entity.Relationships[kind]) {
					s.addReference(entity, target, kind)
				}
			}
		}
	}

	for _, entity := range s.entities {
		if entity.Kind == KindMethod {
			for _, called := range sortedNames(entity.Calls) {
				s.addReference(entity, called, RelationCalls)
			}
		}
	}
}

func sortedNames(set map[string]bool) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *ProjectStructure) addReference(source *CodeEntity, target string, kind RelationKind) {
	key := source.Name + "->" + target + ":" + string(kind)
	for _, existing := range s.referenceGraph[source.Name] {
		if existing == key {
			return
		}
	}
	s.referenceGraph[source.Name] = append(s.referenceGraph[source.Name], key)

	// Mirror the edge onto the source entity's IR.
	if ir := s.entityIR[source]; ir != nil {
		ir.AddRelationship(string(kind), target)
	}
}
