package semantic

import (
	"sort"

	"github.com/codescope/backend/internal/extract"
	"github.com/codescope/backend/internal/models"
)

// CallGraphNode is one method in the call graph, with edges in both
// directions so caller and callee lookups are symmetric.
type CallGraphNode struct {
	ID        string
	Name      string
	ClassName string

	callees map[string]bool
	callers map[string]bool
}

// Callees returns the ids this node calls, sorted.
func (n *CallGraphNode) Callees() []string { return sortedSet(n.callees) }

// Callers returns the ids calling this node, sorted.
func (n *CallGraphNode) Callers() []string { return sortedSet(n.callers) }

// CallGraph connects every method in a project by its resolved call
// edges. Unresolved targets stay in the graph under their bare name, so
// calls into code outside the project are still visible.
type CallGraph struct {
	nodes map[string]*CallGraphNode
}

// BuildCallGraph constructs the call graph for a project. Call targets
// are resolved by name: a method in the caller's own class wins, then a
// method on the type of one of the caller class's fields, then any
// project method with that name. A name matching no project method is
// attributed to the first typed field of the caller's class, and kept
// as-is when the class has no fields.
func BuildCallGraph(structure *models.ProjectStructure) *CallGraph {
	g := &CallGraph{nodes: make(map[string]*CallGraphNode)}

	methodsByName := make(map[string][]*models.CodeEntity)
	fieldsByClass := make(map[string][]*models.CodeEntity)
	for _, e := range structure.Entities() {
		switch e.Kind {
		case models.KindMethod:
			methodsByName[e.Name] = append(methodsByName[e.Name], e)
		case models.KindField:
			fieldsByClass[e.ParentName] = append(fieldsByClass[e.ParentName], e)
		}
	}

	for _, method := range structure.MethodEntities() {
		g.ensure(extract.GenerateID(method), method.Name, method.ParentName)
	}

	for _, method := range structure.MethodEntities() {
		callerID := extract.GenerateID(method)
		for _, called := range sortedSet(method.Calls) {
			target := resolveCall(method, called, methodsByName, fieldsByClass)
			g.AddCall(callerID, target)
		}
	}

	return g
}

func resolveCall(caller *models.CodeEntity, called string, methodsByName map[string][]*models.CodeEntity, fieldsByClass map[string][]*models.CodeEntity) string {
	candidates := methodsByName[called]
	if len(candidates) == 0 {
		// No project method matches; attribute the call to the type of
		// a caller-class field, so calls into library types held in
		// fields still get a typed target.
		for _, f := range fieldsByClass[caller.ParentName] {
			if f.FieldType != "" {
				return f.FieldType + "#" + called
			}
		}
		return called
	}

	for _, m := range candidates {
		if m.ParentName == caller.ParentName {
			return extract.GenerateID(m)
		}
	}

	for _, f := range fieldsByClass[caller.ParentName] {
		for _, m := range candidates {
			if m.ParentName == f.FieldType {
				return extract.GenerateID(m)
			}
		}
	}

	ids := make([]string, len(candidates))
	for i, m := range candidates {
		ids[i] = extract.GenerateID(m)
	}
	sort.Strings(ids)
	return ids[0]
}

// AddCall records a directed edge, creating any missing nodes.
func (g *CallGraph) AddCall(callerID, calleeID string) {
	caller := g.ensure(callerID, "", "")
	callee := g.ensure(calleeID, "", "")
	caller.callees[calleeID] = true
	callee.callers[callerID] = true
}

// Node returns the node for an id, or nil.
func (g *CallGraph) Node(id string) *CallGraphNode {
	return g.nodes[id]
}

// Nodes returns all nodes sorted by id.
func (g *CallGraph) Nodes() []*CallGraphNode {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	nodes := make([]*CallGraphNode, len(ids))
	for i, id := range ids {
		nodes[i] = g.nodes[id]
	}
	return nodes
}

// EdgeCount returns the number of distinct call edges.
func (g *CallGraph) EdgeCount() int {
	count := 0
	for _, n := range g.nodes {
		count += len(n.callees)
	}
	return count
}

func (g *CallGraph) ensure(id, name, className string) *CallGraphNode {
	if n, ok := g.nodes[id]; ok {
		if n.Name == "" {
			n.Name = name
		}
		if n.ClassName == "" {
			n.ClassName = className
		}
		return n
	}
	n := &CallGraphNode{
		ID:        id,
		Name:      name,
		ClassName: className,
		callees:   make(map[string]bool),
		callers:   make(map[string]bool),
	}
	g.nodes[id] = n
	return n
}

func sortedSet(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
