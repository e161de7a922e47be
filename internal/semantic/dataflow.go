package semantic

import (
	"sort"

	"github.com/codescope/backend/internal/extract"
	"github.com/codescope/backend/internal/models"
)

// DataFlowNode describes what flows through one method: its typed
// inputs, its output, and the methods values are handed on to.
type DataFlowNode struct {
	MethodID  string `json:"methodId"`
	ClassName string `json:"className"`

	// Inputs maps parameter name to type.
	Inputs map[string]string `json:"inputs,omitempty"`
	// Outputs maps output slot to type; non-void methods carry a
	// "return" slot.
	Outputs map[string]string `json:"outputs,omitempty"`
	// Connections lists the resolved callee ids values may flow into.
	Connections []string `json:"connections,omitempty"`
}

// InputNames returns the parameter names sorted.
func (n *DataFlowNode) InputNames() []string {
	names := make([]string, 0, len(n.Inputs))
	for name := range n.Inputs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuildDataFlow derives a data flow node for every method and wires the
// nodes together along the call graph. Void methods keep an empty output
// set rather than being skipped, so every method has a node.
func BuildDataFlow(structure *models.ProjectStructure, graph *CallGraph) map[string]*DataFlowNode {
	nodes := make(map[string]*DataFlowNode)
	for _, method := range structure.MethodEntities() {
		node := &DataFlowNode{
			MethodID:  extract.GenerateID(method),
			ClassName: method.ParentName,
			Inputs:    make(map[string]string, len(method.Parameters)),
			Outputs:   make(map[string]string, 1),
		}
		for _, p := range method.Parameters {
			node.Inputs[p.Name] = p.Type
		}
		if method.ReturnType != "" && method.ReturnType != "void" {
			node.Outputs["return"] = method.ReturnType
		}
		nodes[node.MethodID] = node
	}

	for _, caller := range graph.Nodes() {
		node, ok := nodes[caller.ID]
		if !ok {
			continue
		}
		node.Connections = caller.Callees()
	}

	return nodes
}
