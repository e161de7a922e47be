package extract

import (
	"context"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codescope/backend/internal/models"
	"github.com/codescope/backend/pkg/treesitter"
)

// javaModifiers is the set of modifier keywords we record on entities.
var javaModifiers = map[string]bool{
	"public": true, "protected": true, "private": true,
	"static": true, "final": true, "abstract": true,
	"synchronized": true, "volatile": true, "transient": true,
	"native": true, "strictfp": true, "default": true,
}

// Extractor turns Java source files into CodeEntity records.
type Extractor struct {
	// The underlying parser is not reentrant; parsing is serialized.
	// Tree traversal after the parse needs no lock.
	mu     sync.Mutex
	parser *treesitter.Parser
}

func NewExtractor() *Extractor {
	return &Extractor{
		parser: treesitter.NewParser(),
	}
}

func (e *Extractor) Close() {
	e.parser.Close()
}

// Extract parses one source file and returns one CodeEntity per declaration.
// Field declarations with several co-declared variables produce one entity
// per variable.
func (e *Extractor) Extract(ctx context.Context, content []byte, filePath string) ([]*models.CodeEntity, error) {
	e.mu.Lock()
	tree, err := e.parser.ParseFile(ctx, content, filePath)
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	pkg := packageName(root, content)

	var entities []*models.CodeEntity
	e.traverse(root, func(node *sitter.Node) {
		switch node.Type() {
		case "class_declaration":
			if entity := e.extractType(node, content, pkg, models.KindClass); entity != nil {
				entity.FilePath = filePath
				entities = append(entities, entity)
			}
		case "interface_declaration":
			if entity := e.extractType(node, content, pkg, models.KindInterface); entity != nil {
				entity.FilePath = filePath
				entities = append(entities, entity)
			}
		case "enum_declaration":
			if entity := e.extractEnum(node, content, pkg); entity != nil {
				entity.FilePath = filePath
				entities = append(entities, entity)
			}
		case "method_declaration":
			if entity := e.extractMethod(node, content); entity != nil {
				entity.FilePath = filePath
				entities = append(entities, entity)
			}
		case "field_declaration":
			for _, entity := range e.extractFields(node, content) {
				entity.FilePath = filePath
				entities = append(entities, entity)
			}
		}
	})

	return entities, nil
}

// extractType handles class and interface declarations.
func (e *Extractor) extractType(node *sitter.Node, content []byte, pkg string, kind models.EntityKind) *models.CodeEntity {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	entity := models.NewCodeEntity(
		nameNode.Content(content),
		kind,
		pkg,
		nodeRange(node),
		precedingJavadoc(node, content),
	)
	addModifiers(entity, node, content)

	// extends clause
	if super := node.ChildByFieldName("superclass"); super != nil {
		for _, name := range typeNames(super, content) {
			entity.AddRelationship(models.RelationExtends, name)
		}
	}
	// interface "extends A, B" has no field name in the grammar
	if ext := findChild(node, "extends_interfaces"); ext != nil {
		for _, name := range typeNames(ext, content) {
			entity.AddRelationship(models.RelationExtends, name)
		}
	}
	// implements clause
	if ifaces := node.ChildByFieldName("interfaces"); ifaces != nil {
		for _, name := range typeNames(ifaces, content) {
			entity.AddRelationship(models.RelationImplements, name)
		}
	}

	return entity
}

func (e *Extractor) extractEnum(node *sitter.Node, content []byte, pkg string) *models.CodeEntity {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	entity := models.NewCodeEntity(
		nameNode.Content(content),
		models.KindEnum,
		pkg,
		nodeRange(node),
		precedingJavadoc(node, content),
	)
	addModifiers(entity, node, content)

	if body := node.ChildByFieldName("body"); body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			child := body.NamedChild(i)
			if child != nil && child.Type() == "enum_constant" {
				if constName := child.ChildByFieldName("name"); constName != nil {
					entity.AddConstant(constName.Content(content))
				}
			}
		}
	}

	return entity
}

func (e *Extractor) extractMethod(node *sitter.Node, content []byte) *models.CodeEntity {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	entity := models.NewCodeEntity(
		nameNode.Content(content),
		models.KindMethod,
		enclosingTypeName(node, content),
		nodeRange(node),
		precedingJavadoc(node, content),
	)
	addModifiers(entity, node, content)
	entity.Source = node.Content(content)

	if retType := node.ChildByFieldName("type"); retType != nil {
		entity.ReturnType = retType.Content(content)
	}

	if params := node.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			param := params.NamedChild(i)
			if param == nil {
				continue
			}
			pType := param.ChildByFieldName("type")
			pName := param.ChildByFieldName("name")
			if pType != nil && pName != nil {
				entity.AddParameter(pName.Content(content), pType.Content(content))
			}
		}
	}

	if body := node.ChildByFieldName("body"); body != nil {
		e.traverse(body, func(n *sitter.Node) {
			if n.Type() == "method_invocation" {
				if called := n.ChildByFieldName("name"); called != nil {
					entity.AddCall(called.Content(content))
				}
			}
		})
	}

	return entity
}

// extractFields produces one entity per declared variable.
func (e *Extractor) extractFields(node *sitter.Node, content []byte) []*models.CodeEntity {
	typeNode := node.ChildByFieldName("type")
	if typeNode == nil {
		return nil
	}

	owner := enclosingTypeName(node, content)
	doc := precedingJavadoc(node, content)

	var entities []*models.CodeEntity
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child == nil || child.Type() != "variable_declarator" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}

		entity := models.NewCodeEntity(
			nameNode.Content(content),
			models.KindField,
			owner,
			nodeRange(child),
			doc,
		)
		addModifiers(entity, node, content)
		entity.FieldType = typeNode.Content(content)
		if value := child.ChildByFieldName("value"); value != nil {
			entity.Initializer = value.Content(content)
		}
		entities = append(entities, entity)
	}

	return entities
}

// traverse walks all named nodes depth-first.
func (e *Extractor) traverse(node *sitter.Node, fn func(*sitter.Node)) {
	if node == nil {
		return
	}
	fn(node)
	for i := 0; i < int(node.NamedChildCount()); i++ {
		e.traverse(node.NamedChild(i), fn)
	}
}

// Helpers

func nodeRange(node *sitter.Node) *models.SourceRange {
	return &models.SourceRange{
		StartLine: int(node.StartPoint().Row) + 1,
		EndLine:   int(node.EndPoint().Row) + 1,
	}
}

func packageName(root *sitter.Node, content []byte) string {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if child != nil && child.Type() == "package_declaration" {
			if child.NamedChildCount() > 0 {
				return child.NamedChild(0).Content(content)
			}
		}
	}
	return ""
}

// enclosingTypeName finds the nearest enclosing type declaration's name.
func enclosingTypeName(node *sitter.Node, content []byte) string {
	parent := node.Parent()
	for parent != nil {
		switch parent.Type() {
		case "class_declaration", "interface_declaration", "enum_declaration":
			if name := parent.ChildByFieldName("name"); name != nil {
				return name.Content(content)
			}
		}
		parent = parent.Parent()
	}
	return ""
}

func addModifiers(entity *models.CodeEntity, node *sitter.Node, content []byte) {
	mods := findChild(node, "modifiers")
	if mods == nil {
		return
	}
	for i := 0; i < int(mods.ChildCount()); i++ {
		child := mods.Child(i)
		if child == nil {
			continue
		}
		if text := child.Content(content); javaModifiers[text] {
			entity.AddModifier(text)
		}
	}
}

func findChild(node *sitter.Node, nodeType string) *sitter.Node {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child != nil && child.Type() == nodeType {
			return child
		}
	}
	return nil
}

// typeNames collects the type identifiers under an extends/implements clause.
func typeNames(node *sitter.Node, content []byte) []string {
	var names []string
	var walk func(*sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch n.Type() {
		case "type_identifier":
			names = append(names, n.Content(content))
			return
		case "generic_type":
			// Foo<T> extends Bar<T>: keep the raw type name only.
			if n.NamedChildCount() > 0 {
				walk(n.NamedChild(0))
			}
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(node)
	return names
}

// precedingJavadoc returns the cleaned text of a javadoc block immediately
// preceding the declaration, or "".
func precedingJavadoc(node *sitter.Node, content []byte) string {
	prev := node.PrevNamedSibling()
	if prev == nil || prev.Type() != "block_comment" {
		return ""
	}

	text := prev.Content(content)
	if !strings.HasPrefix(text, "/**") {
		return ""
	}

	text = strings.TrimPrefix(text, "/**")
	text = strings.TrimSuffix(text, "*/")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "*")
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, " ")
}
