package api

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/codescope/backend/internal/cache"
	"github.com/codescope/backend/internal/config"
	"github.com/codescope/backend/internal/git"
	"github.com/codescope/backend/internal/index"
	"github.com/codescope/backend/internal/models"
	"github.com/codescope/backend/internal/project"
	"github.com/codescope/backend/internal/semantic"
)

type Handler struct {
	cfg      *config.Config
	registry *project.Registry
	queries  *cache.QueryCache
	log      *logrus.Entry
}

func NewHandler(cfg *config.Config, registry *project.Registry, queries *cache.QueryCache, log *logrus.Entry) *Handler {
	return &Handler{
		cfg:      cfg,
		registry: registry,
		queries:  queries,
		log:      log,
	}
}

// CreateProject accepts a zip upload, unpacks it into a fresh project
// and starts analysis in the background.
func (h *Handler) CreateProject(c fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "file is required"})
	}
	if file.Size > h.cfg.MaxUploadBytes {
		return c.Status(413).JSON(fiber.Map{"error": "upload too large"})
	}

	name := strings.TrimSuffix(filepath.Base(file.Filename), ".zip")
	p, err := h.registry.Create(name)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	archivePath := filepath.Join(p.SourceDir, ".upload.zip")
	if err := c.SaveFile(file, archivePath); err != nil {
		h.registry.Delete(p.ID)
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	if err := unzip(archivePath, p.SourceDir); err != nil {
		h.registry.Delete(p.ID)
		return c.Status(400).JSON(fiber.Map{"error": fmt.Sprintf("unpacking archive: %v", err)})
	}
	os.Remove(archivePath)

	h.registry.StartAnalysis(p)

	return c.Status(201).JSON(fiber.Map{
		"projectId": p.ID,
		"status":    project.StatusProcessing,
		"message":   "analysis started",
	})
}

type createFromGitInput struct {
	URL    string `json:"url"`
	Branch string `json:"branch"`
}

// CreateProjectFromGit clones a repository and analyzes it as a project.
func (h *Handler) CreateProjectFromGit(c fiber.Ctx) error {
	var input createFromGitInput
	if err := c.Bind().Body(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if input.URL == "" {
		return c.Status(400).JSON(fiber.Map{"error": "url is required"})
	}

	p, err := h.registry.Create(git.RepoName(input.URL))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	go func() {
		if err := git.Clone(context.Background(), input.URL, input.Branch, p.SourceDir); err != nil {
			p.Fail(err)
			return
		}
		h.registry.StartAnalysis(p)
	}()

	return c.Status(201).JSON(fiber.Map{
		"projectId": p.ID,
		"status":    project.StatusProcessing,
		"message":   "clone started",
	})
}

// ListProjects returns status info for every project.
func (h *Handler) ListProjects(c fiber.Ctx) error {
	return c.JSON(h.registry.List())
}

// GetProject returns one project's status.
func (h *Handler) GetProject(c fiber.Ctx) error {
	p, err := h.registry.Get(c.Params("id"))
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "project not found"})
	}
	return c.JSON(p.Info())
}

// DeleteProject evicts a project and removes it from disk.
func (h *Handler) DeleteProject(c fiber.Ctx) error {
	id := c.Params("id")
	if err := h.registry.Delete(id); err != nil {
		if errors.Is(err, project.ErrNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "project not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	h.queries.Invalidate(id)
	return c.SendStatus(204)
}

// Search runs a free-text query at a given level.
func (h *Handler) Search(c fiber.Ctx) error {
	p, ready, err := h.readyProject(c)
	if err != nil {
		return err
	}
	if !ready {
		return h.notReady(c, p)
	}

	queryStr := c.Query("query")
	level, err := index.ParseLevel(c.Query("level"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	limit := queryLimit(c, 10)

	key := h.queries.Key(p.ID, "search", queryStr, string(level), strconv.Itoa(limit))
	if results, ok := h.queries.Get(key); ok {
		return h.results(c, results)
	}

	results, err := p.Engine().Search(queryStr, level, limit)
	if err != nil {
		return h.searchError(c, err)
	}
	h.queries.Set(key, results)
	return h.results(c, results)
}

// SearchByRelation finds entities with a relation edge to a target.
func (h *Handler) SearchByRelation(c fiber.Ctx) error {
	p, ready, err := h.readyProject(c)
	if err != nil {
		return err
	}
	if !ready {
		return h.notReady(c, p)
	}

	kind := strings.ToUpper(c.Query("relationType"))
	target := c.Query("target")
	if kind == "" || target == "" {
		return c.Status(400).JSON(fiber.Map{"error": "relationType and target are required"})
	}
	limit := queryLimit(c, 10)

	key := h.queries.Key(p.ID, "relation", kind, target, strconv.Itoa(limit))
	if results, ok := h.queries.Get(key); ok {
		return h.results(c, results)
	}

	results, err := p.Engine().SearchByRelation(models.RelationKind(kind), target, limit)
	if err != nil {
		return h.searchError(c, err)
	}
	h.queries.Set(key, results)
	return h.results(c, results)
}

// SemanticSearch queries documentation text only.
func (h *Handler) SemanticSearch(c fiber.Ctx) error {
	p, ready, err := h.readyProject(c)
	if err != nil {
		return err
	}
	if !ready {
		return h.notReady(c, p)
	}

	queryStr := c.Query("query")
	limit := queryLimit(c, 10)

	key := h.queries.Key(p.ID, "semantic", queryStr, strconv.Itoa(limit))
	if results, ok := h.queries.Get(key); ok {
		return h.results(c, results)
	}

	results, err := p.Engine().SemanticSearch(queryStr, limit)
	if err != nil {
		return h.searchError(c, err)
	}
	h.queries.Set(key, results)
	return h.results(c, results)
}

// Clause is one step of an advanced query.
type Clause struct {
	Op    string  `json:"op"`
	Field string  `json:"field"`
	Value string  `json:"value"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

type advancedSearchInput struct {
	Clauses []Clause `json:"clauses"`
	Limit   int      `json:"limit"`
}

// AdvancedSearch executes a boolean query assembled from clauses.
func (h *Handler) AdvancedSearch(c fiber.Ctx) error {
	p, ready, err := h.readyProject(c)
	if err != nil {
		return err
	}
	if !ready {
		return h.notReady(c, p)
	}

	var input advancedSearchInput
	if err := c.Bind().Body(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	builder := index.NewQueryBuilder()
	for _, clause := range input.Clauses {
		switch strings.ToLower(clause.Op) {
		case "and":
			builder.And(clause.Field, clause.Value)
		case "or":
			builder.Or(clause.Field, clause.Value)
		case "not":
			builder.Not(clause.Field, clause.Value)
		case "term":
			builder.Term(clause.Field, clause.Value)
		case "prefix":
			builder.Prefix(clause.Field, clause.Value)
		case "wildcard":
			builder.Wildcard(clause.Field, clause.Value)
		case "range":
			builder.Range(clause.Field, clause.Min, clause.Max)
		case "kind":
			builder.OfKind(models.EntityKind(strings.ToUpper(clause.Value)))
		case "relation":
			kind, target, ok := strings.Cut(clause.Value, ":")
			if !ok {
				return c.Status(400).JSON(fiber.Map{"error": "relation clause value must be KIND:target"})
			}
			builder.HasRelation(models.RelationKind(strings.ToUpper(kind)), target)
		default:
			return c.Status(400).JSON(fiber.Map{"error": fmt.Sprintf("unknown clause op %q", clause.Op)})
		}
	}

	results, err := p.Engine().AdvancedSearch(builder, input.Limit)
	if err != nil {
		return h.searchError(c, err)
	}
	return h.results(c, results)
}

// RelatedMethods returns callers or callees of a method.
func (h *Handler) RelatedMethods(c fiber.Ctx) error {
	p, ready, err := h.readyProject(c)
	if err != nil {
		return err
	}
	if !ready {
		return h.notReady(c, p)
	}

	methodID := c.Query("methodId")
	if methodID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "methodId is required"})
	}
	direction := semantic.CallDirection(c.Query("direction", string(semantic.DirectionCallees)))
	if direction != semantic.DirectionCallers && direction != semantic.DirectionCallees {
		return c.Status(400).JSON(fiber.Map{"error": "direction must be callers or callees"})
	}

	related, err := p.Analyzer().FindRelatedMethods(methodID, direction, queryLimit(c, 100))
	if err != nil {
		return h.semanticError(c, err)
	}
	if related == nil {
		related = []string{}
	}
	return c.JSON(fiber.Map{"methodId": methodID, "direction": direction, "related": related})
}

// DataFlow returns the data flow node for a method.
func (h *Handler) DataFlow(c fiber.Ctx) error {
	p, ready, err := h.readyProject(c)
	if err != nil {
		return err
	}
	if !ready {
		return h.notReady(c, p)
	}

	methodID := c.Query("methodId")
	if methodID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "methodId is required"})
	}

	node, err := p.Analyzer().FindDataFlowNode(methodID)
	if err != nil {
		return h.semanticError(c, err)
	}
	if node == nil {
		return c.Status(404).JSON(fiber.Map{"error": "method not found"})
	}
	return c.JSON(node)
}

// SimilarMethods returns methods similar to the given one.
func (h *Handler) SimilarMethods(c fiber.Ctx) error {
	p, ready, err := h.readyProject(c)
	if err != nil {
		return err
	}
	if !ready {
		return h.notReady(c, p)
	}

	methodID := c.Query("methodId")
	if methodID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "methodId is required"})
	}
	minScore, err := strconv.ParseFloat(c.Query("minSimilarity", "0.7"), 64)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "minSimilarity must be a number"})
	}

	pairs, err := p.Analyzer().FindSimilarMethods(methodID, minScore, queryLimit(c, 100))
	if err != nil {
		return h.semanticError(c, err)
	}
	if pairs == nil {
		pairs = []semantic.SimilarPair{}
	}
	return c.JSON(pairs)
}

// Concepts returns everywhere a concept occurs in the project.
func (h *Handler) Concepts(c fiber.Ctx) error {
	p, ready, err := h.readyProject(c)
	if err != nil {
		return err
	}
	if !ready {
		return h.notReady(c, p)
	}

	concept := strings.ToLower(c.Query("concept"))
	if concept == "" {
		return c.Status(400).JSON(fiber.Map{"error": "concept is required"})
	}

	occurrences, err := p.Analyzer().FindEntitiesByConcept(concept)
	if err != nil {
		return h.semanticError(c, err)
	}
	if occurrences == nil {
		occurrences = []semantic.ConceptOccurrence{}
	}
	return c.JSON(occurrences)
}

// Quality returns quality findings, optionally for one entity, plus the
// project score.
func (h *Handler) Quality(c fiber.Ctx) error {
	p, ready, err := h.readyProject(c)
	if err != nil {
		return err
	}
	if !ready {
		return h.notReady(c, p)
	}

	issues, err := p.Analyzer().QualityIssues(c.Query("entityId"))
	if err != nil {
		return h.semanticError(c, err)
	}
	score, err := p.Analyzer().QualityScore()
	if err != nil {
		return h.semanticError(c, err)
	}
	if issues == nil {
		issues = []semantic.QualityIssue{}
	}
	return c.JSON(fiber.Map{"issues": issues, "score": score})
}

func (h *Handler) readyProject(c fiber.Ctx) (*project.Project, bool, error) {
	p, err := h.registry.Get(c.Params("id"))
	if err != nil {
		return nil, false, c.Status(404).JSON(fiber.Map{"error": "project not found"})
	}
	return p, p.Ready(), nil
}

// notReady answers queries against projects still processing or failed
// with an empty result set and the current status.
func (h *Handler) notReady(c fiber.Ctx, p *project.Project) error {
	status, message := p.Status()
	return c.JSON(fiber.Map{
		"results": []index.Result{},
		"status":  status,
		"error":   message,
	})
}

func (h *Handler) results(c fiber.Ctx, results []index.Result) error {
	if results == nil {
		results = []index.Result{}
	}
	return c.JSON(fiber.Map{"results": results, "count": len(results)})
}

func (h *Handler) searchError(c fiber.Ctx, err error) error {
	if errors.Is(err, index.ErrQueryParse) {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	h.log.WithError(err).Error("search failed")
	return c.Status(500).JSON(fiber.Map{"error": err.Error()})
}

func (h *Handler) semanticError(c fiber.Ctx, err error) error {
	if errors.Is(err, semantic.ErrNotAnalyzed) {
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	}
	h.log.WithError(err).Error("semantic query failed")
	return c.Status(500).JSON(fiber.Map{"error": err.Error()})
}

func queryLimit(c fiber.Ctx, fallback int) int {
	limit, err := strconv.Atoi(c.Query("maxResults", ""))
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}

// unzip unpacks archivePath into destDir, refusing entries that would
// escape it.
func unzip(archivePath, destDir string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return err
	}
	defer reader.Close()

	for _, entry := range reader.File {
		target := filepath.Join(destDir, filepath.Clean(entry.Name))
		if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry %q escapes destination", entry.Name)
		}

		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}

		src, err := entry.Open()
		if err != nil {
			return err
		}
		dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			src.Close()
			return err
		}
		_, err = io.Copy(dst, src)
		src.Close()
		if closeErr := dst.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return err
		}
	}
	return nil
}
