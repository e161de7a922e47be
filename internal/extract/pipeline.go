package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/codescope/backend/internal/models"
	"github.com/codescope/backend/pkg/treesitter"
)

// Result summarizes one extraction pass. Per-file failures land in Errors;
// they never abort the pass.
type Result struct {
	FilesProcessed int
	EntitiesFound  int
	Errors         []string
}

// Pipeline walks a source tree and fills a ProjectStructure.
type Pipeline struct {
	extractor *Extractor
	workers   int
	log       *logrus.Entry
}

func NewPipeline(workers int, log *logrus.Entry) *Pipeline {
	if workers <= 0 {
		workers = 4
	}
	return &Pipeline{
		extractor: NewExtractor(),
		workers:   workers,
		log:       log,
	}
}

func (p *Pipeline) Close() {
	p.extractor.Close()
}

var skippedDirs = map[string]bool{
	".git": true, "node_modules": true, "vendor": true,
	"target": true, "build": true, "dist": true, "out": true,
}

// Run extracts every supported source file under dirPath, registers entities and IRs
// into a fresh ProjectStructure, and resolves cross-entity relationships.
func (p *Pipeline) Run(ctx context.Context, dirPath string) (*models.ProjectStructure, *Result, error) {
	var files []string
	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if skippedDirs[info.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if treesitter.Supported(path) {
			relPath, _ := filepath.Rel(dirPath, path)
			files = append(files, relPath)
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	structure := models.NewProjectStructure()
	result := &Result{}

	var wg sync.WaitGroup
	sem := make(chan struct{}, p.workers)
	var mu sync.Mutex

	for _, relPath := range files {
		wg.Add(1)
		go func(relPath string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			entities, err := p.processFile(ctx, dirPath, relPath)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				p.log.WithError(err).WithField("file", relPath).Warn("extraction failed, skipping file")
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", relPath, err))
				return
			}

			result.FilesProcessed++
			result.EntitiesFound += len(entities)
			for _, entity := range entities {
				structure.AddEntity(entity, BuildIR(entity))
			}
		}(relPath)
	}

	wg.Wait()

	structure.BuildRelationships()

	return structure, result, nil
}

func (p *Pipeline) processFile(ctx context.Context, dirPath, relPath string) ([]*models.CodeEntity, error) {
	content, err := os.ReadFile(filepath.Join(dirPath, relPath))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return p.extractor.Extract(ctx, content, relPath)
}
