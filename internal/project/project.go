package project

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/codescope/backend/internal/config"
	"github.com/codescope/backend/internal/extract"
	"github.com/codescope/backend/internal/index"
	"github.com/codescope/backend/internal/models"
	"github.com/codescope/backend/internal/semantic"
)

// Status is the lifecycle state of a project. A project is only
// queryable once READY; a failed analysis parks it in ERROR with the
// failure message retained.
type Status string

const (
	StatusProcessing Status = "PROCESSING"
	StatusReady      Status = "READY"
	StatusError      Status = "ERROR"
)

// Project owns one uploaded codebase: its source tree, its search
// index and its semantic artifacts.
type Project struct {
	ID        string
	Name      string
	SourceDir string
	IndexDir  string
	CreatedAt time.Time

	cfg *config.Config
	log *logrus.Entry

	engine   *index.Engine
	analyzer *semantic.Analyzer

	mu            sync.RWMutex
	status        Status
	statusMessage string
	structure     *models.ProjectStructure
	extractResult *extract.Result
	report        *semantic.Report
}

func New(id, name, sourceDir, indexDir string, cfg *config.Config, log *logrus.Entry) *Project {
	plog := log.WithField("project", id)
	return &Project{
		ID:        id,
		Name:      name,
		SourceDir: sourceDir,
		IndexDir:  indexDir,
		CreatedAt: time.Now().UTC(),
		cfg:       cfg,
		log:       plog,
		engine:    index.NewEngine(filepath.Join(indexDir, "entities"), cfg.IndexBatchSize),
		analyzer:  semantic.NewAnalyzer(indexDir, plog),
		status:    StatusProcessing,
	}
}

// Analyze runs the full pipeline: extraction, index build, semantic
// analysis. The project moves to READY only when all three stages
// succeed; any failure records the stage error and moves it to ERROR.
func (p *Project) Analyze(ctx context.Context) error {
	p.setStatus(StatusProcessing, "")
	start := time.Now()

	pipeline := extract.NewPipeline(p.cfg.ParserWorkers, p.log)
	defer pipeline.Close()

	stage := time.Now()
	structure, result, err := pipeline.Run(ctx, p.SourceDir)
	if err != nil {
		return p.fail(fmt.Errorf("extracting sources: %w", err))
	}
	p.log.WithFields(logrus.Fields{
		"files":    result.FilesProcessed,
		"entities": result.EntitiesFound,
		"errors":   len(result.Errors),
		"duration": time.Since(stage),
	}).Info("extraction done")

	stage = time.Now()
	docs, err := p.engine.BuildIndex(structure)
	if err != nil {
		return p.fail(fmt.Errorf("building index: %w", err))
	}
	p.log.WithFields(logrus.Fields{
		"documents": docs,
		"duration":  time.Since(stage),
	}).Info("index built")

	stage = time.Now()
	report, err := p.analyzer.AnalyzeProject(ctx, structure)
	if err != nil {
		return p.fail(fmt.Errorf("semantic analysis: %w", err))
	}
	p.log.WithField("duration", time.Since(stage)).Info("semantic analysis done")

	p.mu.Lock()
	p.structure = structure
	p.extractResult = result
	p.report = report
	p.status = StatusReady
	p.statusMessage = ""
	p.mu.Unlock()

	p.log.WithField("duration", time.Since(start)).Info("project ready")
	return nil
}

func (p *Project) fail(err error) error {
	p.log.WithError(err).Error("analysis failed")
	p.setStatus(StatusError, err.Error())
	return err
}

// Fail records an ingestion failure that happened before Analyze could
// run, such as a clone or unpack error.
func (p *Project) Fail(err error) {
	p.log.WithError(err).Error("ingestion failed")
	p.setStatus(StatusError, err.Error())
}

func (p *Project) setStatus(status Status, message string) {
	p.mu.Lock()
	p.status = status
	p.statusMessage = message
	p.mu.Unlock()
}

// Status returns the lifecycle state and, for ERROR, what went wrong.
func (p *Project) Status() (Status, string) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status, p.statusMessage
}

// Ready reports whether the project can serve queries.
func (p *Project) Ready() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status == StatusReady
}

func (p *Project) Engine() *index.Engine {
	return p.engine
}

func (p *Project) Analyzer() *semantic.Analyzer {
	return p.analyzer
}

func (p *Project) Structure() *models.ProjectStructure {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.structure
}

// Info is the status payload returned by the API.
type Info struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Status    Status           `json:"status"`
	Error     string           `json:"error,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	Files     int              `json:"files,omitempty"`
	Entities  int              `json:"entities,omitempty"`
	Warnings  []string         `json:"warnings,omitempty"`
	Report    *semantic.Report `json:"report,omitempty"`
}

func (p *Project) Info() Info {
	p.mu.RLock()
	defer p.mu.RUnlock()

	info := Info{
		ID:        p.ID,
		Name:      p.Name,
		Status:    p.status,
		Error:     p.statusMessage,
		CreatedAt: p.CreatedAt,
		Report:    p.report,
	}
	if p.extractResult != nil {
		info.Files = p.extractResult.FilesProcessed
		info.Entities = p.extractResult.EntitiesFound
		info.Warnings = p.extractResult.Errors
	}
	return info
}

// Close releases the project's index handles.
func (p *Project) Close() error {
	if err := p.engine.Close(); err != nil {
		return err
	}
	return p.analyzer.Close()
}

// Delete closes the project and removes its source tree and indexes
// from disk.
func (p *Project) Delete() error {
	if err := p.Close(); err != nil {
		p.log.WithError(err).Warn("closing project before delete")
	}
	if err := os.RemoveAll(p.SourceDir); err != nil {
		return fmt.Errorf("removing sources: %w", err)
	}
	if err := os.RemoveAll(p.IndexDir); err != nil {
		return fmt.Errorf("removing indexes: %w", err)
	}
	return nil
}
