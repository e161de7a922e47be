package project

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/codescope/backend/internal/config"
)

// ErrNotFound reports a project id the registry does not know.
var ErrNotFound = errors.New("project not found")

// Registry tracks every live project and bounds how many analyses run
// at once. Analyses run in the background; callers poll project status.
type Registry struct {
	cfg *config.Config
	log *logrus.Entry
	sem chan struct{}

	mu       sync.RWMutex
	projects map[string]*Project
}

func NewRegistry(cfg *config.Config, log *logrus.Entry) *Registry {
	workers := cfg.AnalysisWorkers
	if workers <= 0 {
		workers = 2
	}
	return &Registry{
		cfg:      cfg,
		log:      log,
		sem:      make(chan struct{}, workers),
		projects: make(map[string]*Project),
	}
}

// Create allocates a new project with its source and index directories
// and registers it in PROCESSING state.
func (r *Registry) Create(name string) (*Project, error) {
	id := uuid.NewString()
	sourceDir := filepath.Join(r.cfg.ProjectsDir, id)
	indexDir := filepath.Join(r.cfg.IndexDir, id)

	if err := os.MkdirAll(sourceDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating project directory: %w", err)
	}
	if err := os.MkdirAll(indexDir, 0o755); err != nil {
		os.RemoveAll(sourceDir)
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	p := New(id, name, sourceDir, indexDir, r.cfg, r.log)

	r.mu.Lock()
	r.projects[id] = p
	r.mu.Unlock()

	return p, nil
}

// StartAnalysis queues the project's analysis on the bounded worker
// pool and returns immediately.
func (r *Registry) StartAnalysis(p *Project) {
	go func() {
		r.sem <- struct{}{}
		defer func() { <-r.sem }()

		// Analyze records its own failure state; nothing to do here.
		_ = p.Analyze(context.Background())
	}()
}

func (r *Registry) Get(id string) (*Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

// List returns status info for every project, newest first.
func (r *Registry) List() []Info {
	r.mu.RLock()
	infos := make([]Info, 0, len(r.projects))
	for _, p := range r.projects {
		infos = append(infos, p.Info())
	}
	r.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool {
		if !infos[i].CreatedAt.Equal(infos[j].CreatedAt) {
			return infos[i].CreatedAt.After(infos[j].CreatedAt)
		}
		return infos[i].ID < infos[j].ID
	})
	return infos
}

// Delete removes a project from the registry and from disk.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	p, ok := r.projects[id]
	if ok {
		delete(r.projects, id)
	}
	r.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	return p.Delete()
}

// Close releases every project's index handles. Projects stay on disk.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.projects {
		if err := p.Close(); err != nil {
			r.log.WithError(err).WithField("project", p.ID).Warn("closing project")
		}
	}
}
