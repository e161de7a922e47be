package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codescope/backend/internal/cache"
	"github.com/codescope/backend/internal/config"
	"github.com/codescope/backend/internal/project"
)

const baseSource = `package com.example;

/**
 * Base type.
 */
public class Base {
    /**
     * Runs.
     */
    public void run() {}
}
`

const greeterSource = `package com.example;

public class Greeter extends Base {
    private String name;

    public String greet(String who) { return "hello " + who; }

    public String salute(String who) { return "hello " + who; }

    public void init() { run(); }
}
`

// newTestApp builds the app with one analyzed project and returns its id.
func newTestApp(t *testing.T) (*fiber.App, string) {
	t.Helper()

	base := t.TempDir()
	cfg := &config.Config{
		ProjectsDir:     filepath.Join(base, "projects"),
		IndexDir:        filepath.Join(base, "indexes"),
		ParserWorkers:   2,
		AnalysisWorkers: 2,
		IndexBatchSize:  100,
		QueryCacheTTL:   time.Minute,
		MaxUploadBytes:  1 << 20,
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	log := logrus.NewEntry(logger)

	queries, err := cache.New(cfg.QueryCacheTTL)
	require.NoError(t, err)
	t.Cleanup(queries.Close)

	registry := project.NewRegistry(cfg, log)
	t.Cleanup(registry.Close)

	p, err := registry.Create("demo")
	require.NoError(t, err)
	for name, source := range map[string]string{
		"Base.java":    baseSource,
		"Greeter.java": greeterSource,
	} {
		require.NoError(t, os.WriteFile(filepath.Join(p.SourceDir, name), []byte(source), 0o644))
	}
	require.NoError(t, p.Analyze(context.Background()))

	app := fiber.New()
	SetupRoutes(app, NewHandler(cfg, registry, queries, log))
	return app, p.ID
}

func getJSON(t *testing.T, app *fiber.App, url string, out interface{}) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, url, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type searchResponse struct {
	Results []struct {
		ID   string `json:"id"`
		Kind string `json:"kind"`
	} `json:"results"`
	Count int `json:"count"`
}

func TestSearchEndpointParameters(t *testing.T) {
	app, id := newTestApp(t)

	var body searchResponse
	status := getJSON(t, app,
		"/api/v1/projects/"+id+"/search?query=greet&level=method&maxResults=5", &body)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, body.Results)
	assert.Equal(t, "Greeter#greet", body.Results[0].ID)

	// "String" appears in both greet and salute; maxResults truncates.
	status = getJSON(t, app,
		"/api/v1/projects/"+id+"/search?query=String&level=method", &body)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, body.Count)

	status = getJSON(t, app,
		"/api/v1/projects/"+id+"/search?query=String&level=method&maxResults=1", &body)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, body.Count)
}

func TestSearchByRelationEndpointParameters(t *testing.T) {
	app, id := newTestApp(t)

	var body searchResponse
	status := getJSON(t, app,
		"/api/v1/projects/"+id+"/search/relation?relationType=extends&target=Base", &body)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body.Results, 1)
	assert.Equal(t, "com.example.Greeter", body.Results[0].ID)

	// Missing relationType is rejected.
	status = getJSON(t, app, "/api/v1/projects/"+id+"/search/relation?target=Base", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRelatedMethodsEndpointParameters(t *testing.T) {
	app, id := newTestApp(t)

	var body struct {
		MethodID string   `json:"methodId"`
		Related  []string `json:"related"`
	}
	status := getJSON(t, app,
		"/api/v1/projects/"+id+"/semantic/calls?methodId=Base%23run&direction=callers", &body)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Base#run", body.MethodID)
	assert.Equal(t, []string{"Greeter#init"}, body.Related)

	status = getJSON(t, app, "/api/v1/projects/"+id+"/semantic/calls?direction=callers", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSimilarMethodsEndpointParameters(t *testing.T) {
	app, id := newTestApp(t)

	// greet and salute have identical bodies; the default threshold
	// returns the pair without a minSimilarity parameter.
	var pairs []struct {
		A     string  `json:"a"`
		B     string  `json:"b"`
		Score float64 `json:"score"`
	}
	status := getJSON(t, app,
		"/api/v1/projects/"+id+"/semantic/similar?methodId=Greeter%23greet", &pairs)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, pairs, 1)
	assert.Equal(t, "Greeter#salute", pairs[0].B)

	status = getJSON(t, app,
		"/api/v1/projects/"+id+"/semantic/similar?methodId=Greeter%23greet&minSimilarity=1.01", &pairs)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, pairs)

	status = getJSON(t, app,
		"/api/v1/projects/"+id+"/semantic/similar?methodId=Greeter%23greet&minSimilarity=high", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestQualityEndpointParameters(t *testing.T) {
	app, id := newTestApp(t)

	var body struct {
		Issues []struct {
			EntityID string `json:"entityId"`
			Type     string `json:"type"`
		} `json:"issues"`
		Score int `json:"score"`
	}
	status := getJSON(t, app,
		"/api/v1/projects/"+id+"/semantic/quality?entityId=com.example.Greeter", &body)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body.Issues, 1)
	assert.Equal(t, "MISSING_DOC", body.Issues[0].Type)
}
