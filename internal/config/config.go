package config

import (
	"os"
	"runtime"
	"strconv"
	"time"
)

// Config is built once at startup and passed by reference to every
// component that needs it.
type Config struct {
	Port string

	// ProjectsDir holds uploaded/cloned sources, one subdirectory per project.
	ProjectsDir string
	// IndexDir holds the per-project index stores.
	IndexDir string

	// ParserWorkers bounds concurrent file extraction within one project.
	ParserWorkers int
	// AnalysisWorkers bounds how many projects may be analyzed at once.
	AnalysisWorkers int

	// IndexBatchSize is the number of documents per index batch commit.
	IndexBatchSize int

	// QueryCacheTTL is how long search responses stay cached.
	QueryCacheTTL time.Duration

	// MaxUploadBytes caps the accepted archive size.
	MaxUploadBytes int64
}

func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "8080"),
		ProjectsDir:     getEnv("PROJECTS_DIR", "./projects"),
		IndexDir:        getEnv("INDEX_DIR", "./indexes"),
		ParserWorkers:   getEnvInt("PARSER_WORKERS", runtime.NumCPU()),
		AnalysisWorkers: getEnvInt("ANALYSIS_WORKERS", 4),
		IndexBatchSize:  getEnvInt("INDEX_BATCH_SIZE", 100),
		QueryCacheTTL:   getEnvDuration("QUERY_CACHE_TTL", 5*time.Minute),
		MaxUploadBytes:  int64(getEnvInt("MAX_UPLOAD_MB", 100)) * 1024 * 1024,
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
