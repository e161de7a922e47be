package api

import (
	"github.com/gofiber/fiber/v3"
)

func SetupRoutes(app *fiber.App, h *Handler) {
	v1 := app.Group("/api/v1")

	projects := v1.Group("/projects")
	projects.Get("/", h.ListProjects)
	projects.Post("/", h.CreateProject)
	projects.Post("/git", h.CreateProjectFromGit)
	projects.Get("/:id", h.GetProject)
	projects.Delete("/:id", h.DeleteProject)

	// Search
	projects.Get("/:id/search", h.Search)
	projects.Get("/:id/search/relation", h.SearchByRelation)
	projects.Get("/:id/search/semantic", h.SemanticSearch)
	projects.Post("/:id/search/advanced", h.AdvancedSearch)

	// Semantic analysis
	sem := projects.Group("/:id/semantic")
	sem.Get("/calls", h.RelatedMethods)
	sem.Get("/dataflow", h.DataFlow)
	sem.Get("/similar", h.SimilarMethods)
	sem.Get("/concepts", h.Concepts)
	sem.Get("/quality", h.Quality)
}
