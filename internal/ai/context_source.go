package ai

import (
	"context"

	"github.com/Stefan/ppm-saas-sub001/internal/store"
)

// StoreContextSource implements ContextSource over the core's own stores,
// so the RAG engine's deterministic context counts (spec §4.6 step 3)
// always reflect live data rather than a separate cached projection.
type StoreContextSource struct {
	portfolios store.PortfolioStore
	projects   store.ProjectStore
	resources  store.ResourceStore
}

// NewStoreContextSource builds a StoreContextSource over the three stores.
func NewStoreContextSource(portfolios store.PortfolioStore, projects store.ProjectStore, resources store.ResourceStore) *StoreContextSource {
	return &StoreContextSource{portfolios: portfolios, projects: projects, resources: resources}
}

// CountContext returns the number of portfolios, projects, and resources
// currently on file.
func (s *StoreContextSource) CountContext(ctx context.Context) (ContextCounts, error) {
	portfolios, err := s.portfolios.ListPortfolios(ctx)
	if err != nil {
		return ContextCounts{}, err
	}
	projects, err := s.projects.ListProjects(ctx, "")
	if err != nil {
		return ContextCounts{}, err
	}
	resources, err := s.resources.ListResources(ctx)
	if err != nil {
		return ContextCounts{}, err
	}
	return ContextCounts{
		Portfolios: len(portfolios),
		Projects:   len(projects),
		Resources:  len(resources),
	}, nil
}
