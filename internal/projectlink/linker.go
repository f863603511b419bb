// Package projectlink resolves a project number (and optional WBS element)
// to a project identifier, auto-creating a project on first sight. The
// cache it carries is per-import-session: a fresh Linker is constructed
// for each import and discarded after, so anonymized names from one
// session never leak into another (see internal/anonymizer).
package projectlink

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Stefan/ppm-saas-sub001/internal/apperr"
	"github.com/Stefan/ppm-saas-sub001/internal/domain"
	"github.com/Stefan/ppm-saas-sub001/internal/store"
)

// Linker resolves project_nr -> project_id, backed by store.ProjectStore.
type Linker struct {
	store             store.ProjectStore
	defaultPortfolioID string
	cache             map[string]string // project_nr -> project_id
}

// New constructs a Linker with an empty cache.
func New(projectStore store.ProjectStore, defaultPortfolioID string) *Linker {
	return &Linker{
		store:              projectStore,
		defaultPortfolioID: defaultPortfolioID,
		cache:              make(map[string]string),
	}
}

// Preload fetches (name, id) for every existing project in a single query
// so the import loop that follows never performs per-row lookups.
func (l *Linker) Preload(ctx context.Context) error {
	names, err := l.store.ListProjectNamesAndIDs(ctx)
	if err != nil {
		return apperr.DependencyUnavailable("project_store", err)
	}
	for name, id := range names {
		l.cache[name] = id
	}
	return nil
}

// GetOrCreate resolves projectNr to a project id: cache hit, then a
// name-match lookup in the store, then best-effort creation. On a
// uniqueness conflict during creation it refetches and uses the existing
// row rather than erroring (§9 "create is best-effort").
func (l *Linker) GetOrCreate(ctx context.Context, projectNr, wbsElement string) (string, error) {
	if id, ok := l.cache[projectNr]; ok {
		return id, nil
	}

	existing, err := l.store.GetProjectByName(ctx, projectNr)
	if err == nil {
		l.cache[projectNr] = existing.ID
		return existing.ID, nil
	}
	if !apperr.Is(err, apperr.ErrCodeNotFound) {
		return "", apperr.DependencyUnavailable("project_store", err)
	}

	created, err := l.create(ctx, projectNr, wbsElement)
	if err != nil {
		if apperr.Is(err, apperr.ErrCodeDuplicate) {
			// Lost a create race: another caller created it first, refetch.
			existing, ferr := l.store.GetProjectByName(ctx, projectNr)
			if ferr != nil {
				return "", apperr.DependencyUnavailable("project_store", ferr)
			}
			l.cache[projectNr] = existing.ID
			return existing.ID, nil
		}
		return "", err
	}

	l.cache[projectNr] = created.ID
	return created.ID, nil
}

func (l *Linker) create(ctx context.Context, projectNr, wbsElement string) (domain.Project, error) {
	description := ""
	if wbsElement != "" {
		description = fmt.Sprintf("Auto-created project for WBS: %s", wbsElement)
	}
	p := domain.Project{
		ID:          uuid.NewString(),
		PortfolioID: l.defaultPortfolioID,
		Name:        projectNr,
		Description: description,
		Status:      domain.ProjectActive,
		Health:      domain.HealthGreen,
	}
	created, err := l.store.CreateProject(ctx, p)
	if err != nil {
		return domain.Project{}, err
	}
	return created, nil
}
