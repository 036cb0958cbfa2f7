package board

import (
	"context"

	"tablero/internal/metrics"
	"tablero/internal/models"
)

// AddCompany registers a new company. Companies only scope other entities;
// removing one later never cascades into its tasks or sprints.
func (b *Board) AddCompany(ctx context.Context, name, logo string) (models.Company, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	company := models.Company{ID: b.newID(), Name: name, Logo: logo}
	b.state.Companies = append(b.state.Companies, company)

	metrics.IncBoardOperation("company_add")
	b.logger.Info("company added", "company", company.ID, "name", name)
	return company, b.persistCompanies(ctx)
}

// RemoveCompany drops the company record. Tasks and sprints keyed by its id
// stay in storage as unreachable weak references. Unknown ids are a no-op.
func (b *Board) RemoveCompany(ctx context.Context, companyID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	kept := b.state.Companies[:0]
	removed := false
	for _, c := range b.state.Companies {
		if c.ID == companyID {
			removed = true
			continue
		}
		kept = append(kept, c)
	}
	if !removed {
		return nil
	}
	b.state.Companies = kept

	metrics.IncBoardOperation("company_remove")
	return b.persistCompanies(ctx)
}

// AddCreator registers a new creator in the global list.
func (b *Board) AddCreator(ctx context.Context, name string) (models.Creator, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	creator := models.Creator{ID: b.newID(), Name: name}
	b.state.Creators = append(b.state.Creators, creator)

	metrics.IncBoardOperation("creator_add")
	return creator, b.persistCreators(ctx)
}

// RemoveCreator drops the creator. Tasks referencing the id keep a dangling
// reference; there is no cascade. Unknown ids are a no-op.
func (b *Board) RemoveCreator(ctx context.Context, creatorID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	kept := b.state.Creators[:0]
	removed := false
	for _, c := range b.state.Creators {
		if c.ID == creatorID {
			removed = true
			continue
		}
		kept = append(kept, c)
	}
	if !removed {
		return nil
	}
	b.state.Creators = kept

	metrics.IncBoardOperation("creator_remove")
	return b.persistCreators(ctx)
}

// Select remembers the currently chosen company and creator.
func (b *Board) Select(ctx context.Context, companyID, creatorID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state.AppState = models.AppState{
		CurrentCompanyID: companyID,
		CurrentCreatorID: creatorID,
	}

	metrics.IncBoardOperation("select")
	return b.persistAppState(ctx)
}
