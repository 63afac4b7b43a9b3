// Package catalog maintains the area and subarea taxonomy.
package catalog

import (
	"context"
	"errors"

	"github.com/ceramica/backend/internal/application/uow"
	"github.com/ceramica/backend/internal/domain/catalog"
	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SeedArea is one area of a taxonomy file
type SeedArea struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Subareas    []SeedSubarea `yaml:"subareas"`
}

// SeedSubarea is one subarea of a taxonomy file
type SeedSubarea struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// SeedResult counts what a seed run changed
type SeedResult struct {
	AreasCreated    int `json:"areas_created"`
	AreasUpdated    int `json:"areas_updated"`
	SubareasCreated int `json:"subareas_created"`
	SubareasUpdated int `json:"subareas_updated"`
}

// AreaService handles areas and subareas
type AreaService struct {
	repo   catalog.AreaRepository
	scope  uow.TransactionScope
	logger *zap.Logger
}

// NewAreaService creates a new AreaService
func NewAreaService(repo catalog.AreaRepository, scope uow.TransactionScope, logger *zap.Logger) *AreaService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AreaService{repo: repo, scope: scope, logger: logger}
}

// List returns every area with its subareas
func (s *AreaService) List(ctx context.Context) ([]catalog.Area, error) {
	out, err := s.repo.FindAll(ctx)
	if out == nil && err == nil {
		out = []catalog.Area{}
	}
	return out, err
}

// Get returns an area with its subareas
func (s *AreaService) Get(ctx context.Context, id uuid.UUID) (*catalog.Area, error) {
	return s.repo.FindByID(ctx, id)
}

// Create adds an area; names are unique ignoring case and accents
func (s *AreaService) Create(ctx context.Context, name, description string) (*catalog.Area, error) {
	a, err := catalog.NewArea(name, description)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	a.Subareas = []catalog.Subarea{}
	return a, nil
}

// Update renames an area
func (s *AreaService) Update(ctx context.Context, id uuid.UUID, name, description string) (*catalog.Area, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := a.Rename(name, description); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Delete removes an area with its subareas
func (s *AreaService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos uow.Repositories) error {
		return repos.AreaRepo().Delete(ctx, id)
	})
}

// AddSubarea creates a subarea under an area
func (s *AreaService) AddSubarea(ctx context.Context, areaID uuid.UUID, name, description string) (*catalog.Subarea, error) {
	if _, err := s.repo.FindByID(ctx, areaID); err != nil {
		return nil, err
	}
	sub, err := catalog.NewSubarea(areaID, name, description)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateSubarea(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// UpdateSubarea renames a subarea of the area
func (s *AreaService) UpdateSubarea(ctx context.Context, areaID, id uuid.UUID, name, description string) (*catalog.Subarea, error) {
	sub, err := s.repo.FindSubarea(ctx, areaID, id)
	if err != nil {
		return nil, err
	}
	if err := sub.Rename(name, description); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateSubarea(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// DeleteSubarea removes a subarea of the area
func (s *AreaService) DeleteSubarea(ctx context.Context, areaID, id uuid.UUID) error {
	return s.repo.DeleteSubarea(ctx, areaID, id)
}

// Seed upserts a taxonomy in one transaction. Areas and subareas are matched
// by canonical name; nothing is deleted.
func (s *AreaService) Seed(ctx context.Context, areas []SeedArea) (SeedResult, error) {
	var res SeedResult
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		res = SeedResult{}
		for _, in := range areas {
			if err := seedArea(ctx, repos.AreaRepo(), in, &res); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}
	s.logger.Info("areas seeded",
		zap.Int("areas_created", res.AreasCreated),
		zap.Int("areas_updated", res.AreasUpdated),
		zap.Int("subareas_created", res.SubareasCreated),
		zap.Int("subareas_updated", res.SubareasUpdated),
	)
	return res, nil
}

func seedArea(ctx context.Context, repo catalog.AreaRepository, in SeedArea, res *SeedResult) error {
	a, err := repo.FindByName(ctx, in.Name)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		if a, err = catalog.NewArea(in.Name, in.Description); err != nil {
			return err
		}
		if err := repo.Create(ctx, a); err != nil {
			return err
		}
		res.AreasCreated++
	case err != nil:
		return err
	default:
		if err := a.Rename(in.Name, in.Description); err != nil {
			return err
		}
		if err := repo.Update(ctx, a); err != nil {
			return err
		}
		res.AreasUpdated++
	}

	existing := make(map[string]*catalog.Subarea, len(a.Subareas))
	for i := range a.Subareas {
		existing[a.Subareas[i].NameKey] = &a.Subareas[i]
	}
	for _, sin := range in.Subareas {
		if sub, ok := existing[shared.CanonicalKey(sin.Name)]; ok {
			if err := sub.Rename(sin.Name, sin.Description); err != nil {
				return err
			}
			if err := repo.UpdateSubarea(ctx, sub); err != nil {
				return err
			}
			res.SubareasUpdated++
			continue
		}
		sub, err := catalog.NewSubarea(a.ID, sin.Name, sin.Description)
		if err != nil {
			return err
		}
		if err := repo.CreateSubarea(ctx, sub); err != nil {
			return err
		}
		existing[sub.NameKey] = sub
		res.SubareasCreated++
	}
	return nil
}
