// Package catalog implements the admin use cases of the vegetable catalog:
// listing, CRUD, reseeding and image relinking.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hapkiduki/apnacart/internal/application/dto"
	"github.com/hapkiduki/apnacart/internal/application/port"
	"github.com/hapkiduki/apnacart/internal/domain/entity"
	"github.com/hapkiduki/apnacart/internal/domain/repository"
	"github.com/hapkiduki/apnacart/internal/domain/valueobject"
)

const (
	defaultPageSize = 100
	maxPageSize     = 500
)

// Service coordinates catalog persistence and image linking.
type Service struct {
	repo   repository.VegetableRepository
	images port.ImageResolver
	log    port.Logger
}

// NewService creates a catalog Service.
//
// Parameters:
//   - repo: vegetable persistence
//   - images: resolver used to fill in missing image URLs
//   - log: structured logger
//
// Returns:
//   - *Service: the service
func NewService(repo repository.VegetableRepository, images port.ImageResolver, log port.Logger) *Service {
	return &Service{
		repo:   repo,
		images: images,
		log:    log.With("component", "catalog"),
	}
}

// List returns one page of vegetables, newest first.
func (s *Service) List(ctx context.Context, q dto.ListVegetablesQuery) (dto.PaginateResponse[dto.VegetableResponse], error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset := max(q.Offset, 0)

	filter := repository.VegetableFilter{
		SearchTerm: strings.TrimSpace(q.Search),
		Limit:      limit,
		Offset:     offset,
	}
	if raw := strings.TrimSpace(q.Weight); raw != "" {
		token, err := valueobject.ParseWeightToken(raw)
		if err != nil {
			return dto.PaginateResponse[dto.VegetableResponse]{}, invalid(dto.ValidationError{
				Field:   "weight",
				Message: "Invalid weight unit. Must be 250g, 500g or 1kg",
				Value:   raw,
			})
		}
		filter.Weight = &token
	}

	vegetables, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return dto.PaginateResponse[dto.VegetableResponse]{}, fmt.Errorf("list vegetables: %w", err)
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return dto.PaginateResponse[dto.VegetableResponse]{}, fmt.Errorf("count vegetables: %w", err)
	}

	return dto.NewPage(dto.NewVegetableResponses(vegetables), total, limit, offset), nil
}

// Get returns one vegetable.
func (s *Service) Get(ctx context.Context, id int) (*entity.Vegetable, error) {
	return s.repo.GetByID(ctx, id)
}

// Create validates the request, links an image when none is given and
// stores the vegetable.
func (s *Service) Create(ctx context.Context, req dto.CreateVegetableRequest) (*entity.Vegetable, error) {
	name, token, err := parseRequest(req)
	if err != nil {
		return nil, err
	}

	vegetable, err := entity.NewVegetable(name, token, s.images.Resolve(name, req.ImageURL))
	if err != nil {
		return nil, toValidation(err)
	}

	if err := s.repo.Create(ctx, vegetable); err != nil {
		return nil, fmt.Errorf("create vegetable: %w", err)
	}

	s.log.WithContext(ctx).Info("vegetable created",
		"vegetable_id", vegetable.ID,
		"name", vegetable.Name,
		"image", vegetable.ImageURL,
	)
	return vegetable, nil
}

// Update replaces the details of an existing vegetable.
func (s *Service) Update(ctx context.Context, id int, req dto.UpdateVegetableRequest) (*entity.Vegetable, error) {
	name, token, err := parseRequest(req)
	if err != nil {
		return nil, err
	}

	vegetable, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := vegetable.UpdateDetails(name, token, s.images.Resolve(name, req.ImageURL)); err != nil {
		return nil, toValidation(err)
	}

	if err := s.repo.Update(ctx, vegetable); err != nil {
		return nil, fmt.Errorf("update vegetable %d: %w", id, err)
	}

	s.log.WithContext(ctx).Info("vegetable updated", "vegetable_id", id)
	return vegetable, nil
}

// Delete removes a vegetable.
// It returns repository.ErrVegetableNotFound when the id is unknown.
func (s *Service) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.WithContext(ctx).Info("vegetable deleted", "vegetable_id", id)
	return nil
}

// Status reports how many vegetables the catalog holds.
func (s *Service) Status(ctx context.Context) (dto.DatabaseStatus, error) {
	count, err := s.repo.Count(ctx, repository.VegetableFilter{})
	if err != nil {
		return dto.DatabaseStatus{}, fmt.Errorf("count vegetables: %w", err)
	}
	return dto.DatabaseStatus{
		Count:   count,
		Message: fmt.Sprintf("Database has %d vegetables", count),
	}, nil
}

// Reseed replaces the whole catalog with vegetables.
// Entries without an image get one from the resolver.
func (s *Service) Reseed(ctx context.Context, vegetables []*entity.Vegetable) (dto.DatabaseStatus, error) {
	for _, v := range vegetables {
		v.SetImageURL(s.images.Resolve(v.Name, v.ImageURL))
	}

	if err := s.repo.ReplaceAll(ctx, vegetables); err != nil {
		return dto.DatabaseStatus{}, fmt.Errorf("reseed catalog: %w", err)
	}

	s.log.WithContext(ctx).Info("catalog reseeded", "count", len(vegetables))
	return dto.DatabaseStatus{
		Count:   int64(len(vegetables)),
		Message: fmt.Sprintf("Database setup complete with %d vegetables", len(vegetables)),
	}, nil
}

// RelinkImages recomputes the image of every vegetable from its name.
// With dryRun set nothing is written.
func (s *Service) RelinkImages(ctx context.Context, dryRun bool) ([]dto.ImageLinkResult, error) {
	vegetables, err := s.repo.FindAll(ctx, repository.VegetableFilter{})
	if err != nil {
		return nil, fmt.Errorf("list vegetables: %w", err)
	}

	results := make([]dto.ImageLinkResult, 0, len(vegetables))
	for _, v := range vegetables {
		linked := s.images.Resolve(v.Name, "")
		result := dto.ImageLinkResult{
			ID:       v.ID,
			Name:     v.Name,
			OldImage: v.ImageURL,
			NewImage: linked,
			Changed:  linked != v.ImageURL,
		}
		results = append(results, result)

		if !result.Changed || dryRun {
			continue
		}
		v.SetImageURL(linked)
		if err := s.repo.Update(ctx, v); err != nil {
			return results, fmt.Errorf("relink vegetable %d: %w", v.ID, err)
		}
		s.log.WithContext(ctx).Debug("image linked", "vegetable_id", v.ID, "image", linked)
	}
	return results, nil
}

func parseRequest(req dto.CreateVegetableRequest) (string, valueobject.WeightToken, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.WeightUnit = strings.TrimSpace(req.WeightUnit)
	if errs := req.Validate(); len(errs) > 0 {
		return "", "", invalid(errs...)
	}

	token, err := valueobject.ParseWeightToken(req.WeightUnit)
	if err != nil {
		return "", "", invalid(dto.ValidationError{
			Field:   "weightUnit",
			Message: "Invalid weight unit. Must be 250g, 500g or 1kg",
			Value:   req.WeightUnit,
		})
	}
	return req.Name, token, nil
}

func toValidation(err error) error {
	switch {
	case errors.Is(err, entity.ErrInvalidVegetableName), errors.Is(err, entity.ErrVegetableNameTooLong):
		return invalid(dto.ValidationError{Field: "name", Message: err.Error()})
	case errors.Is(err, entity.ErrInvalidVegetableWeight):
		return invalid(dto.ValidationError{Field: "weightUnit", Message: err.Error()})
	default:
		return err
	}
}
