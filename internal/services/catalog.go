package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/hanapp-ph/hanapp-backend/internal/models"
	"github.com/hanapp-ph/hanapp-backend/internal/storage"
)

// CatalogService manages the priced services providers can be booked for
type CatalogService struct {
	store storage.Store
	log   *zap.Logger
}

func NewCatalogService(store storage.Store, logger *zap.Logger) *CatalogService {
	return &CatalogService{store: store, log: logger.Named("catalog")}
}

func (s *CatalogService) Create(ctx context.Context, actor Actor, in models.ServiceCreate) (*models.Service, error) {
	if !actor.IsProvider() {
		return nil, Forbidden("only providers can offer services")
	}

	var listingID *string
	if in.ListingID != "" {
		l, err := s.store.GetListing(ctx, in.ListingID)
		if err != nil {
			return nil, storeError(err, "listing")
		}
		if l.ProviderID != actor.ID {
			return nil, Forbidden("not your listing")
		}
		listingID = &l.ID
	}

	svc := &models.Service{
		ProviderID:      actor.ID,
		ListingID:       listingID,
		Name:            strings.TrimSpace(in.Name),
		Description:     in.Description,
		Price:           in.Price,
		DurationMinutes: in.DurationMinutes,
		IsActive:        true,
	}
	if err := s.store.CreateService(ctx, svc); err != nil {
		return nil, Internal(err, "failed to create service")
	}
	return svc, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (*models.Service, error) {
	svc, err := s.store.GetService(ctx, id)
	if err != nil {
		return nil, storeError(err, "service")
	}
	return svc, nil
}

func (s *CatalogService) ListByProvider(ctx context.Context, providerID string) ([]*models.Service, error) {
	out, err := s.store.ListServicesByProvider(ctx, providerID)
	if err != nil {
		return nil, Internal(err, "failed to list services")
	}
	return nonNil(out), nil
}

func (s *CatalogService) ListByListing(ctx context.Context, listingID string) ([]*models.Service, error) {
	out, err := s.store.ListServicesByListing(ctx, listingID)
	if err != nil {
		return nil, Internal(err, "failed to list services")
	}
	return nonNil(out), nil
}

func (s *CatalogService) owned(ctx context.Context, actor Actor, id string) (*models.Service, error) {
	svc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if svc.ProviderID != actor.ID {
		return nil, Forbidden("not your service")
	}
	return svc, nil
}

func (s *CatalogService) Update(ctx context.Context, actor Actor, id string, upd models.ServiceUpdate) (*models.Service, error) {
	svc, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	upd.Apply(svc)
	if err := s.store.UpdateService(ctx, svc); err != nil {
		return nil, storeError(err, "service")
	}
	return svc, nil
}

func (s *CatalogService) Delete(ctx context.Context, actor Actor, id string) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	if err := s.store.DeleteService(ctx, id); err != nil {
		return storeError(err, "service")
	}
	return nil
}
