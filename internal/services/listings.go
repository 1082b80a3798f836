package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/hanapp-ph/hanapp-backend/internal/models"
	"github.com/hanapp-ph/hanapp-backend/internal/storage"
)

type ListingService struct {
	store storage.Store
	log   *zap.Logger
}

func NewListingService(store storage.Store, logger *zap.Logger) *ListingService {
	return &ListingService{store: store, log: logger.Named("listings")}
}

func (s *ListingService) Create(ctx context.Context, actor Actor, in models.ListingCreate) (*models.ServiceListing, error) {
	if !actor.IsProvider() {
		return nil, Forbidden("only providers can publish listings")
	}
	rateType := in.RateType
	if rateType == "" {
		rateType = models.RateTypeFixed
	}
	listing := &models.ServiceListing{
		ProviderID:  actor.ID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Category:    strings.TrimSpace(in.Category),
		Location:    strings.TrimSpace(in.Location),
		Rate:        in.Rate,
		RateType:    rateType,
		IsActive:    true,
	}
	if err := s.store.CreateListing(ctx, listing); err != nil {
		return nil, Internal(err, "failed to create listing")
	}
	return listing, nil
}

func (s *ListingService) Get(ctx context.Context, id string) (*models.ServiceListing, error) {
	l, err := s.store.GetListing(ctx, id)
	if err != nil {
		return nil, storeError(err, "listing")
	}
	return l, nil
}

func (s *ListingService) ListActive(ctx context.Context, category string) ([]*models.ServiceListing, error) {
	ls, err := s.store.ListActiveListings(ctx, strings.TrimSpace(category))
	if err != nil {
		return nil, Internal(err, "failed to list listings")
	}
	return nonNil(ls), nil
}

func (s *ListingService) ListMine(ctx context.Context, actor Actor) ([]*models.ServiceListing, error) {
	ls, err := s.store.ListListingsByProvider(ctx, actor.ID)
	if err != nil {
		return nil, Internal(err, "failed to list listings")
	}
	return nonNil(ls), nil
}

func (s *ListingService) owned(ctx context.Context, actor Actor, id string) (*models.ServiceListing, error) {
	l, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.ProviderID != actor.ID {
		return nil, Forbidden("not your listing")
	}
	return l, nil
}

func (s *ListingService) Update(ctx context.Context, actor Actor, id string, upd models.ListingUpdate) (*models.ServiceListing, error) {
	l, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	upd.Apply(l)
	if err := s.store.UpdateListing(ctx, l); err != nil {
		return nil, storeError(err, "listing")
	}
	return l, nil
}

func (s *ListingService) Delete(ctx context.Context, actor Actor, id string) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	if err := s.store.DeleteListing(ctx, id); err != nil {
		return storeError(err, "listing")
	}
	return nil
}
