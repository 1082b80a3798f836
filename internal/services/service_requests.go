package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/hanapp-ph/hanapp-backend/internal/models"
	"github.com/hanapp-ph/hanapp-backend/internal/storage"
)

type ServiceRequestService struct {
	store storage.Store
	log   *zap.Logger
}

func NewServiceRequestService(store storage.Store, logger *zap.Logger) *ServiceRequestService {
	return &ServiceRequestService{store: store, log: logger.Named("service_requests")}
}

func (s *ServiceRequestService) Create(ctx context.Context, actor Actor, in models.ServiceRequestCreate) (*models.ServiceRequest, error) {
	if !actor.IsClient() {
		return nil, Forbidden("only clients can post service requests")
	}
	req := &models.ServiceRequest{
		ClientID:      actor.ID,
		Title:         strings.TrimSpace(in.Title),
		Description:   in.Description,
		Category:      strings.TrimSpace(in.Category),
		Location:      strings.TrimSpace(in.Location),
		Budget:        in.Budget,
		PreferredDate: in.PreferredDate,
		Status:        models.RequestStatusOpen,
	}
	if err := s.store.CreateServiceRequest(ctx, req); err != nil {
		return nil, Internal(err, "failed to create service request")
	}
	return req, nil
}

func (s *ServiceRequestService) Get(ctx context.Context, id string) (*models.ServiceRequest, error) {
	req, err := s.store.GetServiceRequest(ctx, id)
	if err != nil {
		return nil, storeError(err, "service request")
	}
	return req, nil
}

// List returns open requests unless the filter names another status
func (s *ServiceRequestService) List(ctx context.Context, filter models.ServiceRequestFilter) ([]*models.ServiceRequest, error) {
	if filter.Status == "" {
		filter.Status = models.RequestStatusOpen
	}
	reqs, err := s.store.ListServiceRequests(ctx, filter)
	if err != nil {
		return nil, Internal(err, "failed to list service requests")
	}
	return nonNil(reqs), nil
}

func (s *ServiceRequestService) ListMine(ctx context.Context, actor Actor) ([]*models.ServiceRequest, error) {
	reqs, err := s.store.ListServiceRequestsByClient(ctx, actor.ID)
	if err != nil {
		return nil, Internal(err, "failed to list service requests")
	}
	return nonNil(reqs), nil
}

// owned loads a request and checks the caller posted it
func (s *ServiceRequestService) owned(ctx context.Context, actor Actor, id string) (*models.ServiceRequest, error) {
	req, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.ClientID != actor.ID {
		return nil, Forbidden("not your service request")
	}
	return req, nil
}

func (s *ServiceRequestService) Update(ctx context.Context, actor Actor, id string, upd models.ServiceRequestUpdate) (*models.ServiceRequest, error) {
	req, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	upd.Apply(req)
	if err := s.store.UpdateServiceRequest(ctx, req); err != nil {
		return nil, storeError(err, "service request")
	}
	return req, nil
}

func (s *ServiceRequestService) Delete(ctx context.Context, actor Actor, id string) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	if err := s.store.DeleteServiceRequest(ctx, id); err != nil {
		return storeError(err, "service request")
	}
	return nil
}

// nonNil keeps empty lists encoding as [] rather than null
func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
