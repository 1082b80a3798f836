package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/hanapp-ph/hanapp-backend/internal/events"
	"github.com/hanapp-ph/hanapp-backend/internal/models"
	"github.com/hanapp-ph/hanapp-backend/internal/storage"
)

type JobApplicationService struct {
	store storage.Store
	pub   events.Publisher
	log   *zap.Logger
}

func NewJobApplicationService(store storage.Store, pub events.Publisher, logger *zap.Logger) *JobApplicationService {
	return &JobApplicationService{store: store, pub: pub, log: logger.Named("job_applications")}
}

// Apply submits the provider's bid on an open request. A provider applies at most once per request.
func (s *JobApplicationService) Apply(ctx context.Context, actor Actor, in models.JobApplicationCreate) (*models.JobApplication, error) {
	if !actor.IsProvider() {
		return nil, Forbidden("only providers can apply to service requests")
	}

	req, err := s.store.GetServiceRequest(ctx, in.RequestID)
	if err != nil {
		return nil, storeError(err, "service request")
	}
	if req.Status != models.RequestStatusOpen {
		return nil, BadRequest("service request is not open for applications")
	}
	if req.ClientID == actor.ID {
		return nil, BadRequest("cannot apply to your own service request")
	}

	applied, err := s.store.HasApplied(ctx, req.ID, actor.ID)
	if err != nil {
		return nil, Internal(err, "failed to check existing application")
	}
	if applied {
		return nil, Conflict("you have already applied to this service request")
	}

	app := &models.JobApplication{
		RequestID:     req.ID,
		ProviderID:    actor.ID,
		ClientID:      req.ClientID,
		CoverLetter:   in.CoverLetter,
		ProposedPrice: in.ProposedPrice,
		Status:        models.ApplicationStatusPending,
	}
	if err := s.store.CreateJobApplication(ctx, app); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, Conflict("you have already applied to this service request")
		}
		return nil, Internal(err, "failed to submit application")
	}
	app.Request = req

	publish(ctx, s.log, s.pub, events.JobApplicationCreated, app.ID, app)
	return app, nil
}

// ListSent returns the provider's own applications
func (s *JobApplicationService) ListSent(ctx context.Context, actor Actor) ([]*models.JobApplication, error) {
	apps, err := s.store.ListApplicationsByProvider(ctx, actor.ID)
	if err != nil {
		return nil, Internal(err, "failed to list applications")
	}
	return nonNil(apps), nil
}

// ListReceived returns applications to the client's requests with applicant profiles attached
func (s *JobApplicationService) ListReceived(ctx context.Context, actor Actor) ([]*models.JobApplication, error) {
	apps, err := s.store.ListApplicationsByClient(ctx, actor.ID)
	if err != nil {
		return nil, Internal(err, "failed to list applications")
	}
	if len(apps) == 0 {
		return nonNil(apps), nil
	}

	ids := make([]string, 0, len(apps))
	seen := make(map[string]bool, len(apps))
	for _, a := range apps {
		if !seen[a.ProviderID] {
			seen[a.ProviderID] = true
			ids = append(ids, a.ProviderID)
		}
	}
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, Internal(err, "failed to load applicants")
	}
	profiles := make(map[string]models.PublicProfile, len(users))
	for _, u := range users {
		profiles[u.ID] = u.Public()
	}
	for _, a := range apps {
		if p, ok := profiles[a.ProviderID]; ok {
			p := p
			a.Provider = &p
		}
	}
	return apps, nil
}

// UpdateStatus moves a pending application. The request owner accepts or
// rejects; the applicant withdraws. Accepting puts the request in progress.
func (s *JobApplicationService) UpdateStatus(ctx context.Context, actor Actor, id, status string) (*models.JobApplication, error) {
	app, err := s.store.GetJobApplication(ctx, id)
	if err != nil {
		return nil, storeError(err, "job application")
	}

	switch status {
	case models.ApplicationStatusAccepted, models.ApplicationStatusRejected:
		if app.ClientID != actor.ID {
			return nil, Forbidden("only the request owner can %s an application", verbFor(status))
		}
	case models.ApplicationStatusWithdrawn:
		if app.ProviderID != actor.ID {
			return nil, Forbidden("only the applicant can withdraw an application")
		}
	default:
		return nil, BadRequest("unsupported status %q", status)
	}

	if app.Status != models.ApplicationStatusPending {
		return nil, BadRequest("application is already %s", app.Status)
	}

	if err := s.store.UpdateApplicationStatus(ctx, id, status); err != nil {
		return nil, storeError(err, "job application")
	}
	app.Status = status

	if status == models.ApplicationStatusAccepted {
		if err := s.store.UpdateServiceRequestStatus(ctx, app.RequestID, models.RequestStatusInProgress); err != nil {
			return nil, Internal(err, "application accepted but failed to update service request")
		}
		if app.Request != nil {
			app.Request.Status = models.RequestStatusInProgress
		}
	}

	publish(ctx, s.log, s.pub, events.JobApplicationStatusChanged, app.ID, map[string]string{
		"id":         app.ID,
		"request_id": app.RequestID,
		"status":     status,
	})
	return app, nil
}

func verbFor(status string) string {
	if status == models.ApplicationStatusAccepted {
		return "accept"
	}
	return "reject"
}
