package request

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"donorlink/internal/audit"
	"donorlink/internal/clinic"
	"donorlink/internal/matching"
	"donorlink/internal/notification"
	"donorlink/internal/notify"
	"donorlink/internal/platform/metrics"
	"donorlink/pkg/domain"
	dErrors "donorlink/pkg/domain-errors"
	"donorlink/pkg/email"
	"donorlink/pkg/platform/sentinel"
	"donorlink/pkg/requestcontext"
)

// cancelFanOutLimit caps concurrent cancellation emails per request.
const cancelFanOutLimit = 8

// Service drives the blood request lifecycle: creation with its matching and
// notification round, clinic-initiated cancellation and fulfillment, and
// deadline expiry.
type Service struct {
	requests      Store
	clinics       clinic.Store
	notifications notification.Store
	engine        *matching.Engine
	dispatcher    *notification.Dispatcher
	notifier      notify.Notifier
	logger        *slog.Logger
	metrics       *metrics.Metrics
	audit         audit.Emitter
}

func NewService(
	requests Store,
	clinics clinic.Store,
	notifications notification.Store,
	engine *matching.Engine,
	dispatcher *notification.Dispatcher,
	notifier notify.Notifier,
	logger *slog.Logger,
	m *metrics.Metrics,
	emitter audit.Emitter,
) *Service {
	return &Service{
		requests:      requests,
		clinics:       clinics,
		notifications: notifications,
		engine:        engine,
		dispatcher:    dispatcher,
		notifier:      notifier,
		logger:        logger,
		metrics:       m,
		audit:         emitter,
	}
}

// CreateInput carries the clinic's new request fields.
type CreateInput struct {
	BloodType  domain.BloodType
	Quantity   int
	Urgency    domain.Urgency
	Location   domain.Coordinates
	Notes      string
	RequiredBy time.Time
}

// CreateResult reports the persisted request along with the outcome of its
// notification round.
type CreateResult struct {
	Request       *BloodRequest `json:"request"`
	MatchedDonors int           `json:"matched_donors"`
	Notified      int           `json:"notified"`
}

// Create persists a request and runs a matching round for it. The request is
// committed before donors are contacted; a failed notification round leaves
// the request in place and is reported in the result, not as an error.
func (s *Service) Create(ctx context.Context, clinicID domain.ClinicID, in CreateInput) (*CreateResult, error) {
	now := requestcontext.Now(ctx)

	owner, err := s.clinics.FindByID(ctx, clinicID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "clinic not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load clinic")
	}

	r, err := NewBloodRequest(domain.NewRequestID(), clinicID, in.BloodType, in.Quantity, in.Urgency, in.Location, in.Notes, in.RequiredBy, now)
	if err != nil {
		return nil, err
	}
	if err := s.requests.Create(ctx, r); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create request")
	}

	s.metrics.IncRequestsCreated()
	_ = s.audit.Emit(ctx, audit.Event{
		Timestamp: now,
		ActorID:   clinicID.String(),
		ActorType: "clinic",
		Action:    audit.ActionRequestCreated,
		Subject:   r.ID.String(),
		Detail:    fmt.Sprintf("%s x%d %s", r.BloodType.String(), r.Quantity, r.Urgency.String()),
	})

	matches, err := s.engine.FindEligibleDonors(ctx, matching.MatchRequest{
		BloodType: r.BloodType,
		Location:  r.Location,
		Urgency:   r.Urgency,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "matching round failed, request stays active",
			"request_id", r.ID.String(), "error", err)
		return &CreateResult{Request: r}, nil
	}

	sent := s.dispatcher.Dispatch(ctx, notification.DispatchRequest{
		RequestID:  r.ID,
		ClinicID:   clinicID,
		ClinicName: owner.Name,
		BloodType:  r.BloodType,
		Urgency:    r.Urgency,
		Quantity:   r.Quantity,
	}, matches)

	s.logger.InfoContext(ctx, "blood request created",
		"request_id", r.ID.String(),
		"clinic_id", clinicID.String(),
		"blood_type", r.BloodType.String(),
		"urgency", r.Urgency.String(),
		"matched", len(matches),
		"notified", sent,
	)
	return &CreateResult{Request: r, MatchedDonors: len(matches), Notified: sent}, nil
}

// Cancel withdraws an active request. Only the owning clinic may cancel.
// Donors who were already contacted are told the request is off; every open
// notification for the request is closed as failed even when that email
// cannot be delivered.
func (s *Service) Cancel(ctx context.Context, clinicID domain.ClinicID, requestID domain.RequestID) (*BloodRequest, error) {
	now := requestcontext.Now(ctx)

	r, err := s.requests.Execute(ctx, requestID,
		func(current *BloodRequest) error {
			if current.ClinicID != clinicID {
				return dErrors.New(dErrors.CodeForbidden, "request belongs to another clinic")
			}
			return current.CanCancel()
		},
		func(current *BloodRequest) {
			current.ApplyCancel(now)
		},
	)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "request not found")
		}
		return nil, err
	}

	s.metrics.IncRequestsCancelled()
	_ = s.audit.Emit(ctx, audit.Event{
		Timestamp: now,
		ActorID:   clinicID.String(),
		ActorType: "clinic",
		Action:    audit.ActionRequestCancelled,
		Subject:   requestID.String(),
	})

	s.closeOpenNotifications(ctx, r, now)

	s.logger.InfoContext(ctx, "blood request cancelled",
		"request_id", requestID.String(), "clinic_id", clinicID.String())
	return r, nil
}

// closeOpenNotifications tells contacted donors the request is withdrawn and
// closes their notifications. Best-effort: a failed email or status update is
// logged and the loop moves on.
func (s *Service) closeOpenNotifications(ctx context.Context, r *BloodRequest, now time.Time) {
	open, err := s.notifications.ListByRequest(ctx, r.ID,
		notification.StatusSent, notification.StatusInterested)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list notifications for cancelled request",
			"request_id", r.ID.String(), "error", err)
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cancelFanOutLimit)
	for _, n := range open {
		n := n
		g.Go(func() error {
			subject := fmt.Sprintf("%s blood request withdrawn", r.BloodType.String())
			body := fmt.Sprintf(
				"Hello %s,\n\nThe %s blood request you were contacted about has been withdrawn by the clinic. "+
					"No action is needed.\n\nThank you,\nDonorLink",
				email.DeriveDisplayName(n.Email), r.BloodType.String(),
			)
			if err := s.notifier.Send(gctx, n.Email, subject, body); err != nil {
				s.logger.WarnContext(gctx, "cancellation email failed",
					"notification_id", n.ID.String(), "error", err)
			}
			if _, err := s.notifications.Execute(gctx, n.ID, nil, func(current *notification.Notification) {
				current.ApplyFailed(now)
			}); err != nil {
				s.logger.ErrorContext(gctx, "failed to close notification",
					"notification_id", n.ID.String(), "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// MarkFulfilled closes an active request as satisfied. Only the owning clinic
// may do so.
func (s *Service) MarkFulfilled(ctx context.Context, clinicID domain.ClinicID, requestID domain.RequestID) (*BloodRequest, error) {
	now := requestcontext.Now(ctx)

	r, err := s.requests.Execute(ctx, requestID,
		func(current *BloodRequest) error {
			if current.ClinicID != clinicID {
				return dErrors.New(dErrors.CodeForbidden, "request belongs to another clinic")
			}
			return current.CanFulfill()
		},
		func(current *BloodRequest) {
			current.ApplyFulfill(now)
		},
	)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "request not found")
		}
		return nil, err
	}

	_ = s.audit.Emit(ctx, audit.Event{
		Timestamp: now,
		ActorID:   clinicID.String(),
		ActorType: "clinic",
		Action:    audit.ActionRequestFulfilled,
		Subject:   requestID.String(),
	})
	s.logger.InfoContext(ctx, "blood request fulfilled",
		"request_id", requestID.String(), "clinic_id", clinicID.String())
	return r, nil
}

// ExpireOverdue sweeps active requests whose deadline has passed and marks
// them expired. Returns how many were expired. Meant to run periodically.
func (s *Service) ExpireOverdue(ctx context.Context) (int, error) {
	now := requestcontext.Now(ctx)

	overdue, err := s.requests.ListActiveBefore(ctx, now)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list overdue requests")
	}

	expired := 0
	for _, r := range overdue {
		_, err := s.requests.Execute(ctx, r.ID,
			func(current *BloodRequest) error { return current.CanExpire(now) },
			func(current *BloodRequest) { current.ApplyExpire(now) },
		)
		if err != nil {
			// Lost the race to another transition; that is fine.
			if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
				continue
			}
			s.logger.ErrorContext(ctx, "failed to expire request",
				"request_id", r.ID.String(), "error", err)
			continue
		}
		expired++
		_ = s.audit.Emit(ctx, audit.Event{
			Timestamp: now,
			ActorType: "system",
			Action:    audit.ActionRequestExpired,
			Subject:   r.ID.String(),
		})
	}
	if expired > 0 {
		s.logger.InfoContext(ctx, "expired overdue requests", "count", expired)
	}
	return expired, nil
}

// Get returns one of the clinic's requests.
func (s *Service) Get(ctx context.Context, clinicID domain.ClinicID, requestID domain.RequestID) (*BloodRequest, error) {
	r, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "request not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load request")
	}
	if r.ClinicID != clinicID {
		return nil, dErrors.New(dErrors.CodeForbidden, "request belongs to another clinic")
	}
	return r, nil
}

// ListForClinic returns all of the clinic's requests.
func (s *Service) ListForClinic(ctx context.Context, clinicID domain.ClinicID) ([]*BloodRequest, error) {
	out, err := s.requests.ListByClinic(ctx, clinicID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list requests")
	}
	return out, nil
}

// Matches re-runs the matching round for an active request so the clinic can
// inspect the current candidate list without sending anything.
func (s *Service) Matches(ctx context.Context, clinicID domain.ClinicID, requestID domain.RequestID) ([]matching.Match, error) {
	r, err := s.Get(ctx, clinicID, requestID)
	if err != nil {
		return nil, err
	}
	if r.Status != StatusActive {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "request is not active")
	}
	return s.engine.FindEligibleDonors(ctx, matching.MatchRequest{
		BloodType: r.BloodType,
		Location:  r.Location,
		Urgency:   r.Urgency,
	})
}
