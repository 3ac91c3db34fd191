package notification

import (
	"context"
	"errors"
	"log/slog"

	"donorlink/internal/audit"
	"donorlink/internal/donor"
	"donorlink/internal/platform/metrics"
	"donorlink/pkg/domain"
	dErrors "donorlink/pkg/domain-errors"
	"donorlink/pkg/platform/sentinel"
	"donorlink/pkg/requestcontext"
)

// Service handles donor and clinic responses to notifications.
type Service struct {
	notifications Store
	donors        donor.Store
	logger        *slog.Logger
	metrics       *metrics.Metrics
	audit         audit.Emitter
}

func NewService(notifications Store, donors donor.Store, logger *slog.Logger, m *metrics.Metrics, emitter audit.Emitter) *Service {
	return &Service{notifications: notifications, donors: donors, logger: logger, metrics: m, audit: emitter}
}

// MarkInterested records that the notified donor is willing to donate. Only
// the donor the notification was addressed to may respond, and only while it
// is in sent status.
func (s *Service) MarkInterested(ctx context.Context, donorID domain.DonorID, notificationID domain.NotificationID) (*Notification, error) {
	now := requestcontext.Now(ctx)

	n, err := s.notifications.Execute(ctx, notificationID,
		func(current *Notification) error {
			if current.DonorID != donorID {
				return dErrors.New(dErrors.CodeForbidden, "notification belongs to another donor")
			}
			return current.CanMarkInterested()
		},
		func(current *Notification) {
			current.ApplyInterested(now)
		},
	)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "notification not found")
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "donor marked interested",
		"notification_id", n.ID.String(), "donor_id", donorID.String(), "request_id", n.RequestID.String())
	return n, nil
}

// MarkDonated confirms that the notified donor actually donated. Only the
// clinic that owns the underlying request may confirm. The notification
// transitions first; a retry of the same confirmation then fails its
// validation before the donor is credited a second time.
func (s *Service) MarkDonated(ctx context.Context, clinicID domain.ClinicID, notificationID domain.NotificationID) (*donor.Donor, error) {
	now := requestcontext.Now(ctx)

	n, err := s.notifications.Execute(ctx, notificationID,
		func(current *Notification) error {
			if current.ClinicID != clinicID {
				return dErrors.New(dErrors.CodeForbidden, "notification belongs to another clinic's request")
			}
			return current.CanMarkDonated()
		},
		func(current *Notification) {
			current.ApplyDonated(now)
		},
	)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "notification not found")
		}
		return nil, err
	}

	d, err := s.donors.Execute(ctx, n.DonorID, nil, func(current *donor.Donor) {
		current.ApplyDonation(now)
	})
	if err != nil {
		// The notification already reads donated; surface the credit failure
		// loudly so it can be repaired.
		s.logger.ErrorContext(ctx, "donation confirmed but donor credit failed",
			"notification_id", n.ID.String(), "donor_id", n.DonorID.String(), "error", err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to credit donor")
	}

	s.metrics.IncDonationsConfirmed()
	_ = s.audit.Emit(ctx, audit.Event{
		Timestamp: now,
		ActorID:   clinicID.String(),
		ActorType: "clinic",
		Action:    audit.ActionDonationConfirmed,
		Subject:   n.RequestID.String(),
		Detail:    "donor " + n.DonorID.String(),
	})
	s.logger.InfoContext(ctx, "donation confirmed",
		"notification_id", n.ID.String(),
		"donor_id", d.ID.String(),
		"request_id", n.RequestID.String(),
		"points", d.Points,
		"total_donations", d.TotalDonations,
	)
	return d, nil
}

// ListForDonor returns the donor's notification history, newest last.
func (s *Service) ListForDonor(ctx context.Context, donorID domain.DonorID) ([]*Notification, error) {
	out, err := s.notifications.ListByDonor(ctx, donorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list notifications")
	}
	return out, nil
}
