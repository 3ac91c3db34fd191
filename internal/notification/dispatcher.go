package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"donorlink/internal/matching"
	"donorlink/internal/notify"
	"donorlink/internal/platform/metrics"
	"donorlink/pkg/domain"
	"donorlink/pkg/email"
	"donorlink/pkg/platform/sentinel"
	"donorlink/pkg/requestcontext"
)

// DispatchRequest is the slice of a blood request the dispatcher needs to
// compose and address donor notifications.
type DispatchRequest struct {
	RequestID  domain.RequestID
	ClinicID   domain.ClinicID
	ClinicName string
	BloodType  domain.BloodType
	Urgency    domain.Urgency
	Quantity   int
}

// Dispatcher fans a matching round out to donors. Each donor is reserved
// through the dedupe guard, recorded, and emailed; a failed send is recorded
// as failed and never aborts the round.
type Dispatcher struct {
	store    Store
	dedupe   Dedupe
	notifier notify.Notifier
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewDispatcher(store Store, dedupe Dedupe, notifier notify.Notifier, logger *slog.Logger, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{store: store, dedupe: dedupe, notifier: notifier, logger: logger, metrics: m}
}

// Dispatch notifies the matched donors about a request. Returns the number of
// notifications delivered. Donors already notified for this request are
// skipped silently.
func (d *Dispatcher) Dispatch(ctx context.Context, req DispatchRequest, matches []matching.Match) int {
	now := requestcontext.Now(ctx)
	sent := 0

	for _, m := range matches {
		reserved, err := d.dedupe.Reserve(ctx, m.Donor.ID, req.RequestID)
		if err != nil {
			d.logger.WarnContext(ctx, "notification reservation failed, proceeding",
				"donor_id", m.Donor.ID.String(), "request_id", req.RequestID.String(), "error", err)
		} else if !reserved {
			continue
		}

		n := &Notification{
			ID:        domain.NewNotificationID(),
			DonorID:   m.Donor.ID,
			ClinicID:  req.ClinicID,
			RequestID: req.RequestID,
			Email:     m.Donor.Email,
			Subject:   subjectFor(req),
			Message:   messageFor(req, m),
			Status:    StatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := d.store.CreateIfAbsent(ctx, n); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				continue
			}
			d.logger.ErrorContext(ctx, "failed to record notification",
				"donor_id", m.Donor.ID.String(), "request_id", req.RequestID.String(), "error", err)
			continue
		}

		sendErr := d.notifier.Send(ctx, n.Email, n.Subject, n.Message)
		_, err = d.store.Execute(ctx, n.ID, nil, func(current *Notification) {
			if sendErr != nil {
				current.ApplyFailed(now)
			} else {
				current.ApplySent(now)
			}
		})
		if err != nil {
			d.logger.ErrorContext(ctx, "failed to update notification status",
				"notification_id", n.ID.String(), "error", err)
		}

		if sendErr != nil {
			d.metrics.IncNotificationsFailed()
			d.logger.WarnContext(ctx, "notification send failed",
				"notification_id", n.ID.String(), "donor_id", m.Donor.ID.String(), "error", sendErr)
			continue
		}
		d.metrics.IncNotificationsSent()
		sent++
	}

	d.logger.InfoContext(ctx, "notification round complete",
		"request_id", req.RequestID.String(), "matched", len(matches), "sent", sent)
	return sent
}

func subjectFor(req DispatchRequest) string {
	return fmt.Sprintf("%s blood needed near you (%s urgency)", req.BloodType.String(), req.Urgency.String())
}

func messageFor(req DispatchRequest, m matching.Match) string {
	name := m.Donor.FullName
	if name == "" {
		name = email.DeriveDisplayName(m.Donor.Email)
	}
	return fmt.Sprintf(
		"Hello %s,\n\n%s urgently needs %d unit(s) of %s blood. "+
			"You are about %.1f km away and currently eligible to donate.\n\n"+
			"If you can help, open the app and mark yourself as interested.\n\nThank you,\nDonorLink",
		name, req.ClinicName, req.Quantity, req.BloodType.String(), m.DistanceKm,
	)
}
