package notification

import (
	"context"

	"donorlink/pkg/domain"
)

// Store persists notifications.
//
// Implementations must guarantee at most one active notification per
// (donor, request) pair; CreateIfAbsent returns sentinel.ErrConflict when a
// live one already exists. Execute runs validate and mutate atomically under
// a per-notification lock so concurrent status transitions cannot race.
type Store interface {
	CreateIfAbsent(ctx context.Context, n *Notification) error
	FindByID(ctx context.Context, id domain.NotificationID) (*Notification, error)
	ListByRequest(ctx context.Context, requestID domain.RequestID, statuses ...Status) ([]*Notification, error)
	ListByDonor(ctx context.Context, donorID domain.DonorID) ([]*Notification, error)
	Execute(ctx context.Context, id domain.NotificationID, validate func(*Notification) error, mutate func(*Notification)) (*Notification, error)
}
