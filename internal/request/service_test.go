package request

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"donorlink/internal/audit"
	"donorlink/internal/clinic"
	"donorlink/internal/donor"
	"donorlink/internal/matching"
	"donorlink/internal/notification"
	"donorlink/pkg/domain"
	dErrors "donorlink/pkg/domain-errors"
	"donorlink/pkg/requestcontext"
)

// fakeNotifier is safe for concurrent sends; cancellation fans out across
// goroutines.
type fakeNotifier struct {
	mu      sync.Mutex
	sent    []string
	failFor map[string]error
}

func (f *fakeNotifier) Send(ctx context.Context, recipientEmail, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[recipientEmail]; ok {
		return err
	}
	f.sent = append(f.sent, recipientEmail)
	return nil
}

func (f *fakeNotifier) reset(failFor map[string]error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
	f.failFor = failFor
}

func (f *fakeNotifier) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fixture struct {
	svc           *Service
	clinic        *clinic.Clinic
	donors        *donor.InMemoryStore
	notifications *notification.InMemoryStore
	notifier      *fakeNotifier
	trail         *audit.InMemoryStore
}

var testNow = time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

func clinicLocation(t *testing.T) domain.Coordinates {
	t.Helper()
	loc, err := domain.NewCoordinates(25.2, 55.3)
	require.NoError(t, err)
	return loc
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	clinics := clinic.NewInMemoryStore()
	c, err := clinic.NewClinic(domain.NewClinicID(), "City Hospital", "desk@cityhospital.example",
		"+97142223333", "DXB-001", "hash", clinicLocation(t), testNow)
	require.NoError(t, err)
	require.NoError(t, clinics.Create(ctx, c))

	donors := donor.NewInMemoryStore()
	notifications := notification.NewInMemoryStore()
	notifier := &fakeNotifier{}
	trail := audit.NewInMemoryStore()

	engine := matching.NewEngine(donors, logger, nil)
	dispatcher := notification.NewDispatcher(notifications, notification.NewLocalDedupe(), notifier, logger, nil)
	svc := NewService(NewInMemoryStore(), clinics, notifications, engine, dispatcher,
		notifier, logger, nil, audit.NewPublisher(trail))

	return &fixture{svc: svc, clinic: c, donors: donors, notifications: notifications, notifier: notifier, trail: trail}
}

func (f *fixture) seedDonor(t *testing.T, emailAddr string, bloodType domain.BloodType) *donor.Donor {
	t.Helper()
	d, err := donor.NewDonor(domain.NewDonorID(), "Seed Donor", emailAddr, "+971500000000",
		bloodType, clinicLocation(t), testNow.Add(-24*time.Hour))
	require.NoError(t, err)
	require.NoError(t, f.donors.Create(context.Background(), d))
	return d
}

func validCreateInput(t *testing.T) CreateInput {
	t.Helper()
	return CreateInput{
		BloodType:  domain.BloodAPos,
		Quantity:   2,
		Urgency:    domain.UrgencyHigh,
		Location:   clinicLocation(t),
		RequiredBy: testNow.Add(48 * time.Hour),
	}
}

func TestCreate(t *testing.T) {
	ctx := requestcontext.WithTime(context.Background(), testNow)

	t.Run("creates, matches, and notifies compatible donors", func(t *testing.T) {
		f := newFixture(t)
		f.seedDonor(t, "match.one@example.com", domain.BloodONeg)
		f.seedDonor(t, "match.two@example.com", domain.BloodAPos)
		f.seedDonor(t, "no.match@example.com", domain.BloodBNeg)

		res, err := f.svc.Create(ctx, f.clinic.ID, validCreateInput(t))
		require.NoError(t, err)
		assert.Equal(t, StatusActive, res.Request.Status)
		assert.Equal(t, 2, res.MatchedDonors)
		assert.Equal(t, 2, res.Notified)
		assert.Len(t, f.notifier.sent, 2)

		events, err := f.trail.ListBySubject(ctx, res.Request.ID.String())
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, audit.ActionRequestCreated, events[0].Action)
	})

	t.Run("no matches is still a successful create", func(t *testing.T) {
		f := newFixture(t)
		res, err := f.svc.Create(ctx, f.clinic.ID, validCreateInput(t))
		require.NoError(t, err)
		assert.Equal(t, StatusActive, res.Request.Status)
		assert.Zero(t, res.MatchedDonors)
		assert.Zero(t, res.Notified)
	})

	t.Run("unknown clinic is rejected", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Create(ctx, domain.NewClinicID(), validCreateInput(t))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("invalid input never reaches the store", func(t *testing.T) {
		f := newFixture(t)
		in := validCreateInput(t)
		in.Quantity = 0
		_, err := f.svc.Create(ctx, f.clinic.ID, in)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestCancel(t *testing.T) {
	ctx := requestcontext.WithTime(context.Background(), testNow)

	t.Run("notifies contacted donors and closes their notifications", func(t *testing.T) {
		f := newFixture(t)
		f.seedDonor(t, "contacted.one@example.com", domain.BloodAPos)
		f.seedDonor(t, "contacted.two@example.com", domain.BloodAPos)
		res, err := f.svc.Create(ctx, f.clinic.ID, validCreateInput(t))
		require.NoError(t, err)
		f.notifier.reset(nil)

		cancelled, err := f.svc.Cancel(ctx, f.clinic.ID, res.Request.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, cancelled.Status)
		assert.Equal(t, 2, f.notifier.sentCount())

		open, err := f.notifications.ListByRequest(ctx, res.Request.ID, notification.ActiveStatuses...)
		require.NoError(t, err)
		assert.Empty(t, open)
	})

	t.Run("one failing email does not stop the fan-out", func(t *testing.T) {
		f := newFixture(t)
		f.seedDonor(t, "reachable@example.com", domain.BloodAPos)
		f.seedDonor(t, "unreachable@example.com", domain.BloodAPos)
		res, err := f.svc.Create(ctx, f.clinic.ID, validCreateInput(t))
		require.NoError(t, err)

		f.notifier.reset(map[string]error{"unreachable@example.com": errors.New("mailbox gone")})
		_, err = f.svc.Cancel(ctx, f.clinic.ID, res.Request.ID)
		require.NoError(t, err)

		// Both notifications end up closed regardless of delivery.
		failed, err := f.notifications.ListByRequest(ctx, res.Request.ID, notification.StatusFailed)
		require.NoError(t, err)
		assert.Len(t, failed, 2)
	})

	t.Run("only the owning clinic may cancel", func(t *testing.T) {
		f := newFixture(t)
		res, err := f.svc.Create(ctx, f.clinic.ID, validCreateInput(t))
		require.NoError(t, err)

		_, err = f.svc.Cancel(ctx, domain.NewClinicID(), res.Request.ID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))

		kept, err := f.svc.Get(ctx, f.clinic.ID, res.Request.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusActive, kept.Status)
	})

	t.Run("cancelling twice fails the second time", func(t *testing.T) {
		f := newFixture(t)
		res, err := f.svc.Create(ctx, f.clinic.ID, validCreateInput(t))
		require.NoError(t, err)

		_, err = f.svc.Cancel(ctx, f.clinic.ID, res.Request.ID)
		require.NoError(t, err)
		_, err = f.svc.Cancel(ctx, f.clinic.ID, res.Request.ID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestMarkFulfilled(t *testing.T) {
	ctx := requestcontext.WithTime(context.Background(), testNow)

	f := newFixture(t)
	res, err := f.svc.Create(ctx, f.clinic.ID, validCreateInput(t))
	require.NoError(t, err)

	fulfilled, err := f.svc.MarkFulfilled(ctx, f.clinic.ID, res.Request.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFulfilled, fulfilled.Status)

	_, err = f.svc.Cancel(ctx, f.clinic.ID, res.Request.ID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func TestExpireOverdue(t *testing.T) {
	ctx := requestcontext.WithTime(context.Background(), testNow)

	f := newFixture(t)
	var overdueIDs []domain.RequestID
	for i := 0; i < 2; i++ {
		in := validCreateInput(t)
		in.RequiredBy = testNow.Add(time.Duration(i+1) * time.Hour)
		res, err := f.svc.Create(ctx, f.clinic.ID, in)
		require.NoError(t, err)
		overdueIDs = append(overdueIDs, res.Request.ID)
	}
	future, err := f.svc.Create(ctx, f.clinic.ID, validCreateInput(t))
	require.NoError(t, err)

	later := requestcontext.WithTime(context.Background(), testNow.Add(3*time.Hour))
	expired, err := f.svc.ExpireOverdue(later)
	require.NoError(t, err)
	assert.Equal(t, 2, expired)

	for _, id := range overdueIDs {
		r, err := f.svc.Get(later, f.clinic.ID, id)
		require.NoError(t, err)
		assert.Equal(t, StatusExpired, r.Status, fmt.Sprintf("request %s", id))
	}
	kept, err := f.svc.Get(later, f.clinic.ID, future.Request.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, kept.Status)

	again, err := f.svc.ExpireOverdue(later)
	require.NoError(t, err)
	assert.Zero(t, again)
}
