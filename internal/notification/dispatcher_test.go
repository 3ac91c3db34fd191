package notification

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"donorlink/internal/donor"
	"donorlink/internal/matching"
	"donorlink/pkg/domain"
	"donorlink/pkg/requestcontext"
)

type captureNotifier struct {
	sent    []string
	failFor map[string]error
}

func (c *captureNotifier) Send(ctx context.Context, recipientEmail, subject, body string) error {
	if err, ok := c.failFor[recipientEmail]; ok {
		return err
	}
	c.sent = append(c.sent, recipientEmail)
	return nil
}

func testMatch(t *testing.T, emailAddr string) matching.Match {
	t.Helper()
	loc, err := domain.NewCoordinates(25.2, 55.3)
	require.NoError(t, err)
	return matching.Match{
		Donor: &donor.Donor{
			ID:        domain.NewDonorID(),
			FullName:  "Test Donor",
			Email:     emailAddr,
			BloodType: domain.BloodONeg,
			Location:  loc,
		},
		DistanceKm: 4.2,
	}
}

func testDispatchRequest() DispatchRequest {
	return DispatchRequest{
		RequestID:  domain.NewRequestID(),
		ClinicID:   domain.NewClinicID(),
		ClinicName: "City Hospital",
		BloodType:  domain.BloodAPos,
		Urgency:    domain.UrgencyHigh,
		Quantity:   2,
	}
}

func TestDispatch(t *testing.T) {
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("delivers and records sent", func(t *testing.T) {
		store := NewInMemoryStore()
		notifier := &captureNotifier{}
		d := NewDispatcher(store, NewLocalDedupe(), notifier, logger, nil)

		req := testDispatchRequest()
		sent := d.Dispatch(ctx, req, []matching.Match{
			testMatch(t, "first@example.com"),
			testMatch(t, "second@example.com"),
		})
		assert.Equal(t, 2, sent)
		assert.Equal(t, []string{"first@example.com", "second@example.com"}, notifier.sent)

		recorded, err := store.ListByRequest(ctx, req.RequestID)
		require.NoError(t, err)
		require.Len(t, recorded, 2)
		for _, n := range recorded {
			assert.Equal(t, StatusSent, n.Status)
			require.NotNil(t, n.SentAt)
			assert.Equal(t, now, *n.SentAt)
			assert.Contains(t, n.Message, "City Hospital")
			assert.Contains(t, n.Message, "A+")
		}
	})

	t.Run("send failure records failed and does not abort the round", func(t *testing.T) {
		store := NewInMemoryStore()
		notifier := &captureNotifier{failFor: map[string]error{
			"broken@example.com": errors.New("smtp down"),
		}}
		d := NewDispatcher(store, NewLocalDedupe(), notifier, logger, nil)

		req := testDispatchRequest()
		sent := d.Dispatch(ctx, req, []matching.Match{
			testMatch(t, "broken@example.com"),
			testMatch(t, "fine@example.com"),
		})
		assert.Equal(t, 1, sent)

		failed, err := store.ListByRequest(ctx, req.RequestID, StatusFailed)
		require.NoError(t, err)
		require.Len(t, failed, 1)
		assert.Equal(t, "broken@example.com", failed[0].Email)
	})

	t.Run("repeat dispatch skips already reserved donors", func(t *testing.T) {
		store := NewInMemoryStore()
		notifier := &captureNotifier{}
		d := NewDispatcher(store, NewLocalDedupe(), notifier, logger, nil)

		req := testDispatchRequest()
		m := testMatch(t, "once@example.com")
		assert.Equal(t, 1, d.Dispatch(ctx, req, []matching.Match{m}))
		assert.Equal(t, 0, d.Dispatch(ctx, req, []matching.Match{m}))
		assert.Len(t, notifier.sent, 1)
	})

	t.Run("store uniqueness backstops the dedupe guard", func(t *testing.T) {
		store := NewInMemoryStore()
		notifier := &captureNotifier{}
		m := testMatch(t, "twice@example.com")
		req := testDispatchRequest()

		// Fresh dedupe per dispatcher simulates two instances racing without
		// a shared Redis; the store conflict must still hold the line.
		first := NewDispatcher(store, NewLocalDedupe(), notifier, logger, nil)
		second := NewDispatcher(store, NewLocalDedupe(), notifier, logger, nil)
		assert.Equal(t, 1, first.Dispatch(ctx, req, []matching.Match{m}))
		assert.Equal(t, 0, second.Dispatch(ctx, req, []matching.Match{m}))
		assert.Len(t, notifier.sent, 1)
	})
}
