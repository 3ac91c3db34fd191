package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"donorlink/pkg/domain"
	"donorlink/pkg/platform/sentinel"
)

const notificationTable = "notifications"

var notificationColumns = []string{
	"id", "donor_id", "clinic_id", "request_id",
	"email", "subject", "message", "status",
	"sent_at", "created_at", "updated_at",
}

type notificationRow struct {
	ID        string     `db:"id"`
	DonorID   string     `db:"donor_id"`
	ClinicID  string     `db:"clinic_id"`
	RequestID string     `db:"request_id"`
	Email     string     `db:"email"`
	Subject   string     `db:"subject"`
	Message   string     `db:"message"`
	Status    string     `db:"status"`
	SentAt    *time.Time `db:"sent_at"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
}

// PostgresStore persists notifications in PostgreSQL. The one-active-per-pair
// rule is enforced by a partial unique index on (donor_id, request_id) where
// status in ('pending', 'sent', 'interested').
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func psql() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

func (s *PostgresStore) CreateIfAbsent(ctx context.Context, n *Notification) error {
	query, args, err := psql().
		Insert(notificationTable).
		Columns(notificationColumns...).
		Values(
			n.ID.String(), n.DonorID.String(), n.ClinicID.String(), n.RequestID.String(),
			n.Email, n.Subject, n.Message, string(n.Status),
			n.SentAt, n.CreatedAt, n.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build notification insert: %w", err)
	}

	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.NotificationID) (*Notification, error) {
	query, args, err := psql().
		Select(notificationColumns...).
		From(notificationTable).
		Where(sq.Eq{"id": id.String()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build notification select: %w", err)
	}

	var row notificationRow
	if err := pgxscan.Get(ctx, s.pool, &row, query, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("fetch notification: %w", err)
	}
	return rowToNotification(&row)
}

func (s *PostgresStore) ListByRequest(ctx context.Context, requestID domain.RequestID, statuses ...Status) ([]*Notification, error) {
	pred := sq.And{sq.Eq{"request_id": requestID.String()}}
	if len(statuses) > 0 {
		values := make([]string, len(statuses))
		for i, st := range statuses {
			values[i] = string(st)
		}
		pred = append(pred, sq.Eq{"status": values})
	}
	return s.list(ctx, pred)
}

func (s *PostgresStore) ListByDonor(ctx context.Context, donorID domain.DonorID) ([]*Notification, error) {
	return s.list(ctx, sq.And{sq.Eq{"donor_id": donorID.String()}})
}

func (s *PostgresStore) list(ctx context.Context, pred sq.And) ([]*Notification, error) {
	query, args, err := psql().
		Select(notificationColumns...).
		From(notificationTable).
		Where(pred).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build notification list: %w", err)
	}

	var rows []*notificationRow
	if err := pgxscan.Select(ctx, s.pool, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	out := make([]*Notification, 0, len(rows))
	for _, row := range rows {
		n, err := rowToNotification(row)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// Execute loads the notification FOR UPDATE inside a transaction, runs
// validate and mutate, and writes the result back.
func (s *PostgresStore) Execute(ctx context.Context, id domain.NotificationID, validate func(*Notification) error, mutate func(*Notification)) (*Notification, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin notification update: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	query, args, err := psql().
		Select(notificationColumns...).
		From(notificationTable).
		Where(sq.Eq{"id": id.String()}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build notification lock select: %w", err)
	}

	var row notificationRow
	if err := pgxscan.Get(ctx, tx, &row, query, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("lock notification: %w", err)
	}

	n, err := rowToNotification(&row)
	if err != nil {
		return nil, err
	}
	if validate != nil {
		if err := validate(n); err != nil {
			return nil, err
		}
	}
	mutate(n)

	update, args, err := psql().
		Update(notificationTable).
		Set("status", string(n.Status)).
		Set("sent_at", n.SentAt).
		Set("updated_at", n.UpdatedAt).
		Where(sq.Eq{"id": id.String()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build notification update: %w", err)
	}
	if _, err := tx.Exec(ctx, update, args...); err != nil {
		return nil, fmt.Errorf("update notification: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit notification update: %w", err)
	}
	return n, nil
}

func rowToNotification(row *notificationRow) (*Notification, error) {
	id, err := domain.ParseNotificationID(row.ID)
	if err != nil {
		return nil, fmt.Errorf("stored notification id %q: %w", row.ID, err)
	}
	donorID, err := domain.ParseDonorID(row.DonorID)
	if err != nil {
		return nil, fmt.Errorf("stored donor id %q: %w", row.DonorID, err)
	}
	clinicID, err := domain.ParseClinicID(row.ClinicID)
	if err != nil {
		return nil, fmt.Errorf("stored clinic id %q: %w", row.ClinicID, err)
	}
	requestID, err := domain.ParseRequestID(row.RequestID)
	if err != nil {
		return nil, fmt.Errorf("stored request id %q: %w", row.RequestID, err)
	}
	return &Notification{
		ID:        id,
		DonorID:   donorID,
		ClinicID:  clinicID,
		RequestID: requestID,
		Email:     row.Email,
		Subject:   row.Subject,
		Message:   row.Message,
		Status:    Status(row.Status),
		SentAt:    row.SentAt,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}
