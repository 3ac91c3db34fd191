package request

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

const requestTable = "blood_requests"

var requestColumns = []string{
	"id", "clinic_id", "blood_type", "quantity", "urgency",
	"latitude", "longitude", "notes", "required_by", "status",
	"created_at", "updated_at",
}

// requestRow flattens BloodRequest for scanning; coordinates live in two
// columns.
type requestRow struct {
	ID         string    `db:"id"`
	ClinicID   string    `db:"clinic_id"`
	BloodType  string    `db:"blood_type"`
	Quantity   int       `db:"quantity"`
	Urgency    string    `db:"urgency"`
	Latitude   float64   `db:"latitude"`
	Longitude  float64   `db:"longitude"`
	Notes      string    `db:"notes"`
	RequiredBy time.Time `db:"required_by"`
	Status     string    `db:"status"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// PostgresStore persists blood requests in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func psql() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

func (s *PostgresStore) Create(ctx context.Context, r *BloodRequest) error {
	query, args, err := psql().
		Insert(requestTable).
		Columns(requestColumns...).
		Values(
			r.ID.String(), r.ClinicID.String(), r.BloodType.String(), r.Quantity, r.Urgency.String(),
			r.Location.Latitude, r.Location.Longitude, r.Notes, r.RequiredBy, string(r.Status),
			r.CreatedAt, r.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build request insert: %w", err)
	}

	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert request: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.RequestID) (*BloodRequest, error) {
	query, args, err := psql().
		Select(requestColumns...).
		From(requestTable).
		Where(sq.Eq{"id": id.String()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build request select: %w", err)
	}

	var row requestRow
	if err := pgxscan.Get(ctx, s.pool, &row, query, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("fetch request: %w", err)
	}
	return rowToRequest(&row)
}

func (s *PostgresStore) ListByClinic(ctx context.Context, clinicID domain.ClinicID) ([]*BloodRequest, error) {
	return s.list(ctx, sq.Eq{"clinic_id": clinicID.String()})
}

func (s *PostgresStore) ListActiveBefore(ctx context.Context, deadline time.Time) ([]*BloodRequest, error) {
	return s.list(ctx, sq.And{
		sq.Eq{"status": string(StatusActive)},
		sq.LtOrEq{"required_by": deadline},
	})
}

func (s *PostgresStore) list(ctx context.Context, pred sq.Sqlizer) ([]*BloodRequest, error) {
	query, args, err := psql().
		Select(requestColumns...).
		From(requestTable).
		Where(pred).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build request list: %w", err)
	}

	var rows []*requestRow
	if err := pgxscan.Select(ctx, s.pool, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}

	out := make([]*BloodRequest, 0, len(rows))
	for _, row := range rows {
		r, err := rowToRequest(row)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Execute loads the request FOR UPDATE inside a transaction, runs validate
// and mutate, and writes the result back. The row lock serializes concurrent
// lifecycle transitions.
func (s *PostgresStore) Execute(ctx context.Context, id domain.RequestID, validate func(*BloodRequest) error, mutate func(*BloodRequest)) (*BloodRequest, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin request update: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	query, args, err := psql().
		Select(requestColumns...).
		From(requestTable).
		Where(sq.Eq{"id": id.String()}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build request lock select: %w", err)
	}

	var row requestRow
	if err := pgxscan.Get(ctx, tx, &row, query, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("lock request: %w", err)
	}

	r, err := rowToRequest(&row)
	if err != nil {
		return nil, err
	}
	if validate != nil {
		if err := validate(r); err != nil {
			return nil, err
		}
	}
	mutate(r)

	update, args, err := psql().
		Update(requestTable).
		Set("status", string(r.Status)).
		Set("updated_at", r.UpdatedAt).
		Where(sq.Eq{"id": id.String()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build request update: %w", err)
	}
	if _, err := tx.Exec(ctx, update, args...); err != nil {
		return nil, fmt.Errorf("update request: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit request update: %w", err)
	}
	return r, nil
}

func rowToRequest(row *requestRow) (*BloodRequest, error) {
	id, err := domain.ParseRequestID(row.ID)
	if err != nil {
		return nil, fmt.Errorf("stored request id %q: %w", row.ID, err)
	}
	clinicID, err := domain.ParseClinicID(row.ClinicID)
	if err != nil {
		return nil, fmt.Errorf("stored clinic id %q: %w", row.ClinicID, err)
	}
	return &BloodRequest{
		ID:         id,
		ClinicID:   clinicID,
		BloodType:  domain.BloodType(row.BloodType),
		Quantity:   row.Quantity,
		Urgency:    domain.Urgency(row.Urgency),
		Location:   domain.Coordinates{Latitude: row.Latitude, Longitude: row.Longitude},
		Notes:      row.Notes,
		RequiredBy: row.RequiredBy,
		Status:     Status(row.Status),
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}, nil
}
