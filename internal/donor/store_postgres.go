package donor

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

const donorTable = "donors"

var donorColumns = []string{
	"id", "full_name", "email", "phone", "blood_type",
	"latitude", "longitude", "last_donation", "eligible_to_donate_since",
	"total_donations", "points", "health_status", "created_at", "updated_at",
}

// donorRow flattens Donor for scanning; coordinates live in two columns.
type donorRow struct {
	ID                    string       `db:"id"`
	FullName              string       `db:"full_name"`
	Email                 string       `db:"email"`
	Phone                 string       `db:"phone"`
	BloodType             string       `db:"blood_type"`
	Latitude              float64      `db:"latitude"`
	Longitude             float64      `db:"longitude"`
	LastDonation          *time.Time   `db:"last_donation"`
	EligibleToDonateSince *time.Time   `db:"eligible_to_donate_since"`
	TotalDonations        int          `db:"total_donations"`
	Points                int          `db:"points"`
	HealthStatus          string       `db:"health_status"`
	CreatedAt             time.Time    `db:"created_at"`
	UpdatedAt             time.Time    `db:"updated_at"`
}

// PostgresStore persists donors in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func psql() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

func (s *PostgresStore) Create(ctx context.Context, d *Donor) error {
	query, args, err := psql().
		Insert(donorTable).
		Columns(donorColumns...).
		Values(
			d.ID.String(), d.FullName, emailKey(d.Email), d.Phone, d.BloodType.String(),
			d.Location.Latitude, d.Location.Longitude, d.LastDonation, d.EligibleToDonateSince,
			d.TotalDonations, d.Points, string(d.HealthStatus), d.CreatedAt, d.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build donor insert: %w", err)
	}

	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert donor: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.DonorID) (*Donor, error) {
	return s.findOne(ctx, sq.Eq{"id": id.String()})
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*Donor, error) {
	return s.findOne(ctx, sq.Eq{"email": emailKey(email)})
}

func (s *PostgresStore) findOne(ctx context.Context, pred sq.Eq) (*Donor, error) {
	query, args, err := psql().
		Select(donorColumns...).
		From(donorTable).
		Where(pred).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build donor select: %w", err)
	}

	var row donorRow
	if err := pgxscan.Get(ctx, s.pool, &row, query, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("fetch donor: %w", err)
	}
	return rowToDonor(&row)
}

func (s *PostgresStore) List(ctx context.Context) ([]*Donor, error) {
	query, args, err := psql().
		Select(donorColumns...).
		From(donorTable).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build donor list: %w", err)
	}

	var rows []*donorRow
	if err := pgxscan.Select(ctx, s.pool, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list donors: %w", err)
	}

	out := make([]*Donor, 0, len(rows))
	for _, row := range rows {
		d, err := rowToDonor(row)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// Execute loads the donor FOR UPDATE inside a transaction, runs validate and
// mutate, and writes the result back. The row lock is held across both
// callbacks, which is what makes concurrent donation confirmations safe.
func (s *PostgresStore) Execute(ctx context.Context, id domain.DonorID, validate func(*Donor) error, mutate func(*Donor)) (*Donor, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin donor update: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	query, args, err := psql().
		Select(donorColumns...).
		From(donorTable).
		Where(sq.Eq{"id": id.String()}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build donor lock select: %w", err)
	}

	var row donorRow
	if err := pgxscan.Get(ctx, tx, &row, query, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("lock donor: %w", err)
	}

	d, err := rowToDonor(&row)
	if err != nil {
		return nil, err
	}
	if validate != nil {
		if err := validate(d); err != nil {
			return nil, err
		}
	}
	mutate(d)

	update, args, err := psql().
		Update(donorTable).
		Set("full_name", d.FullName).
		Set("phone", d.Phone).
		Set("blood_type", d.BloodType.String()).
		Set("latitude", d.Location.Latitude).
		Set("longitude", d.Location.Longitude).
		Set("last_donation", d.LastDonation).
		Set("eligible_to_donate_since", d.EligibleToDonateSince).
		Set("total_donations", d.TotalDonations).
		Set("points", d.Points).
		Set("health_status", string(d.HealthStatus)).
		Set("updated_at", d.UpdatedAt).
		Where(sq.Eq{"id": id.String()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build donor update: %w", err)
	}
	if _, err := tx.Exec(ctx, update, args...); err != nil {
		return nil, fmt.Errorf("update donor: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit donor update: %w", err)
	}
	return d, nil
}

func rowToDonor(row *donorRow) (*Donor, error) {
	id, err := domain.ParseDonorID(row.ID)
	if err != nil {
		return nil, fmt.Errorf("stored donor id %q: %w", row.ID, err)
	}
	return &Donor{
		ID:                    id,
		FullName:              row.FullName,
		Email:                 row.Email,
		Phone:                 row.Phone,
		BloodType:             domain.BloodType(row.BloodType),
		Location:              domain.Coordinates{Latitude: row.Latitude, Longitude: row.Longitude},
		LastDonation:          row.LastDonation,
		EligibleToDonateSince: row.EligibleToDonateSince,
		TotalDonations:        row.TotalDonations,
		Points:                row.Points,
		HealthStatus:          HealthStatus(row.HealthStatus),
		CreatedAt:             row.CreatedAt,
		UpdatedAt:             row.UpdatedAt,
	}, nil
}
