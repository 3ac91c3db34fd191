package clinic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"donorlink/pkg/domain"
	"donorlink/pkg/platform/sentinel"
)

const clinicTable = "clinics"

var clinicColumns = []string{
	"id", "name", "email", "phone", "license_number",
	"latitude", "longitude", "credential_hash", "created_at", "updated_at",
}

type clinicRow struct {
	ID             string    `db:"id"`
	Name           string    `db:"name"`
	Email          string    `db:"email"`
	Phone          string    `db:"phone"`
	LicenseNumber  string    `db:"license_number"`
	Latitude       float64   `db:"latitude"`
	Longitude      float64   `db:"longitude"`
	CredentialHash string    `db:"credential_hash"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// PostgresStore persists clinics in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func psql() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

func (s *PostgresStore) Create(ctx context.Context, c *Clinic) error {
	query, args, err := psql().
		Insert(clinicTable).
		Columns(clinicColumns...).
		Values(
			c.ID.String(), c.Name, strings.ToLower(strings.TrimSpace(c.Email)), c.Phone, c.LicenseNumber,
			c.Location.Latitude, c.Location.Longitude, c.CredentialHash, c.CreatedAt, c.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build clinic insert: %w", err)
	}

	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert clinic: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.ClinicID) (*Clinic, error) {
	return s.findOne(ctx, sq.Eq{"id": id.String()})
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*Clinic, error) {
	return s.findOne(ctx, sq.Eq{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (s *PostgresStore) findOne(ctx context.Context, pred sq.Eq) (*Clinic, error) {
	query, args, err := psql().
		Select(clinicColumns...).
		From(clinicTable).
		Where(pred).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build clinic select: %w", err)
	}

	var row clinicRow
	if err := pgxscan.Get(ctx, s.pool, &row, query, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("fetch clinic: %w", err)
	}

	id, err := domain.ParseClinicID(row.ID)
	if err != nil {
		return nil, fmt.Errorf("stored clinic id %q: %w", row.ID, err)
	}
	return &Clinic{
		ID:             id,
		Name:           row.Name,
		Email:          row.Email,
		Phone:          row.Phone,
		LicenseNumber:  row.LicenseNumber,
		Location:       domain.Coordinates{Latitude: row.Latitude, Longitude: row.Longitude},
		CredentialHash: row.CredentialHash,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}, nil
}
