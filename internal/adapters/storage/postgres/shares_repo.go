package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"safety-inspections/internal/domain/shares"

	"github.com/jackc/pgx/v5/pgconn"
)

// SharesRepo persiste los grants en inspection_shares:
// id, inspection_id, share_token (unique), created_by, permission,
// expires_at, is_active, access_count, created_at, updated_at.
type SharesRepo struct {
	db *sql.DB
}

func NewSharesRepo(db *sql.DB) *SharesRepo {
	return &SharesRepo{db: db}
}

const uniqueViolation = "23505"

func (r *SharesRepo) Create(ctx context.Context, g shares.Grant) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO inspection_shares (
			id, inspection_id, share_token, created_by,
			permission, expires_at, is_active, access_count,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		g.ID,
		g.InspectionID,
		g.Token,
		g.CreatedBy,
		string(g.Permission),
		toNullTime(g.ExpiresAt),
		g.IsActive,
		g.AccessCount,
		g.CreatedAt,
		g.UpdatedAt,
	)
	if err != nil {
		// Colisión del unique de share_token: el servicio reintenta
		// con otro token, nunca se pisa la fila existente.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return shares.ErrDuplicateToken
		}
		return err
	}
	return nil
}

func (r *SharesRepo) GetByToken(ctx context.Context, token string) (shares.Grant, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return shares.Grant{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, inspection_id, share_token, created_by,
			permission, expires_at, is_active, access_count,
			created_at, updated_at
		FROM inspection_shares
		WHERE share_token = $1
	`, token)

	return scanGrant(row)
}

func (r *SharesRepo) GetByID(ctx context.Context, id string) (shares.Grant, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return shares.Grant{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, inspection_id, share_token, created_by,
			permission, expires_at, is_active, access_count,
			created_at, updated_at
		FROM inspection_shares
		WHERE id = $1
	`, id)

	return scanGrant(row)
}

func (r *SharesRepo) ListByInspection(ctx context.Context, inspectionID string) ([]shares.Grant, error) {
	inspectionID = strings.TrimSpace(inspectionID)
	if inspectionID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, inspection_id, share_token, created_by,
			permission, expires_at, is_active, access_count,
			created_at, updated_at
		FROM inspection_shares
		WHERE inspection_id = $1
		ORDER BY created_at DESC
	`, inspectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]shares.Grant, 0)
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}

	return out, rows.Err()
}

func (r *SharesRepo) SetActive(ctx context.Context, token string, active bool, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE inspection_shares
		SET is_active = $2, updated_at = $3
		WHERE share_token = $1
	`, token, active, at)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementAccess es atómico en el storage: dos dereferences
// simultáneos del mismo link no pierden incrementos.
func (r *SharesRepo) IncrementAccess(ctx context.Context, token string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE inspection_shares
		SET access_count = access_count + 1, updated_at = $2
		WHERE share_token = $1
	`, token, at)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SharesRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM inspection_shares WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGrant(row rowScanner) (shares.Grant, error) {
	var g shares.Grant
	var permission string
	var expiresAt sql.NullTime

	if err := row.Scan(
		&g.ID,
		&g.InspectionID,
		&g.Token,
		&g.CreatedBy,
		&permission,
		&expiresAt,
		&g.IsActive,
		&g.AccessCount,
		&g.CreatedAt,
		&g.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return shares.Grant{}, ErrNotFound
		}
		return shares.Grant{}, err
	}

	g.Permission = shares.Permission(permission)
	if expiresAt.Valid {
		t := expiresAt.Time
		g.ExpiresAt = &t
	}

	return g, nil
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
