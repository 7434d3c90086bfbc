package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"safety-inspections/internal/domain/inspections"
)

type InspectionsRepo struct {
	db *sql.DB
}

func NewInspectionsRepo(db *sql.DB) *InspectionsRepo {
	return &InspectionsRepo{db: db}
}

func (r *InspectionsRepo) Create(ctx context.Context, i inspections.Inspection) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO inspections (
			id, owner_user_id, title, notes, status,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		i.ID,
		i.OwnerUserID,
		i.Title,
		i.Notes,
		string(i.Status),
		i.CreatedAt,
		i.UpdatedAt,
	)
	return err
}

func (r *InspectionsRepo) GetByID(ctx context.Context, id string) (inspections.Inspection, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return inspections.Inspection{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, owner_user_id, title, notes, status, created_at, updated_at
		FROM inspections
		WHERE id = $1
	`, id)

	var i inspections.Inspection
	var status string
	if err := row.Scan(
		&i.ID,
		&i.OwnerUserID,
		&i.Title,
		&i.Notes,
		&status,
		&i.CreatedAt,
		&i.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return inspections.Inspection{}, ErrNotFound
		}
		return inspections.Inspection{}, err
	}

	i.Status = inspections.Status(status)
	return i, nil
}

func (r *InspectionsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]inspections.Inspection, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_user_id, title, notes, status, created_at, updated_at
		FROM inspections
		WHERE owner_user_id = $1
		ORDER BY created_at DESC
	`, ownerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]inspections.Inspection, 0)
	for rows.Next() {
		var i inspections.Inspection
		var status string
		if err := rows.Scan(
			&i.ID,
			&i.OwnerUserID,
			&i.Title,
			&i.Notes,
			&status,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		i.Status = inspections.Status(status)
		out = append(out, i)
	}

	return out, rows.Err()
}

func (r *InspectionsRepo) SetStatus(ctx context.Context, id string, status inspections.Status, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE inspections
		SET status = $2, updated_at = $3
		WHERE id = $1
	`, id, string(status), at)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertItem escribe la respuesta de un campo por la clave compuesta
// (inspection_id, field_id). Last-write-wins: el conflicto pisa
// value/comment/updated_at y conserva id/created_at originales.
func (r *InspectionsRepo) UpsertItem(ctx context.Context, it inspections.Item) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO inspection_items (
			id, inspection_id, field_id, field_type,
			value, comment, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (inspection_id, field_id) DO UPDATE SET
			field_type = EXCLUDED.field_type,
			value = EXCLUDED.value,
			comment = EXCLUDED.comment,
			updated_at = EXCLUDED.updated_at
	`,
		it.ID,
		it.InspectionID,
		it.FieldID,
		it.FieldType,
		it.Value,
		it.Comment,
		it.CreatedAt,
		it.UpdatedAt,
	)
	return err
}

func (r *InspectionsRepo) ListItems(ctx context.Context, inspectionID string) ([]inspections.Item, error) {
	inspectionID = strings.TrimSpace(inspectionID)
	if inspectionID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, inspection_id, field_id, field_type, value, comment, created_at, updated_at
		FROM inspection_items
		WHERE inspection_id = $1
		ORDER BY field_id ASC
	`, inspectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]inspections.Item, 0)
	for rows.Next() {
		var it inspections.Item
		if err := rows.Scan(
			&it.ID,
			&it.InspectionID,
			&it.FieldID,
			&it.FieldType,
			&it.Value,
			&it.Comment,
			&it.CreatedAt,
			&it.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, it)
	}

	return out, rows.Err()
}
