package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/proxication/poi-api/internal/models"
)

// POIRepo persists points of interest.
type POIRepo struct {
	DB *sql.DB
}

func NewPOIRepo(db *sql.DB) *POIRepo {
	return &POIRepo{DB: db}
}

// Insert stores a new POI and fills in its assigned id and timestamps.
// created_by must already be set to the owning user.
func (r *POIRepo) Insert(ctx context.Context, p *models.POI) error {
	query := `
		INSERT INTO pois (name, description, latitude, longitude, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	return r.DB.QueryRowContext(ctx, query,
		p.Name, p.Description, p.Latitude, p.Longitude, p.CreatedBy).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// GetByID returns a single POI with the owner's username joined in.
func (r *POIRepo) GetByID(ctx context.Context, id int) (*models.POI, error) {
	query := `
		SELECT p.id, p.name, COALESCE(p.description, ''), p.latitude, p.longitude,
		       p.created_by, u.username, p.created_at, p.updated_at
		FROM pois p
		JOIN users u ON p.created_by = u.id
		WHERE p.id = $1
	`

	poi := &models.POI{}
	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&poi.ID, &poi.Name, &poi.Description, &poi.Latitude, &poi.Longitude,
			&poi.CreatedBy, &poi.CreatedByUsername, &poi.CreatedAt, &poi.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return poi, nil
}

// List returns every POI in the system, newest first. No owner filter: any
// authenticated caller sees all records.
func (r *POIRepo) List(ctx context.Context) ([]models.POI, error) {
	query := `
		SELECT p.id, p.name, COALESCE(p.description, ''), p.latitude, p.longitude,
		       p.created_by, u.username, p.created_at, p.updated_at
		FROM pois p
		JOIN users u ON p.created_by = u.id
		ORDER BY p.created_at DESC, p.id DESC
	`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pois := []models.POI{}
	for rows.Next() {
		var p models.POI
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Latitude, &p.Longitude,
			&p.CreatedBy, &p.CreatedByUsername, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		pois = append(pois, p)
	}

	return pois, rows.Err()
}

// Update replaces the POI's mutable fields and bumps updated_at.
// created_by is never touched.
func (r *POIRepo) Update(ctx context.Context, p *models.POI) error {
	query := `
		UPDATE pois
		SET name = $1, description = $2, latitude = $3, longitude = $4, updated_at = now()
		WHERE id = $5
		RETURNING updated_at
	`

	err := r.DB.QueryRowContext(ctx, query,
		p.Name, p.Description, p.Latitude, p.Longitude, p.ID).
		Scan(&p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *POIRepo) Delete(ctx context.Context, id int) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM pois WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}
