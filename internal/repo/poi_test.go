package repo

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/proxication/poi-api/internal/models"
)

var poiColumns = []string{
	"id", "name", "description", "latitude", "longitude",
	"created_by", "username", "created_at", "updated_at",
}

func TestPOIRepo_Insert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO pois \(name, description, latitude, longitude, created_by\)`).
		WithArgs("Eiffel Tower", "Iron lattice tower", 48.8584, 2.2945, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(5, now, now))

	repo := NewPOIRepo(db)
	poi := &models.POI{
		Name:        "Eiffel Tower",
		Description: "Iron lattice tower",
		Latitude:    48.8584,
		Longitude:   2.2945,
		CreatedBy:   1,
	}
	if err := repo.Insert(context.Background(), poi); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if poi.ID != 5 {
		t.Errorf("expected assigned id 5, got %d", poi.ID)
	}
	if poi.CreatedAt.IsZero() || poi.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be filled in")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPOIRepo_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT p.id, p.name`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(poiColumns).
			AddRow(5, "Eiffel Tower", "Iron lattice tower", 48.8584, 2.2945, 1, "alice", now, now))

	repo := NewPOIRepo(db)
	poi, err := repo.GetByID(context.Background(), 5)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if poi.ID != 5 || poi.Name != "Eiffel Tower" || poi.CreatedBy != 1 {
		t.Errorf("unexpected poi: %+v", poi)
	}
	if poi.CreatedByUsername != "alice" {
		t.Errorf("expected owner username joined in, got %q", poi.CreatedByUsername)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPOIRepo_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT p.id, p.name`).
		WithArgs(404).
		WillReturnError(sql.ErrNoRows)

	repo := NewPOIRepo(db)
	_, err = repo.GetByID(context.Background(), 404)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPOIRepo_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT p.id, p.name`).
		WillReturnRows(sqlmock.NewRows(poiColumns).
			AddRow(2, "Newer", "", 10.0, 20.0, 2, "bob", now, now).
			AddRow(1, "Older", "", 30.0, 40.0, 1, "alice", now.Add(-time.Hour), now.Add(-time.Hour)))

	repo := NewPOIRepo(db)
	pois, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(pois) != 2 {
		t.Fatalf("expected 2 pois, got %d", len(pois))
	}
	if pois[0].Name != "Newer" || pois[1].Name != "Older" {
		t.Errorf("expected newest first, got: %+v", pois)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPOIRepo_List_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT p.id, p.name`).
		WillReturnRows(sqlmock.NewRows(poiColumns))

	repo := NewPOIRepo(db)
	pois, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if pois == nil {
		t.Error("expected empty slice, not nil")
	}
	if len(pois) != 0 {
		t.Errorf("expected no pois, got %d", len(pois))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPOIRepo_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`UPDATE pois`).
		WithArgs("Renamed", "New description", 1.5, -2.5, 5).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))

	repo := NewPOIRepo(db)
	poi := &models.POI{ID: 5, Name: "Renamed", Description: "New description", Latitude: 1.5, Longitude: -2.5}
	if err := repo.Update(context.Background(), poi); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !poi.UpdatedAt.Equal(now) {
		t.Errorf("updated_at not refreshed: %v", poi.UpdatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPOIRepo_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`DELETE FROM pois`).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewPOIRepo(db)
	if err := repo.Delete(context.Background(), 5); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPOIRepo_Delete_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`DELETE FROM pois`).
		WithArgs(404).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewPOIRepo(db)
	if err := repo.Delete(context.Background(), 404); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
