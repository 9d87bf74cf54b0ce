package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/proxication/poi-api/internal/handlers"
	"github.com/proxication/poi-api/internal/repo"
	"github.com/proxication/poi-api/internal/token"
	"golang.org/x/crypto/bcrypt"
)

func newTestServer(t *testing.T) (*httptest.Server, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	userRepo := repo.NewUserRepo(db)
	poiRepo := repo.NewPOIRepo(db)
	tokenRepo := repo.NewTokenRepo(db)
	auditRepo := repo.NewAuditRepo(db)

	issuer := token.NewIssuer([]byte("test-secret-for-integration"), 15*time.Minute, 24*time.Hour)

	router := newRouter(
		&handlers.AuthHandler{Users: userRepo, Tokens: tokenRepo, AuditRepo: auditRepo, Issuer: issuer},
		&handlers.UserHandler{Repo: userRepo, AuditRepo: auditRepo},
		&handlers.POIHandler{Repo: poiRepo, AuditRepo: auditRepo},
		&handlers.AuditHandler{Repo: auditRepo},
		issuer,
		nil,
	)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, mock
}

// TestAPI_LoginThenListPOIs is an integration test: it builds the full router
// with a sqlmock-backed DB, logs in for a token pair, then calls GET /pois/
// with the access token.
func TestAPI_LoginThenListPOIs(t *testing.T) {
	srv, mock := newTestServer(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	now := time.Now()
	mock.ExpectQuery(`SELECT id, username, email, password_hash`).
		WithArgs("integration").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "created_at", "updated_at"}).
			AddRow(1, "integration", "it@example.com", string(hash), now, now))

	mock.ExpectQuery(`SELECT p.id, p.name`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "description", "latitude", "longitude",
			"created_by", "username", "created_at", "updated_at",
		}).AddRow(1, "Eiffel Tower", "", 48.8584, 2.2945, 1, "integration", now, now))

	// 1) Login
	loginBody, _ := json.Marshal(map[string]string{"username": "integration", "password": "password123"})
	loginResp, err := http.Post(srv.URL+"/users/login/", "application/json", bytes.NewReader(loginBody))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer loginResp.Body.Close()
	if loginResp.StatusCode != http.StatusOK {
		t.Fatalf("login status: got %d, want 200", loginResp.StatusCode)
	}
	var loginOut struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	if err := json.NewDecoder(loginResp.Body).Decode(&loginOut); err != nil || loginOut.Access == "" {
		t.Fatalf("login response: %v", err)
	}

	// 2) GET /pois/ with the access token
	req, _ := http.NewRequest("GET", srv.URL+"/pois/", nil)
	req.Header.Set("Authorization", "Bearer "+loginOut.Access)
	poisResp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("pois request: %v", err)
	}
	defer poisResp.Body.Close()
	if poisResp.StatusCode != http.StatusOK {
		t.Fatalf("GET /pois/ status: got %d, want 200", poisResp.StatusCode)
	}
	var pois []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(poisResp.Body).Decode(&pois); err != nil {
		t.Fatalf("decode pois: %v", err)
	}
	if len(pois) != 1 || pois[0].Name != "Eiffel Tower" {
		t.Errorf("unexpected pois: %+v", pois)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

// TestAPI_DeletePOI verifies the on-the-wire delete response: a 204 with no
// body, since net/http does not transmit bodies on 204.
func TestAPI_DeletePOI(t *testing.T) {
	srv, mock := newTestServer(t)

	now := time.Now()
	mock.ExpectQuery(`SELECT p.id, p.name`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "description", "latitude", "longitude",
			"created_by", "username", "created_at", "updated_at",
		}).AddRow(5, "Eiffel Tower", "", 48.8584, 2.2945, 1, "alice", now, now))
	mock.ExpectExec(`DELETE FROM pois`).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs(1, "delete", "poi", 5, "").
		WillReturnResult(sqlmock.NewResult(1, 1))

	issuer := token.NewIssuer([]byte("test-secret-for-integration"), 15*time.Minute, 24*time.Hour)
	pair, err := issuer.IssuePair(1, "alice")
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}

	req, _ := http.NewRequest("DELETE", srv.URL+"/pois/5/", nil)
	req.Header.Set("Authorization", "Bearer "+pair.Access)
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("delete request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("DELETE /pois/5/ status: got %d, want 204", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if len(body) != 0 {
		t.Errorf("expected empty body on 204, got: %s", body)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

// TestAPI_POIsRequireAuth verifies that the POI routes sit behind the JWT middleware.
func TestAPI_POIsRequireAuth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/pois/")
	if err != nil {
		t.Fatalf("pois request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("GET /pois/ status: got %d, want 401", resp.StatusCode)
	}
}

// TestAPI_Health is a quick smoke test for the health endpoint.
func TestAPI_Health(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatalf("health request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /api/health status: got %d, want 200", resp.StatusCode)
	}
	var out map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if out["status"] != "ok" || out["message"] != "API is running" {
		t.Errorf("unexpected health body: %v", out)
	}
}
