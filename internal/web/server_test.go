package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kofiadu/staffsync/internal/config"
	"github.com/kofiadu/staffsync/internal/engine"
	"github.com/kofiadu/staffsync/internal/entity"
	"github.com/kofiadu/staffsync/internal/notify"
	"github.com/kofiadu/staffsync/internal/repository"
)

type stubTx struct{ pgx.Tx }

func (stubTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (stubTx) Commit(context.Context) error   { return nil }
func (stubTx) Rollback(context.Context) error { return nil }

type stubDB struct{}

func (stubDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (stubDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}
func (stubDB) QueryRow(context.Context, string, ...any) pgx.Row { return nil }
func (stubDB) Begin(context.Context) (pgx.Tx, error)            { return stubTx{}, nil }

type stubStore struct {
	tenant repository.Tenant
}

func (s stubStore) GetTenant(_ context.Context, _ repository.DBTX, id uuid.UUID) (repository.Tenant, error) {
	if id != s.tenant.ID {
		return repository.Tenant{}, repository.ErrTenantNotFound
	}
	return s.tenant, nil
}

func (s stubStore) FindReferenceByName(context.Context, repository.DBTX, entity.ReferenceKind, uuid.UUID, string) (uuid.UUID, bool, error) {
	return uuid.Nil, false, nil
}

func (s stubStore) CreateReference(context.Context, repository.DBTX, entity.ReferenceKind, uuid.UUID, string, map[string]any) (uuid.UUID, error) {
	return uuid.New(), nil
}

func (s stubStore) CreateEmployee(context.Context, repository.DBTX, repository.EmployeeRecord) (uuid.UUID, error) {
	return uuid.New(), nil
}

func (s stubStore) CreateDependent(context.Context, repository.DBTX, repository.DependentRecord) (uuid.UUID, error) {
	return uuid.New(), nil
}

type stubNotifier struct{}

func (stubNotifier) EntityCreated(uuid.UUID, string, string) {}
func (stubNotifier) EmployeeImported(uuid.UUID, string)      {}
func (stubNotifier) SummaryChanged(uuid.UUID)                {}

func testServer(tenant repository.Tenant) *Server {
	cfg := &config.Config{
		Server: config.ServerConfig{ShutdownTimeout: time.Second},
		Import: config.ImportConfig{
			MaxFileSize: 1 << 20,
			Timeout:     time.Minute,
		},
	}
	svc := engine.NewService(stubDB{}, stubStore{tenant: tenant}, stubNotifier{}, nil, engine.Config{})
	return NewServer(svc, stubDB{}, nil, notify.NewSummaryHub(), cfg)
}

func multipartUpload(t *testing.T, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &body, mw.FormDataContentType()
}

func TestHandleImport(t *testing.T) {
	tenant := repository.Tenant{ID: uuid.New(), Name: "Acme"}
	srv := testServer(tenant)

	csv := []byte("First Name,Last Name,Email\nAma,Mensah,ama@acme.test\nKofi,Owusu,kofi@acme.test\n")
	body, contentType := multipartUpload(t, "employees.csv", csv)

	req := httptest.NewRequest(http.MethodPost, "/api/tenants/"+tenant.ID.String()+"/imports", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var report engine.ImportReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.SuccessfulInserts != 2 || report.FailedInserts != 0 {
		t.Errorf("report = %+v", report)
	}
}

func TestHandleImportBadTenantID(t *testing.T) {
	srv := testServer(repository.Tenant{ID: uuid.New()})

	body, contentType := multipartUpload(t, "employees.csv", []byte("Email\n"))
	req := httptest.NewRequest(http.MethodPost, "/api/tenants/not-a-uuid/imports", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleImportUnknownTenant(t *testing.T) {
	srv := testServer(repository.Tenant{ID: uuid.New()})

	body, contentType := multipartUpload(t, "employees.csv", []byte("Email\nama@acme.test\n"))
	req := httptest.NewRequest(http.MethodPost, "/api/tenants/"+uuid.NewString()+"/imports", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleImportMissingFile(t *testing.T) {
	tenant := repository.Tenant{ID: uuid.New()}
	srv := testServer(tenant)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("unrelated", "x")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/tenants/"+tenant.ID.String()+"/imports", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleImportEmptyFile(t *testing.T) {
	tenant := repository.Tenant{ID: uuid.New()}
	srv := testServer(tenant)

	body, contentType := multipartUpload(t, "employees.csv", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/tenants/"+tenant.ID.String()+"/imports", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestHandleGetImportBadID(t *testing.T) {
	srv := testServer(repository.Tenant{ID: uuid.New()})

	req := httptest.NewRequest(http.MethodGet, "/api/imports/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	srv := testServer(repository.Tenant{ID: uuid.New()})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != `{"status":"ok"}` {
		t.Errorf("body = %q", rec.Body.String())
	}
}
