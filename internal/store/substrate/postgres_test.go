package substrate

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func setupMock(t *testing.T) (*Postgres, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	sub := NewPostgres(db, "appdb")
	cleanup := func() {
		db.Close()
	}
	return sub, mock, cleanup
}

func TestPostgresLoad_Success(t *testing.T) {
	sub, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT state FROM document_stores WHERE name = $1`)).
		WithArgs("appdb").
		WillReturnRows(sqlmock.NewRows([]string{"state"}).AddRow([]byte(`{"users":[]}`)))

	state, err := sub.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(state) != `{"users":[]}` {
		t.Errorf("unexpected state: %q", state)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresLoad_Empty(t *testing.T) {
	sub, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT state FROM document_stores WHERE name = $1`)).
		WithArgs("appdb").
		WillReturnError(sql.ErrNoRows)

	state, err := sub.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state != nil {
		t.Errorf("expected nil state, got %q", state)
	}
}

func TestPostgresLoad_Error(t *testing.T) {
	sub, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT state FROM document_stores WHERE name = $1`)).
		WithArgs("appdb").
		WillReturnError(errors.New("connection lost"))

	_, err := sub.Load(context.Background())
	if err == nil || !regexp.MustCompile(`load state`).MatchString(err.Error()) {
		t.Errorf("expected load state error, got %v", err)
	}
}

func TestPostgresSave_Upsert(t *testing.T) {
	sub, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO document_stores (name, state, updated_at)`)).
		WithArgs("appdb", []byte(`{"users":[]}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := sub.Save(context.Background(), []byte(`{"users":[]}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresSave_Error(t *testing.T) {
	sub, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO document_stores (name, state, updated_at)`)).
		WithArgs("appdb", []byte(`x`)).
		WillReturnError(errors.New("disk full"))

	err := sub.Save(context.Background(), []byte(`x`))
	if err == nil || !regexp.MustCompile(`save state`).MatchString(err.Error()) {
		t.Errorf("expected save state error, got %v", err)
	}
}
