package dbx

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestDBTX_SatisfiedByDBAndTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	defer db.Close()

	var _ DBTX = db

	mock.ExpectBegin()
	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin error: %v", err)
	}
	var _ DBTX = tx

	var _ DBTX = (*sql.Tx)(nil)
}
