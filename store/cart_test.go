package store

import (
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

var (
	selectLineQ = regexp.QuoteMeta(`SELECT quantity FROM cart_items WHERE user_id = $1 AND product_id = $2 FOR UPDATE`)
	insertLineQ = regexp.QuoteMeta(`INSERT INTO cart_items (user_id, product_id, quantity) VALUES ($1, $2, $3)`)
	updateLineQ = regexp.QuoteMeta(`UPDATE cart_items SET quantity = $1 WHERE user_id = $2 AND product_id = $3`)
	deleteLineQ = regexp.QuoteMeta(`DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`)
)

func lineRows(qty int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"quantity"}).AddRow(qty)
}

func TestReconcileCartLine_NoLineZeroQty_NoOpNoWrite(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()
	s := &PostgresStore{DB: db}

	mock.ExpectBegin()
	mock.ExpectQuery(selectLineQ).WithArgs("u1", int64(1)).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	out, err := s.ReconcileCartLine("u1", 1, 0)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if out != CartNoOp {
		t.Fatalf("expected CartNoOp, got %v", out)
	}
	// no insert/update/delete was expected; sqlmock would flag one here
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReconcileCartLine_NoLinePositiveQty_Inserts(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	mock.ExpectBegin()
	mock.ExpectQuery(selectLineQ).WithArgs("u1", int64(1)).WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(insertLineQ).WithArgs("u1", int64(1), 3).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	out, err := s.ReconcileCartLine("u1", 1, 3)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if out != CartInserted {
		t.Fatalf("expected CartInserted, got %v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReconcileCartLine_LineZeroQty_Deletes(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	mock.ExpectBegin()
	mock.ExpectQuery(selectLineQ).WithArgs("u1", int64(1)).WillReturnRows(lineRows(4))
	mock.ExpectExec(deleteLineQ).WithArgs("u1", int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	out, err := s.ReconcileCartLine("u1", 1, 0)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if out != CartRemoved {
		t.Fatalf("expected CartRemoved, got %v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReconcileCartLine_LinePositiveQty_ReplacesQuantity(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	mock.ExpectBegin()
	mock.ExpectQuery(selectLineQ).WithArgs("u1", int64(1)).WillReturnRows(lineRows(3))
	// full replace: the new quantity is 5 regardless of the stored 3
	mock.ExpectExec(updateLineQ).WithArgs(5, "u1", int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	out, err := s.ReconcileCartLine("u1", 1, 5)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if out != CartUpdated {
		t.Fatalf("expected CartUpdated, got %v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReconcileCartLine_NegativeQty_RejectedBeforeDB(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	if _, err := s.ReconcileCartLine("u1", 1, -1); !errors.Is(err, ErrNegativeQuantity) {
		t.Fatalf("expected ErrNegativeQuantity, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expected no DB traffic: %v", err)
	}
}

func TestReconcileCartLine_ReadErrorAbortsBeforeWrite(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	boom := errors.New("connection reset")
	mock.ExpectBegin()
	mock.ExpectQuery(selectLineQ).WithArgs("u1", int64(1)).WillReturnError(boom)
	mock.ExpectRollback()

	if _, err := s.ReconcileCartLine("u1", 1, 2); !errors.Is(err, boom) {
		t.Fatalf("expected read error to propagate, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReconcileCartLine_WriteErrorRollsBack(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	boom := errors.New("disk full")
	mock.ExpectBegin()
	mock.ExpectQuery(selectLineQ).WithArgs("u1", int64(1)).WillReturnRows(lineRows(2))
	mock.ExpectExec(updateLineQ).WithArgs(9, "u1", int64(1)).WillReturnError(boom)
	mock.ExpectRollback()

	if _, err := s.ReconcileCartLine("u1", 1, 9); !errors.Is(err, boom) {
		t.Fatalf("expected write error to propagate, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// Walks a line through its whole lifecycle: insert, replace, remove, and a
// final no-op once the row is gone.
func TestReconcileCartLine_Lifecycle(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	// reconcile(u1, p1, 3) -> Inserted
	mock.ExpectBegin()
	mock.ExpectQuery(selectLineQ).WithArgs("u1", int64(1)).WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(insertLineQ).WithArgs("u1", int64(1), 3).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// reconcile(u1, p1, 5) -> Updated
	mock.ExpectBegin()
	mock.ExpectQuery(selectLineQ).WithArgs("u1", int64(1)).WillReturnRows(lineRows(3))
	mock.ExpectExec(updateLineQ).WithArgs(5, "u1", int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// reconcile(u1, p1, 0) -> Removed
	mock.ExpectBegin()
	mock.ExpectQuery(selectLineQ).WithArgs("u1", int64(1)).WillReturnRows(lineRows(5))
	mock.ExpectExec(deleteLineQ).WithArgs("u1", int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// reconcile(u1, p1, 0) again -> NoOp
	mock.ExpectBegin()
	mock.ExpectQuery(selectLineQ).WithArgs("u1", int64(1)).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	want := []CartOutcome{CartInserted, CartUpdated, CartRemoved, CartNoOp}
	args := []int{3, 5, 0, 0}
	for i, qty := range args {
		out, err := s.ReconcileCartLine("u1", 1, qty)
		if err != nil {
			t.Fatalf("step %d failed: %v", i, err)
		}
		if out != want[i] {
			t.Fatalf("step %d: expected %v, got %v", i, want[i], out)
		}
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
