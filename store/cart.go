package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
)

// CartOutcome reports which terminal action a reconcile performed.
type CartOutcome int

const (
	CartNoOp CartOutcome = iota
	CartInserted
	CartRemoved
	CartUpdated
)

func (o CartOutcome) String() string {
	switch o {
	case CartNoOp:
		return "no-op"
	case CartInserted:
		return "inserted"
	case CartRemoved:
		return "removed"
	case CartUpdated:
		return "updated"
	}
	return "unknown"
}

// ErrNegativeQuantity means a caller let a negative quantity through.
var ErrNegativeQuantity = errors.New("quantity must be >= 0")

// helper: acquire per-cart-line lock (process-local). Returns unlock func.
func (s *PostgresStore) lockForCartLine(userID string, productID int64) func() {
	key := fmt.Sprintf("%s/%d", userID, productID)

	// fast path Load
	if v, ok := s.locks.Load(key); ok {
		m := v.(*sync.Mutex)
		m.Lock()
		return func() { m.Unlock() }
	}

	// Otherwise create and store a new mutex (race-safe via LoadOrStore)
	m := &sync.Mutex{}
	actual, _ := s.locks.LoadOrStore(key, m)
	mtx := actual.(*sync.Mutex)
	mtx.Lock()
	return func() { mtx.Unlock() }
}

// ReconcileCartLine brings the cart line for (userID, productID) to qty with
// a single mutation chosen from current state:
//
//	no line, qty == 0  -> CartNoOp     (nothing written)
//	no line, qty > 0   -> CartInserted
//	line,    qty == 0  -> CartRemoved
//	line,    qty > 0   -> CartUpdated  (quantity replaced, not incremented)
//
// The read and the write run in one transaction with the row locked, so a
// concurrent reconcile for the same key sees either the old or the new line,
// never a half-applied one.
func (s *PostgresStore) ReconcileCartLine(userID string, productID int64, qty int) (CartOutcome, error) {
	if qty < 0 {
		return CartNoOp, ErrNegativeQuantity
	}

	// process-local lock to avoid concurrent goroutines in same process
	unlock := s.lockForCartLine(userID, productID)
	defer unlock()

	tx, err := s.DB.Begin()
	if err != nil {
		return CartNoOp, err
	}
	// ensure rollback on early return
	rolledBack := false
	defer func() {
		if !rolledBack {
			_ = tx.Rollback()
		}
	}()

	var current int
	err = tx.QueryRow(
		`SELECT quantity FROM cart_items WHERE user_id = $1 AND product_id = $2 FOR UPDATE`,
		userID, productID,
	).Scan(&current)

	switch {
	case err == sql.ErrNoRows:
		if qty == 0 {
			// nothing to remove, nothing written
			_ = tx.Rollback()
			rolledBack = true
			return CartNoOp, nil
		}
		if _, err := tx.Exec(
			`INSERT INTO cart_items (user_id, product_id, quantity) VALUES ($1, $2, $3)`,
			userID, productID, qty,
		); err != nil {
			_ = tx.Rollback()
			rolledBack = true
			return CartNoOp, err
		}
		if err := tx.Commit(); err != nil {
			return CartNoOp, err
		}
		rolledBack = true
		return CartInserted, nil

	case err != nil:
		_ = tx.Rollback()
		rolledBack = true
		return CartNoOp, err
	}

	if qty == 0 {
		if _, err := tx.Exec(
			`DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`,
			userID, productID,
		); err != nil {
			_ = tx.Rollback()
			rolledBack = true
			return CartNoOp, err
		}
		if err := tx.Commit(); err != nil {
			return CartNoOp, err
		}
		rolledBack = true
		return CartRemoved, nil
	}

	if _, err := tx.Exec(
		`UPDATE cart_items SET quantity = $1 WHERE user_id = $2 AND product_id = $3`,
		qty, userID, productID,
	); err != nil {
		_ = tx.Rollback()
		rolledBack = true
		return CartNoOp, err
	}
	if err := tx.Commit(); err != nil {
		return CartNoOp, err
	}
	rolledBack = true
	return CartUpdated, nil
}
