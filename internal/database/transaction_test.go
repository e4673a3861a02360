package database

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"
)

func newTestDB(t *testing.T) Database {
	t.Helper()
	ctx := context.Background()
	db, err := NewDatabase(ctx, "sqlite:///:memory:")
	if err != nil {
		t.Fatalf("NewDatabase() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.Session(ctx).Exec("CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT)").Error; err != nil {
		t.Fatalf("create table error = %v", err)
	}
	return db
}

func countItems(t *testing.T, db Database) int {
	t.Helper()
	var count int
	if err := db.Session(context.Background()).Raw("SELECT COUNT(*) FROM items").Scan(&count).Error; err != nil {
		t.Fatalf("count items error = %v", err)
	}
	return count
}

func TestWithTransaction_Commit(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	err := WithTransaction(ctx, db, func(tx *gorm.DB) error {
		return tx.Exec("INSERT INTO items (name) VALUES ('a')").Error
	})
	if err != nil {
		t.Fatalf("WithTransaction() error = %v", err)
	}

	if got := countItems(t, db); got != 1 {
		t.Errorf("count = %v, want 1", got)
	}
}

func TestWithTransaction_RollbackOnError(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	wantErr := errors.New("boom")
	err := WithTransaction(ctx, db, func(tx *gorm.DB) error {
		if err := tx.Exec("INSERT INTO items (name) VALUES ('a')").Error; err != nil {
			return err
		}
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("WithTransaction() error = %v, want %v", err, wantErr)
	}

	if got := countItems(t, db); got != 0 {
		t.Errorf("count after rollback = %v, want 0", got)
	}
}

func TestWithTransactionResult_Commit(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	id, err := WithTransactionResult(ctx, db, func(tx *gorm.DB) (int64, error) {
		if err := tx.Exec("INSERT INTO items (name) VALUES ('a')").Error; err != nil {
			return 0, err
		}
		var id int64
		err := tx.Raw("SELECT last_insert_rowid()").Scan(&id).Error
		return id, err
	})
	if err != nil {
		t.Fatalf("WithTransactionResult() error = %v", err)
	}
	if id != 1 {
		t.Errorf("id = %v, want 1", id)
	}
}

func TestWithTransactionResult_RollbackOnError(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	wantErr := errors.New("boom")
	_, err := WithTransactionResult(ctx, db, func(tx *gorm.DB) (int, error) {
		if err := tx.Exec("INSERT INTO items (name) VALUES ('a')").Error; err != nil {
			return 0, err
		}
		return 0, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("WithTransactionResult() error = %v, want %v", err, wantErr)
	}

	if got := countItems(t, db); got != 0 {
		t.Errorf("count after rollback = %v, want 0", got)
	}
}
