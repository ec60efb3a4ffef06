// Package testutil provides helpers shared by package tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"gorm.io/gorm"

	"taskmesh/internal/repository"
)

var dbCounter atomic.Int64

// NewDB opens a fresh in-memory SQLite database for one test. Shared
// cache keeps the database alive across the pooled connections.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:taskmesh_test_%d?mode=memory&cache=shared", dbCounter.Add(1))
	db, err := repository.NewDB(dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		// SQLite shared-cache databases reject concurrent writers; one
		// pooled connection keeps concurrent tests deterministic.
		sqlDB.SetMaxOpenConns(1)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}
