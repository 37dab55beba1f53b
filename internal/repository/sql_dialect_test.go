package repository

import (
	"testing"
)

func TestClaimLockingByDialect(t *testing.T) {
	locking, ok := claimLockingByDialect("postgres")
	if !ok {
		t.Fatalf("postgres should use claim locking")
	}
	if locking.Strength != "UPDATE" || locking.Options != "SKIP LOCKED" {
		t.Fatalf("unexpected postgres locking: %+v", locking)
	}
	if _, ok := claimLockingByDialect("sqlite"); ok {
		t.Fatalf("sqlite should not use row locking")
	}
}

func TestRowLockingByDialect(t *testing.T) {
	locking, ok := rowLockingByDialect("PostgreSQL")
	if !ok || locking.Strength != "UPDATE" || locking.Options != "" {
		t.Fatalf("unexpected postgres row locking: %+v ok=%v", locking, ok)
	}
	if _, ok := rowLockingByDialect(""); ok {
		t.Fatalf("empty dialect falls back to sqlite and should not lock")
	}
}

func TestLikeOperatorByDialect(t *testing.T) {
	if got := likeOperatorByDialect("postgres"); got != "ILIKE" {
		t.Fatalf("postgres like operator want ILIKE got %s", got)
	}
	if got := likeOperatorByDialect("sqlite"); got != "LIKE" {
		t.Fatalf("sqlite like operator want LIKE got %s", got)
	}
}

func TestDBDialectNameDefaultsToSQLite(t *testing.T) {
	if got := dbDialectName(nil); got != "sqlite" {
		t.Fatalf("nil db dialect want sqlite got %s", got)
	}
}
