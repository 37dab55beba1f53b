package repository

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// dbDialectName 获取数据库方言名称，默认按 sqlite 处理。
func dbDialectName(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	name := strings.ToLower(strings.TrimSpace(db.Dialector.Name()))
	if name == "" {
		return "sqlite"
	}
	return name
}

func isPostgresDialect(dialect string) bool {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres", "postgresql":
		return true
	default:
		return false
	}
}

// claimLockingByDialect 返回抢占行时使用的锁子句。
// postgres 使用 FOR UPDATE SKIP LOCKED，让并发事务跳过已被占用的行；
// sqlite 为单写者模型，不需要行锁。
func claimLockingByDialect(dialect string) (clause.Locking, bool) {
	if !isPostgresDialect(dialect) {
		return clause.Locking{}, false
	}
	return clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}, true
}

// rowLockingByDialect 返回普通行锁子句，sqlite 下不加锁。
func rowLockingByDialect(dialect string) (clause.Locking, bool) {
	if !isPostgresDialect(dialect) {
		return clause.Locking{}, false
	}
	return clause.Locking{Strength: "UPDATE"}, true
}

// forUpdate 按方言为查询追加行锁。
func forUpdate(db *gorm.DB) *gorm.DB {
	if locking, ok := rowLockingByDialect(dbDialectName(db)); ok {
		return db.Clauses(locking)
	}
	return db
}

func likeOperatorByDialect(dialect string) string {
	if isPostgresDialect(dialect) {
		return "ILIKE"
	}
	return "LIKE"
}
