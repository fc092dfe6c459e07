package sqlbackend

import "strconv"

var (
	DialectMySQL    Dialect = mysqlDialect{}
	DialectSQLite   Dialect = sqliteDialect{}
	DialectPostgres Dialect = postgresDialect{}
)

type Dialect interface {
	// quoter 为了解决引号问题
	// MySQL `
	quoter() byte
	// placeholder 第 n 个参数的占位符，n 从 1 开始
	placeholder(n int) string
	// returning 是否用 RETURNING 拿到插入的记录
	returning() bool
}

type standardSQL struct{}

func (s standardSQL) quoter() byte {
	return '"'
}

func (s standardSQL) placeholder(n int) string {
	return "?"
}

func (s standardSQL) returning() bool {
	return false
}

type mysqlDialect struct {
	standardSQL
}

func (m mysqlDialect) quoter() byte {
	return '`'
}

type sqliteDialect struct {
	standardSQL
}

func (s sqliteDialect) quoter() byte {
	return '`'
}

type postgresDialect struct {
	standardSQL
}

func (p postgresDialect) placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

func (p postgresDialect) returning() bool {
	return true
}

// ParseDialect 根据 database/sql 的驱动名选择方言
func ParseDialect(name string) (Dialect, bool) {
	switch name {
	case "mysql":
		return DialectMySQL, true
	case "sqlite", "sqlite3":
		return DialectSQLite, true
	case "postgres", "postgresql", "pq":
		return DialectPostgres, true
	}
	return nil, false
}
