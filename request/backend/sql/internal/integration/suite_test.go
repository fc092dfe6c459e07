//go:build e2e

package integration

import (
	"context"
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"dbrequest/request"
	sqlbackend "dbrequest/request/backend/sql"
)

type Suite struct {
	suite.Suite
	driver  string
	dsn     string
	dialect sqlbackend.Dialect
	// 建表语句，每种数据库自增主键写法不一样
	ddl string

	db *sql.DB
	d  *request.Driver
}

// SetupSuite 所有 suite 执行前的钩子
func (s *Suite) SetupSuite() {
	db, err := sql.Open(s.driver, s.dsn)
	require.NoError(s.T(), err)
	require.NoError(s.T(), db.PingContext(context.Background()))
	_, err = db.Exec("DROP TABLE IF EXISTS users")
	require.NoError(s.T(), err)
	_, err = db.Exec(s.ddl)
	require.NoError(s.T(), err)
	s.db = db
	s.d = request.NewDriver(sqlbackend.New(db, "users", sqlbackend.WithDialect(s.dialect)))
}

// TearDownSuite 所有都跑完清数据
func (s *Suite) TearDownSuite() {
	_, _ = s.db.Exec("DROP TABLE IF EXISTS users")
	_ = s.db.Close()
}
