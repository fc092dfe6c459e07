package sqlbackend_test

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbrequest/request"
	sqlbackend "dbrequest/request/backend/sql"
)

type TestUser struct {
	Id   int64
	Name string
	Age  int64
}

type NewUser struct {
	Name string
	Age  int64
}

func memoryDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	_, err = db.Exec("CREATE TABLE `users` (`id` INTEGER PRIMARY KEY AUTOINCREMENT, `name` TEXT NOT NULL, `age` INTEGER)")
	require.NoError(t, err)
	return db
}

func TestSQLite(t *testing.T) {
	db := memoryDB(t)
	ctx := context.Background()
	d := request.NewDriver(sqlbackend.New(db, "users", sqlbackend.WithDialect(sqlbackend.DialectSQLite)))

	for _, u := range []NewUser{{Name: "Tom", Age: 18}, {Name: "Jerry", Age: 12}, {Name: "Spike", Age: 30}} {
		u := u
		update, err := request.Values(&u)
		require.NoError(t, err)
		m, err := d.PutElement(ctx, update)
		require.NoError(t, err)
		id, ok := m.Get("id")
		assert.True(t, ok)
		assert.NotZero(t, id)
	}

	cnt, err := d.CountElements(ctx, request.Where(request.C("age").Ge(18)))
	require.NoError(t, err)
	assert.Equal(t, int64(2), cnt)

	affected, err := d.UpdateElements(ctx,
		request.Where(request.C("name").Eq(request.F("upper", "jerry")).Or(request.C("name").Eq("Jerry"))),
		request.Update(request.Set("age", request.E("age").Add(6))))
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	cursor, err := d.FindElements(ctx, request.Where(request.C("age").Eq(18)))
	require.NoError(t, err)
	var names []string
	for cursor.Next() {
		u := &TestUser{}
		require.NoError(t, cursor.Model().Scan(u))
		assert.Equal(t, int64(18), u.Age)
		names = append(names, u.Name)
	}
	require.NoError(t, cursor.Err())
	assert.ElementsMatch(t, []string{"Tom", "Jerry"}, names)

	affected, err = d.RemoveElements(ctx, request.Where(request.C("age").Gt(20)))
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	cnt, err = d.CountElements(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cnt)
}

func TestSQLite_QueryError(t *testing.T) {
	db := memoryDB(t)
	d := request.NewDriver(sqlbackend.New(db, "users", sqlbackend.WithDialect(sqlbackend.DialectSQLite)))
	_, err := d.CountElements(context.Background(), request.Where(request.C("missing").Eq(1)))
	assert.ErrorIs(t, err, request.ErrQueryExecution)
}
