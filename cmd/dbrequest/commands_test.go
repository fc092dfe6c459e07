package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbrequest/request"
	"dbrequest/request/ast"
)

const (
	filterJSON = `[{"name":"filter","val":[{"name":"prop","val":"name"},{"name":"cond","val":"=="},{"name":"val","val":"Tom"}]}]`
	updateJSON = `[[{"name":"prop","val":"name"},{"name":"assign","val":{"name":"val","val":"Tom"}}],` +
		`[{"name":"prop","val":"age"},{"name":"assign","val":{"name":"val","val":18}}]]`
	incrJSON = `[[{"name":"prop","val":"age"},{"name":"assign","val":` +
		`[{"name":"ref","val":"age"},{"name":"op","val":"+"},{"name":"val","val":1}]}]]`
)

func execute(args ...string) (string, error) {
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := newRootCmd()
	for _, name := range []string{"count", "find", "put", "update", "remove", "explain"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
	for _, name := range []string{"config", "driver", "dsn", "table", "dialect"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestParseType(t *testing.T) {
	testCases := []struct {
		typ     string
		want    request.QueryType
		wantErr bool
	}{
		{typ: "count", want: request.QueryCount},
		{typ: "find", want: request.QueryRead},
		{typ: "READ", want: request.QueryRead},
		{typ: "put", want: request.QueryCreate},
		{typ: "update", want: request.QueryUpdate},
		{typ: "remove", want: request.QueryDelete},
		{typ: "delete", want: request.QueryDelete},
		{typ: "merge", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.typ, func(t *testing.T) {
			typ, err := parseType(tc.typ)
			assert.Equal(t, tc.wantErr, err != nil)
			assert.Equal(t, tc.want, typ)
		})
	}
}

func TestReadFragment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filter.json")
	require.NoError(t, os.WriteFile(path, []byte(filterJSON), 0o600))
	want := ast.Seq{ast.Filter(ast.Seq{ast.Prop("name"), ast.Cond("=="), ast.Val("Tom")})}

	f, err := readFragment("filter", filterJSON)
	require.NoError(t, err)
	assert.Equal(t, want, f)

	f, err = readFragment("filter", "@"+path)
	require.NoError(t, err)
	assert.Equal(t, want, f)

	f, err = readFragment("filter", "")
	require.NoError(t, err)
	assert.Nil(t, f)

	_, err = readFragment("filter", "@"+filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = readFragment("update", `{"name":"column","val":"foo"}`)
	assert.ErrorContains(t, err, "--update")
}

func TestExplain(t *testing.T) {
	out, err := execute("explain", "--type", "count", "--filter", filterJSON)
	require.NoError(t, err)
	q := &request.Query{}
	require.NoError(t, json.Unmarshal([]byte(out), q))
	assert.Equal(t, request.QueryCount, q.Type)
	assert.Equal(t, ast.Seq{ast.Filter(ast.Seq{ast.Prop("name"), ast.Cond("=="), ast.Val("Tom")})}, q.Filter)

	out, err = execute("explain", "--type", "update", "--filter", filterJSON, "--update", incrJSON,
		"--format", "sql", "--table", "users", "--driver", "mysql", "--dsn", "root:root@tcp(localhost:13306)/test")
	require.NoError(t, err)
	assert.Equal(t, "UPDATE `users` SET `age`=`age` + ? WHERE `name` = ?;\n[1,\"Tom\"]\n", out)

	out, err = execute("explain", "--type", "put", "--update", updateJSON, "--format", "proto")
	require.NoError(t, err)
	res := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.JSONEq(t, `"CREATE"`, string(res["type"]))
	assert.JSONEq(t, updateJSON, string(res["update"]))
	_, ok := res["filter"]
	assert.False(t, ok)

	_, err = execute("explain", "--format", "xml")
	assert.Error(t, err)
	_, err = execute("explain", "--type", "merge")
	assert.Error(t, err)
}

func TestCRUD(t *testing.T) {
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	// 测试自己持有一个连接，内存数据库才不会在命令之间被释放
	db, err := sql.Open("sqlite3", dsn)
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()
	_, err = db.Exec("CREATE TABLE `users` (`id` INTEGER PRIMARY KEY AUTOINCREMENT, `name` TEXT NOT NULL, `age` INTEGER)")
	require.NoError(t, err)

	t.Setenv("DBREQUEST_POOL_ENABLED", "true")
	t.Setenv("DBREQUEST_CACHE_KIND", "local")
	base := []string{"--driver", "sqlite3", "--dsn", dsn, "--table", "users"}
	run := func(args ...string) string {
		out, err := execute(append(args, base...)...)
		require.NoError(t, err)
		return out
	}

	assert.Equal(t, `{"age":18,"id":1,"name":"Tom"}`+"\n", run("put", "--update", updateJSON))
	assert.Equal(t, "1\n", run("count", "--filter", filterJSON))
	assert.Equal(t, "1\n", run("update", "--filter", filterJSON, "--update", incrJSON))
	assert.Equal(t, `{"age":19,"id":1,"name":"Tom"}`+"\n", run("find"))
	assert.Equal(t, "1\n", run("remove", "--filter", filterJSON))
	assert.Equal(t, "0\n", run("count"))

	_, err = execute(append([]string{"put"}, base...)...)
	assert.Error(t, err)
}

func TestCRUD_InvalidConfig(t *testing.T) {
	_, err := execute("count", "--driver", "oracle", "--table", "users")
	assert.Error(t, err)
	_, err = execute("count", "--filter", "[", "--table", "users")
	assert.Error(t, err)
}
