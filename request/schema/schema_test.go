package schema

import (
	"database/sql"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbrequest/request/internal/errs"
)

type TestModel struct {
	Id        int64
	FirstName string
	Age       int8
	LastName  *sql.NullString
}

type namedModel struct {
	Id int64 `dbrequest:"column=_id"`
}

func (namedModel) SchemaName() string {
	return "people"
}

func TestRegistry_Register(t *testing.T) {
	testCases := []struct {
		name       string
		entity     any
		wantSchema *Schema
		wantErr    error
	}{
		{
			name:    "struct",
			entity:  TestModel{},
			wantErr: errs.ErrPointOnly,
		},
		{
			name:    "map",
			entity:  map[string]string{},
			wantErr: errs.ErrPointOnly,
		},
		{
			name:    "nil",
			entity:  nil,
			wantErr: errs.ErrPointOnly,
		},
		{
			name:   "pointer",
			entity: &TestModel{},
			wantSchema: &Schema{
				Name: "test_model",
				Fields: []*Field{
					{ColName: "id", GoName: "Id", Type: reflect.TypeOf(int64(0)), Offset: 0},
					{ColName: "first_name", GoName: "FirstName", Type: reflect.TypeOf(""), Offset: 8},
					{ColName: "age", GoName: "Age", Type: reflect.TypeOf(int8(0)), Offset: 24},
					{ColName: "last_name", GoName: "LastName", Type: reflect.TypeOf(&sql.NullString{}), Offset: 32},
				},
			},
		},
		{
			name: "tag",
			entity: func() any {
				type TagTable struct {
					FirstName string `dbrequest:"column=first_name_t"`
				}
				return &TagTable{}
			}(),
			wantSchema: &Schema{
				Name: "tag_table",
				Fields: []*Field{
					{ColName: "first_name_t", GoName: "FirstName", Type: reflect.TypeOf("")},
				},
			},
		},
		{
			name: "empty column",
			entity: func() any {
				type TagTable struct {
					FirstName string `dbrequest:"column="`
				}
				return &TagTable{}
			}(),
			wantSchema: &Schema{
				Name: "tag_table",
				Fields: []*Field{
					{ColName: "first_name", GoName: "FirstName", Type: reflect.TypeOf("")},
				},
			},
		},
		{
			name: "ignored column",
			entity: func() any {
				type TagTable struct {
					FirstName string `dbrequest:"column=-"`
					Age       int
					secret    string
				}
				return &TagTable{}
			}(),
			wantSchema: &Schema{
				Name: "tag_table",
				Fields: []*Field{
					{ColName: "age", GoName: "Age", Type: reflect.TypeOf(0), Offset: 16},
				},
			},
		},
		{
			name: "column only",
			entity: func() any {
				type TagTable struct {
					FirstName string `dbrequest:"column"`
				}
				return &TagTable{}
			}(),
			wantErr: errs.NewErrInvalidTagContext("column"),
		},
		{
			name:   "schema name",
			entity: &namedModel{},
			wantSchema: &Schema{
				Name: "people",
				Fields: []*Field{
					{ColName: "_id", GoName: "Id", Type: reflect.TypeOf(int64(0))},
				},
			},
		},
	}
	r := &registry{}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := r.Register(tc.entity)
			assert.Equal(t, tc.wantErr, err)
			if err != nil {
				return
			}
			fillMaps(tc.wantSchema)
			assert.EqualValues(t, tc.wantSchema, s)
		})
	}
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry().(*registry)
	s, err := r.Get(&TestModel{})
	require.NoError(t, err)
	cached, ok := r.schemas.Load(reflect.TypeOf(&TestModel{}))
	require.True(t, ok)
	assert.Same(t, s, cached)

	again, err := r.Get(&TestModel{})
	require.NoError(t, err)
	assert.Same(t, s, again)
}

func TestOptions(t *testing.T) {
	testCases := []struct {
		name     string
		opts     []Option
		wantCol  string
		wantName string
		wantErr  error
	}{
		{
			name:     "column name",
			opts:     []Option{WithColumnName("FirstName", "fname")},
			wantCol:  "fname",
			wantName: "test_model",
		},
		{
			name:    "unknown field",
			opts:    []Option{WithColumnName("Nope", "nope")},
			wantErr: errs.NewUnknownField("Nope"),
		},
		{
			name:     "name",
			opts:     []Option{WithName("users")},
			wantCol:  "first_name",
			wantName: "users",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := NewRegistry().Register(&TestModel{}, tc.opts...)
			assert.Equal(t, tc.wantErr, err)
			if err != nil {
				return
			}
			assert.Equal(t, tc.wantName, s.Name)
			fd, ok := s.ColumnMap[tc.wantCol]
			require.True(t, ok)
			assert.Equal(t, "FirstName", fd.GoName)
			assert.Equal(t, tc.wantCol, s.FieldMap["FirstName"].ColName)
		})
	}
}

func TestUnderscoreName(t *testing.T) {
	testCases := []struct {
		src  string
		want string
	}{
		{src: "ID", want: "i_d"},
		{src: "FirstName", want: "first_name"},
		{src: "user", want: "user"},
		{src: "UserV1", want: "user_v1"},
	}
	for _, tc := range testCases {
		t.Run(tc.src, func(t *testing.T) {
			assert.Equal(t, tc.want, underscoreName(tc.src))
		})
	}
}

func fillMaps(s *Schema) {
	s.FieldMap = make(map[string]*Field, len(s.Fields))
	s.ColumnMap = make(map[string]*Field, len(s.Fields))
	for _, f := range s.Fields {
		s.FieldMap[f.GoName] = f
		s.ColumnMap[f.ColName] = f
	}
}
