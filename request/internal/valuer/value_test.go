package valuer

import (
	"database/sql"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbrequest/request/internal/errs"
	"dbrequest/request/schema"
)

type TestModel struct {
	Id        int64
	FirstName string
	Age       int8
	LastName  *sql.NullString
	Score     *float64
	Visits    uint16
}

func Test_reflectValue_SetColumns(t *testing.T) {
	testSetColumns(t, NewReflectValue)
}

func Test_unsafeValue_SetColumns(t *testing.T) {
	testSetColumns(t, NewUnsafeValue)
}

func Test_reflectValue_Field(t *testing.T) {
	testField(t, NewReflectValue)
}

func Test_unsafeValue_Field(t *testing.T) {
	testField(t, NewUnsafeValue)
}

func testSetColumns(t *testing.T, creator Creator) {
	score := 9.5
	three := 3.0
	testCases := []struct {
		name       string
		entity     any
		rec        map[string]any
		wantErr    error
		// 被包装过的错误用 errors.Is 判断
		wantErrIs  error
		wantEntity any
	}{
		{
			name:   "set columns",
			entity: &TestModel{},
			rec: map[string]any{
				"id":         int64(1),
				"first_name": "Tom",
				"age":        int64(18),
				"last_name":  "Jerry",
				"score":      9.5,
			},
			wantEntity: &TestModel{
				Id:        1,
				FirstName: "Tom",
				Age:       18,
				LastName:  &sql.NullString{Valid: true, String: "Jerry"},
				Score:     &score,
			},
		},
		{
			name:   "partial columns",
			entity: &TestModel{},
			rec: map[string]any{
				"id":         float64(1),
				"first_name": []byte("Tom"),
			},
			wantEntity: &TestModel{
				Id:        1,
				FirstName: "Tom",
			},
		},
		{
			name:   "string to number",
			entity: &TestModel{},
			rec: map[string]any{
				"id":  "12",
				"age": []byte("18"),
			},
			wantEntity: &TestModel{
				Id:  12,
				Age: 18,
			},
		},
		{
			name:   "nil",
			entity: &TestModel{FirstName: "Tom", Score: &score},
			rec: map[string]any{
				"first_name": nil,
				"score":      nil,
			},
			wantEntity: &TestModel{},
		},
		{
			name:   "number in range",
			entity: &TestModel{},
			rec: map[string]any{
				"id":     float64(-9),
				"age":    uint64(127),
				"visits": int64(65535),
				"score":  int64(3),
			},
			wantEntity: &TestModel{
				Id:     -9,
				Age:    127,
				Visits: 65535,
				Score:  &three,
			},
		},
		{
			name:      "int overflow",
			entity:    &TestModel{},
			rec:       map[string]any{"age": int64(300)},
			wantErrIs: errNumberOutOfRange,
		},
		{
			name:      "uint overflow",
			entity:    &TestModel{},
			rec:       map[string]any{"id": uint64(math.MaxUint64)},
			wantErrIs: errNumberOutOfRange,
		},
		{
			name:      "negative to uint",
			entity:    &TestModel{},
			rec:       map[string]any{"visits": int64(-1)},
			wantErrIs: errNumberOutOfRange,
		},
		{
			name:      "float overflow",
			entity:    &TestModel{},
			rec:       map[string]any{"id": 1e19},
			wantErrIs: errNumberOutOfRange,
		},
		{
			name:      "fractional",
			entity:    &TestModel{},
			rec:       map[string]any{"id": 9.9},
			wantErrIs: errFractional,
		},
		{
			name:      "fractional to uint",
			entity:    &TestModel{},
			rec:       map[string]any{"visits": float32(1.5)},
			wantErrIs: errFractional,
		},
		{
			name:      "string overflow",
			entity:    &TestModel{},
			rec:       map[string]any{"age": "300"},
			wantErrIs: strconv.ErrRange,
		},
		{
			name:    "unknown column",
			entity:  &TestModel{},
			rec:     map[string]any{"gender": "male"},
			wantErr: errs.NewUnknownColumn("gender"),
		},
	}
	r := schema.NewRegistry()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := r.Get(tc.entity)
			require.NoError(t, err)
			err = creator(s, tc.entity).SetColumns(tc.rec)
			if tc.wantErrIs != nil {
				assert.ErrorIs(t, err, tc.wantErrIs)
				return
			}
			assert.Equal(t, tc.wantErr, err)
			if err != nil {
				return
			}
			assert.Equal(t, tc.wantEntity, tc.entity)
		})
	}
}

func testField(t *testing.T, creator Creator) {
	entity := &TestModel{
		Id:        12,
		FirstName: "Tom",
		LastName:  &sql.NullString{Valid: true, String: "Jerry"},
	}
	testCases := []struct {
		name    string
		field   string
		wantVal any
		wantErr error
	}{
		{name: "int", field: "Id", wantVal: int64(12)},
		{name: "string", field: "FirstName", wantVal: "Tom"},
		{name: "pointer", field: "LastName", wantVal: &sql.NullString{Valid: true, String: "Jerry"}},
		{name: "unknown", field: "Gender", wantErr: errs.NewUnknownField("Gender")},
	}
	s, err := schema.NewRegistry().Get(entity)
	require.NoError(t, err)
	val := creator(s, entity)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := val.Field(tc.field)
			assert.Equal(t, tc.wantErr, err)
			if err != nil {
				return
			}
			assert.Equal(t, tc.wantVal, v)
		})
	}
}

func TestAssign_Invalid(t *testing.T) {
	s, err := schema.NewRegistry().Get(&TestModel{})
	require.NoError(t, err)
	err = NewReflectValue(s, &TestModel{}).SetColumns(map[string]any{"id": []int{1}})
	assert.Error(t, err)
	err = NewUnsafeValue(s, &TestModel{}).SetColumns(map[string]any{"age": "abc"})
	assert.Error(t, err)
}
