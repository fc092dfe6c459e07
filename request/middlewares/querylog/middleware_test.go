package querylog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbrequest/request"
	"dbrequest/request/backend/memory"
)

func TestMiddlewareBuilder_Build(t *testing.T) {
	var typ request.QueryType
	var query string
	m := NewMiddlewareBuilder().LogFunc(func(ty request.QueryType, q string) {
		typ = ty
		query = q
	})
	d := request.NewDriver(memory.New(), request.DriverWithMiddleware(m.Build()))

	_, err := d.CountElements(context.Background(), request.Where(request.C("Id").Eq(10)))
	require.NoError(t, err)
	assert.Equal(t, request.QueryCount, typ)
	assert.JSONEq(t, `{"type":"COUNT","filter":[{"name":"filter","val":[{"name":"prop","val":"Id"},{"name":"cond","val":"=="},{"name":"val","val":10}]}]}`, query)

	_, err = d.PutElement(context.Background(), request.Update(request.Set("id", 18)))
	require.NoError(t, err)
	assert.Equal(t, request.QueryCreate, typ)
	assert.JSONEq(t, `{"type":"CREATE","update":[[{"name":"prop","val":"id"},{"name":"assign","val":{"name":"val","val":18}}]]}`, query)
}

func TestMiddlewareBuilder_MarshalError(t *testing.T) {
	called := false
	m := NewMiddlewareBuilder().LogFunc(func(request.QueryType, string) {
		called = true
	})
	d := request.NewDriver(memory.New(), request.DriverWithMiddleware(m.Build()))
	_, err := d.PutElement(context.Background(), request.Update(request.Set("ch", make(chan int))))
	assert.Error(t, err)
	assert.False(t, called)
}
