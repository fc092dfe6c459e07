package prometheus

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbrequest/request"
	"dbrequest/request/backend/memory"
)

func TestMiddlewareBuilder_Build(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := MiddlewareBuilder{
		Namespace:  "dbrequest",
		Subsystem:  "driver",
		Name:       "query_duration",
		Help:       "请求耗时",
		Registerer: reg,
	}
	d := request.NewDriver(memory.New(), request.DriverWithMiddleware(m.Build()))

	_, err := d.PutElement(context.Background(), request.Update(request.Set("foo", "bar")))
	require.NoError(t, err)
	_, err = d.CountElements(context.Background(), nil)
	require.NoError(t, err)
	_, err = d.CountElements(context.Background(), nil)
	require.NoError(t, err)

	cnt, err := testutil.GatherAndCount(reg, "dbrequest_driver_query_duration")
	require.NoError(t, err)
	// 每个 type 一条
	assert.Equal(t, 2, cnt)
}

func TestMiddlewareBuilder_DuplicateRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := MiddlewareBuilder{Name: "dup", Help: "dup", Registerer: reg}
	m.Build()
	assert.Panics(t, func() {
		m.Build()
	})
}
