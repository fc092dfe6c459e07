package request

import (
	"encoding/json"
	"reflect"
)

// Record 是后端返回的一条原始记录
type Record map[string]any

// Model 是一条记录的只读视图，只由 Driver 包装后端的输出得到
type Model struct {
	data Record
	core core
}

func newModel(c core, rec Record) *Model {
	return &Model{data: rec, core: c}
}

// Data 返回副本，修改它不会影响 Model
func (m *Model) Data() Record {
	res := make(Record, len(m.data))
	for k, v := range m.data {
		res[k] = v
	}
	return res
}

func (m *Model) Get(field string) (any, bool) {
	v, ok := m.data[field]
	return v, ok
}

// Equal 按内容比较
func (m *Model) Equal(other *Model) bool {
	if m == nil || other == nil {
		return m == other
	}
	return reflect.DeepEqual(m.data, other.data)
}

// Scan 把记录写到结构体指针里，列名到字段的映射由 schema 决定
func (m *Model) Scan(dst any) error {
	s, err := m.core.r.Get(dst)
	if err != nil {
		return err
	}
	return m.core.creator(s, dst).SetColumns(m.data)
}

func (m *Model) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.data)
}
