package valuer

import (
	"reflect"

	"dbrequest/request/internal/errs"
	"dbrequest/request/schema"
)

type reflectValue struct {
	schema *schema.Schema
	// 对应于 T 的指针指向的值
	val reflect.Value
}

var _ Creator = NewReflectValue

func NewReflectValue(s *schema.Schema, val any) Value {
	return reflectValue{
		schema: s,
		val:    reflect.ValueOf(val).Elem(),
	}
}

func (r reflectValue) Field(name string) (any, error) {
	if _, ok := r.schema.FieldMap[name]; !ok {
		return nil, errs.NewUnknownField(name)
	}
	return r.val.FieldByName(name).Interface(), nil
}

func (r reflectValue) SetColumns(rec map[string]any) error {
	return setColumns(r.schema, rec, func(fd *schema.Field) reflect.Value {
		return r.val.FieldByName(fd.GoName)
	})
}
