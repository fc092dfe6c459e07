package valuer

import (
	"reflect"
	"unsafe"

	"dbrequest/request/internal/errs"
	"dbrequest/request/schema"
)

type unsafeValue struct {
	schema *schema.Schema
	// 基准地址
	address unsafe.Pointer
}

var _ Creator = NewUnsafeValue

func NewUnsafeValue(s *schema.Schema, val any) Value {
	return unsafeValue{
		schema:  s,
		address: reflect.ValueOf(val).UnsafePointer(),
	}
}

func (u unsafeValue) Field(name string) (any, error) {
	fd, ok := u.schema.FieldMap[name]
	if !ok {
		return nil, errs.NewUnknownField(name)
	}
	return u.at(fd).Interface(), nil
}

func (u unsafeValue) SetColumns(rec map[string]any) error {
	return setColumns(u.schema, rec, u.at)
}

// at 根据偏移量计算字段地址
func (u unsafeValue) at(fd *schema.Field) reflect.Value {
	fdAddress := unsafe.Add(u.address, fd.Offset)
	return reflect.NewAt(fd.Type, fdAddress).Elem()
}
