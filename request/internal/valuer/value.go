package valuer

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"

	"dbrequest/request/internal/errs"
	"dbrequest/request/schema"
)

type Value interface {
	// Field 按字段名读取
	Field(name string) (any, error)
	// SetColumns 把一条记录按列名写到结构体上
	SetColumns(rec map[string]any) error
}

type Creator func(s *schema.Schema, entity any) Value

var scannerType = reflect.TypeOf((*sql.Scanner)(nil)).Elem()

var (
	errNumberOutOfRange = errors.New("dbrequest: 数值超出字段范围")
	errFractional       = errors.New("dbrequest: 小数不能赋值给整数字段")
)

func setColumns(s *schema.Schema, rec map[string]any, field func(fd *schema.Field) reflect.Value) error {
	for c, v := range rec {
		fd, ok := s.ColumnMap[c]
		if !ok {
			return errs.NewUnknownColumn(c)
		}
		if err := assign(field(fd), v); err != nil {
			return fmt.Errorf("dbrequest: 列 %s: %w", c, err)
		}
	}
	return nil
}

// assign 支持 sql.Scanner、指针字段、数值之间的转换、[]byte 到 string 以及 string 到数值
func assign(dst reflect.Value, src any) error {
	if src == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	if dst.CanAddr() && dst.Addr().Type().Implements(scannerType) {
		return dst.Addr().Interface().(sql.Scanner).Scan(src)
	}
	if dst.Kind() == reflect.Pointer {
		elem := reflect.New(dst.Type().Elem())
		if err := assign(elem.Elem(), src); err != nil {
			return err
		}
		dst.Set(elem)
		return nil
	}
	if bs, ok := src.([]byte); ok && dst.Kind() == reflect.String {
		dst.SetString(string(bs))
		return nil
	}
	sv := reflect.ValueOf(src)
	if sv.Type().AssignableTo(dst.Type()) {
		dst.Set(sv)
		return nil
	}
	switch {
	case isNumber(sv.Kind()) && isNumber(dst.Kind()):
		return convertNumber(dst, sv)
	case sv.Kind() == dst.Kind() && sv.Type().ConvertibleTo(dst.Type()):
		dst.Set(sv.Convert(dst.Type()))
		return nil
	case sv.Kind() == reflect.String:
		return parseInto(dst, sv.String())
	case sv.Kind() == reflect.Slice && sv.Type().Elem().Kind() == reflect.Uint8:
		return parseInto(dst, string(sv.Bytes()))
	}
	return fmt.Errorf("不能把 %T 赋值给 %s", src, dst.Type())
}

// convertNumber 数值之间的转换，溢出或者丢掉小数部分都返回错误
func convertNumber(dst, sv reflect.Value) error {
	switch {
	case isInt(dst.Kind()):
		var v int64
		switch {
		case isInt(sv.Kind()):
			v = sv.Int()
		case isUint(sv.Kind()):
			u := sv.Uint()
			if u > math.MaxInt64 {
				return fmt.Errorf("%w: %d, %s", errNumberOutOfRange, u, dst.Type())
			}
			v = int64(u)
		default:
			f := sv.Float()
			if f != math.Trunc(f) {
				return fmt.Errorf("%w: %v, %s", errFractional, f, dst.Type())
			}
			// 2^63 不能用 int64 表示
			if f < math.MinInt64 || f >= math.MaxInt64 {
				return fmt.Errorf("%w: %v, %s", errNumberOutOfRange, f, dst.Type())
			}
			v = int64(f)
		}
		if dst.OverflowInt(v) {
			return fmt.Errorf("%w: %d, %s", errNumberOutOfRange, v, dst.Type())
		}
		dst.SetInt(v)
	case isUint(dst.Kind()):
		var u uint64
		switch {
		case isInt(sv.Kind()):
			v := sv.Int()
			if v < 0 {
				return fmt.Errorf("%w: %d, %s", errNumberOutOfRange, v, dst.Type())
			}
			u = uint64(v)
		case isUint(sv.Kind()):
			u = sv.Uint()
		default:
			f := sv.Float()
			if f != math.Trunc(f) {
				return fmt.Errorf("%w: %v, %s", errFractional, f, dst.Type())
			}
			if f < 0 || f >= math.MaxUint64 {
				return fmt.Errorf("%w: %v, %s", errNumberOutOfRange, f, dst.Type())
			}
			u = uint64(f)
		}
		if dst.OverflowUint(u) {
			return fmt.Errorf("%w: %d, %s", errNumberOutOfRange, u, dst.Type())
		}
		dst.SetUint(u)
	default:
		var f float64
		switch {
		case isInt(sv.Kind()):
			f = float64(sv.Int())
		case isUint(sv.Kind()):
			f = float64(sv.Uint())
		default:
			f = sv.Float()
		}
		if dst.OverflowFloat(f) {
			return fmt.Errorf("%w: %v, %s", errNumberOutOfRange, f, dst.Type())
		}
		dst.SetFloat(f)
	}
	return nil
}

func parseInto(dst reflect.Value, str string) error {
	switch {
	case isInt(dst.Kind()):
		v, err := strconv.ParseInt(str, 10, dst.Type().Bits())
		if err != nil {
			return err
		}
		dst.SetInt(v)
	case isUint(dst.Kind()):
		v, err := strconv.ParseUint(str, 10, dst.Type().Bits())
		if err != nil {
			return err
		}
		dst.SetUint(v)
	case dst.Kind() == reflect.Float32 || dst.Kind() == reflect.Float64:
		v, err := strconv.ParseFloat(str, dst.Type().Bits())
		if err != nil {
			return err
		}
		dst.SetFloat(v)
	case dst.Kind() == reflect.Bool:
		v, err := strconv.ParseBool(str)
		if err != nil {
			return err
		}
		dst.SetBool(v)
	default:
		return fmt.Errorf("不能把 string 赋值给 %s", dst.Type())
	}
	return nil
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUint(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

func isNumber(k reflect.Kind) bool {
	return isInt(k) || isUint(k) || k == reflect.Float32 || k == reflect.Float64
}
