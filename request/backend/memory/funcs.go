package memory

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"unicode/utf8"
)

func builtinFuncs() map[string]Func {
	return map[string]Func{
		"lower":    stringFunc("lower", strings.ToLower),
		"upper":    stringFunc("upper", strings.ToUpper),
		"len":      length,
		"abs":      abs,
		"concat":   concat,
		"coalesce": coalesce,
		"not":      not,
	}
}

func stringFunc(name string, fn func(string) string) Func {
	return func(args ...any) (any, error) {
		if err := wantArgs(name, args, 1); err != nil {
			return nil, err
		}
		if args[0] == nil {
			return nil, nil
		}
		s, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("memory: %s 的参数必须是字符串，得到 %T", name, args[0])
		}
		return fn(s), nil
	}
}

func length(args ...any) (any, error) {
	if err := wantArgs("len", args, 1); err != nil {
		return nil, err
	}
	switch val := args[0].(type) {
	case nil:
		return int64(0), nil
	case string:
		return int64(utf8.RuneCountInString(val)), nil
	}
	rv := reflect.ValueOf(args[0])
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return int64(rv.Len()), nil
	}
	return nil, fmt.Errorf("memory: len 不支持 %T", args[0])
}

func abs(args ...any) (any, error) {
	if err := wantArgs("abs", args, 1); err != nil {
		return nil, err
	}
	switch val := args[0].(type) {
	case int64:
		if val < 0 {
			return -val, nil
		}
		return val, nil
	case float64:
		return math.Abs(val), nil
	}
	return nil, fmt.Errorf("memory: abs 不支持 %T", args[0])
}

func concat(args ...any) (any, error) {
	var sb strings.Builder
	for _, a := range args {
		if a == nil {
			continue
		}
		sb.WriteString(fmt.Sprint(a))
	}
	return sb.String(), nil
}

func coalesce(args ...any) (any, error) {
	for _, a := range args {
		if a != nil {
			return a, nil
		}
	}
	return nil, nil
}

func not(args ...any) (any, error) {
	if err := wantArgs("not", args, 1); err != nil {
		return nil, err
	}
	return !truthy(args[0]), nil
}

func wantArgs(name string, args []any, n int) error {
	if len(args) != n {
		return fmt.Errorf("memory: %s 需要 %d 个参数，得到 %d 个", name, n, len(args))
	}
	return nil
}
