package memory

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"dbrequest/request"
	"dbrequest/request/ast"
)

var (
	errDivisionByZero = errors.New("memory: 除数为 0")
	errNotComparable  = errors.New("memory: 无法比较")
)

// Func 是表达式里可以调用的函数，参数已经求值
type Func func(args ...any) (any, error)

type evaluator struct {
	rec   request.Record
	funcs map[string]Func
}

// eval 从左到右折叠序列，不区分优先级，嵌套由构造时决定
func (e evaluator) eval(f ast.Fragment) (any, error) {
	switch frag := f.(type) {
	case ast.Node:
		return e.evalNode(frag)
	case ast.Seq:
		if len(frag) == 0 || len(frag)%2 == 0 {
			return nil, request.NewErrMalformedAST("序列长度 %d 不是奇数", len(frag))
		}
		acc, err := e.eval(frag[0])
		if err != nil {
			return nil, err
		}
		for i := 1; i < len(frag); i += 2 {
			n, ok := frag[i].(ast.Node)
			if !ok {
				return nil, request.NewErrMalformedAST("位置 %d 应该是操作符", i)
			}
			symbol, _ := n.Symbol()
			// and/or 短路
			if symbol == request.OpAnd.String() && !truthy(acc) {
				acc = false
				continue
			}
			if symbol == request.OpOr.String() && truthy(acc) {
				acc = true
				continue
			}
			right, err := e.eval(frag[i+1])
			if err != nil {
				return nil, err
			}
			if acc, err = apply(symbol, acc, right); err != nil {
				return nil, err
			}
		}
		return acc, nil
	default:
		return nil, request.NewErrMalformedAST("未知片段 %T", f)
	}
}

func (e evaluator) evalNode(n ast.Node) (any, error) {
	switch n.Name {
	case ast.KindRef, ast.KindProp:
		name, _ := n.Symbol()
		return normalize(e.rec[name]), nil
	case ast.KindVal:
		return normalize(n.Val), nil
	case ast.KindFunc:
		fc, ok := n.Call()
		if !ok {
			return nil, request.NewErrMalformedAST("func 节点负载错误")
		}
		fn, ok := e.funcs[fc.Func]
		if !ok {
			return nil, fmt.Errorf("memory: 未知函数 %s", fc.Func)
		}
		args := make([]any, 0, len(fc.Args))
		for _, a := range fc.Args {
			v, err := e.eval(a)
			if err != nil {
				return nil, err
			}
			args = append(args, v)
		}
		res, err := fn(args...)
		if err != nil {
			return nil, err
		}
		return normalize(res), nil
	default:
		return nil, request.NewErrMalformedAST("%s 节点不能求值", n.Name)
	}
}

func apply(symbol string, l, r any) (any, error) {
	switch symbol {
	case "+":
		ls, lok := l.(string)
		rs, rok := r.(string)
		if lok && rok {
			return ls + rs, nil
		}
		return arith(symbol, l, r)
	case "-", "*", "/", "%":
		return arith(symbol, l, r)
	case "==":
		return equal(l, r), nil
	case "!=":
		return !equal(l, r), nil
	case "<", "<=", ">", ">=":
		return order(symbol, l, r)
	case "in":
		return contains(r, l)
	case "and":
		return truthy(l) && truthy(r), nil
	case "or":
		return truthy(l) || truthy(r), nil
	default:
		return nil, request.NewErrMalformedAST("未知操作符 %q", symbol)
	}
}

// arith 两个整数得到整数，有一个是浮点数就得到浮点数
func arith(symbol string, l, r any) (any, error) {
	li, lInt := l.(int64)
	ri, rInt := r.(int64)
	if lInt && rInt {
		switch symbol {
		case "+":
			return li + ri, nil
		case "-":
			return li - ri, nil
		case "*":
			return li * ri, nil
		case "/":
			if ri == 0 {
				return nil, errDivisionByZero
			}
			if li%ri == 0 {
				return li / ri, nil
			}
			return float64(li) / float64(ri), nil
		default:
			if ri == 0 {
				return nil, errDivisionByZero
			}
			return li % ri, nil
		}
	}
	lf, lok := toFloat(l)
	rf, rok := toFloat(r)
	if !lok || !rok {
		return nil, fmt.Errorf("memory: %T %s %T 不是数值运算", l, symbol, r)
	}
	switch symbol {
	case "+":
		return lf + rf, nil
	case "-":
		return lf - rf, nil
	case "*":
		return lf * rf, nil
	case "/":
		if rf == 0 {
			return nil, errDivisionByZero
		}
		return lf / rf, nil
	default:
		if rf == 0 {
			return nil, errDivisionByZero
		}
		return math.Mod(lf, rf), nil
	}
}

func equal(l, r any) bool {
	lf, lok := toFloat(l)
	rf, rok := toFloat(r)
	if lok && rok {
		return lf == rf
	}
	return reflect.DeepEqual(l, r)
}

// order 和 nil 比较总是不成立
func order(symbol string, l, r any) (any, error) {
	if l == nil || r == nil {
		return false, nil
	}
	var cmp int
	lf, lok := toFloat(l)
	rf, rok := toFloat(r)
	ls, lsok := l.(string)
	rs, rsok := r.(string)
	switch {
	case lok && rok:
		switch {
		case lf < rf:
			cmp = -1
		case lf > rf:
			cmp = 1
		}
	case lsok && rsok:
		cmp = strings.Compare(ls, rs)
	default:
		return nil, fmt.Errorf("%w: %T %s %T", errNotComparable, l, symbol, r)
	}
	switch symbol {
	case "<":
		return cmp < 0, nil
	case "<=":
		return cmp <= 0, nil
	case ">":
		return cmp > 0, nil
	default:
		return cmp >= 0, nil
	}
}

// contains 右边是列表时判断元素，两边都是字符串时判断子串
func contains(set any, elem any) (any, error) {
	if s, ok := set.(string); ok {
		sub, ok := elem.(string)
		if !ok {
			return false, nil
		}
		return strings.Contains(s, sub), nil
	}
	if set == nil {
		return false, nil
	}
	val := reflect.ValueOf(set)
	if val.Kind() != reflect.Slice && val.Kind() != reflect.Array {
		return nil, fmt.Errorf("memory: in 的右边必须是列表，得到 %T", set)
	}
	for i := 0; i < val.Len(); i++ {
		if equal(elem, normalize(val.Index(i).Interface())) {
			return true, nil
		}
	}
	return false, nil
}

func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case int64:
		return val != 0
	case float64:
		return val != 0
	case string:
		return val != ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer:
		return !rv.IsNil()
	}
	return true
}

// normalize 把各种整数统一成 int64，浮点数统一成 float64
func normalize(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	}
	if bs, ok := v.([]byte); ok {
		return string(bs)
	}
	return v
}

func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case int64:
		return float64(val), true
	case float64:
		return val, true
	}
	return 0, false
}
