package request

import (
	"reflect"

	"dbrequest/request/ast"
)

// Expression 代表可以变成 AST 的表达式
type Expression interface {
	AST() ast.Fragment
	expr()
}

type exprKind uint8

const (
	exprRef exprKind = iota
	exprVal
	exprBinary
	exprCall
)

// Expr 是不可变的表达式，每个操作都返回新的 Expr
type Expr struct {
	kind exprKind
	// ref 的属性名或者函数名
	name string
	val  any

	left  Expression
	op    Op
	right Expression

	args []Expression
}

// E 引用一个属性，求值时读取这个字段
func E(name string) Expr {
	return Expr{kind: exprRef, name: name}
}

// Lit 代表字面值
func Lit(val any) Expr {
	return Expr{kind: exprVal, val: val}
}

// F 函数调用，不是 Expression 的参数被当成字面值
// F("funcname", E("a"), E("a").Mul(5))
func F(name string, args ...any) Expr {
	exprs := make([]Expression, 0, len(args))
	for _, a := range args {
		exprs = append(exprs, ValueOf(a))
	}
	return Expr{kind: exprCall, name: name, args: exprs}
}

// ValueOf Expression 原样返回，其余包装成字面值
func ValueOf(arg any) Expression {
	switch val := arg.(type) {
	case Expression:
		return val
	default:
		return Lit(val)
	}
}

func (e Expr) expr() {}

func (e Expr) AST() ast.Fragment {
	switch e.kind {
	case exprVal:
		return ast.Val(e.val)
	case exprBinary:
		return ast.Seq{e.left.AST(), ast.Op(e.op.String()), e.right.AST()}
	case exprCall:
		args := make([]ast.Fragment, 0, len(e.args))
		for _, a := range e.args {
			args = append(args, a.AST())
		}
		return ast.Func(e.name, args...)
	default:
		return ast.Ref(e.name)
	}
}

func (e Expr) binary(op Op, arg any) Expr {
	return Expr{kind: exprBinary, left: e, op: op, right: ValueOf(arg)}
}

// Op 使用操作符字符串构造，例如 E("a").Op("*", 5)
func (e Expr) Op(symbol string, arg any) (Expr, error) {
	op, err := ParseOp(symbol)
	if err != nil {
		return Expr{}, err
	}
	return e.binary(op, arg), nil
}

func (e Expr) Add(arg any) Expr { return e.binary(OpAdd, arg) }
func (e Expr) Sub(arg any) Expr { return e.binary(OpSub, arg) }
func (e Expr) Mul(arg any) Expr { return e.binary(OpMul, arg) }
func (e Expr) Div(arg any) Expr { return e.binary(OpDiv, arg) }
func (e Expr) Mod(arg any) Expr { return e.binary(OpMod, arg) }
func (e Expr) Eq(arg any) Expr  { return e.binary(OpEq, arg) }
func (e Expr) Ne(arg any) Expr  { return e.binary(OpNe, arg) }
func (e Expr) Lt(arg any) Expr  { return e.binary(OpLt, arg) }
func (e Expr) Le(arg any) Expr  { return e.binary(OpLe, arg) }
func (e Expr) Gt(arg any) Expr  { return e.binary(OpGt, arg) }
func (e Expr) Ge(arg any) Expr  { return e.binary(OpGe, arg) }
func (e Expr) And(arg any) Expr { return e.binary(OpAnd, arg) }
func (e Expr) Or(arg any) Expr  { return e.binary(OpOr, arg) }

// In 只有一个 Expression 参数时直接用它；只有一个切片参数时展开切片；
// 其余情况组成一个列表字面值
func (e Expr) In(vals ...any) Expr {
	return e.binary(OpIn, listOf(vals))
}

func listOf(vals []any) any {
	if len(vals) == 1 {
		if expr, ok := vals[0].(Expression); ok {
			return expr
		}
		// []byte 是一个值，不展开
		if rv := reflect.ValueOf(vals[0]); rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() != reflect.Uint8 {
			list := make([]any, rv.Len())
			for i := range list {
				list[i] = rv.Index(i).Interface()
			}
			return Lit(list)
		}
	}
	list := make([]any, len(vals))
	copy(list, vals)
	return Lit(list)
}
