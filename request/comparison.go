package request

import "dbrequest/request/ast"

// Comparison 是比较的左侧，序列化成 prop 节点而不是 ref
type Comparison struct {
	name string
}

// C("foo").Eq("bar")
func C(name string) Comparison {
	return Comparison{name: name}
}

func (c Comparison) expr() {}

func (c Comparison) AST() ast.Fragment {
	return ast.Prop(c.name)
}

// Cond 使用条件字符串构造，例如 C("foo").Cond("==", "bar")
func (c Comparison) Cond(symbol string, arg any) (Predicate, error) {
	cond, err := ParseCond(symbol)
	if err != nil {
		return Predicate{}, err
	}
	return c.compare(cond, arg), nil
}

func (c Comparison) compare(cond CondOp, arg any) Predicate {
	return Predicate{
		left:  c,
		op:    cond.String(),
		kind:  ast.KindCond,
		right: ValueOf(arg),
	}
}

func (c Comparison) Eq(arg any) Predicate { return c.compare(CondEq, arg) }
func (c Comparison) Ne(arg any) Predicate { return c.compare(CondNe, arg) }
func (c Comparison) Lt(arg any) Predicate { return c.compare(CondLt, arg) }
func (c Comparison) Le(arg any) Predicate { return c.compare(CondLe, arg) }
func (c Comparison) Gt(arg any) Predicate { return c.compare(CondGt, arg) }
func (c Comparison) Ge(arg any) Predicate { return c.compare(CondGe, arg) }

func (c Comparison) In(vals ...any) Predicate {
	return c.compare(CondIn, listOf(vals))
}

const notFunc = "not"

// Predicate 是查询条件，比较、And、Or 和 Not 组成二叉树
type Predicate struct {
	left  Expression
	op    string
	kind  ast.Kind
	right Expression
}

// Not 序列化成 not 函数调用，保持操作数和操作符交替
func Not(p Predicate) Predicate {
	return Predicate{
		op:    notFunc,
		kind:  ast.KindFunc,
		right: p,
	}
}

// C("id").Eq(12).And(C("name").Eq("Tom"))
// 不会拍平：a.And(b).And(c) 得到 [[a, and, b], and, c]
func (p Predicate) And(right Predicate) Predicate {
	return Predicate{
		left:  p,
		op:    OpAnd.String(),
		kind:  ast.KindOp,
		right: right,
	}
}

func (p Predicate) Or(right Predicate) Predicate {
	return Predicate{
		left:  p,
		op:    OpOr.String(),
		kind:  ast.KindOp,
		right: right,
	}
}

func (p Predicate) expr() {}

func (p Predicate) AST() ast.Fragment {
	switch p.kind {
	case ast.KindFunc:
		return ast.Func(p.op, p.right.AST())
	case ast.KindOp:
		return ast.Seq{p.left.AST(), ast.Op(p.op), p.right.AST()}
	default:
		return ast.Seq{p.left.AST(), ast.Cond(p.op), p.right.AST()}
	}
}
