package request

import "dbrequest/request/internal/errs"

// Op 是表达式里的操作符，序列化成 op 节点
type Op string

const (
	OpAdd Op = "+"
	OpSub Op = "-"
	OpMul Op = "*"
	OpDiv Op = "/"
	OpMod Op = "%"
	OpEq  Op = "=="
	OpNe  Op = "!="
	OpLt  Op = "<"
	OpLe  Op = "<="
	OpGt  Op = ">"
	OpGe  Op = ">="
	OpIn  Op = "in"
	OpAnd Op = "and"
	OpOr  Op = "or"
)

func (o Op) String() string {
	return string(o)
}

// ParseOp 校验操作符，未知的操作符返回 ErrUnsupportedOperator
func ParseOp(symbol string) (Op, error) {
	switch o := Op(symbol); o {
	case OpAdd, OpSub, OpMul, OpDiv, OpMod,
		OpEq, OpNe, OpLt, OpLe, OpGt, OpGe, OpIn,
		OpAnd, OpOr:
		return o, nil
	}
	return "", errs.NewErrUnsupportedOperator(symbol)
}

// CondOp 是比较条件，序列化成 cond 节点
type CondOp string

const (
	CondEq CondOp = "=="
	CondNe CondOp = "!="
	CondLt CondOp = "<"
	CondLe CondOp = "<="
	CondGt CondOp = ">"
	CondGe CondOp = ">="
	CondIn CondOp = "in"
)

func (c CondOp) String() string {
	return string(c)
}

func ParseCond(symbol string) (CondOp, error) {
	switch c := CondOp(symbol); c {
	case CondEq, CondNe, CondLt, CondLe, CondGt, CondGe, CondIn:
		return c, nil
	}
	return "", errs.NewErrUnsupportedOperator(symbol)
}
