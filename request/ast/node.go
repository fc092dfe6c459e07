// Package ast 定义查询 DSL 与 Driver 之间的 AST 结构。
//
// 一个 Fragment 要么是单个 Node，要么是 Seq。表达式片段的 Seq 长度为奇数，
// 操作数与操作符交替出现，首尾都是操作数。嵌套保持构造时的样子，不会被拍平。
//
// JSON 形态：
//
//	{"name":"ref","val":"age"}
//	[{"name":"ref","val":"age"},{"name":"op","val":"*"},{"name":"val","val":5}]
package ast

// Kind 是 Node 的标签
type Kind string

const (
	KindRef    Kind = "ref"
	KindVal    Kind = "val"
	KindOp     Kind = "op"
	KindFunc   Kind = "func"
	KindProp   Kind = "prop"
	KindCond   Kind = "cond"
	KindFilter Kind = "filter"
	KindAssign Kind = "assign"
)

func (k Kind) String() string {
	return string(k)
}

func (k Kind) valid() bool {
	switch k {
	case KindRef, KindVal, KindOp, KindFunc, KindProp, KindCond, KindFilter, KindAssign:
		return true
	}
	return false
}

// Fragment 是一个标记接口，只有 Node 和 Seq 实现
type Fragment interface {
	fragment()
}

// Node 的 Val 根据 Name 不同而不同：
//   - ref, prop: 属性名 string
//   - val: 字面值
//   - op, cond: 操作符
//   - func: FuncCall
//   - filter, assign: Fragment
type Node struct {
	Name Kind `json:"name"`
	Val  any  `json:"val"`
}

func (Node) fragment() {}

// Seq 是有序的 Fragment 序列
type Seq []Fragment

func (Seq) fragment() {}

// FuncCall 是 func 节点的负载
type FuncCall struct {
	Func string     `json:"func"`
	Args []Fragment `json:"args"`
}

func Ref(name string) Node {
	return Node{Name: KindRef, Val: name}
}

func Val(val any) Node {
	return Node{Name: KindVal, Val: val}
}

func Op(symbol string) Node {
	return Node{Name: KindOp, Val: symbol}
}

func Func(name string, args ...Fragment) Node {
	if args == nil {
		args = []Fragment{}
	}
	return Node{Name: KindFunc, Val: FuncCall{Func: name, Args: args}}
}

func Prop(name string) Node {
	return Node{Name: KindProp, Val: name}
}

func Cond(symbol string) Node {
	return Node{Name: KindCond, Val: symbol}
}

func Filter(f Fragment) Node {
	return Node{Name: KindFilter, Val: f}
}

func Assign(f Fragment) Node {
	return Node{Name: KindAssign, Val: f}
}

// Symbol 返回 ref/prop/op/cond 节点上的字符串负载
func (n Node) Symbol() (string, bool) {
	switch n.Name {
	case KindRef, KindProp, KindOp, KindCond:
		s, ok := n.Val.(string)
		return s, ok
	}
	return "", false
}

// Call 返回 func 节点的负载
func (n Node) Call() (FuncCall, bool) {
	if n.Name != KindFunc {
		return FuncCall{}, false
	}
	switch fc := n.Val.(type) {
	case FuncCall:
		return fc, true
	case *FuncCall:
		if fc == nil {
			return FuncCall{}, false
		}
		return *fc, true
	}
	return FuncCall{}, false
}

// Inner 返回 filter/assign 节点包裹的片段
func (n Node) Inner() (Fragment, bool) {
	if n.Name != KindFilter && n.Name != KindAssign {
		return nil, false
	}
	f, ok := n.Val.(Fragment)
	return f, ok
}

// IsOperator 判断这个片段是不是 op/cond 节点
func IsOperator(f Fragment) bool {
	n, ok := f.(Node)
	return ok && (n.Name == KindOp || n.Name == KindCond)
}
